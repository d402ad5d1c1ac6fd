package state

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// newLocalEnv creates a new LocalEnv instance with default values. The
// logger stays quiet until configuration is loaded.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		RunID: uuid.New(),
		Log:   zap.NewNop(),
	}
}
