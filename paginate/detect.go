package paginate

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// isArchiveFile reports whether path is a zip archive. Only files with zip
// extension are looked at.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	// 262 bytes is enough for filetype to recognize any supported format
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
