package config

import (
	"fmt"

	"folio/style"
)

//go:generate go run github.com/abice/go-enum@v0.9.2 --marshal --names

// Paper sizes known by name; custom takes width and height from the page
// configuration.
// ENUM(a3, a4, a5, b4, b5, letter, legal, ledger, custom)
type Paper string

// Size returns the portrait size of the paper in CSS px.
func (p Paper) Size() (w, h float64, err error) {
	if w, h, ok := style.NamedPageSize(string(p)); ok {
		return w, h, nil
	}
	return 0, 0, fmt.Errorf("paper %q has no predefined size", p)
}
