// Package common keeps enums shared by configuration, the command line and
// the pagination pipeline.
package common

//go:generate go run github.com/abice/go-enum@v0.9.2 --marshal --names

// Page margins policy.
// ENUM(default, custom, minimum)
type MarginMode int

// AllowsMarginBoxes reports whether page-margin boxes have room to be laid
// out. Minimum margins leave none.
func (m MarginMode) AllowsMarginBoxes() bool {
	return m != MarginModeMinimum
}

// Page orientation requested by configuration.
// ENUM(auto, portrait, landscape)
type Orientation int

// Specification of requested output type.
// ENUM(text, ion, sqlite)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtText:
		return ".txt"
	case OutputFmtIon:
		return ".ion"
	case OutputFmtSqlite:
		return ".sqlite"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
