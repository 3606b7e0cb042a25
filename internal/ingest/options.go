package ingest

import "github.com/KaramelBytes/assetboard-cli/internal/asset"

// Options controls how a spreadsheet is normalized.
type Options struct {
	// HeaderMarker is the text that identifies the true header row.
	HeaderMarker string
	// YearColumn names the column derived from the DATE role.
	YearColumn string
	// ExtraAliases are consulted after the built-in candidates of each role.
	ExtraAliases map[asset.Role][]string
	// Numeric parsing locale for the VALUE role. Both zero means strict parsing.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns the settings used by the asset register template.
func DefaultOptions() Options {
	return Options{
		HeaderMarker: "No. Urut",
		YearColumn:   "Tahun",
	}
}
