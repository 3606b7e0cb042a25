package ingest

import (
	"strings"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

// LocateHeader returns the index of the first row with a cell containing
// marker (case-insensitive). When no row matches it returns (0, false) and
// the caller falls back to the first row.
func LocateHeader(raw asset.RawTable, marker string) (int, bool) {
	needle := strings.ToLower(strings.TrimSpace(marker))
	if needle == "" {
		return 0, false
	}
	for i, row := range raw {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				return i, true
			}
		}
	}
	return 0, false
}
