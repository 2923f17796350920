package analysis

import (
	"github.com/thomcc/radix-sorter/config"
	"github.com/thomcc/radix-sorter/ingestor"
)

// applyFilter drops the values of col outside filter. The column is returned
// unchanged when the filter has no bounds.
func applyFilter(col *ingestor.Column, filter config.ValueFilter) (*ingestor.Column, int) {
	if !filter.Active() {
		return col, 0
	}
	return col.Select(filter.Keep)
}
