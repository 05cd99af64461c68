package stats

import (
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/shim"
)

// ValidateColumnStatistics checks requested statistics against the declared
// columns of a table. Partition keys carry no column statistics.
func ValidateColumnStatistics(columns []model.Column, partitionKeys []string, requested model.ColumnStatistics, s *shim.Shim) error {
	byName := make(map[string]model.Column, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}
	for _, k := range partitionKeys {
		delete(byName, k)
	}

	for name, data := range requested {
		col, ok := byName[name]
		if !ok {
			return shared.NewCatalogInvalidInput("column_statistics", "no data column "+name)
		}
		if data == nil {
			return shared.NewCatalogInvalidInput("column_statistics", "column "+name+" has nil statistics")
		}
		want, ok := col.Type.StatisticsKind()
		if !ok || want != data.Kind() {
			return shared.NewStatisticsTypeMismatch(name, col.Type.String(), data.Kind().String())
		}
		if data.Kind() == model.StatsDate && !s.Supports(shim.DateColumnStatistics) {
			return shared.NewCapabilityUnsupported(shim.DateColumnStatistics.String(), s.Version()).
				AddContext("column", name)
		}
	}
	return nil
}

// MergeColumnStatistics replaces the entries of existing named in requested
// and keeps the rest
func MergeColumnStatistics(existing, requested model.ColumnStatistics) model.ColumnStatistics {
	out := make(model.ColumnStatistics, len(existing)+len(requested))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range requested {
		out[k] = v
	}
	return out
}
