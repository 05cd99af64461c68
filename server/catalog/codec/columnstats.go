package codec

import (
	"sort"
	"strconv"

	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/metastore"
)

// EncodeColumnStatistics maps validated statistics to metastore objects, in
// column name order. columns supplies each column's type.
func (c *Codec) EncodeColumnStatistics(columns []model.Column, stats model.ColumnStatistics) ([]metastore.ColumnStatisticsObj, error) {
	types := make(map[string]model.DataType, len(columns))
	for _, col := range columns {
		types[col.Name] = col.Type
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]metastore.ColumnStatisticsObj, 0, len(names))
	for _, name := range names {
		typ, ok := types[name]
		if !ok {
			return nil, shared.NewCatalogInvalidInput("column_statistics", "no column "+name)
		}
		hiveType, err := HiveTypeString(typ)
		if err != nil {
			return nil, shared.NewCatalogInvalidInput("column_statistics", "column "+name+": "+err.Error())
		}
		data, err := encodeStatsData(name, typ, stats[name])
		if err != nil {
			return nil, err
		}
		out = append(out, metastore.ColumnStatisticsObj{ColName: name, ColType: hiveType, Data: data})
	}
	return out, nil
}

func encodeStatsData(column string, typ model.DataType, stats model.ColumnStatisticsData) (metastore.ColumnStatisticsData, error) {
	var d metastore.ColumnStatisticsData
	switch s := stats.(type) {
	case model.StringStats:
		d.String = &metastore.StringColumnStats{MaxColLen: s.MaxLength, AvgColLen: s.AvgLength, NumNulls: s.NullCount, NumDVs: s.DistinctCount}
	case model.LongStats:
		d.Long = &metastore.LongColumnStats{LowValue: s.Min, HighValue: s.Max, NumNulls: s.NullCount, NumDVs: s.DistinctCount}
	case model.DoubleStats:
		if typ.Kind == model.KindDecimal {
			d.Decimal = &metastore.DecimalColumnStats{
				LowValue:  formatDecimal(s.Min),
				HighValue: formatDecimal(s.Max),
				NumNulls:  s.NullCount,
				NumDVs:    s.DistinctCount,
			}
		} else {
			d.Double = &metastore.DoubleColumnStats{LowValue: s.Min, HighValue: s.Max, NumNulls: s.NullCount, NumDVs: s.DistinctCount}
		}
	case model.BooleanStats:
		d.Boolean = &metastore.BooleanColumnStats{NumTrues: s.TrueCount, NumFalses: s.FalseCount, NumNulls: s.NullCount}
	case model.BinaryStats:
		d.Binary = &metastore.BinaryColumnStats{MaxColLen: s.MaxLength, AvgColLen: s.AvgLength, NumNulls: s.NullCount}
	case model.DateStats:
		d.Date = &metastore.DateColumnStats{LowValue: dateDays(s.Min), HighValue: dateDays(s.Max), NumNulls: s.NullCount, NumDVs: s.DistinctCount}
	default:
		return d, shared.NewCatalogInvalidInput("column_statistics", "unsupported statistics for column "+column)
	}
	return d, nil
}

// DecodeColumnStatistics maps metastore objects back to model statistics
func (c *Codec) DecodeColumnStatistics(object string, objs []metastore.ColumnStatisticsObj) (model.ColumnStatistics, error) {
	out := make(model.ColumnStatistics, len(objs))
	for _, obj := range objs {
		data, err := decodeStatsData(obj.Data)
		if err != nil {
			return nil, shared.NewCorruptObject(object, "column "+obj.ColName+": "+err.Error())
		}
		out[obj.ColName] = data
	}
	return out, nil
}

type statsDecodeFailure string

func (e statsDecodeFailure) Error() string { return string(e) }

func decodeStatsData(d metastore.ColumnStatisticsData) (model.ColumnStatisticsData, error) {
	switch {
	case d.String != nil:
		s := d.String
		return model.StringStats{MaxLength: s.MaxColLen, AvgLength: s.AvgColLen, NullCount: s.NumNulls, DistinctCount: s.NumDVs}, nil
	case d.Long != nil:
		s := d.Long
		return model.LongStats{Min: s.LowValue, Max: s.HighValue, NullCount: s.NumNulls, DistinctCount: s.NumDVs}, nil
	case d.Double != nil:
		s := d.Double
		return model.DoubleStats{Min: s.LowValue, Max: s.HighValue, NullCount: s.NumNulls, DistinctCount: s.NumDVs}, nil
	case d.Decimal != nil:
		s := d.Decimal
		low, err := parseDecimal(s.LowValue)
		if err != nil {
			return nil, err
		}
		high, err := parseDecimal(s.HighValue)
		if err != nil {
			return nil, err
		}
		return model.DoubleStats{Min: low, Max: high, NullCount: s.NumNulls, DistinctCount: s.NumDVs}, nil
	case d.Boolean != nil:
		s := d.Boolean
		return model.BooleanStats{TrueCount: s.NumTrues, FalseCount: s.NumFalses, NullCount: s.NumNulls}, nil
	case d.Binary != nil:
		s := d.Binary
		return model.BinaryStats{MaxLength: s.MaxColLen, AvgLength: s.AvgColLen, NullCount: s.NumNulls}, nil
	case d.Date != nil:
		s := d.Date
		return model.DateStats{Min: dateValue(s.LowValue), Max: dateValue(s.HighValue), NullCount: s.NumNulls, DistinctCount: s.NumDVs}, nil
	default:
		return nil, statsDecodeFailure("statistics object carries no data")
	}
}

func formatDecimal(v *float64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	return &s
}

func parseDecimal(s *string) (*float64, error) {
	if s == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, statsDecodeFailure("unparsable decimal bound " + *s)
	}
	return &v, nil
}

func dateDays(d *model.DateValue) *int64 {
	if d == nil {
		return nil
	}
	v := int64(*d)
	return &v
}

func dateValue(days *int64) *model.DateValue {
	if days == nil {
		return nil
	}
	v := model.DateValue(*days)
	return &v
}
