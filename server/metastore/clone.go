package metastore

import "maps"

// Clone helpers return deep copies so that stores never share mutable state
// with callers.

func cloneParams(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	return maps.Clone(in)
}

func cloneFields(in []FieldSchema) []FieldSchema {
	if in == nil {
		return nil
	}
	return append([]FieldSchema(nil), in...)
}

func (d *Database) Clone() *Database {
	if d == nil {
		return nil
	}
	out := *d
	out.Parameters = cloneParams(d.Parameters)
	return &out
}

func (sd StorageDescriptor) Clone() StorageDescriptor {
	out := sd
	out.Cols = cloneFields(sd.Cols)
	out.Parameters = cloneParams(sd.Parameters)
	out.SerDeInfo.Parameters = cloneParams(sd.SerDeInfo.Parameters)
	return out
}

func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := *t
	out.SD = t.SD.Clone()
	out.PartitionKeys = cloneFields(t.PartitionKeys)
	out.Parameters = cloneParams(t.Parameters)
	return &out
}

func (p *Partition) Clone() *Partition {
	if p == nil {
		return nil
	}
	out := *p
	out.Values = append([]string(nil), p.Values...)
	out.SD = p.SD.Clone()
	out.Parameters = cloneParams(p.Parameters)
	return &out
}

func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}
	out := *f
	return &out
}

// Clone copies the statistics union; the pointed-to values are copied too
func (o ColumnStatisticsObj) Clone() ColumnStatisticsObj {
	out := o
	d := o.Data
	if d.Boolean != nil {
		v := *d.Boolean
		out.Data.Boolean = &BooleanColumnStats{NumTrues: copyPtr(v.NumTrues), NumFalses: copyPtr(v.NumFalses), NumNulls: copyPtr(v.NumNulls)}
	}
	if d.Long != nil {
		v := *d.Long
		out.Data.Long = &LongColumnStats{LowValue: copyPtr(v.LowValue), HighValue: copyPtr(v.HighValue), NumNulls: copyPtr(v.NumNulls), NumDVs: copyPtr(v.NumDVs)}
	}
	if d.Double != nil {
		v := *d.Double
		out.Data.Double = &DoubleColumnStats{LowValue: copyPtr(v.LowValue), HighValue: copyPtr(v.HighValue), NumNulls: copyPtr(v.NumNulls), NumDVs: copyPtr(v.NumDVs)}
	}
	if d.Decimal != nil {
		v := *d.Decimal
		out.Data.Decimal = &DecimalColumnStats{LowValue: copyPtr(v.LowValue), HighValue: copyPtr(v.HighValue), NumNulls: copyPtr(v.NumNulls), NumDVs: copyPtr(v.NumDVs)}
	}
	if d.String != nil {
		v := *d.String
		out.Data.String = &StringColumnStats{MaxColLen: copyPtr(v.MaxColLen), AvgColLen: copyPtr(v.AvgColLen), NumNulls: copyPtr(v.NumNulls), NumDVs: copyPtr(v.NumDVs)}
	}
	if d.Binary != nil {
		v := *d.Binary
		out.Data.Binary = &BinaryColumnStats{MaxColLen: copyPtr(v.MaxColLen), AvgColLen: copyPtr(v.AvgColLen), NumNulls: copyPtr(v.NumNulls)}
	}
	if d.Date != nil {
		v := *d.Date
		out.Data.Date = &DateColumnStats{LowValue: copyPtr(v.LowValue), HighValue: copyPtr(v.HighValue), NumNulls: copyPtr(v.NumNulls), NumDVs: copyPtr(v.NumDVs)}
	}
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PartitionName builds the "k1=v1/k2=v2" name the metastore uses for a
// partition. Values are used verbatim.
func PartitionName(keys []FieldSchema, values []string) string {
	name := ""
	for i, k := range keys {
		if i > 0 {
			name += "/"
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		name += k.Name + "=" + v
	}
	return name
}
