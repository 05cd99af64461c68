package model

import (
	"fmt"
	"time"
)

// UnknownStat marks a statistic that was never gathered. It is distinct from a
// measured zero.
const UnknownStat int64 = -1

// TableStatistics are the table or partition level counters
type TableStatistics struct {
	RowCount    int64
	FileCount   int64
	TotalSize   int64
	RawDataSize int64
}

// UnknownTableStatistics has every counter set to UnknownStat
var UnknownTableStatistics = TableStatistics{
	RowCount:    UnknownStat,
	FileCount:   UnknownStat,
	TotalSize:   UnknownStat,
	RawDataSize: UnknownStat,
}

// StatisticsKind identifies a column statistics variant
type StatisticsKind int

const (
	StatsString StatisticsKind = iota + 1
	StatsLong
	StatsDouble
	StatsBoolean
	StatsBinary
	StatsDate
)

func (k StatisticsKind) String() string {
	switch k {
	case StatsString:
		return "string"
	case StatsLong:
		return "long"
	case StatsDouble:
		return "double"
	case StatsBoolean:
		return "boolean"
	case StatsBinary:
		return "binary"
	case StatsDate:
		return "date"
	default:
		return fmt.Sprintf("StatisticsKind(%d)", int(k))
	}
}

// ColumnStatisticsData is one of the typed statistics variants below.
// A nil pointer field means the value is unknown.
type ColumnStatisticsData interface {
	Kind() StatisticsKind
}

type StringStats struct {
	MaxLength     *int64
	AvgLength     *float64
	NullCount     *int64
	DistinctCount *int64
}

type LongStats struct {
	Min           *int64
	Max           *int64
	NullCount     *int64
	DistinctCount *int64
}

type DoubleStats struct {
	Min           *float64
	Max           *float64
	NullCount     *int64
	DistinctCount *int64
}

type BooleanStats struct {
	TrueCount  *int64
	FalseCount *int64
	NullCount  *int64
}

type BinaryStats struct {
	MaxLength *int64
	AvgLength *float64
	NullCount *int64
}

type DateStats struct {
	Min           *DateValue
	Max           *DateValue
	NullCount     *int64
	DistinctCount *int64
}

func (StringStats) Kind() StatisticsKind  { return StatsString }
func (LongStats) Kind() StatisticsKind    { return StatsLong }
func (DoubleStats) Kind() StatisticsKind  { return StatsDouble }
func (BooleanStats) Kind() StatisticsKind { return StatsBoolean }
func (BinaryStats) Kind() StatisticsKind  { return StatsBinary }
func (DateStats) Kind() StatisticsKind    { return StatsDate }

// DateValue is a calendar date as days since 1970-01-01
type DateValue int64

// DateOf truncates t to its UTC calendar date
func DateOf(t time.Time) DateValue {
	return DateValue(t.UTC().Truncate(24*time.Hour).Unix() / 86400)
}

func (d DateValue) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d DateValue) String() string {
	return d.Time().Format(time.DateOnly)
}

// ColumnStatistics maps a column name to its statistics
type ColumnStatistics map[string]ColumnStatisticsData

// Ptr returns a pointer to v, for filling optional statistics fields
func Ptr[T any](v T) *T {
	return &v
}
