package model

import (
	"fmt"
	"strings"
)

// TypeKind is the root of a logical type
type TypeKind int

const (
	KindBoolean TypeKind = iota + 1
	KindTinyInt
	KindSmallInt
	KindInt
	KindBigInt
	KindFloat
	KindDouble
	KindDecimal
	KindChar
	KindVarchar
	KindString
	KindBinary
	KindBytes
	KindDate
	KindTimestamp
	KindArray
	KindMap
	KindRow
)

var kindNames = map[TypeKind]string{
	KindBoolean:   "BOOLEAN",
	KindTinyInt:   "TINYINT",
	KindSmallInt:  "SMALLINT",
	KindInt:       "INT",
	KindBigInt:    "BIGINT",
	KindFloat:     "FLOAT",
	KindDouble:    "DOUBLE",
	KindDecimal:   "DECIMAL",
	KindChar:      "CHAR",
	KindVarchar:   "VARCHAR",
	KindString:    "STRING",
	KindBinary:    "BINARY",
	KindBytes:     "BYTES",
	KindDate:      "DATE",
	KindTimestamp: "TIMESTAMP",
	KindArray:     "ARRAY",
	KindMap:       "MAP",
	KindRow:       "ROW",
}

func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// DataType is a logical column type. Types are nullable unless NotNull was applied.
type DataType struct {
	Kind      TypeKind
	Length    int // CHAR, VARCHAR, BINARY
	Precision int // DECIMAL, TIMESTAMP
	Scale     int // DECIMAL
	Nullable  bool

	Element *DataType // ARRAY
	Key     *DataType // MAP
	Value   *DataType // MAP
	Fields  []Field   // ROW
}

// Field is a named member of a ROW type
type Field struct {
	Name string
	Type DataType
}

const (
	DefaultDecimalPrecision   = 10
	DefaultDecimalScale       = 0
	DefaultTimestampPrecision = 9
	MaxVarcharLength          = 65535
	MaxCharLength             = 255
)

func Boolean() DataType  { return DataType{Kind: KindBoolean, Nullable: true} }
func TinyInt() DataType  { return DataType{Kind: KindTinyInt, Nullable: true} }
func SmallInt() DataType { return DataType{Kind: KindSmallInt, Nullable: true} }
func Int() DataType      { return DataType{Kind: KindInt, Nullable: true} }
func BigInt() DataType   { return DataType{Kind: KindBigInt, Nullable: true} }
func Float() DataType    { return DataType{Kind: KindFloat, Nullable: true} }
func Double() DataType   { return DataType{Kind: KindDouble, Nullable: true} }
func String() DataType   { return DataType{Kind: KindString, Nullable: true} }
func Bytes() DataType    { return DataType{Kind: KindBytes, Nullable: true} }
func Date() DataType     { return DataType{Kind: KindDate, Nullable: true} }

func Decimal(precision, scale int) DataType {
	return DataType{Kind: KindDecimal, Precision: precision, Scale: scale, Nullable: true}
}

func Char(length int) DataType {
	return DataType{Kind: KindChar, Length: length, Nullable: true}
}

func Varchar(length int) DataType {
	return DataType{Kind: KindVarchar, Length: length, Nullable: true}
}

func Binary(length int) DataType {
	return DataType{Kind: KindBinary, Length: length, Nullable: true}
}

func Timestamp(precision int) DataType {
	return DataType{Kind: KindTimestamp, Precision: precision, Nullable: true}
}

func Array(element DataType) DataType {
	return DataType{Kind: KindArray, Element: &element, Nullable: true}
}

func Map(key, value DataType) DataType {
	return DataType{Kind: KindMap, Key: &key, Value: &value, Nullable: true}
}

func Row(fields ...Field) DataType {
	return DataType{Kind: KindRow, Fields: fields, Nullable: true}
}

// NotNull returns a copy of t that rejects nulls
func (t DataType) NotNull() DataType {
	t.Nullable = false
	return t
}

// AsNullable returns a copy of t that accepts nulls
func (t DataType) AsNullable() DataType {
	t.Nullable = true
	return t
}

func (t DataType) String() string {
	s := t.baseString()
	if !t.Nullable {
		s += " NOT NULL"
	}
	return s
}

func (t DataType) baseString() string {
	switch t.Kind {
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
	case KindChar, KindVarchar, KindBinary:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Length)
	case KindTimestamp:
		return fmt.Sprintf("TIMESTAMP(%d)", t.Precision)
	case KindArray:
		return "ARRAY<" + t.Element.String() + ">"
	case KindMap:
		return "MAP<" + t.Key.String() + ", " + t.Value.String() + ">"
	case KindRow:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name + " " + f.Type.String()
		}
		return "ROW<" + strings.Join(parts, ", ") + ">"
	default:
		return t.Kind.String()
	}
}

// StatisticsKind returns the column statistics variant that describes values
// of this type. Composite and timestamp types have none.
func (t DataType) StatisticsKind() (StatisticsKind, bool) {
	switch t.Kind {
	case KindChar, KindVarchar, KindString:
		return StatsString, true
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt:
		return StatsLong, true
	case KindFloat, KindDouble, KindDecimal:
		return StatsDouble, true
	case KindBoolean:
		return StatsBoolean, true
	case KindBinary, KindBytes:
		return StatsBinary, true
	case KindDate:
		return StatsDate, true
	default:
		return 0, false
	}
}
