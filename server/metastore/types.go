// Package metastore defines the record types and client surface of a
// Hive-style metastore. Records mirror the metastore's own data model: loose
// string parameter maps, a storage descriptor, and constraints and column
// statistics stored beside the table rather than inside it.
package metastore

// Table types understood by the metastore
const (
	TableTypeManaged  = "MANAGED_TABLE"
	TableTypeExternal = "EXTERNAL_TABLE"
	TableTypeView     = "VIRTUAL_VIEW"
)

// FunctionTypeJava is the only function type a Hive metastore records
const FunctionTypeJava = "JAVA"

type Database struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	LocationURI string            `json:"locationUri,omitempty"`
	OwnerName   string            `json:"ownerName,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

type FieldSchema struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
}

type SerDeInfo struct {
	Name             string            `json:"name,omitempty"`
	SerializationLib string            `json:"serializationLib,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty"`
}

type StorageDescriptor struct {
	Cols         []FieldSchema     `json:"cols,omitempty"`
	Location     string            `json:"location,omitempty"`
	InputFormat  string            `json:"inputFormat,omitempty"`
	OutputFormat string            `json:"outputFormat,omitempty"`
	SerDeInfo    SerDeInfo         `json:"serdeInfo"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

type Table struct {
	DBName           string            `json:"dbName"`
	TableName        string            `json:"tableName"`
	Owner            string            `json:"owner,omitempty"`
	CreateTime       int64             `json:"createTime,omitempty"`
	TableType        string            `json:"tableType,omitempty"`
	SD               StorageDescriptor `json:"sd"`
	PartitionKeys    []FieldSchema     `json:"partitionKeys,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	ViewOriginalText string            `json:"viewOriginalText,omitempty"`
	ViewExpandedText string            `json:"viewExpandedText,omitempty"`
}

// PrimaryKey is one column of a primary key constraint; KeySeq orders them
type PrimaryKey struct {
	DBName     string `json:"dbName"`
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
	KeySeq     int    `json:"keySeq"`
	Name       string `json:"name"`
	Enable     bool   `json:"enable"`
	Validate   bool   `json:"validate"`
	Rely       bool   `json:"rely"`
}

type NotNullConstraint struct {
	DBName     string `json:"dbName"`
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
	Name       string `json:"name"`
	Enable     bool   `json:"enable"`
	Validate   bool   `json:"validate"`
	Rely       bool   `json:"rely"`
}

type Partition struct {
	DBName     string            `json:"dbName"`
	TableName  string            `json:"tableName"`
	Values     []string          `json:"values"`
	CreateTime int64             `json:"createTime,omitempty"`
	SD         StorageDescriptor `json:"sd"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type Function struct {
	DBName       string `json:"dbName"`
	FunctionName string `json:"functionName"`
	ClassName    string `json:"className"`
	OwnerName    string `json:"ownerName,omitempty"`
	FunctionType string `json:"functionType"`
	CreateTime   int64  `json:"createTime,omitempty"`
}

type BooleanColumnStats struct {
	NumTrues  *int64 `json:"numTrues,omitempty"`
	NumFalses *int64 `json:"numFalses,omitempty"`
	NumNulls  *int64 `json:"numNulls,omitempty"`
}

type LongColumnStats struct {
	LowValue  *int64 `json:"lowValue,omitempty"`
	HighValue *int64 `json:"highValue,omitempty"`
	NumNulls  *int64 `json:"numNulls,omitempty"`
	NumDVs    *int64 `json:"numDVs,omitempty"`
}

type DoubleColumnStats struct {
	LowValue  *float64 `json:"lowValue,omitempty"`
	HighValue *float64 `json:"highValue,omitempty"`
	NumNulls  *int64   `json:"numNulls,omitempty"`
	NumDVs    *int64   `json:"numDVs,omitempty"`
}

// DecimalColumnStats carries bounds as decimal strings
type DecimalColumnStats struct {
	LowValue  *string `json:"lowValue,omitempty"`
	HighValue *string `json:"highValue,omitempty"`
	NumNulls  *int64  `json:"numNulls,omitempty"`
	NumDVs    *int64  `json:"numDVs,omitempty"`
}

type StringColumnStats struct {
	MaxColLen *int64   `json:"maxColLen,omitempty"`
	AvgColLen *float64 `json:"avgColLen,omitempty"`
	NumNulls  *int64   `json:"numNulls,omitempty"`
	NumDVs    *int64   `json:"numDVs,omitempty"`
}

type BinaryColumnStats struct {
	MaxColLen *int64   `json:"maxColLen,omitempty"`
	AvgColLen *float64 `json:"avgColLen,omitempty"`
	NumNulls  *int64   `json:"numNulls,omitempty"`
}

// DateColumnStats bounds are days since epoch
type DateColumnStats struct {
	LowValue  *int64 `json:"lowValue,omitempty"`
	HighValue *int64 `json:"highValue,omitempty"`
	NumNulls  *int64 `json:"numNulls,omitempty"`
	NumDVs    *int64 `json:"numDVs,omitempty"`
}

// ColumnStatisticsData is a union; exactly one member is set
type ColumnStatisticsData struct {
	Boolean *BooleanColumnStats `json:"booleanStats,omitempty"`
	Long    *LongColumnStats    `json:"longStats,omitempty"`
	Double  *DoubleColumnStats  `json:"doubleStats,omitempty"`
	Decimal *DecimalColumnStats `json:"decimalStats,omitempty"`
	String  *StringColumnStats  `json:"stringStats,omitempty"`
	Binary  *BinaryColumnStats  `json:"binaryStats,omitempty"`
	Date    *DateColumnStats    `json:"dateStats,omitempty"`
}

type ColumnStatisticsObj struct {
	ColName string               `json:"colName"`
	ColType string               `json:"colType"`
	Data    ColumnStatisticsData `json:"statsData"`
}
