package codec

import (
	"sort"
	"strings"
)

// DefaultStorageFormat is used when neither the table nor the catalog names one
const DefaultStorageFormat = "textfile"

type formatClasses struct {
	input  string
	output string
	serde  string
}

const lazySimpleSerDe = "org.apache.hadoop.hive.serde2.lazy.LazySimpleSerDe"

var storageFormats = map[string]formatClasses{
	"textfile": {
		input:  "org.apache.hadoop.mapred.TextInputFormat",
		output: "org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat",
		serde:  lazySimpleSerDe,
	},
	"sequencefile": {
		input:  "org.apache.hadoop.mapred.SequenceFileInputFormat",
		output: "org.apache.hadoop.hive.ql.io.HiveSequenceFileOutputFormat",
		serde:  lazySimpleSerDe,
	},
	"rcfile": {
		input:  "org.apache.hadoop.hive.ql.io.RCFileInputFormat",
		output: "org.apache.hadoop.hive.ql.io.RCFileOutputFormat",
		serde:  "org.apache.hadoop.hive.serde2.columnar.LazyBinaryColumnarSerDe",
	},
	"orc": {
		input:  "org.apache.hadoop.hive.ql.io.orc.OrcInputFormat",
		output: "org.apache.hadoop.hive.ql.io.orc.OrcOutputFormat",
		serde:  "org.apache.hadoop.hive.ql.io.orc.OrcSerde",
	},
	"parquet": {
		input:  "org.apache.hadoop.hive.ql.io.parquet.MapredParquetInputFormat",
		output: "org.apache.hadoop.hive.ql.io.parquet.MapredParquetOutputFormat",
		serde:  "org.apache.hadoop.hive.ql.io.parquet.serde.ParquetHiveSerDe",
	},
	"avro": {
		input:  "org.apache.hadoop.hive.ql.io.avro.AvroContainerInputFormat",
		output: "org.apache.hadoop.hive.ql.io.avro.AvroContainerOutputFormat",
		serde:  "org.apache.hadoop.hive.serde2.avro.AvroSerDe",
	},
}

// KnownStorageFormats lists the short format names, sorted
func KnownStorageFormats() []string {
	names := make([]string, 0, len(storageFormats))
	for name := range storageFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownStorageFormat reports whether name is a known short format name
func IsKnownStorageFormat(name string) bool {
	_, ok := storageFormats[strings.ToLower(name)]
	return ok
}

// formatOf finds the short name whose input and output classes match.
// Textfile and sequencefile share a serde, so the serde alone is not enough.
func formatOf(input, output string) string {
	for name, fc := range storageFormats {
		if fc.input == input && fc.output == output {
			return name
		}
	}
	return ""
}
