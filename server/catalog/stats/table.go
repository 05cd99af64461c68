// Package stats reconciles table and column statistics with what the
// metastore stores: counters kept as table parameters and typed column
// statistics objects.
package stats

import (
	"strconv"

	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shim"
)

// Parameter keys of the table level counters
const (
	RowCountKey    = "numRows"
	FileCountKey   = "numFiles"
	TotalSizeKey   = "totalSize"
	RawDataSizeKey = "rawDataSize"
)

// CounterKeys lists the counter keys in TableStatistics field order
var CounterKeys = []string{RowCountKey, FileCountKey, TotalSizeKey, RawDataSizeKey}

// HasMarker reports whether props carry a stats-generated marker under the
// key of any metastore version
func HasMarker(props map[string]string) bool {
	if _, ok := props[shim.StatsGeneratedKey]; ok {
		return true
	}
	_, ok := props[shim.StatsGeneratedLegacyKey]
	return ok
}

// StripUngathered removes the counters from props when all four are zero and
// no marker says they were measured. Zeros of that kind mean nothing was
// collected, not an empty table. It reports whether anything was removed.
func StripUngathered(props map[string]string) bool {
	if HasMarker(props) {
		return false
	}
	for _, k := range CounterKeys {
		v, ok := props[k]
		if !ok {
			return false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n != 0 {
			return false
		}
	}
	for _, k := range CounterKeys {
		delete(props, k)
	}
	return true
}

// FromProperties reads the counters. Each missing, negative or unparsable
// counter is UnknownStat on its own.
func FromProperties(props map[string]string) model.TableStatistics {
	read := func(key string) int64 {
		v, ok := props[key]
		if !ok {
			return model.UnknownStat
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return model.UnknownStat
		}
		return n
	}
	return model.TableStatistics{
		RowCount:    read(RowCountKey),
		FileCount:   read(FileCountKey),
		TotalSize:   read(TotalSizeKey),
		RawDataSize: read(RawDataSizeKey),
	}
}

// Apply returns a copy of props holding st and the marker of s. Unknown
// counters are removed rather than written.
func Apply(props map[string]string, st model.TableStatistics, s *shim.Shim) map[string]string {
	out := model.CloneProperties(props)
	values := []int64{st.RowCount, st.FileCount, st.TotalSize, st.RawDataSize}
	for i, k := range CounterKeys {
		if values[i] < 0 {
			delete(out, k)
			continue
		}
		out[k] = strconv.FormatInt(values[i], 10)
	}
	delete(out, shim.StatsGeneratedKey)
	delete(out, shim.StatsGeneratedLegacyKey)
	out[s.StatsGeneratedKey()] = s.StatsGeneratedValue()
	return out
}

// Changed reports whether writing st over props would alter any counter
func Changed(props map[string]string, st model.TableStatistics) bool {
	return FromProperties(props) != st
}
