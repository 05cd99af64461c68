package shared

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultPartitionName stands in for an empty partition value in paths
const DefaultPartitionName = "__HIVE_DEFAULT_PARTITION__"

// PathManager resolves default storage locations for metastore objects
type PathManager interface {
	DatabaseLocation(database string) string
	TableLocation(database, table string) string
	PartitionLocation(tableLocation string, keys, values []string) string
}

var _ PathManager = (*Warehouse)(nil)

// Warehouse lays objects out the way a Hive warehouse does:
// <root>/<db>.db/<table>/<k1>=<v1>/<k2>=<v2>
type Warehouse struct {
	Root string
}

func NewWarehouse(root string) *Warehouse {
	return &Warehouse{Root: strings.TrimRight(root, "/")}
}

func (w *Warehouse) DatabaseLocation(database string) string {
	return JoinLocation(w.Root, strings.ToLower(database)+".db")
}

func (w *Warehouse) TableLocation(database, table string) string {
	return JoinLocation(w.DatabaseLocation(database), strings.ToLower(table))
}

func (w *Warehouse) PartitionLocation(tableLocation string, keys, values []string) string {
	return JoinLocation(tableLocation, MakePartitionName(keys, values))
}

// MakePartitionName builds "k1=v1/k2=v2" with both sides path-escaped
func MakePartitionName(keys, values []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts[i] = EscapePathName(strings.ToLower(k)) + "=" + EscapePathName(v)
	}
	return strings.Join(parts, "/")
}

// EscapePathName percent-escapes the characters Hive refuses in path segments
func EscapePathName(s string) string {
	if s == "" {
		return DefaultPartitionName
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if needsEscape(c) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// UnescapePathName reverses EscapePathName
func UnescapePathName(s string) string {
	if s == DefaultPartitionName {
		return ""
	}
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}

func needsEscape(c byte) bool {
	if c < 0x20 || c == 0x7F {
		return true
	}
	switch c {
	case '"', '#', '%', '\'', '*', '/', ':', '=', '?', '\\', '{', '[', ']', '^':
		return true
	}
	return false
}

// JoinLocation appends elem to base, keeping scheme prefixes such as
// "file:///" or "s3://" intact
func JoinLocation(base, elem string) string {
	if base == "" {
		return elem
	}
	if i := strings.Index(base, "://"); i >= 0 {
		scheme, rest := base[:i+3], base[i+3:]
		return scheme + path.Join(rest, elem)
	}
	return path.Join(base, elem)
}
