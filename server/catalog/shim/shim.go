// Package shim resolves a metastore version string to the set of capabilities
// that version offers. A Shim is immutable once resolved and safe to share.
package shim

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/gear6io/metacat/server/catalog/shared"
	"golang.org/x/mod/semver"
)

// Feature is a capability that only some metastore versions provide
type Feature int

const (
	// DateColumnStatistics allows DATE column statistics
	DateColumnStatistics Feature = iota + 1
	// TableConstraints allows primary key and NOT NULL constraints
	TableConstraints
	// ViewListing allows listing tables by type on the server
	ViewListing
)

func (f Feature) String() string {
	switch f {
	case DateColumnStatistics:
		return "date_column_statistics"
	case TableConstraints:
		return "table_constraints"
	case ViewListing:
		return "view_listing"
	default:
		return fmt.Sprintf("Feature(%d)", int(f))
	}
}

// AllFeatures lists every feature in declaration order
var AllFeatures = []Feature{DateColumnStatistics, TableConstraints, ViewListing}

// minimum version introducing each feature
var introducedIn = map[Feature]string{
	DateColumnStatistics: "v1.2.0",
	TableConstraints:     "v3.1.0",
	ViewListing:          "v2.2.0",
}

// Stats marker property names and values. Both changed in 2.0.0.
const (
	StatsGeneratedLegacyKey   = "STATS_GENERATED_VIA_STATS_TASK"
	StatsGeneratedLegacyValue = "true"
	StatsGeneratedKey         = "STATS_GENERATED"
	StatsGeneratedValue       = "TASK"
)

var statsKeyRenamedIn = "v2.0.0"

// knownVersions is sorted ascending by semver
var knownVersions = []string{
	"v1.0.0", "v1.0.1",
	"v1.1.0", "v1.1.1",
	"v1.2.0", "v1.2.1", "v1.2.2",
	"v2.0.0", "v2.0.1",
	"v2.1.0", "v2.1.1",
	"v2.2.0",
	"v2.3.0", "v2.3.1", "v2.3.2", "v2.3.3", "v2.3.4", "v2.3.5", "v2.3.6",
	"v3.1.0", "v3.1.1", "v3.1.2", "v3.1.3",
}

// KnownVersions returns the supported versions without the "v" prefix
func KnownVersions() []string {
	out := make([]string, len(knownVersions))
	for i, v := range knownVersions {
		out[i] = v[1:]
	}
	return out
}

// Shim is the resolved capability set of one metastore version
type Shim struct {
	reported string
	resolved string
	features map[Feature]bool
	statsKey string
	statsVal string
}

// Supports reports whether the resolved version offers f
func (s *Shim) Supports(f Feature) bool {
	return s.features[f]
}

// Version is the known version the reported one resolved to, e.g. "2.3.6"
func (s *Shim) Version() string {
	return s.resolved[1:]
}

// ReportedVersion is the string the metastore reported
func (s *Shim) ReportedVersion() string {
	return s.reported
}

// StatsGeneratedKey is the property that marks table statistics as measured
func (s *Shim) StatsGeneratedKey() string {
	return s.statsKey
}

// StatsGeneratedValue is the value written under StatsGeneratedKey
func (s *Shim) StatsGeneratedValue() string {
	return s.statsVal
}

// Features lists the supported features in declaration order
func (s *Shim) Features() []Feature {
	var out []Feature
	for _, f := range AllFeatures {
		if s.features[f] {
			out = append(out, f)
		}
	}
	return out
}

var cache sync.Map // reported version -> *Shim

// Resolve returns the shim for a reported version string. Results are cached
// process wide; repeated calls with the same string return the same Shim.
func Resolve(version string) (*Shim, error) {
	if cached, ok := cache.Load(version); ok {
		return cached.(*Shim), nil
	}

	canonical, err := normalize(version)
	if err != nil {
		return nil, err
	}

	s := build(version, nearestKnown(canonical))
	actual, _ := cache.LoadOrStore(version, s)
	return actual.(*Shim), nil
}

// leading numeric part, so "2.3.4-cdh6.1" and "v3.1.2" both parse
var versionPattern = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

func normalize(version string) (string, error) {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return "", shared.NewVersionDetection(version, fmt.Errorf("no numeric version in %q", version))
	}
	parts := []string{m[1], m[2], m[3]}
	for i := range parts {
		if parts[i] == "" {
			parts[i] = "0"
		}
	}
	canonical := "v" + parts[0] + "." + parts[1] + "." + parts[2]
	if !semver.IsValid(canonical) {
		return "", shared.NewVersionDetection(version, fmt.Errorf("%q is not a valid version", canonical))
	}
	return canonical, nil
}

// nearestKnown picks the greatest known version not above canonical. Versions
// older than every known one resolve to the oldest.
func nearestKnown(canonical string) string {
	idx := sort.Search(len(knownVersions), func(i int) bool {
		return semver.Compare(knownVersions[i], canonical) > 0
	})
	if idx == 0 {
		return knownVersions[0]
	}
	return knownVersions[idx-1]
}

func build(reported, resolved string) *Shim {
	s := &Shim{
		reported: reported,
		resolved: resolved,
		features: make(map[Feature]bool, len(introducedIn)),
		statsKey: StatsGeneratedLegacyKey,
		statsVal: StatsGeneratedLegacyValue,
	}
	for f, since := range introducedIn {
		if semver.Compare(resolved, since) >= 0 {
			s.features[f] = true
		}
	}
	if semver.Compare(resolved, statsKeyRenamedIn) >= 0 {
		s.statsKey = StatsGeneratedKey
		s.statsVal = StatsGeneratedValue
	}
	return s
}
