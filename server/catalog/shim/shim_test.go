package shim

import (
	"sync"
	"testing"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFeatures(t *testing.T) {
	tests := []struct {
		version  string
		resolved string
		features []Feature
		statsKey string
	}{
		{"1.0.0", "1.0.0", nil, StatsGeneratedLegacyKey},
		{"1.1.1", "1.1.1", nil, StatsGeneratedLegacyKey},
		{"1.2.0", "1.2.0", []Feature{DateColumnStatistics}, StatsGeneratedLegacyKey},
		{"2.0.0", "2.0.0", []Feature{DateColumnStatistics}, StatsGeneratedKey},
		{"2.2.0", "2.2.0", []Feature{DateColumnStatistics, ViewListing}, StatsGeneratedKey},
		{"2.3.6", "2.3.6", []Feature{DateColumnStatistics, ViewListing}, StatsGeneratedKey},
		{"3.1.0", "3.1.0", []Feature{DateColumnStatistics, TableConstraints, ViewListing}, StatsGeneratedKey},
		{"3.1.2", "3.1.2", []Feature{DateColumnStatistics, TableConstraints, ViewListing}, StatsGeneratedKey},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			s, err := Resolve(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, s.Version())
			assert.Equal(t, tt.version, s.ReportedVersion())
			assert.Equal(t, tt.features, s.Features())
			assert.Equal(t, tt.statsKey, s.StatsGeneratedKey())
			if tt.statsKey == StatsGeneratedKey {
				assert.Equal(t, StatsGeneratedValue, s.StatsGeneratedValue())
			} else {
				assert.Equal(t, StatsGeneratedLegacyValue, s.StatsGeneratedValue())
			}
			for _, f := range AllFeatures {
				assert.Equal(t, contains(tt.features, f), s.Supports(f), f.String())
			}
		})
	}
}

func TestResolveBetweenKnownVersions(t *testing.T) {
	t.Run("patch between releases", func(t *testing.T) {
		s, err := Resolve("2.3.9")
		require.NoError(t, err)
		assert.Equal(t, "2.3.6", s.Version())
	})

	t.Run("newer than newest", func(t *testing.T) {
		s, err := Resolve("4.0.0")
		require.NoError(t, err)
		assert.Equal(t, "3.1.3", s.Version())
		assert.True(t, s.Supports(TableConstraints))
	})

	t.Run("older than oldest", func(t *testing.T) {
		s, err := Resolve("0.13.1")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", s.Version())
		assert.Empty(t, s.Features())
	})

	t.Run("vendor suffix", func(t *testing.T) {
		s, err := Resolve("2.1.1-cdh6.3.2")
		require.NoError(t, err)
		assert.Equal(t, "2.1.1", s.Version())
		assert.False(t, s.Supports(ViewListing))
	})

	t.Run("prefix and short form", func(t *testing.T) {
		s, err := Resolve("v3.1")
		require.NoError(t, err)
		assert.Equal(t, "3.1.0", s.Version())
	})
}

func TestResolveUnparsable(t *testing.T) {
	for _, version := range []string{"", "unknown", "hive-3"} {
		t.Run(version, func(t *testing.T) {
			s, err := Resolve(version)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.HasCode(err, shared.CatalogVersionDetection))
		})
	}
}

func TestResolveIsCached(t *testing.T) {
	first, err := Resolve("2.3.4")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Shim, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Resolve("2.3.4")
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, first, s)
	}
}

func TestKnownVersionsSorted(t *testing.T) {
	versions := KnownVersions()
	require.NotEmpty(t, versions)
	assert.Equal(t, "1.0.0", versions[0])
	assert.Equal(t, "3.1.3", versions[len(versions)-1])
	for i := 1; i < len(knownVersions); i++ {
		assert.Equal(t, knownVersions[i-1], nearestKnown(knownVersions[i-1]))
	}
}

func contains(features []Feature, f Feature) bool {
	for _, x := range features {
		if x == f {
			return true
		}
	}
	return false
}
