package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterWhitelist(t *testing.T) {
	cases := []struct {
		name     string
		rawQuery string
		wantKey  string
	}{
		{"unknown key alone", "color=red", "color"},
		{"unknown key after valid", "country=Kenya&color=red", "color"},
		{"first unknown key reported", "hacked=1&color=red", "hacked"},
		{"injection-style key", "$where=1", "$where"},
		{"valueless key", "dropdb", "dropdb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildFilter(tc.rawQuery)
			var unknown *UnknownFilterError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tc.wantKey, unknown.Key)
			assert.Equal(t, "Unknown filter parameter: "+tc.wantKey, err.Error())
		})
	}
}

func TestBuildFilterAcceptsWhitelistAndPagination(t *testing.T) {
	f, err := BuildFilter("country=Kenya&continent=Africa&name=Nairobi&established_year=1956&program=Law&page=2&limit=50")
	require.NoError(t, err)
	assert.Equal(t, Filter{
		Country:         "kenya",
		Continent:       "africa",
		Name:            "nairobi",
		EstablishedYear: "1956",
		Program:         "law",
	}, f)
}

func TestBuildFilterNormalization(t *testing.T) {
	f, err := BuildFilter("country=%20United%20Kingdom%20&name=OXFORD")
	require.NoError(t, err)
	assert.Equal(t, "united kingdom", f.Country)
	assert.Equal(t, "oxford", f.Name)
}

func TestBuildFilterEmptyQuery(t *testing.T) {
	f, err := BuildFilter("")
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

func TestBuildFilterEmptyValuesIgnored(t *testing.T) {
	f, err := BuildFilter("country=&name=")
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

func TestBuildFilterIdempotent(t *testing.T) {
	const raw = "country=Kenya&program=Engineering&page=1&limit=10"
	first, err := BuildFilter(raw)
	require.NoError(t, err)
	second, err := BuildFilter(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildFilterFailsBeforeNormalizing(t *testing.T) {
	// An unknown key anywhere poisons the whole query; no partial predicate.
	f, err := BuildFilter("country=Kenya&bogus=1&continent=Africa")
	require.Error(t, err)
	assert.True(t, f.IsZero())
}
