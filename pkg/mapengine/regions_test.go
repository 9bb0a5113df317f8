package mapengine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(cs []Country) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestEuropeCountriesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range EuropeCountries {
		assert.False(t, seen[n], "duplicate %q", n)
		seen[n] = true
	}
	assert.Len(t, EuropeCountries, 30)
	assert.NotContains(t, EuropeCountries, IndiaName)
}

func TestFilterByNames(t *testing.T) {
	all := fixtureCountries(t)

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"europe list", EuropeCountries, []string{"Germany", "France"}},
		{"dataset order kept", []string{"France", "Germany"}, []string{"Germany", "France"}},
		{"missing names skipped", []string{"Atlantis", "Germany"}, []string{"Germany"}},
		{"case sensitive", []string{"germany"}, []string{}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterByNames(all, tt.names)))
		})
	}
}

func TestFilterByNamesOrderIndependent(t *testing.T) {
	all := fixtureCountries(t)
	want := names(FilterByNames(all, EuropeCountries))

	shuffled := append([]string(nil), EuropeCountries...)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, names(FilterByNames(all, shuffled)))
	}
}

func TestFilterByName(t *testing.T) {
	all := fixtureCountries(t)
	assert.Equal(t, []string{"India"}, names(FilterByName(all, IndiaName)))
	assert.Empty(t, FilterByName(all, "india"))
}

func TestSelectRegions(t *testing.T) {
	all := fixtureCountries(t)

	desktop := SelectRegions(all, DesktopStyle())
	assert.Equal(t, []string{"Germany", "France", "India", "Narnia"}, names(desktop.World))
	assert.Equal(t, []string{"Germany", "France"}, names(desktop.Europe))
	assert.Equal(t, []string{"India"}, names(desktop.India))

	mobile := SelectRegions(all, MobileStyle())
	require.Len(t, mobile.World, len(all))
	assert.Equal(t, names(desktop.Europe), names(mobile.Europe))
	assert.Equal(t, names(desktop.India), names(mobile.India))
}
