package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	aliases := map[string][]string{
		"green onion": {"scallion", "spring onion"},
		"egg":         {"anda"},
		"tomato":      {"tamatar"},
		"chicken":     {"murgh"},
		"oil":         {"cooking oil", "vegetable oil"},
	}
	vocabulary := []string{"onion", "rice", "berry", "paneer", "potatoes", "spinach"}
	return NewNormalizer(aliases, vocabulary, DefaultStaples)
}

func TestCanonical(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact canonical", "onion", "onion"},
		{"casing and whitespace", "  ONION  ", "onion"},
		{"alias", "Scallion", "green onion"},
		{"multi word alias", "spring   onion", "green onion"},
		{"plural s", "eggs", "egg"},
		{"plural es", "tomatoes", "tomato"},
		{"plural ies", "berries", "berry"},
		{"singular of plural canonical", "potato", "potatoes"},
		{"typo", "chiken", "chicken"},
		{"typo in vocabulary word", "spinnach", "spinach"},
		{"quantity prefix", "2 eggs", "egg"},
		{"grams prefix", "200g paneer", "paneer"},
		{"bullet", "- rice", "rice"},
		{"cup fraction", "1/2 cup rice", "rice"},
		{"cups of", "3 cups of rice", "rice"},
		{"tablespoon", "2 tbsp oil", "oil"},
		{"teaspoon spelled out", "1 teaspoon vegetable oil", "oil"},
		{"multiplier", "2 x 3 eggs", "egg"},
		{"numbers only", "2 x 3", ""},
		{"unknown kept", "Dragonfruit", "dragonfruit"},
		{"short token not fuzzed", "fig", "fig"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Canonical(tt.raw))
		})
	}
}

func TestCanonicalIsIdempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"eggs", "Scallion", "tomatoes", "chiken", "dragonfruit", "- 2 eggs",
		"2 - 3 eggs", "berries", "potato", "salt", "oil", "Cooking Oil",
	}
	for _, in := range inputs {
		once := n.Canonical(in)
		assert.Equal(t, once, n.Canonical(once), "input %q", in)
	}
}

func TestStaplesAreNotFuzzyTargets(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, "salt", n.Canonical("Salt"))
	assert.Equal(t, "salty", n.Canonical("salty"))
	assert.Equal(t, "watery", n.Canonical("watery"))

	set, err := n.Parse("salty, salt")
	require.NoError(t, err)
	assert.Equal(t, []string{"salty"}, set.Items())
}

func TestParse(t *testing.T) {
	n := newTestNormalizer()

	set, err := n.Parse("eggs, onion, tomato, oil, salt")
	require.NoError(t, err)
	assert.Equal(t, []string{"egg", "onion", "tomato", "oil"}, set.Items())
	assert.False(t, set.Has("salt"), "staples are dropped from the set")

	set, err = n.Parse("Tomatoes;scallion\nTOMATO\n\n, anda")
	require.NoError(t, err)
	assert.Equal(t, []string{"tomato", "green onion", "egg"}, set.Items())
}

func TestParseEmptyInput(t *testing.T) {
	n := newTestNormalizer()

	for _, raw := range []string{"", "   ", "\n\n", ", ,;", "salt, water", "Salt"} {
		_, err := n.Parse(raw)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", raw)
	}
}

func TestParseSameSetForEquivalentInput(t *testing.T) {
	n := newTestNormalizer()

	a, err := n.Parse("eggs, onions, tomatoes")
	require.NoError(t, err)
	b, err := n.Parse("Tomato\nonion\negg, egg")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Sorted(), b.Sorted())
}

func TestStaples(t *testing.T) {
	n := newTestNormalizer()

	assert.True(t, n.IsStaple("salt"))
	assert.True(t, n.IsStaple("water"))
	assert.False(t, n.IsStaple("oil"))
	assert.Equal(t, []string{"salt", "water"}, n.Staples())
}

func TestCanonicalAll(t *testing.T) {
	n := newTestNormalizer()

	set := n.CanonicalAll([]string{"Eggs", "egg", "spring onion", ""})
	assert.Equal(t, []string{"egg", "green onion"}, set.Items())
}

func TestSet(t *testing.T) {
	s := NewSet("b", "a", "b", "")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, s.Items())
	assert.Equal(t, []string{"a", "b"}, s.Sorted())

	items := s.Items()
	items[0] = "mutated"
	assert.True(t, s.Has("b"), "Items returns a copy")

	var empty Set
	assert.False(t, empty.Has("a"))
	assert.Equal(t, 0, empty.Len())
}
