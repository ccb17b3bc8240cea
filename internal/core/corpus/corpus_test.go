package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `{
  "ingredient_aliases": {"egg": ["eggs"], "green onion": ["scallion"]},
  "pantry_staples": ["salt", "water"],
  "recipes": [
    {"id": "b-omelette", "name": "Omelette", "cuisine": "French", "diet": "egg", "difficulty": "Easy",
     "fitness_tags": ["high_protein"], "time_minutes": 10, "required_ingredients": ["eggs", "salt"], "optional_ingredients": ["scallion"],
     "servings": 1, "serving_size_g": 120, "nutrition": {"calories": 180, "protein_g": 12, "carbs_g": 1, "fats_g": 14},
     "cookware": ["pan"], "steps": ["Whisk", "Cook"], "common_mistakes": []},
    {"id": "a-salad", "name": "Salad", "cuisine": "French", "diet": "veg", "difficulty": "Easy",
     "fitness_tags": ["Low_Calorie", "fat_loss"], "time_minutes": 5, "required_ingredients": ["lettuce", "tomatoes"], "optional_ingredients": [],
     "servings": 2, "serving_size_g": 150, "nutrition": {"calories": 60, "protein_g": 2, "carbs_g": 8, "fats_g": 2},
     "cookware": ["bowl"], "steps": ["Toss"], "common_mistakes": []},
    {"id": "c-curry", "name": "Curry", "cuisine": "Indian", "diet": "non-veg", "difficulty": "Hard",
     "fitness_tags": ["muscle_gain", "high_protein"], "time_minutes": 60, "required_ingredients": ["chicken", "onion", "tomato"], "optional_ingredients": ["yogurt"],
     "ingredient_grams": {"chicken": 400},
     "servings": 4, "serving_size_g": 250, "nutrition": {"calories": 350, "protein_g": 30, "carbs_g": 10, "fats_g": 20},
     "cookware": ["pot"], "steps": ["Cook"], "common_mistakes": []}
  ],
  "popular_recipes": [
    {"name": "Shakshuka", "region": "Middle East", "diet": "egg", "ingredients": ["eggs", "tomato", "onion"]}
  ]
}`

func TestParse(t *testing.T) {
	snap, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Len())
	assert.Len(t, snap.Version, 12)

	ids := make([]string, 0, snap.Len())
	for _, e := range snap.Entries() {
		ids = append(ids, e.Recipe.ID)
	}
	assert.Equal(t, []string{"a-salad", "b-omelette", "c-curry"}, ids, "entries sorted by id")

	omelette, ok := snap.Get("b-omelette")
	require.True(t, ok)
	assert.Equal(t, []string{"egg"}, omelette.Required.Items(), "staples dropped, aliases resolved")
	assert.Equal(t, []string{"green onion"}, omelette.Optional.Items())
	assert.Equal(t, []string{"eggs", "salt"}, omelette.Recipe.RequiredIngredients, "display list untouched")

	salad, ok := snap.Get("a-salad")
	require.True(t, ok)
	assert.True(t, salad.Required.Has("tomato"), "corpus plural shares vocabulary with singular")

	require.Len(t, snap.Popular(), 1)
	assert.Equal(t, []string{"egg", "tomato", "onion"}, snap.Popular()[0].Ingredients.Items())

	_, err = snap.Recipe("missing")
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestParseVersionTracksContent(t *testing.T) {
	a, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)
	b, err := Parse([]byte(sampleCorpus+"\n"), DefaultBounds())
	require.NoError(t, err)
	c, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)

	assert.NotEqual(t, a.Version, b.Version)
	assert.Equal(t, a.Version, c.Version)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{"duplicate id", func(s string) string { return strings.Replace(s, `"a-salad"`, `"b-omelette"`, 1) }, "duplicate id"},
		{"missing name", func(s string) string { return strings.Replace(s, `"name": "Salad"`, `"name": ""`, 1) }, "name is required"},
		{"servings out of range", func(s string) string { return strings.Replace(s, `"servings": 4`, `"servings": 40`, 1) }, "servings 40"},
		{"serving size out of range", func(s string) string {
			return strings.Replace(s, `"serving_size_g": 150`, `"serving_size_g": 10`, 1)
		}, "serving_size_g 10"},
		{"negative nutrition", func(s string) string { return strings.Replace(s, `"calories": 60`, `"calories": -1`, 1) }, "nutrition"},
		{"grams for unknown ingredient", func(s string) string {
			return strings.Replace(s, `{"chicken": 400}`, `{"beef": 400}`, 1)
		}, "not a listed ingredient"},
		{"only staples required", func(s string) string {
			return strings.Replace(s, `["lettuce", "tomatoes"]`, `["salt", "water"]`, 1)
		}, "pantry staples"},
		{"unknown field", func(s string) string { return strings.Replace(s, `"region"`, `"country"`, 1) }, "unknown field"},
		{"trailing data", func(s string) string { return s + ` {}` }, "extra JSON data"},
		{"empty corpus", func(string) string { return `{"recipes": []}` }, "no recipes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(sampleCorpus)), DefaultBounds())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDietAllows(t *testing.T) {
	tests := []struct {
		requested, recipe string
		want              bool
	}{
		{"", "non-veg", true},
		{"veg", "", true},
		{"veg", "veg", true},
		{"veg", "egg", false},
		{"veg", "non-veg", false},
		{"egg", "veg", true},
		{"egg", "egg", true},
		{"egg", "non-veg", false},
		{"non-veg", "veg", true},
		{"Non-Veg", "egg", true},
		{"vegetarian", "veg", true},
		{"vegan", "vegan", true},
		{"vegan", "veg", false},
		{"keto", "non-veg", false},
	}

	for _, tt := range tests {
		t.Run(tt.requested+"/"+tt.recipe, func(t *testing.T) {
			assert.Equal(t, tt.want, DietAllows(tt.requested, tt.recipe))
		})
	}
}

func TestCatalog(t *testing.T) {
	snap, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)

	french := snap.ByCuisine("FRENCH", "")
	require.Len(t, french, 2)
	assert.Equal(t, "a-salad", french[0].ID)

	vegFrench := snap.ByCuisine("french", "veg")
	require.Len(t, vegFrench, 1)
	assert.Equal(t, "a-salad", vegFrench[0].ID)

	assert.Empty(t, snap.ByCuisine("Thai", ""))
	assert.Equal(t, []string{"French", "Indian"}, snap.Cuisines())
}

func recipeIDs(recipes []*Recipe) []string {
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestByFitnessGoal(t *testing.T) {
	snap, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)

	tests := []struct {
		goal string
		diet string
		want []string
	}{
		{"fat_loss", "", []string{"a-salad", "b-omelette", "c-curry"}},
		{"muscle-gain", "", []string{"b-omelette", "c-curry"}},
		{"fat_loss", "veg", []string{"a-salad"}},
		{"muscle_gain", "egg", []string{"b-omelette"}},
		{"", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.goal+"/"+tt.diet, func(t *testing.T) {
			got, err := snap.ByFitnessGoal(tt.goal, tt.diet)
			require.NoError(t, err)
			assert.Equal(t, tt.want, recipeIDs(got))
		})
	}

	_, err = snap.ByFitnessGoal("bulking", "")
	assert.ErrorIs(t, err, ErrUnknownGoal)

	goal, err := NormalizeGoal(" Fat-Loss ")
	require.NoError(t, err)
	assert.Equal(t, GoalFatLoss, goal)
	assert.NotEmpty(t, GoalTip(goal))
}

func TestRecipeOfTheDay(t *testing.T) {
	snap, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)

	// 只有 a-salad 與 b-omelette 符合快速且簡單
	day1 := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	r, reason := snap.RecipeOfTheDay(day1)
	require.NotNil(t, r)
	assert.Equal(t, "b-omelette", r.ID)
	assert.True(t, strings.HasPrefix(reason, "Today's pick: "))
	assert.Contains(t, reason, "quick to make")

	r2, _ := snap.RecipeOfTheDay(day1.AddDate(0, 0, 1))
	assert.Equal(t, "a-salad", r2.ID)

	again, _ := snap.RecipeOfTheDay(day1)
	assert.Equal(t, r.ID, again.ID, "same day, same pick")
}

func writeCorpus(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	writeCorpus(t, path, sampleCorpus)

	store := NewStore(path, DefaultBounds())
	assert.False(t, store.Ready())

	var reloads, failures atomic.Int32
	store.OnReload(func(_ *Snapshot, err error) {
		if err != nil {
			failures.Add(1)
			return
		}
		reloads.Add(1)
	})

	require.NoError(t, store.Load())
	first := store.Snapshot()
	require.NotNil(t, first)
	assert.Equal(t, path, first.Source)

	// 壞檔案不影響目前版本
	writeCorpus(t, path, `{"recipes": [`)
	require.Error(t, store.Reload())
	assert.Same(t, first, store.Snapshot())

	updated := strings.Replace(sampleCorpus, `"name": "Salad"`, `"name": "Garden Salad"`, 1)
	writeCorpus(t, path, updated)
	require.NoError(t, store.Reload())

	second := store.Snapshot()
	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.Version, second.Version)

	r, err := second.Recipe("a-salad")
	require.NoError(t, err)
	assert.Equal(t, "Garden Salad", r.Name)

	old, err := first.Recipe("a-salad")
	require.NoError(t, err)
	assert.Equal(t, "Salad", old.Name, "previous snapshot is never mutated")

	assert.EqualValues(t, 2, reloads.Load())
	assert.EqualValues(t, 1, failures.Load())
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"), DefaultBounds())
	require.Error(t, store.Load())
	assert.False(t, store.Ready())
	assert.Nil(t, store.Snapshot())
}

func TestStaticStore(t *testing.T) {
	snap, err := Parse([]byte(sampleCorpus), DefaultBounds())
	require.NoError(t, err)

	store := NewStaticStore(snap)
	assert.True(t, store.Ready())
	assert.Same(t, snap, store.Snapshot())
	assert.Error(t, store.Reload())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	writeCorpus(t, path, sampleCorpus)

	store := NewStore(path, DefaultBounds())
	require.NoError(t, store.Load())
	first := store.Snapshot()

	w, err := NewWatcher(store, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	updated := strings.Replace(sampleCorpus, `"name": "Curry"`, `"name": "Chicken Curry"`, 1)
	writeCorpus(t, path, updated)

	require.Eventually(t, func() bool {
		return store.Snapshot().Version != first.Version
	}, 3*time.Second, 20*time.Millisecond)

	r, err := store.Snapshot().Recipe("c-curry")
	require.NoError(t, err)
	assert.Equal(t, "Chicken Curry", r.Name)
}

func TestSeedCorpusLoads(t *testing.T) {
	snap, err := LoadFile(filepath.Join("..", "..", "..", "data", "recipes.json"), DefaultBounds())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.Len(), 10)
	assert.NotEmpty(t, snap.Popular())

	bhurji, ok := snap.Get("egg-bhurji")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"egg", "onion", "tomato", "oil"}, bhurji.Required.Items())
}
