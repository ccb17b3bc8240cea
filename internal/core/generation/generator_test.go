package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fridge-recommender/internal/core/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	draft *Draft
	err   error
	block bool
	calls int
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(ctx context.Context, _ Request) (*Draft, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.draft, s.err
}

func validDraft() *Draft {
	return &Draft{
		Name:                "Tangy Beetroot Stir Fry",
		Diet:                "Vegetarian",
		TimeMinutes:         18.0,
		RequiredIngredients: []string{"beetroot", " ", "lemon"},
		Steps:               []string{"Grate the beetroot.", "Stir fry with lemon."},
		Nutrition:           &corpus.Nutrition{Calories: 180, ProteinG: 4, CarbsG: 25, FatsG: 7},
		Servings:            2,
	}
}

func TestAdapterGenerate(t *testing.T) {
	gen := &stubGenerator{draft: validDraft()}
	a := NewAdapter(gen, time.Second)

	recipe, err := a.Generate(context.Background(), Request{Ingredients: []string{"beetroot", "lemon"}, ServingSizeG: 300})
	require.NoError(t, err)
	require.NotNil(t, recipe)

	assert.Equal(t, 1, gen.calls)
	assert.True(t, strings.HasPrefix(recipe.ID, "ai-tangy-beetroot-stir-fry-"), recipe.ID)
	assert.True(t, IsGeneratedID(recipe.ID))
	assert.Equal(t, "Tangy Beetroot Stir Fry", recipe.Name)
	assert.Equal(t, []string{"beetroot", "lemon"}, recipe.RequiredIngredients)
	assert.Equal(t, 300, recipe.ServingSizeG, "serving size falls back to the request")
	assert.Equal(t, 2, recipe.Servings)
	assert.Equal(t, 18, recipe.TimeMinutes)
	assert.Equal(t, corpus.DietVeg, recipe.Diet)
	assert.Equal(t, "Home Style", recipe.Cuisine)
}

func TestAdapterClampsBaseServings(t *testing.T) {
	d := validDraft()
	d.Servings = 500
	d.ServingSizeG = 4000

	recipe, err := NewAdapter(&stubGenerator{draft: d}, time.Second).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 20, recipe.Servings)
	assert.Equal(t, 1000, recipe.ServingSizeG)

	a := NewAdapter(&stubGenerator{draft: validDraft()}, time.Second)
	a.SetBounds(corpus.Bounds{MinServings: 4, MaxServings: 8, MinServingSize: 100, MaxServingSize: 200})
	recipe, err = a.Generate(context.Background(), Request{ServingSizeG: 300})
	require.NoError(t, err)
	assert.Equal(t, 4, recipe.Servings)
	assert.Equal(t, 200, recipe.ServingSizeG)
}

func TestAdapterChecksDiet(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		drafted   string
		wantErr   bool
		wantDiet  string
	}{
		{"meat for a vegetarian", "veg", "non-veg", true, ""},
		{"egg for a vegetarian", "Vegetarian", "egg", true, ""},
		{"veg for an egg eater", "egg", "veg", false, corpus.DietVeg},
		{"untagged draft takes the request", "egg", "", false, corpus.DietEgg},
		{"any request", "any", "non-veg", false, corpus.DietNonVeg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			d.Diet = tt.drafted

			recipe, err := NewAdapter(&stubGenerator{draft: d}, time.Second).Generate(context.Background(), Request{Diet: tt.requested})
			if tt.wantErr {
				var genErr *GenerationError
				require.ErrorAs(t, err, &genErr)
				assert.Equal(t, ReasonInvalidResponse, genErr.Reason)
				assert.Nil(t, recipe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiet, recipe.Diet)
		})
	}
}

func TestAdapterUsesCuisineHint(t *testing.T) {
	recipe, err := NewAdapter(&stubGenerator{draft: validDraft()}, time.Second).
		Generate(context.Background(), Request{Cuisine: "Japanese"})
	require.NoError(t, err)
	assert.Equal(t, "Japanese", recipe.Cuisine)

	d := validDraft()
	d.Cuisine = "Korean"
	recipe, err = NewAdapter(&stubGenerator{draft: d}, time.Second).
		Generate(context.Background(), Request{Cuisine: "Japanese"})
	require.NoError(t, err)
	assert.Equal(t, "Korean", recipe.Cuisine, "the generator's own cuisine wins")
}

func TestAdapterIDsAreUnique(t *testing.T) {
	a := NewAdapter(&stubGenerator{draft: validDraft()}, time.Second)

	first, err := a.Generate(context.Background(), Request{})
	require.NoError(t, err)
	second, err := a.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAdapterRejectsIncompleteDraft(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Draft)
		missing string
	}{
		{"no name", func(d *Draft) { d.Name = " " }, "name"},
		{"no ingredients", func(d *Draft) { d.RequiredIngredients = nil }, "required_ingredients"},
		{"blank steps", func(d *Draft) { d.Steps = []string{"", "  "} }, "steps"},
		{"no nutrition", func(d *Draft) { d.Nutrition = nil }, "nutrition"},
		{"zero servings", func(d *Draft) { d.Servings = 0 }, "servings"},
		{"negative nutrition", func(d *Draft) { d.Nutrition.FatsG = -2 }, "negative nutrition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(d)

			recipe, err := NewAdapter(&stubGenerator{draft: d}, time.Second).Generate(context.Background(), Request{})
			assert.Nil(t, recipe)

			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, ReasonInvalidResponse, genErr.Reason)
			assert.ErrorIs(t, err, ErrInvalidDraft)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestAdapterNilDraft(t *testing.T) {
	_, err := NewAdapter(&stubGenerator{}, time.Second).Generate(context.Background(), Request{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ReasonInvalidResponse, genErr.Reason)
}

func TestAdapterTimeout(t *testing.T) {
	gen := &stubGenerator{block: true}
	a := NewAdapter(gen, 20*time.Millisecond)

	start := time.Now()
	recipe, err := a.Generate(context.Background(), Request{})
	assert.Nil(t, recipe)
	assert.Less(t, time.Since(start), time.Second)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ReasonTimeout, genErr.Reason)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, gen.calls, "single attempt, no retries")
}

func TestAdapterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAdapter(&stubGenerator{block: true}, time.Second).Generate(ctx, Request{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ReasonCanceled, genErr.Reason)
}

func TestAdapterGeneratorError(t *testing.T) {
	cause := errors.New("upstream 502")
	_, err := NewAdapter(&stubGenerator{err: cause}, time.Second).Generate(context.Background(), Request{})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ReasonGeneratorError, genErr.Reason)
	assert.ErrorIs(t, err, cause)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "quick-egg-scramble", Slugify("Quick Egg Scramble"))
	assert.Equal(t, "saut-bowl", Slugify("  Sauté!! Bowl "))
	assert.Equal(t, "", Slugify("***"))
}

func TestProceduralGenerator(t *testing.T) {
	g := NewProceduralGenerator()

	tests := []struct {
		ingredients []string
		wantName    string
		wantDiet    string
		calories    float64
	}{
		{[]string{"egg", "spinach"}, "Quick Egg Scramble", corpus.DietEgg, 250},
		{[]string{"cucumber", "tomato"}, "Quick Cucumber Salad", corpus.DietVeg, 150},
		{[]string{"tofu", "rice"}, "Quick Tofu Bowl", corpus.DietVeg, 400},
		{[]string{"beef", "onion"}, "Quick Beef Sauté", corpus.DietNonVeg, 350},
		{[]string{"green beans"}, "Quick Green Beans Stir Fry", corpus.DietVeg, 300},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			d, err := g.Generate(context.Background(), Request{Ingredients: tt.ingredients, Servings: 3, ServingSizeG: 250})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, d.Name)
			assert.Equal(t, tt.wantDiet, d.Diet)
			assert.Equal(t, tt.calories, d.Nutrition.Calories)
			assert.Equal(t, 3.0, d.Servings)
			assert.Equal(t, tt.ingredients, d.RequiredIngredients)

			again, err := g.Generate(context.Background(), Request{Ingredients: tt.ingredients, Servings: 3, ServingSizeG: 250})
			require.NoError(t, err)
			assert.Equal(t, d, again, "deterministic")
		})
	}
}

func TestProceduralGeneratorThroughAdapter(t *testing.T) {
	a := NewAdapter(NewProceduralGenerator(), time.Second)

	recipe, err := a.Generate(context.Background(), Request{Ingredients: []string{"beetroot"}, Diet: "veg"})
	require.NoError(t, err)
	assert.Equal(t, "Quick Beetroot Stir Fry", recipe.Name)
	assert.Equal(t, 2, recipe.Servings)
	assert.Equal(t, 200, recipe.ServingSizeG)
	assert.Equal(t, corpus.DietVeg, recipe.Diet)
	assert.Equal(t, "procedural", a.Provider())

	_, err = a.Generate(context.Background(), Request{})
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ReasonInvalidResponse, genErr.Reason)
}
