package generation

import (
	"context"
	"fmt"
	"strings"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/infrastructure/config"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dishStyle 依主要食材決定菜式與每份基礎熱量
type dishStyle struct {
	name     string
	calories float64
	matches  func(ing string) bool
}

var dishStyles = []dishStyle{
	{name: "Scramble", calories: 250, matches: func(ing string) bool { return strings.Contains(ing, "egg") }},
	{name: "Salad", calories: 150, matches: oneOf("lettuce", "cucumber", "spinach", "kale")},
	{name: "Bowl", calories: 400, matches: oneOf("rice", "pasta", "noodle", "noodles", "quinoa")},
	{name: "Sauté", calories: 350, matches: oneOf("chicken", "meat", "beef", "pork", "mutton", "fish", "shrimp")},
}

var meats = oneOf("chicken", "meat", "beef", "pork", "mutton", "fish", "shrimp", "prawn", "lamb")

// ProceduralGenerator 離線、可重現的備援生成器，不需要外部服務
type ProceduralGenerator struct{}

// NewProceduralGenerator 建立程序化生成器
func NewProceduralGenerator() *ProceduralGenerator {
	return &ProceduralGenerator{}
}

// Name 生成器名稱
func (g *ProceduralGenerator) Name() string {
	return config.ProviderProcedural
}

// Generate 以簡單規則組出一道快速料理
func (g *ProceduralGenerator) Generate(ctx context.Context, req Request) (*Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: no ingredients to cook with", ErrInvalidDraft)
	}

	style := dishStyle{name: "Stir Fry", calories: 300}
	for _, s := range dishStyles {
		if anyMatch(req.Ingredients, s.matches) {
			style = s
			break
		}
	}

	main := req.Ingredients[0]
	// Caser 帶狀態，不可跨 goroutine 共用
	name := fmt.Sprintf("Quick %s %s", cases.Title(language.English).String(main), style.name)

	servings := req.Servings
	if servings <= 0 {
		servings = 2
	}

	rest := "the remaining ingredients"
	if len(req.Ingredients) == 1 {
		rest = "a splash of water"
	}

	return &Draft{
		Name:                name,
		Cuisine:             orDefault(req.Cuisine, "Home Style"),
		Category:            "food",
		FitnessTags:         []string{"quick", "simple"},
		Diet:                proceduralDiet(req),
		Difficulty:          "Easy",
		TimeMinutes:         15,
		RequiredIngredients: append([]string(nil), req.Ingredients...),
		OptionalIngredients: []string{"pepper", "garlic", "lemon"},
		Cookware:            []string{"pan", "bowl"},
		Steps: []string{
			fmt.Sprintf("Prepare all ingredients: %s.", strings.Join(req.Ingredients, ", ")),
			"Heat a pan with some oil over medium heat.",
			fmt.Sprintf("Add %s and cook for 2-3 minutes.", main),
			fmt.Sprintf("Add %s and season with salt and pepper.", rest),
			"Cook for another 5-7 minutes until done.",
			"Serve hot.",
		},
		CommonMistakes: []string{
			"Overcrowding the pan",
			"Not tasting for seasoning before serving",
		},
		Nutrition: &corpus.Nutrition{
			Calories: style.calories,
			ProteinG: 15,
			CarbsG:   20,
			FatsG:    10,
		},
		Servings:      float64(servings),
		ServingSizeG:  float64(req.ServingSizeG),
		CookingImpact: "A quick and easy meal using what you have.",
	}, nil
}

// proceduralDiet 指定飲食優先，否則依食材推斷
func proceduralDiet(req Request) string {
	if d := corpus.NormalizeDiet(req.Diet); d != "" {
		return d
	}
	switch {
	case anyMatch(req.Ingredients, meats):
		return corpus.DietNonVeg
	case anyMatch(req.Ingredients, dishStyles[0].matches):
		return corpus.DietEgg
	default:
		return corpus.DietVeg
	}
}

func oneOf(names ...string) func(string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(ing string) bool {
		_, ok := set[strings.ToLower(ing)]
		return ok
	}
}

func anyMatch(ingredients []string, match func(string) bool) bool {
	for _, ing := range ingredients {
		if match(strings.ToLower(ing)) {
			return true
		}
	}
	return false
}
