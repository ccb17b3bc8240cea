package recommend

import (
	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/core/gap"
	"fridge-recommender/internal/core/scale"
)

// Request 冰箱比對請求
type Request struct {
	Ingredients string `json:"ingredients"`
	Diet        string `json:"diet"`
	Cuisine     string `json:"cuisine"`
	Servings    int    `json:"servings" binding:"omitempty,min=0"`
	ServingSize int    `json:"serving_size" binding:"omitempty,min=0"`
}

// RecipeCard 列表用的食譜摘要，營養與食材份量已依請求縮放
type RecipeCard struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Cuisine             string           `json:"cuisine"`
	Difficulty          string           `json:"difficulty"`
	Diet                string           `json:"diet"`
	TimeMinutes         int              `json:"time_minutes"`
	RequiredIngredients []string         `json:"required_ingredients"`
	OptionalIngredients []string         `json:"optional_ingredients"`
	Nutrition           corpus.Nutrition `json:"nutrition"`
	Servings            int              `json:"servings"`
	ServingSizeG        int              `json:"serving_size_g"`
	Score               float64          `json:"score,omitempty"`
}

// Response 冰箱比對回應
type Response struct {
	NormalizedIngredients []string               `json:"normalized_ingredients"`
	Recipes               []RecipeCard           `json:"recipes"`
	Message               string                 `json:"message"`
	AIGenerated           bool                   `json:"ai_generated"`
	SuggestedIngredients  []string               `json:"suggested_ingredients,omitempty"`
	RecipeSuggestions     []gap.RecipeSuggestion `json:"recipe_suggestions,omitempty"`
	CorpusVersion         string                 `json:"corpus_version"`
}

// RecipeDetail 完整食譜（步驟、廚具、常見錯誤）
type RecipeDetail struct {
	corpus.Recipe
	AIGenerated   bool    `json:"ai_generated"`
	Scaled        bool    `json:"scaled"`
	Ratio         float64 `json:"ratio"`
	CorpusVersion string  `json:"corpus_version,omitempty"`
}

// FitnessList 健身目標食譜
type FitnessList struct {
	Goal    string       `json:"goal"`
	Tip     string       `json:"tip"`
	Recipes []RecipeCard `json:"recipes"`
}

// DailyPick 每日推薦
type DailyPick struct {
	Date   string     `json:"date"`
	Recipe RecipeCard `json:"recipe"`
	Reason string     `json:"reason"`
}

func newCard(r *corpus.Recipe, s scale.Scaled, score float64) RecipeCard {
	return RecipeCard{
		ID:                  r.ID,
		Name:                r.Name,
		Cuisine:             r.Cuisine,
		Difficulty:          r.Difficulty,
		Diet:                r.Diet,
		TimeMinutes:         r.TimeMinutes,
		RequiredIngredients: s.RequiredIngredients,
		OptionalIngredients: s.OptionalIngredients,
		Nutrition:           s.Nutrition,
		Servings:            s.Servings,
		ServingSizeG:        s.ServingSizeG,
		Score:               score,
	}
}
