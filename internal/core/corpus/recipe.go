package corpus

import (
	"errors"
	"strings"

	"fridge-recommender/internal/core/ingredient"
)

// ErrRecipeNotFound 語料庫中沒有此 id
var ErrRecipeNotFound = errors.New("recipe not found")

// Nutrition 每份營養素
type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

// Recipe 食譜紀錄，載入後不可修改
type Recipe struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Cuisine             string             `json:"cuisine"`
	Category            string             `json:"category,omitempty"`
	FitnessTags         []string           `json:"fitness_tags,omitempty"`
	Diet                string             `json:"diet"`
	Difficulty          string             `json:"difficulty"`
	TimeMinutes         int                `json:"time_minutes"`
	RequiredIngredients []string           `json:"required_ingredients"`
	OptionalIngredients []string           `json:"optional_ingredients"`
	IngredientGrams     map[string]float64 `json:"ingredient_grams,omitempty"`
	Servings            int                `json:"servings"`
	ServingSizeG        int                `json:"serving_size_g"`
	Nutrition           Nutrition          `json:"nutrition"`
	Cookware            []string           `json:"cookware"`
	Steps               []string           `json:"steps"`
	CommonMistakes      []string           `json:"common_mistakes"`
	CookingImpact       string             `json:"cooking_impact,omitempty"`
}

// PopularRecipe 「熱門世界料理」參考清單中的項目
type PopularRecipe struct {
	Name        string   `json:"name"`
	Region      string   `json:"region"`
	Diet        string   `json:"diet,omitempty"`
	Ingredients []string `json:"ingredients"`
}

// Entry 已索引的食譜：原始紀錄加上正規化後的食材集合（不含基本調味）
type Entry struct {
	Recipe   *Recipe
	Required ingredient.Set
	Optional ingredient.Set
}

// PopularEntry 已正規化的熱門料理
type PopularEntry struct {
	Recipe      PopularRecipe
	Ingredients ingredient.Set
}

// 飲食分類，由寬到嚴：non-veg 包含 egg，egg 包含 veg
const (
	DietVeg    = "veg"
	DietEgg    = "egg"
	DietNonVeg = "non-veg"
)

var dietRank = map[string]int{
	DietVeg:    0,
	DietEgg:    1,
	DietNonVeg: 2,
}

var dietAliases = map[string]string{
	"vegetarian":     DietVeg,
	"veggie":         DietVeg,
	"eggetarian":     DietEgg,
	"non veg":        DietNonVeg,
	"nonveg":         DietNonVeg,
	"non_veg":        DietNonVeg,
	"non-vegetarian": DietNonVeg,
	"any":            "",
	"all":            "",
}

// NormalizeDiet 轉小寫並統一常見寫法
func NormalizeDiet(diet string) string {
	d := strings.ToLower(strings.TrimSpace(diet))
	if canonical, ok := dietAliases[d]; ok {
		return canonical
	}
	return d
}

// DietAllows 判斷要求的飲食是否接受該食譜的飲食標籤。
// 未指定要求或食譜未標記時一律接受；已知分類依包含關係，其餘需完全相同。
func DietAllows(requested, recipeDiet string) bool {
	req := NormalizeDiet(requested)
	have := NormalizeDiet(recipeDiet)
	if req == "" || have == "" {
		return true
	}

	reqRank, reqKnown := dietRank[req]
	haveRank, haveKnown := dietRank[have]
	if reqKnown && haveKnown {
		return haveRank <= reqRank
	}
	return req == have
}
