package gap

import (
	"sort"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/core/ingredient"
	"fridge-recommender/internal/core/match"
)

// Options 建議數量與門檻
type Options struct {
	MaxSuggestions       int
	MaxRecipeSuggestions int
	AlmostThreshold      float64
	MaxMissing           int
}

// DefaultOptions 5 項食材建議、2 道熱門料理、0.7 門檻、最多缺 3 項
func DefaultOptions() Options {
	return Options{MaxSuggestions: 5, MaxRecipeSuggestions: 2, AlmostThreshold: 0.7, MaxMissing: 3}
}

// RecipeSuggestion 差幾樣食材就能做的熱門料理
type RecipeSuggestion struct {
	Name               string   `json:"name"`
	Region             string   `json:"region"`
	MissingIngredients []string `json:"missing_ingredients"`
}

// Advice 缺料建議
type Advice struct {
	SuggestedIngredients []string           `json:"suggested_ingredients"`
	RecipeSuggestions    []RecipeSuggestion `json:"recipe_suggestions"`
}

// Advisor 計算補哪些食材最划算，以及哪些熱門料理接近可做。
// 只讀取輸入與語料庫，不修改任何狀態。
type Advisor struct {
	opts Options
}

// NewAdvisor 建立建議器
func NewAdvisor(opts Options) *Advisor {
	return &Advisor{opts: opts}
}

// Advise 先依飲食條件過濾，再計算建議
func (a *Advisor) Advise(input ingredient.Set, entries []*corpus.Entry, popular []corpus.PopularEntry, diet string) Advice {
	return Advice{
		SuggestedIngredients: a.SuggestIngredients(input, entries, diet),
		RecipeSuggestions:    a.SuggestRecipes(input, popular, diet),
	}
}

// SuggestIngredients 對「差一樣就能做」且覆蓋率達門檻的食譜，統計各缺少食材能解鎖幾道。
// 依解鎖數由多到少、同數依字母排序。
func (a *Advisor) SuggestIngredients(input ingredient.Set, entries []*corpus.Entry, diet string) []string {
	unlocks := make(map[string]int)
	for _, r := range match.Evaluate(input, entries, diet) {
		if len(r.MissingRequired) != 1 || r.RequiredHit < a.opts.AlmostThreshold {
			continue
		}
		unlocks[r.MissingRequired[0]]++
	}

	candidates := make([]string, 0, len(unlocks))
	for ing := range unlocks {
		if input.Has(ing) {
			continue
		}
		candidates = append(candidates, ing)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := unlocks[candidates[i]], unlocks[candidates[j]]
		if ci != cj {
			return ci > cj
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > a.opts.MaxSuggestions {
		candidates = candidates[:a.opts.MaxSuggestions]
	}
	return candidates
}

// SuggestRecipes 缺 1 到 MaxMissing 項食材的熱門料理，依缺少數量由少到多、再依名稱排序
func (a *Advisor) SuggestRecipes(input ingredient.Set, popular []corpus.PopularEntry, diet string) []RecipeSuggestion {
	type candidate struct {
		RecipeSuggestion
		missing int
	}

	var candidates []candidate
	for _, p := range popular {
		if !corpus.DietAllows(diet, p.Recipe.Diet) {
			continue
		}

		var missing []string
		for _, ing := range p.Ingredients.Items() {
			if !input.Has(ing) {
				missing = append(missing, ing)
			}
		}
		if len(missing) == 0 || len(missing) > a.opts.MaxMissing {
			continue
		}

		candidates = append(candidates, candidate{
			RecipeSuggestion: RecipeSuggestion{
				Name:               p.Recipe.Name,
				Region:             p.Recipe.Region,
				MissingIngredients: missing,
			},
			missing: len(missing),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].missing != candidates[j].missing {
			return candidates[i].missing < candidates[j].missing
		}
		return candidates[i].Name < candidates[j].Name
	})

	out := make([]RecipeSuggestion, 0, min(len(candidates), a.opts.MaxRecipeSuggestions))
	for i := 0; i < len(candidates) && i < a.opts.MaxRecipeSuggestions; i++ {
		out = append(out, candidates[i].RecipeSuggestion)
	}
	return out
}
