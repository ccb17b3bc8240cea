package match

import (
	"sort"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/core/ingredient"
)

// 分數權重：必備食材覆蓋率為主，選用食材為輔
const (
	requiredWeight = 0.8
	optionalWeight = 0.2
)

// Result 單一食譜的比對結果
type Result struct {
	Entry           *corpus.Entry
	Score           float64
	RequiredHit     float64
	OptionalHit     float64
	MissingRequired []string
	MissingOptional []string
}

// Recipe 比對到的食譜
func (r Result) Recipe() *corpus.Recipe {
	return r.Entry.Recipe
}

// Covered 必備食材是否全部具備
func (r Result) Covered() bool {
	return len(r.MissingRequired) == 0
}

// Outcome 一次比對的完整結果
type Outcome struct {
	// Matches 必備食材全部具備的食譜，已排序並截斷至上限
	Matches []Result
	// Partial 其餘符合飲食條件的食譜，依分數由高到低
	Partial []Result
	// Covered 截斷前可完整製作的食譜數
	Covered int
	// NoMatch 可完整製作的數量低於門檻，呼叫端應改走生成式備援
	NoMatch bool
}

// Matcher 比對與排序
type Matcher struct {
	maxResults int
	minMatches int
}

// NewMatcher 建立比對器，非正值會改用預設（5 筆、至少 1 筆）
func NewMatcher(maxResults, minMatches int) *Matcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	if minMatches <= 0 {
		minMatches = 1
	}
	return &Matcher{maxResults: maxResults, minMatches: minMatches}
}

// Match 以飲食條件過濾後評分並排序
func (m *Matcher) Match(input ingredient.Set, entries []*corpus.Entry, diet string) Outcome {
	return m.Rank(Evaluate(input, entries, diet))
}

// Rank 將評分結果分成完整可做與部分符合兩組
func (m *Matcher) Rank(results []Result) Outcome {
	var out Outcome
	for _, r := range results {
		if r.Covered() {
			out.Matches = append(out.Matches, r)
		} else {
			out.Partial = append(out.Partial, r)
		}
	}

	sort.SliceStable(out.Matches, func(i, j int) bool {
		a, b := out.Matches[i], out.Matches[j]
		if a.OptionalHit != b.OptionalHit {
			return a.OptionalHit > b.OptionalHit
		}
		if a.Recipe().TimeMinutes != b.Recipe().TimeMinutes {
			return a.Recipe().TimeMinutes < b.Recipe().TimeMinutes
		}
		return a.Recipe().ID < b.Recipe().ID
	})
	sort.SliceStable(out.Partial, func(i, j int) bool {
		a, b := out.Partial[i], out.Partial[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Recipe().ID < b.Recipe().ID
	})

	out.Covered = len(out.Matches)
	out.NoMatch = out.Covered < m.minMatches
	if len(out.Matches) > m.maxResults {
		out.Matches = out.Matches[:m.maxResults]
	}
	return out
}

// Evaluate 對符合飲食條件的每道食譜評分，順序與 entries 相同
func Evaluate(input ingredient.Set, entries []*corpus.Entry, diet string) []Result {
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		if !corpus.DietAllows(diet, e.Recipe.Diet) {
			continue
		}
		results = append(results, Score(input, e))
	}
	return results
}

// Score 計算單一食譜的覆蓋率與分數，只依賴輸入集合與食譜本身
func Score(input ingredient.Set, e *corpus.Entry) Result {
	r := Result{Entry: e}

	required := e.Required.Items()
	hits := 0
	for _, ing := range required {
		if input.Has(ing) {
			hits++
		} else {
			r.MissingRequired = append(r.MissingRequired, ing)
		}
	}
	if len(required) == 0 {
		r.RequiredHit = 1
	} else {
		r.RequiredHit = float64(hits) / float64(len(required))
	}

	optional := e.Optional.Items()
	optHits := 0
	for _, ing := range optional {
		if input.Has(ing) {
			optHits++
		} else {
			r.MissingOptional = append(r.MissingOptional, ing)
		}
	}
	r.OptionalHit = float64(optHits) / float64(max(len(optional), 1))

	r.Score = requiredWeight*r.RequiredHit + optionalWeight*r.OptionalHit
	return r
}
