package corpus

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// 健身目標
const (
	GoalFatLoss     = "fat_loss"
	GoalMuscleGain  = "muscle_gain"
	GoalMaintenance = "maintenance"
)

// ErrUnknownGoal 不支援的健身目標
var ErrUnknownGoal = errors.New("unknown fitness goal")

// goalTags 各目標接受的 fitness_tags
var goalTags = map[string][]string{
	GoalFatLoss:     {"fat_loss", "low_fat", "low_calorie", "high_protein"},
	GoalMuscleGain:  {"muscle_gain", "high_protein"},
	GoalMaintenance: {"maintenance", "balanced"},
}

var goalTips = map[string]string{
	GoalFatLoss:     "Focus on high protein, low calorie foods. Avoid hidden sugars and processed foods.",
	GoalMuscleGain:  "Consume protein within 30 mins post-workout. Aim for 1.6-2.2g protein per kg bodyweight.",
	GoalMaintenance: "Balance your macros and listen to your body's hunger cues.",
}

// NormalizeGoal 統一目標寫法，空字串視為 maintenance
func NormalizeGoal(goal string) (string, error) {
	g := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(goal)), "-", "_")
	if g == "" {
		return GoalMaintenance, nil
	}
	if _, ok := goalTags[g]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
	}
	return g, nil
}

// GoalTip 目標的飲食提示
func GoalTip(goal string) string {
	return goalTips[goal]
}

// ByFitnessGoal 先套用飲食條件，再挑出 fitness_tags 與目標有交集的食譜，依 id 排序
func (s *Snapshot) ByFitnessGoal(goal, diet string) ([]*Recipe, error) {
	g, err := NormalizeGoal(goal)
	if err != nil {
		return nil, err
	}

	out := make([]*Recipe, 0)
	for _, e := range s.entries {
		if !DietAllows(diet, e.Recipe.Diet) {
			continue
		}
		if hasAnyTag(e.Recipe.FitnessTags, goalTags[g]) {
			out = append(out, e.Recipe)
		}
	}
	return out, nil
}

func hasAnyTag(tags, want []string) bool {
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// ByCuisine 指定菜系（不分大小寫）且符合飲食條件的食譜，依 id 排序
func (s *Snapshot) ByCuisine(cuisine, diet string) []*Recipe {
	want := strings.TrimSpace(cuisine)
	out := make([]*Recipe, 0)
	for _, e := range s.entries {
		if !strings.EqualFold(e.Recipe.Cuisine, want) {
			continue
		}
		if !DietAllows(diet, e.Recipe.Diet) {
			continue
		}
		out = append(out, e.Recipe)
	}
	return out
}

// Cuisines 語料庫中出現的菜系（依首次出現順序）
func (s *Snapshot) Cuisines() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.entries {
		key := strings.ToLower(e.Recipe.Cuisine)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e.Recipe.Cuisine)
	}
	return out
}

// RecipeOfTheDay 依日期挑選每日推薦。
// 優先從快速（≤20 分鐘）、簡單且必備食材不超過 6 項的食譜中選，沒有則從全部食譜選。
func (s *Snapshot) RecipeOfTheDay(day time.Time) (*Recipe, string) {
	eligible := make([]*Recipe, 0, len(s.entries))
	for _, e := range s.entries {
		r := e.Recipe
		if r.TimeMinutes <= 20 && strings.EqualFold(r.Difficulty, "Easy") && len(r.RequiredIngredients) <= 6 {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		for _, e := range s.entries {
			eligible = append(eligible, e.Recipe)
		}
	}
	if len(eligible) == 0 {
		return nil, ""
	}

	r := eligible[day.YearDay()%len(eligible)]
	return r, dailyReason(r)
}

func dailyReason(r *Recipe) string {
	var reasons []string
	if r.TimeMinutes <= 15 {
		reasons = append(reasons, "quick to make")
	}
	if r.Nutrition.ProteinG >= 15 {
		reasons = append(reasons, "protein-rich")
	}
	if len(r.RequiredIngredients) <= 5 {
		reasons = append(reasons, "uses everyday ingredients")
	}
	if strings.EqualFold(r.Difficulty, "Easy") {
		reasons = append(reasons, "beginner-friendly")
	}
	if len(reasons) == 0 {
		return "Today's pick: balanced and tasty"
	}
	return fmt.Sprintf("Today's pick: %s", strings.Join(reasons, ", "))
}
