package scale

import (
	"math"
	"strconv"

	"fridge-recommender/internal/core/corpus"
)

// Limits 份量允許範圍，超出時夾回邊界
type Limits struct {
	MinServings    int
	MaxServings    int
	MinServingSize int
	MaxServingSize int
}

// DefaultLimits 1–20 份、每份 50–1000 g
func DefaultLimits() Limits {
	return Limits{MinServings: 1, MaxServings: 20, MinServingSize: 50, MaxServingSize: 1000}
}

// Request 要求的份量，0 代表沿用食譜的基準值
type Request struct {
	Servings     int
	ServingSizeG int
}

// Scaled 縮放後的營養與食材份量
type Scaled struct {
	Servings            int              `json:"servings"`
	ServingSizeG        int              `json:"serving_size_g"`
	Ratio               float64          `json:"ratio"`
	Nutrition           corpus.Nutrition `json:"nutrition"`
	RequiredIngredients []string         `json:"required_ingredients"`
	OptionalIngredients []string         `json:"optional_ingredients"`
}

// Scaler 依食譜自身的基準份量做線性縮放
type Scaler struct {
	limits Limits
}

// NewScaler 建立縮放器
func NewScaler(limits Limits) *Scaler {
	return &Scaler{limits: limits}
}

// Clamp 把有指定的份量夾回範圍內，0（未指定）維持 0
func (s *Scaler) Clamp(req Request) Request {
	out := req
	if out.Servings != 0 {
		out.Servings = clamp(out.Servings, s.limits.MinServings, s.limits.MaxServings)
	}
	if out.ServingSizeG != 0 {
		out.ServingSizeG = clamp(out.ServingSizeG, s.limits.MinServingSize, s.limits.MaxServingSize)
	}
	return out
}

// Resolve 套用預設值與範圍限制後的實際份量
func (s *Scaler) Resolve(r *corpus.Recipe, req Request) (servings, servingSize int) {
	servings = req.Servings
	if servings == 0 {
		servings = r.Servings
	}
	servingSize = req.ServingSizeG
	if servingSize == 0 {
		servingSize = r.ServingSizeG
	}
	return clamp(servings, s.limits.MinServings, s.limits.MaxServings),
		clamp(servingSize, s.limits.MinServingSize, s.limits.MaxServingSize)
}

// Ratio (servings × serving size) / (基準份數 × 基準每份重量)
func Ratio(r *corpus.Recipe, servings, servingSize int) float64 {
	base := float64(r.Servings) * float64(r.ServingSizeG)
	if base <= 0 {
		return 1
	}
	return float64(servings) * float64(servingSize) / base
}

// Scale 縮放營養素與有標示克數的食材。營養素不做四捨五入。
func (s *Scaler) Scale(r *corpus.Recipe, req Request) Scaled {
	servings, size := s.Resolve(r, req)
	ratio := Ratio(r, servings, size)

	return Scaled{
		Servings:     servings,
		ServingSizeG: size,
		Ratio:        ratio,
		Nutrition: corpus.Nutrition{
			Calories: r.Nutrition.Calories * ratio,
			ProteinG: r.Nutrition.ProteinG * ratio,
			CarbsG:   r.Nutrition.CarbsG * ratio,
			FatsG:    r.Nutrition.FatsG * ratio,
		},
		RequiredIngredients: quantities(r.RequiredIngredients, r.IngredientGrams, ratio),
		OptionalIngredients: quantities(r.OptionalIngredients, r.IngredientGrams, ratio),
	}
}

// quantities 有克數的食材顯示為 "<克數>g 名稱"，其餘只顯示名稱
func quantities(names []string, grams map[string]float64, ratio float64) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		g, ok := grams[name]
		if !ok {
			out = append(out, name)
			continue
		}
		out = append(out, FormatGrams(g*ratio)+"g "+name)
	}
	return out
}

// FormatGrams 取到小數一位並去掉多餘的 0
func FormatGrams(g float64) string {
	return strconv.FormatFloat(math.Round(g*10)/10, 'f', -1, 64)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
