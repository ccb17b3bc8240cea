package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/pkg/common"
)

// Request 生成請求
type Request struct {
	Ingredients  []string
	Diet         string
	Cuisine      string
	Servings     int
	ServingSizeG int
}

// Draft 生成器回傳的原始食譜。
// 數值欄位用 float64 接收，模型常回傳 15.0 這類寫法。
type Draft struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Cuisine             string            `json:"cuisine"`
	Category            string            `json:"category"`
	FitnessTags         []string          `json:"fitness_tags"`
	Diet                string            `json:"diet"`
	Difficulty          string            `json:"difficulty"`
	TimeMinutes         float64           `json:"time_minutes"`
	RequiredIngredients []string          `json:"required_ingredients"`
	OptionalIngredients []string          `json:"optional_ingredients"`
	Cookware            []string          `json:"cookware"`
	Steps               []string          `json:"steps"`
	CommonMistakes      []string          `json:"common_mistakes"`
	Nutrition           *corpus.Nutrition `json:"nutrition"`
	Servings            float64           `json:"servings"`
	ServingSizeG        float64           `json:"serving_size_g"`
	CookingImpact       string            `json:"cooking_impact"`
}

// Generator 外部生成服務
type Generator interface {
	// Generate 依食材產生一份食譜草稿
	Generate(ctx context.Context, req Request) (*Draft, error)
	// Name 生成器名稱，用於日誌與指標
	Name() string
}

// 失敗原因
const (
	ReasonTimeout         = "timeout"
	ReasonCanceled        = "canceled"
	ReasonGeneratorError  = "generator_error"
	ReasonInvalidResponse = "invalid_response"
)

// ErrInvalidDraft 草稿缺少必要欄位
var ErrInvalidDraft = errors.New("generated recipe is missing required fields")

// GenerationError 生成失敗。Adapter 回傳的錯誤一律是此型別。
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Adapter 包裝 Generator：套用逾時、只呼叫一次、驗證回傳格式並轉為食譜紀錄
type Adapter struct {
	gen     Generator
	timeout time.Duration
	bounds  corpus.Bounds
	now     func() time.Time
}

// NewAdapter 建立 Adapter，基準份量範圍預設為 corpus.DefaultBounds
func NewAdapter(gen Generator, timeout time.Duration) *Adapter {
	return &Adapter{gen: gen, timeout: timeout, bounds: corpus.DefaultBounds(), now: time.Now}
}

// SetBounds 設定生成食譜的基準份量範圍，需與語料庫載入時相同
func (a *Adapter) SetBounds(b corpus.Bounds) {
	a.bounds = b
}

// Provider 生成器名稱
func (a *Adapter) Provider() string {
	return a.gen.Name()
}

// Generate 產生食譜。成功時回傳完整的紀錄；失敗時回傳 *GenerationError，不會有部分結果。
func (a *Adapter) Generate(ctx context.Context, req Request) (*corpus.Recipe, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := a.now()
	draft, err := a.gen.Generate(ctx, req)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		genErr := classify(ctx, err)
		common.LogGeneratorCall(a.gen.Name(), a.now().Sub(start), genErr, common.RequestIDFrom(ctx))
		return nil, genErr
	}

	recipe, err := toRecipe(draft, req, a.bounds)
	if err != nil {
		genErr := &GenerationError{Reason: ReasonInvalidResponse, Err: err}
		common.LogGeneratorCall(a.gen.Name(), a.now().Sub(start), genErr, common.RequestIDFrom(ctx))
		return nil, genErr
	}

	common.LogGeneratorCall(a.gen.Name(), a.now().Sub(start), nil, common.RequestIDFrom(ctx))
	return recipe, nil
}

func classify(ctx context.Context, err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &GenerationError{Reason: ReasonTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &GenerationError{Reason: ReasonCanceled, Err: err}
	case errors.Is(err, common.ErrNoJSON) || errors.Is(err, ErrInvalidDraft):
		return &GenerationError{Reason: ReasonInvalidResponse, Err: err}
	default:
		return &GenerationError{Reason: ReasonGeneratorError, Err: err}
	}
}

// toRecipe 驗證草稿並補上可推導的欄位。
// 基準份量夾回 bounds，與語料庫食譜相同，縮放結果才會一致。
func toRecipe(d *Draft, req Request, bounds corpus.Bounds) (*corpus.Recipe, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidDraft)
	}

	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if len(nonEmpty(d.RequiredIngredients)) == 0 {
		missing = append(missing, "required_ingredients")
	}
	if len(nonEmpty(d.Steps)) == 0 {
		missing = append(missing, "steps")
	}
	if d.Nutrition == nil {
		missing = append(missing, "nutrition")
	}
	if int(math.Round(d.Servings)) < 1 {
		missing = append(missing, "servings")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(missing, ", "))
	}

	n := *d.Nutrition
	if n.Calories < 0 || n.ProteinG < 0 || n.CarbsG < 0 || n.FatsG < 0 {
		return nil, fmt.Errorf("%w: negative nutrition", ErrInvalidDraft)
	}

	servingSize := int(math.Round(d.ServingSizeG))
	if servingSize <= 0 {
		servingSize = req.ServingSizeG
	}
	if servingSize <= 0 {
		servingSize = defaultServingSize
	}

	diet := corpus.NormalizeDiet(d.Diet)
	if diet == "" {
		diet = corpus.NormalizeDiet(req.Diet)
	}
	if !corpus.DietAllows(req.Diet, diet) {
		return nil, fmt.Errorf("%w: diet %q does not satisfy requested %q", ErrInvalidDraft, diet, req.Diet)
	}

	cuisine := orDefault(req.Cuisine, "Home Style")

	return &corpus.Recipe{
		ID:                  recipeID(d.ID, d.Name),
		Name:                strings.TrimSpace(d.Name),
		Cuisine:             orDefault(d.Cuisine, cuisine),
		Category:            orDefault(d.Category, "food"),
		FitnessTags:         nonEmpty(d.FitnessTags),
		Diet:                diet,
		Difficulty:          orDefault(d.Difficulty, "Easy"),
		TimeMinutes:         max(int(math.Round(d.TimeMinutes)), 0),
		RequiredIngredients: nonEmpty(d.RequiredIngredients),
		OptionalIngredients: nonEmpty(d.OptionalIngredients),
		Servings:            clampInt(int(math.Round(d.Servings)), bounds.MinServings, bounds.MaxServings),
		ServingSizeG:        clampInt(servingSize, bounds.MinServingSize, bounds.MaxServingSize),
		Nutrition:           n,
		Cookware:            nonEmpty(d.Cookware),
		Steps:               nonEmpty(d.Steps),
		CommonMistakes:      nonEmpty(d.CommonMistakes),
		CookingImpact:       strings.TrimSpace(d.CookingImpact),
	}, nil
}

const (
	idPrefix           = "ai-"
	defaultServingSize = 200
	maxSlugLen         = 24
)

var nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// recipeID 生成食譜的 id：ai-<slug>-<短 UUID>，slug 取自模型給的 id 或名稱
func recipeID(given, name string) string {
	slug := strings.TrimPrefix(Slugify(given), idPrefix)
	if slug == "" {
		slug = Slugify(name)
	}
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "recipe"
	}
	return idPrefix + slug + "-" + common.ShortID()
}

// Slugify 轉小寫，非英數字元以 "-" 取代
func Slugify(s string) string {
	return strings.Trim(nonSlugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// IsGeneratedID 是否為生成食譜的 id
func IsGeneratedID(id string) bool {
	return strings.HasPrefix(id, idPrefix)
}

func nonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
