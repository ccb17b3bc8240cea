package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/core/gap"
	"fridge-recommender/internal/core/generation"
	"fridge-recommender/internal/core/ingredient"
	"fridge-recommender/internal/core/match"
	"fridge-recommender/internal/core/metrics"
	"fridge-recommender/internal/core/scale"
	"fridge-recommender/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 詳細頁查詢來源
const (
	sourceCorpus    = "corpus"
	sourceGenerated = "generated"
	sourceNotFound  = "not_found"
)

// Service 推薦流程：正規化 → 比對（必要時生成）與缺料建議並行 → 縮放 → 組回應
type Service struct {
	corpus    *corpus.Store
	matcher   *match.Matcher
	scaler    *scale.Scaler
	advisor   *gap.Advisor
	adapter   *generation.Adapter
	generated generation.Store
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService 建立推薦服務，metrics 可為 nil
func NewService(
	store *corpus.Store,
	matcher *match.Matcher,
	scaler *scale.Scaler,
	advisor *gap.Advisor,
	adapter *generation.Adapter,
	generated generation.Store,
	m *metrics.Metrics,
) *Service {
	return &Service{
		corpus:    store,
		matcher:   matcher,
		scaler:    scaler,
		advisor:   advisor,
		adapter:   adapter,
		generated: generated,
		metrics:   m,
		now:       time.Now,
	}
}

// snapshot 取得本次請求使用的語料庫版本
func (s *Service) snapshot() (*corpus.Snapshot, error) {
	snap := s.corpus.Snapshot()
	if snap == nil {
		return nil, common.ErrServiceUnavailable.Wrap(errors.New("recipe corpus not loaded"))
	}
	return snap, nil
}

// Recommend 依冰箱食材推薦食譜。
// 生成失敗時同時回傳部分結果（正規化食材與缺料建議）與 GENERATION_FAILED 錯誤。
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	input, err := snap.Normalizer().Parse(req.Ingredients)
	if err != nil {
		if errors.Is(err, ingredient.ErrEmptyInput) {
			s.metrics.ObserveRecommendation(metrics.OutcomeEmptyInput, 0)
			return nil, common.ErrEmptyInput.Wrap(err)
		}
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	// 生成與縮放使用同一組夾過範圍的份量
	scaleReq := s.scaler.Clamp(scale.Request{Servings: req.Servings, ServingSizeG: req.ServingSize})

	var (
		advice    gap.Advice
		outcome   match.Outcome
		generated *corpus.Recipe
		genErr    error
		genTime   time.Duration
	)

	var g errgroup.Group
	g.Go(func() error {
		advice = s.advisor.Advise(input, snap.Entries(), snap.Popular(), req.Diet)
		return nil
	})
	g.Go(func() error {
		outcome = s.matcher.Match(input, snap.Entries(), req.Diet)
		if !outcome.NoMatch {
			return nil
		}
		start := s.now()
		generated, genErr = s.adapter.Generate(ctx, generation.Request{
			Ingredients:  input.Items(),
			Diet:         req.Diet,
			Cuisine:      req.Cuisine,
			Servings:     scaleReq.Servings,
			ServingSizeG: scaleReq.ServingSizeG,
		})
		genTime = s.now().Sub(start)
		return nil
	})
	_ = g.Wait()

	resp := &Response{
		NormalizedIngredients: input.Items(),
		Recipes:               []RecipeCard{},
		SuggestedIngredients:  advice.SuggestedIngredients,
		RecipeSuggestions:     advice.RecipeSuggestions,
		CorpusVersion:         snap.Version,
	}
	requestID := common.RequestIDFrom(ctx)

	if !outcome.NoMatch {
		for _, r := range outcome.Matches {
			resp.Recipes = append(resp.Recipes, newCard(r.Recipe(), s.scaler.Scale(r.Recipe(), scaleReq), r.Score))
		}
		resp.Message = fmt.Sprintf("Found %d recipe(s) you can make", len(resp.Recipes))

		s.metrics.ObserveRecommendation(metrics.OutcomeMatched, outcome.Covered)
		common.LogInfo("Recommendation completed",
			zap.String("request_id", requestID),
			zap.Strings("ingredients", resp.NormalizedIngredients),
			zap.Int("matches", len(resp.Recipes)),
			zap.Int("partial", len(outcome.Partial)),
			zap.String("corpus_version", snap.Version),
		)
		return resp, nil
	}

	provider := s.adapter.Provider()
	if genErr != nil {
		var ge *generation.GenerationError
		reason := generation.ReasonGeneratorError
		if errors.As(genErr, &ge) {
			reason = ge.Reason
		}
		s.metrics.ObserveGeneration(provider, reason, genTime)
		s.metrics.ObserveRecommendation(metrics.OutcomeGenerationFailed, outcome.Covered)

		resp.Message = "Could not generate a recipe right now"
		return resp, common.ErrGenerationFailed.Wrap(genErr)
	}
	s.metrics.ObserveGeneration(provider, "success", genTime)

	if err := s.generated.Save(ctx, generated); err != nil {
		common.LogWarn("Failed to store generated recipe",
			zap.String("request_id", requestID),
			zap.String("recipe_id", generated.ID),
			zap.Error(err),
		)
	}

	scaled := s.scaler.Scale(generated, scaleReq)
	resp.Recipes = []RecipeCard{newCard(generated, scaled, 0)}
	resp.AIGenerated = true
	resp.Message = fmt.Sprintf("Created '%s' for %d people", generated.Name, scaled.Servings)

	s.metrics.ObserveRecommendation(metrics.OutcomeGenerated, outcome.Covered)
	common.LogInfo("Recommendation completed with generated recipe",
		zap.String("request_id", requestID),
		zap.Strings("ingredients", resp.NormalizedIngredients),
		zap.String("recipe_id", generated.ID),
		zap.String("provider", provider),
		zap.String("corpus_version", snap.Version),
	)
	return resp, nil
}

// GetRecipeDetail 依 id 取得完整食譜，先查語料庫再查生成暫存。
// servings 與 servingSize 皆為 0 時回傳基準份量，否則以同一個縮放器縮放。
func (s *Service) GetRecipeDetail(ctx context.Context, id string, servings, servingSize int) (*RecipeDetail, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	detail := &RecipeDetail{Ratio: 1, CorpusVersion: snap.Version}

	recipe, err := snap.Recipe(id)
	switch {
	case err == nil:
		s.metrics.ObserveDetailLookup(sourceCorpus)
	case errors.Is(err, corpus.ErrRecipeNotFound):
		recipe, err = s.generated.Get(ctx, id)
		if err != nil {
			if errors.Is(err, generation.ErrNotStored) {
				s.metrics.ObserveDetailLookup(sourceNotFound)
				return nil, common.ErrInvalidRecipeID.Wrap(fmt.Errorf("%w: %s", corpus.ErrRecipeNotFound, id))
			}
			return nil, common.ErrInternalError.Wrap(err)
		}
		s.metrics.ObserveDetailLookup(sourceGenerated)
		detail.AIGenerated = true
	default:
		return nil, common.ErrInternalError.Wrap(err)
	}

	detail.Recipe = *recipe
	if servings == 0 && servingSize == 0 {
		return detail, nil
	}

	scaled := s.scaler.Scale(recipe, scale.Request{Servings: servings, ServingSizeG: servingSize})
	detail.Scaled = true
	detail.Ratio = scaled.Ratio
	detail.Servings = scaled.Servings
	detail.ServingSizeG = scaled.ServingSizeG
	detail.Nutrition = scaled.Nutrition
	detail.RequiredIngredients = scaled.RequiredIngredients
	detail.OptionalIngredients = scaled.OptionalIngredients
	return detail, nil
}

// ListByCuisine 指定菜系的食譜（基準份量）
func (s *Service) ListByCuisine(cuisine, diet string) ([]RecipeCard, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	recipes := snap.ByCuisine(cuisine, diet)
	cards := make([]RecipeCard, 0, len(recipes))
	for _, r := range recipes {
		cards = append(cards, newCard(r, s.scaler.Scale(r, scale.Request{}), 0))
	}
	return cards, nil
}

// ListByFitnessGoal 符合健身目標的食譜（基準份量），未知目標回傳 INVALID_REQUEST
func (s *Service) ListByFitnessGoal(goal, diet string) (*FitnessList, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	g, err := corpus.NormalizeGoal(goal)
	if err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}
	recipes, err := snap.ByFitnessGoal(g, diet)
	if err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	list := &FitnessList{Goal: g, Tip: corpus.GoalTip(g), Recipes: make([]RecipeCard, 0, len(recipes))}
	for _, r := range recipes {
		list.Recipes = append(list.Recipes, newCard(r, s.scaler.Scale(r, scale.Request{}), 0))
	}
	return list, nil
}

// Cuisines 語料庫中的菜系
func (s *Service) Cuisines() ([]string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Cuisines(), nil
}

// RecipeOfTheDay 今日推薦
func (s *Service) RecipeOfTheDay() (*DailyPick, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	today := s.now()
	r, reason := snap.RecipeOfTheDay(today)
	if r == nil {
		return nil, common.ErrNotFound.Wrap(errors.New("no recipes available"))
	}
	return &DailyPick{
		Date:   today.Format("2006-01-02"),
		Recipe: newCard(r, s.scaler.Scale(r, scale.Request{}), 0),
		Reason: reason,
	}, nil
}
