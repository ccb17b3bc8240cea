package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fridge-recommender/internal/infrastructure/config"
	"fridge-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const recipePrompt = `You are a creative home cooking chef. ALWAYS create a recipe with the ingredients provided, never refuse.

Available ingredients: %s
Diet preference: %s
Cuisine style: %s
Servings: %d people
Serving size: %dg per person

Rules:
1. Use ONLY the provided ingredients plus basic pantry items (salt, pepper, oil, water, common spices).
2. Give the recipe a unique, descriptive name.
3. Adjust ingredient quantities for %d people with %dg per serving.
4. At most 6 clear steps, each under 15 words.
5. Nutrition values must be PER SERVING.
6. Reply with a single JSON object and nothing else.

JSON structure:
{
  "id": "short-recipe-slug",
  "name": "Recipe Name",
  "cuisine": "Cuisine",
  "category": "food",
  "fitness_tags": ["balanced"],
  "diet": "veg|egg|non-veg",
  "difficulty": "Easy|Medium",
  "time_minutes": 15,
  "required_ingredients": ["ingredient1", "ingredient2"],
  "optional_ingredients": ["optional enhancement"],
  "cookware": ["pan"],
  "steps": ["Step one", "Step two"],
  "common_mistakes": ["Tip one"],
  "nutrition": {"calories": 250, "protein_g": 20, "carbs_g": 15, "fats_g": 12},
  "servings": %d,
  "serving_size_g": %d,
  "cooking_impact": "What makes this dish special"
}`

// OpenRouterGenerator 透過 OpenRouter chat completions 生成食譜。
// 不設定重試，每個請求只呼叫一次。
type OpenRouterGenerator struct {
	config config.GeneratorConfig
	client *resty.Client
}

// NewOpenRouterGenerator 建立 OpenRouter 生成器
func NewOpenRouterGenerator(cfg config.GeneratorConfig) *OpenRouterGenerator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://fridge-recommender.local").
		SetHeader("X-Title", "Fridge Recommender").
		SetRetryCount(0)

	return &OpenRouterGenerator{
		config: cfg,
		client: client,
	}
}

// Name 生成器名稱
func (g *OpenRouterGenerator) Name() string {
	return config.ProviderOpenRouter
}

// BuildPrompt 組出送給模型的提示
func BuildPrompt(req Request) string {
	diet := req.Diet
	if diet == "" {
		diet = "any"
	}
	cuisine := strings.TrimSpace(req.Cuisine)
	if cuisine == "" {
		cuisine = "any"
	}
	servings := req.Servings
	if servings <= 0 {
		servings = 2
	}
	size := req.ServingSizeG
	if size <= 0 {
		size = defaultServingSize
	}
	return fmt.Sprintf(recipePrompt,
		strings.Join(req.Ingredients, ", "), diet, cuisine,
		servings, size,
		servings, size,
		servings, size,
	)
}

// Generate 呼叫 OpenRouter 並從回覆中取出食譜 JSON
func (g *OpenRouterGenerator) Generate(ctx context.Context, req Request) (*Draft, error) {
	body := map[string]interface{}{
		"model": g.config.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": BuildPrompt(req),
			},
		},
		"max_tokens":  g.config.MaxTokens,
		"temperature": g.config.Temperature,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in OpenRouter response", ErrInvalidDraft)
	}

	content := result.Choices[0].Message.Content
	common.LogDebug("OpenRouter response received",
		zap.String("model", g.config.Model),
		zap.Int("content_length", len(content)),
		zap.String("request_id", common.RequestIDFrom(ctx)),
	)

	var draft Draft
	if err := common.ExtractJSON(content, &draft); err != nil {
		return nil, fmt.Errorf("%w: parse OpenRouter content: %w", ErrInvalidDraft, err)
	}
	return &draft, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
