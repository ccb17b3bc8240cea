package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"fridge-recommender/internal/core/ingredient"
	"fridge-recommender/internal/pkg/common"

	"go.uber.org/multierr"
)

// Bounds 份量範圍。每道食譜的基準份量必須落在範圍內，
// 讓「以基準份量縮放等於原值」對所有食譜成立。
type Bounds struct {
	MinServings    int
	MaxServings    int
	MinServingSize int
	MaxServingSize int
}

// DefaultBounds 預設份量範圍：1–20 份、每份 50–1000 g
func DefaultBounds() Bounds {
	return Bounds{MinServings: 1, MaxServings: 20, MinServingSize: 50, MaxServingSize: 1000}
}

// file 語料庫檔案格式
type file struct {
	IngredientAliases map[string][]string `json:"ingredient_aliases"`
	PantryStaples     []string            `json:"pantry_staples"`
	Recipes           []Recipe            `json:"recipes"`
	PopularRecipes    []PopularRecipe     `json:"popular_recipes"`
}

// LoadFile 讀取並驗證語料庫檔案
func LoadFile(path string, bounds Bounds) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	snap, err := Parse(data, bounds)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	snap.Source = path
	return snap, nil
}

// Parse 由 JSON 內容建立 Snapshot。任何一筆食譜驗證失敗都會使整份載入失敗。
func Parse(data []byte, bounds Bounds) (*Snapshot, error) {
	var f file
	if err := common.ParseJSONBytesStrict(data, &f); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if len(f.Recipes) == 0 {
		return nil, errors.New("corpus has no recipes")
	}

	staples := f.PantryStaples
	if staples == nil {
		staples = ingredient.DefaultStaples
	}

	normalizer := ingredient.NewNormalizer(f.IngredientAliases, vocabulary(&f), staples)

	snap := &Snapshot{
		Version:    version(data),
		LoadedAt:   time.Now(),
		normalizer: normalizer,
		entries:    make([]*Entry, 0, len(f.Recipes)),
		byID:       make(map[string]*Entry, len(f.Recipes)),
		popular:    make([]PopularEntry, 0, len(f.PopularRecipes)),
	}

	var errs []error
	for i := range f.Recipes {
		r := &f.Recipes[i]
		tidy(r)
		if err := validate(r, bounds); err != nil {
			errs = append(errs, fmt.Errorf("recipe #%d (%q): %w", i, r.ID, err))
			continue
		}
		if _, dup := snap.byID[r.ID]; dup {
			errs = append(errs, fmt.Errorf("recipe #%d: duplicate id %q", i, r.ID))
			continue
		}

		entry := &Entry{
			Recipe:   r,
			Required: withoutStaples(normalizer, r.RequiredIngredients),
			Optional: withoutStaples(normalizer, r.OptionalIngredients),
		}
		if entry.Required.Len() == 0 {
			errs = append(errs, fmt.Errorf("recipe #%d (%q): required ingredients are all pantry staples", i, r.ID))
			continue
		}

		snap.byID[r.ID] = entry
		snap.entries = append(snap.entries, entry)
	}

	for i, p := range f.PopularRecipes {
		if strings.TrimSpace(p.Name) == "" || len(p.Ingredients) == 0 {
			errs = append(errs, fmt.Errorf("popular recipe #%d: name and ingredients are required", i))
			continue
		}
		p.Diet = NormalizeDiet(p.Diet)
		snap.popular = append(snap.popular, PopularEntry{
			Recipe:      p,
			Ingredients: withoutStaples(normalizer, p.Ingredients),
		})
	}

	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}

	sort.Slice(snap.entries, func(i, j int) bool {
		return snap.entries[i].Recipe.ID < snap.entries[j].Recipe.ID
	})

	return snap, nil
}

// validate 檢查單筆食譜
func validate(r *Recipe, bounds Bounds) error {
	switch {
	case r.ID == "":
		return errors.New("id is required")
	case r.Name == "":
		return errors.New("name is required")
	case len(r.RequiredIngredients) == 0:
		return errors.New("at least one required ingredient is needed")
	case r.Servings < bounds.MinServings || r.Servings > bounds.MaxServings:
		return fmt.Errorf("servings %d outside %d-%d", r.Servings, bounds.MinServings, bounds.MaxServings)
	case r.ServingSizeG < bounds.MinServingSize || r.ServingSizeG > bounds.MaxServingSize:
		return fmt.Errorf("serving_size_g %d outside %d-%d", r.ServingSizeG, bounds.MinServingSize, bounds.MaxServingSize)
	case r.TimeMinutes < 0:
		return errors.New("time_minutes must not be negative")
	}

	n := r.Nutrition
	if n.Calories < 0 || n.ProteinG < 0 || n.CarbsG < 0 || n.FatsG < 0 {
		return errors.New("nutrition values must not be negative")
	}

	for name, grams := range r.IngredientGrams {
		if grams < 0 {
			return fmt.Errorf("ingredient_grams[%q] must not be negative", name)
		}
		if !contains(r.RequiredIngredients, name) && !contains(r.OptionalIngredients, name) {
			return fmt.Errorf("ingredient_grams[%q] is not a listed ingredient", name)
		}
	}
	return nil
}

// tidy 去除字串前後空白並統一飲食標籤
func tidy(r *Recipe) {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Diet = NormalizeDiet(r.Diet)
	for i, s := range r.RequiredIngredients {
		r.RequiredIngredients[i] = strings.TrimSpace(s)
	}
	for i, s := range r.OptionalIngredients {
		r.OptionalIngredients[i] = strings.TrimSpace(s)
	}
}

func withoutStaples(n *ingredient.Normalizer, raw []string) ingredient.Set {
	kept := make([]string, 0, len(raw))
	for _, r := range raw {
		if c := n.Canonical(r); c != "" && !n.IsStaple(c) {
			kept = append(kept, c)
		}
	}
	return ingredient.NewSet(kept...)
}

// vocabulary 語料庫中出現的所有食材名稱
func vocabulary(f *file) []string {
	var words []string
	for _, r := range f.Recipes {
		words = append(words, r.RequiredIngredients...)
		words = append(words, r.OptionalIngredients...)
	}
	for _, p := range f.PopularRecipes {
		words = append(words, p.Ingredients...)
	}
	return words
}

// version 內容雜湊前 12 碼
func version(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
