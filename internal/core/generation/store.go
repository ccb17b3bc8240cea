package generation

import (
	"context"
	"errors"

	"fridge-recommender/internal/core/corpus"
)

// ErrNotStored 暫存中沒有此 id（可能已過期）
var ErrNotStored = errors.New("generated recipe not stored")

// Store 暫存生成的食譜，讓詳細頁查詢能找到它們
type Store interface {
	Save(ctx context.Context, recipe *corpus.Recipe) error
	Get(ctx context.Context, id string) (*corpus.Recipe, error)
	Close() error
}
