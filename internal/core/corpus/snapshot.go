package corpus

import (
	"strings"
	"time"

	"fridge-recommender/internal/core/ingredient"
)

// Snapshot 某一版語料庫的完整、不可變視圖。
// 每個請求只取用一個 Snapshot，重新載入時整份替換。
type Snapshot struct {
	Version  string
	Source   string
	LoadedAt time.Time

	normalizer *ingredient.Normalizer
	entries    []*Entry
	byID       map[string]*Entry
	popular    []PopularEntry
}

// Normalizer 與語料庫詞彙一致的正規化器
func (s *Snapshot) Normalizer() *ingredient.Normalizer {
	return s.normalizer
}

// Entries 依 id 排序的所有食譜。回傳的切片僅供讀取。
func (s *Snapshot) Entries() []*Entry {
	return s.entries
}

// Popular 熱門料理參考清單。回傳的切片僅供讀取。
func (s *Snapshot) Popular() []PopularEntry {
	return s.popular
}

// Len 食譜數量
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Get 依 id 查詢
func (s *Snapshot) Get(id string) (*Entry, bool) {
	e, ok := s.byID[strings.TrimSpace(id)]
	return e, ok
}

// Recipe 依 id 查詢食譜，找不到時回傳 ErrRecipeNotFound
func (s *Snapshot) Recipe(id string) (*Recipe, error) {
	e, ok := s.Get(id)
	if !ok {
		return nil, ErrRecipeNotFound
	}
	return e.Recipe, nil
}
