package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrStoreFull 暫存已滿且無法淘汰
var ErrStoreFull = errors.New("generated recipe store is full")

// MemoryStore 行程內的生成食譜暫存，具 TTL 與容量上限（淘汰最少使用者）
type MemoryStore struct {
	ttl     time.Duration
	maxSize int

	mu    sync.Mutex
	items map[string]storeEntry
	stats storeStats

	stop chan struct{}
	once sync.Once
}

type storeEntry struct {
	recipe      *corpus.Recipe
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// StoreStats 暫存統計
type StoreStats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// NewMemoryStore 建立記憶體暫存並啟動定期清理
func NewMemoryStore(ttl time.Duration, maxSize int, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:     ttl,
		maxSize: maxSize,
		items:   make(map[string]storeEntry),
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go s.startCleanup(cleanupInterval)
	}

	common.LogInfo("Generated recipe store initialized",
		zap.String("backend", "memory"),
		zap.Int("max_size", maxSize),
		zap.Duration("ttl", ttl),
		zap.Duration("cleanup_interval", cleanupInterval),
	)
	return s
}

// Save 寫入生成食譜
func (s *MemoryStore) Save(_ context.Context, recipe *corpus.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[recipe.ID]; !exists && len(s.items) >= s.maxSize {
		s.cleanup()
		if len(s.items) >= s.maxSize {
			s.evictLRU()
		}
		if len(s.items) >= s.maxSize {
			return ErrStoreFull
		}
	}

	now := time.Now()
	s.items[recipe.ID] = storeEntry{
		recipe:     recipe,
		expiresAt:  now.Add(s.ttl),
		lastAccess: now,
	}
	return nil
}

// Get 讀取生成食譜，過期視為不存在
func (s *MemoryStore) Get(_ context.Context, id string) (*corpus.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok {
		s.stats.misses++
		return nil, ErrNotStored
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		delete(s.items, id)
		s.stats.evictions++
		s.stats.misses++
		return nil, ErrNotStored
	}

	entry.lastAccess = now
	entry.accessCount++
	s.items[id] = entry
	s.stats.hits++
	return entry.recipe, nil
}

// Stats 目前統計
func (s *MemoryStore) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StoreStats{
		Size:      len(s.items),
		MaxSize:   s.maxSize,
		Hits:      s.stats.hits,
		Misses:    s.stats.misses,
		Evictions: s.stats.evictions,
	}
}

// Close 停止清理並清空暫存
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]storeEntry)
	common.LogInfo("Generated recipe store closed",
		zap.Int64("hits", s.stats.hits),
		zap.Int64("misses", s.stats.misses),
		zap.Int64("evictions", s.stats.evictions),
	)
	return nil
}

func (s *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.cleanup()
			s.mu.Unlock()
		}
	}
}

// cleanup 移除過期項目，呼叫端需持有鎖
func (s *MemoryStore) cleanup() int {
	now := time.Now()
	count := 0
	for id, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, id)
			count++
		}
	}
	if count > 0 {
		s.stats.evictions += int64(count)
		common.LogDebug("Cleaned up expired generated recipes",
			zap.Int("count", count),
			zap.Int("remaining", len(s.items)),
		)
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未用的項目，呼叫端需持有鎖
func (s *MemoryStore) evictLRU() {
	var oldestID string
	var oldest storeEntry
	for id, entry := range s.items {
		if oldestID == "" ||
			entry.accessCount < oldest.accessCount ||
			(entry.accessCount == oldest.accessCount && entry.lastAccess.Before(oldest.lastAccess)) {
			oldestID, oldest = id, entry
		}
	}
	if oldestID != "" {
		delete(s.items, oldestID)
		s.stats.evictions++
	}
}
