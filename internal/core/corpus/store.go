package corpus

import (
	"errors"
	"sync"
	"sync/atomic"

	"fridge-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// ReloadHook 每次重新載入後呼叫，err 非 nil 代表載入失敗（舊版本仍在使用）
type ReloadHook func(snap *Snapshot, err error)

// Store 持有目前的語料庫版本。
// 讀取端取得的是整份 Snapshot 參考，重新載入只做原子替換，不會修改既有 Snapshot。
type Store struct {
	path    string
	bounds  Bounds
	current atomic.Pointer[Snapshot]

	mu    sync.Mutex // 序列化重新載入
	hooks []ReloadHook
}

// NewStore 建立 Store，需呼叫 Load 才會有內容
func NewStore(path string, bounds Bounds) *Store {
	return &Store{path: path, bounds: bounds}
}

// NewStaticStore 以現成的 Snapshot 建立 Store（無檔案來源，不可重新載入）
func NewStaticStore(snap *Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// OnReload 註冊重新載入回呼
func (s *Store) OnReload(hook ReloadHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Path 語料庫檔案路徑
func (s *Store) Path() string {
	return s.path
}

// Load 首次載入，失敗時回傳錯誤由呼叫端決定是否中止啟動
func (s *Store) Load() error {
	return s.Reload()
}

// Reload 讀取檔案並建立新的 Snapshot，成功才替換目前版本
func (s *Store) Reload() error {
	if s.path == "" {
		return errors.New("corpus store has no source path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := LoadFile(s.path, s.bounds)
	if err != nil {
		if prev := s.current.Load(); prev != nil {
			common.LogWarn("Corpus reload failed, keeping previous version",
				zap.String("path", s.path),
				zap.String("version", prev.Version),
				zap.Error(err),
			)
		}
		s.notify(nil, err)
		return err
	}

	prev := s.current.Swap(snap)
	fields := []zap.Field{
		zap.String("path", s.path),
		zap.String("version", snap.Version),
		zap.Int("recipes", snap.Len()),
		zap.Int("popular", len(snap.Popular())),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_version", prev.Version))
	}
	common.LogInfo("Corpus loaded", fields...)

	s.notify(snap, nil)
	return nil
}

// Snapshot 目前的語料庫版本，尚未載入時為 nil
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ready 是否已有可用的語料庫
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

func (s *Store) notify(snap *Snapshot, err error) {
	for _, hook := range s.hooks {
		hook(snap, err)
	}
}
