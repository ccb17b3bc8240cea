package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fridge-recommender/internal/pkg/common"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher 監看語料庫檔案，變更時（去抖動後）呼叫 Store.Reload。
// 監看的是所在目錄，編輯器以「寫新檔再改名」方式存檔也能偵測到。
type Watcher struct {
	store    *Store
	file     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher 建立監看器
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	if store.Path() == "" {
		return nil, fmt.Errorf("corpus store has no source path to watch")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	file, err := filepath.Abs(store.Path())
	if err != nil {
		return nil, fmt.Errorf("resolve corpus path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(file)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(file), err)
	}

	return &Watcher{
		store:    store,
		file:     file,
		debounce: debounce,
		watcher:  fw,
	}, nil
}

// Run 處理檔案事件直到 ctx 結束
func (w *Watcher) Run(ctx context.Context) {
	common.LogInfo("Corpus watcher started",
		zap.String("file", w.file),
		zap.Duration("debounce", w.debounce),
	)
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.LogError("Corpus watcher error", zap.Error(err))
		}
	}
}

// Close 停止監看並取消尚未觸發的重新載入
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.file {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		common.LogInfo("Corpus file changed, reloading", zap.String("op", event.Op.String()))
		// 失敗已由 Store 記錄，舊版本繼續提供服務
		_ = w.store.Reload()
	})
}
