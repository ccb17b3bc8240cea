package health

import (
	"net/http"
	"runtime"
	"time"

	"fridge-recommender/internal/core/corpus"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Corpus    *CorpusStatus          `json:"corpus,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// CorpusStatus 目前使用中的語料庫
type CorpusStatus struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	Recipes  int       `json:"recipes"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Handler 健康檢查處理器
type Handler struct {
	store   *corpus.Store
	version string
	started time.Time
}

// NewHandler 建立健康檢查處理器
func NewHandler(store *corpus.Store, version string) *Handler {
	return &Handler{store: store, version: version, started: time.Now()}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
	}
	if snap := h.store.Snapshot(); snap != nil {
		resp.Corpus = &CorpusStatus{
			Version:  snap.Version,
			Source:   snap.Source,
			Recipes:  snap.Len(),
			LoadedAt: snap.LoadedAt,
		}
	} else {
		resp.Status = "degraded"
	}

	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 語料庫載入後才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if !h.store.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "recipe corpus not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
