package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/journal"
	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/AryanXCode646/Karyakshetra/internal/relay"
	"github.com/gin-gonic/gin"
)

// SaveLister reads recorded saves.
type SaveLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// StatusHandler serves read-only views of relay state.
type StatusHandler struct {
	hub     *relay.Hub
	saves   SaveLister
	started time.Time
}

// NewStatusHandler creates a status handler. saves may be nil when the
// journal is disabled.
func NewStatusHandler(hub *relay.Hub, saves SaveLister) *StatusHandler {
	return &StatusHandler{hub: hub, saves: saves, started: time.Now()}
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Clients   int    `json:"clients"`
	Documents int    `json:"documents"`
	Uptime    string `json:"uptime"`
}

// PresenceResponse is returned by GET /v1/presence.
type PresenceResponse struct {
	Users []string `json:"users"`
}

// DocumentInfo describes one document without its content.
type DocumentInfo struct {
	Path      string `json:"path"`
	Version   int64  `json:"version"`
	Size      int    `json:"size"`
	UpdatedAt int64  `json:"updatedAt"`
}

// DocumentsResponse is returned by GET /v1/documents.
type DocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

// SavesResponse is returned by GET /v1/saves.
type SavesResponse struct {
	Saves []journal.Entry `json:"saves"`
}

// Health handles GET /v1/health
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Clients:   h.hub.Registry().Len(),
		Documents: h.hub.Documents().Len(),
		Uptime:    time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Presence handles GET /v1/presence
func (h *StatusHandler) Presence(c *gin.Context) {
	c.JSON(http.StatusOK, PresenceResponse{Users: h.hub.Registry().IDs()})
}

// Documents handles GET /v1/documents
func (h *StatusHandler) Documents(c *gin.Context) {
	docs := h.hub.Documents().List()
	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, DocumentInfo{
			Path:      doc.Path,
			Version:   doc.Version,
			Size:      len(doc.Content),
			UpdatedAt: doc.UpdatedAt.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, DocumentsResponse{Documents: infos})
}

// ListSaves handles GET /v1/saves?limit=N
func (h *StatusHandler) ListSaves(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}

	if h.saves == nil {
		c.JSON(http.StatusOK, SavesResponse{Saves: []journal.Entry{}})
		return
	}

	entries, err := h.saves.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.Warnf("Failed to list saves: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list saves"})
		return
	}
	c.JSON(http.StatusOK, SavesResponse{Saves: entries})
}
