package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezforge/launchpad/backend/internal/collection"
	"github.com/rezforge/launchpad/backend/internal/rez"
	"github.com/rezforge/launchpad/backend/internal/stage"
	"github.com/rezforge/launchpad/backend/internal/storage"
	"github.com/rezforge/launchpad/backend/internal/types"
	"github.com/rezforge/launchpad/backend/internal/user"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	stages      *stage.Manager
	collections *collection.Manager
}

// NewHandlers creates a new handler set
func NewHandlers(stages *stage.Manager, collections *collection.Manager) *Handlers {
	return &Handlers{
		stages:      stages,
		collections: collections,
	}
}

// Root handles the basic status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Rez Launcher Backend",
		"version": "0.5.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"username": user.Current(),
	})
}

// SaveCollection persists a new package collection version
func (h *Handlers) SaveCollection(c *gin.Context) {
	var req types.SaveCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.collections.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "collection": rec})
}

// ListCollections returns collections, all or scoped by ?uri=
func (h *Handlers) ListCollections(c *gin.Context) {
	result, err := h.collections.List(c.Request.Context(), c.Query("uri"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CollectionTools returns the tools of one collection version; a miss is
// an empty list, not an error
func (h *Handlers) CollectionTools(c *gin.Context) {
	version := c.Query("version")
	uri := c.Query("uri")
	if version == "" || uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "version and uri are required"})
		return
	}

	tools, err := h.collections.Tools(c.Request.Context(), version, uri)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

// SaveStage generates a snapshot and promotes the new stage to active
func (h *Handlers) SaveStage(c *gin.Context) {
	var req types.SaveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.stages.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "stage": st})
}

// ListStages returns stages under ?uri=, optionally ?active_only=true
func (h *Handlers) ListStages(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uri is required"})
		return
	}
	activeOnly := c.Query("active_only") == "true"

	stages, err := h.stages.List(c.Request.Context(), uri, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

// RevertStage reactivates a historical stage version
func (h *Handlers) RevertStage(c *gin.Context) {
	st, err := h.stages.Revert(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stage": st})
}

// StageHistory returns every version under ?name= and ?uri=
func (h *Handlers) StageHistory(c *gin.Context) {
	name := c.Query("name")
	uri := c.Query("uri")
	if name == "" || uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and uri are required"})
		return
	}

	history, err := h.stages.History(c.Request.Context(), name, uri)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": history})
}

// StageNames returns the deduplicated set of all stage names
func (h *Handlers) StageNames(c *gin.Context) {
	names, err := h.stages.DistinctNames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

// LoadStage spawns an interactive environment from a stage snapshot
func (h *Handlers) LoadStage(c *gin.Context) {
	if err := h.stages.Load(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// respondError maps domain errors to status codes; the descriptive message
// always reaches the caller.
func respondError(c *gin.Context, err error) {
	var genErr *rez.GenerationError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rez.ErrEmptySnapshot):
		status = http.StatusConflict
	case errors.As(err, &genErr):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
