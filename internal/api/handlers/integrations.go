package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ananyateklu/second-brain-sub000/internal/api/middleware"
	"github.com/ananyateklu/second-brain-sub000/internal/model"
	"github.com/ananyateklu/second-brain-sub000/internal/repository"
	"github.com/ananyateklu/second-brain-sub000/internal/service"
)

// ISyncService lets tests swap the real sync service for a mock.
type ISyncService interface {
	Sync(ctx context.Context, userID string, req model.SyncRequest) (*model.SyncResult, error)
	ResetSync(ctx context.Context, userID string) error
}

// IIntegrationService mirrors the credential lifecycle surface.
type IIntegrationService interface {
	AuthURL(state string) string
	Connect(ctx context.Context, userID, code string) (*model.Credentials, error)
	Status(ctx context.Context, userID string) (*model.IntegrationStatus, error)
	Disconnect(ctx context.Context, userID string) error
}

type IntegrationHandler struct {
	Sync        ISyncService
	Integration IIntegrationService
	Repo        *repository.PostgresRepo
}

func NewIntegrationHandler(sync ISyncService, integration IIntegrationService, repo *repository.PostgresRepo) *IntegrationHandler {
	return &IntegrationHandler{Sync: sync, Integration: integration, Repo: repo}
}

// TriggerSync runs one reconciliation pass.
// POST /api/v1/integrations/ticktick/sync
func (h *IntegrationHandler) TriggerSync(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
		return
	}

	result, err := h.Sync.Sync(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotConnected):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSyncInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRemoteFetch):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResetSync wipes the mapping ledger; local and remote data stay put.
// POST /api/v1/integrations/ticktick/reset
func (h *IntegrationHandler) ResetSync(c *gin.Context) {
	if err := h.Sync.ResetSync(c.Request.Context(), middleware.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset sync"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sync mappings cleared"})
}

// GetAuthURL returns the provider page where the user grants access.
// GET /api/v1/integrations/ticktick/authorize
func (h *IntegrationHandler) GetAuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.Integration.AuthURL(middleware.UserID(c))})
}

// Connect exchanges an authorization code for credentials.
// POST /api/v1/integrations/ticktick/connect
func (h *IntegrationHandler) Connect(c *gin.Context) {
	var req model.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	creds, err := h.Integration.Connect(c.Request.Context(), middleware.UserID(c), req.Code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ticktick connected", "expires_at": creds.ExpiresAt})
}

// GetStatus reports whether the integration is connected and usable.
// GET /api/v1/integrations/ticktick/status
func (h *IntegrationHandler) GetStatus(c *gin.Context) {
	status, err := h.Integration.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Disconnect removes the stored credentials. Mappings survive so a later
// reconnect keeps reconciliation idempotent.
// DELETE /api/v1/integrations/ticktick
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	if err := h.Integration.Disconnect(c.Request.Context(), middleware.UserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disconnect"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ticktick disconnected"})
}

// GetSyncHistory lists recent sync runs.
// GET /api/v1/integrations/ticktick/history
func (h *IntegrationHandler) GetSyncHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
		return
	}

	history, err := h.Repo.GetSyncHistory(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sync history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
