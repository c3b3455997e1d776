package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ananyateklu/second-brain-sub000/internal/api/middleware"
	"github.com/ananyateklu/second-brain-sub000/internal/model"
	"github.com/ananyateklu/second-brain-sub000/internal/service"
)

type ActivityHandler struct {
	Activity *service.ActivityService
	Game     *service.GamificationService
}

func NewActivityHandler(activity *service.ActivityService, game *service.GamificationService) *ActivityHandler {
	return &ActivityHandler{Activity: activity, Game: game}
}

// ListActivities returns the most recent audit records.
// GET /api/v1/activities
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.Activity.ListActivities(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": logs})
}

// ResolveItem returns the title behind an item link. The type segment must
// name one of the known item kinds.
// GET /api/v1/items/:type/:id
func (h *ActivityHandler) ResolveItem(c *gin.Context) {
	itemType, err := model.ParseItemType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	title, err := h.Activity.ResolveItemTitle(c.Request.Context(), middleware.UserID(c), itemType, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"type": itemType, "id": id, "title": title})
}

// GetStats returns the caller's XP and level.
// GET /api/v1/stats
func (h *ActivityHandler) GetStats(c *gin.Context) {
	stats, err := h.Game.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
