package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ananyateklu/second-brain-sub000/internal/api/middleware"
	"github.com/ananyateklu/second-brain-sub000/internal/model"
	"github.com/ananyateklu/second-brain-sub000/internal/repository"
	"github.com/ananyateklu/second-brain-sub000/internal/service"
)

// ItemHandler covers the small collections: ideas and reminders.
type ItemHandler struct {
	Repo     *repository.PostgresRepo
	Activity *service.ActivityService
}

func NewItemHandler(repo *repository.PostgresRepo, activity *service.ActivityService) *ItemHandler {
	return &ItemHandler{Repo: repo, Activity: activity}
}

func (h *ItemHandler) ListIdeas(c *gin.Context) {
	ideas, err := h.Repo.ListIdeas(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list ideas"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas})
}

func (h *ItemHandler) CreateIdea(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	now := time.Now()
	idea := &model.Idea{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Repo.CreateIdea(c.Request.Context(), idea); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create idea"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "create", model.ItemTypeIdea, idea.ID, idea.Title, "", nil)
	c.JSON(http.StatusCreated, idea)
}

func (h *ItemHandler) UpdateIdea(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	idea, err := h.Repo.GetIdea(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get idea"})
		return
	}

	idea.Title = req.Title
	idea.Content = req.Content
	idea.Tags = req.Tags
	idea.UpdatedAt = time.Now()

	if err := h.Repo.UpdateIdea(c.Request.Context(), idea); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update idea"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "update", model.ItemTypeIdea, idea.ID, idea.Title, "", nil)
	c.JSON(http.StatusOK, idea)
}

func (h *ItemHandler) DeleteIdea(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.Repo.DeleteIdea(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete idea"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "delete", model.ItemTypeIdea, id, "", "", nil)
	c.JSON(http.StatusOK, gin.H{"message": "idea deleted"})
}

type reminderRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	RemindAt    *time.Time `json:"remind_at"`
	IsCompleted *bool      `json:"is_completed"`
}

func (h *ItemHandler) ListReminders(c *gin.Context) {
	reminders, err := h.Repo.ListReminders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

func (h *ItemHandler) CreateReminder(c *gin.Context) {
	userID := middleware.UserID(c)

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	now := time.Now()
	reminder := &model.Reminder{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		RemindAt:    req.RemindAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Repo.CreateReminder(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reminder"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "create", model.ItemTypeReminder, reminder.ID, reminder.Title, "", nil)
	c.JSON(http.StatusCreated, reminder)
}

func (h *ItemHandler) UpdateReminder(c *gin.Context) {
	userID := middleware.UserID(c)

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	reminder, err := h.Repo.GetReminder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get reminder"})
		return
	}

	reminder.Title = req.Title
	reminder.Description = req.Description
	reminder.RemindAt = req.RemindAt
	if req.IsCompleted != nil {
		reminder.IsCompleted = *req.IsCompleted
	}
	reminder.UpdatedAt = time.Now()

	if err := h.Repo.UpdateReminder(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update reminder"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "update", model.ItemTypeReminder, reminder.ID, reminder.Title, "", nil)
	c.JSON(http.StatusOK, reminder)
}

func (h *ItemHandler) DeleteReminder(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.Repo.DeleteReminder(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete reminder"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "delete", model.ItemTypeReminder, id, "", "", nil)
	c.JSON(http.StatusOK, gin.H{"message": "reminder deleted"})
}
