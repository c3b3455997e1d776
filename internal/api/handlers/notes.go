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

type NoteHandler struct {
	Repo     *repository.PostgresRepo
	Activity *service.ActivityService
	Game     *service.GamificationService
}

func NewNoteHandler(repo *repository.PostgresRepo, activity *service.ActivityService, game *service.GamificationService) *NoteHandler {
	return &NoteHandler{Repo: repo, Activity: activity, Game: game}
}

func (h *NoteHandler) ListNotes(c *gin.Context) {
	userID := middleware.UserID(c)
	includeDeleted := c.Query("include_deleted") == "true"

	notes, err := h.Repo.ListNotes(c.Request.Context(), userID, includeDeleted)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	userID := middleware.UserID(c)

	note, err := h.Repo.GetNote(c.Request.Context(), userID, c.Param("id"), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get note"})
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	now := time.Now()
	note := &model.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Repo.CreateNote(c.Request.Context(), note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create note"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "create", model.ItemTypeNote, note.ID, note.Title, "", nil)
	h.Game.AwardCreateXP(c.Request.Context(), userID)

	c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	note, err := h.Repo.GetNote(c.Request.Context(), userID, c.Param("id"), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get note"})
		return
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	note.UpdatedAt = time.Now()

	if err := h.Repo.UpdateNote(c.Request.Context(), note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update note"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "update", model.ItemTypeNote, note.ID, note.Title, "", nil)
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.Repo.SoftDeleteNote(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete note"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "delete", model.ItemTypeNote, id, "", "", nil)
	c.JSON(http.StatusOK, gin.H{"message": "note deleted"})
}

func (h *NoteHandler) RestoreNote(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.Repo.RestoreNote(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found or not deleted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore note"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "restore", model.ItemTypeNote, id, "", "", nil)
	c.JSON(http.StatusOK, gin.H{"message": "note restored"})
}
