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

type TaskHandler struct {
	Repo     *repository.PostgresRepo
	Activity *service.ActivityService
	Game     *service.GamificationService
}

func NewTaskHandler(repo *repository.PostgresRepo, activity *service.ActivityService, game *service.GamificationService) *TaskHandler {
	return &TaskHandler{Repo: repo, Activity: activity, Game: game}
}

func parsePriority(s string) model.TaskPriority {
	switch model.TaskPriority(s) {
	case model.PriorityHigh:
		return model.PriorityHigh
	case model.PriorityMedium:
		return model.PriorityMedium
	}
	return model.PriorityLow
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID := middleware.UserID(c)
	includeDeleted := c.Query("include_deleted") == "true"

	tasks, err := h.Repo.ListTasks(c.Request.Context(), userID, includeDeleted)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	userID := middleware.UserID(c)

	task, err := h.Repo.GetTask(c.Request.Context(), userID, c.Param("id"), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskIncomplete,
		Priority:    parsePriority(req.Priority),
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Repo.CreateTask(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "create", model.ItemTypeTask, task.ID, task.Title, "", nil)
	h.Game.AwardCreateXP(c.Request.Context(), userID)

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID := middleware.UserID(c)

	var req model.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	task, err := h.Repo.GetTask(c.Request.Context(), userID, c.Param("id"), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}

	wasIncomplete := task.Status == model.TaskIncomplete
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = parsePriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	task.UpdatedAt = time.Now()

	if err := h.Repo.UpdateTask(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "update", model.ItemTypeTask, task.ID, task.Title, "", nil)
	if wasIncomplete && task.Status == model.TaskCompleted {
		h.Game.AwardCompleteXP(c.Request.Context(), userID)
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.Repo.SoftDeleteTask(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "delete", model.ItemTypeTask, id, "", "", nil)
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (h *TaskHandler) RestoreTask(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.Repo.RestoreTask(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found or not deleted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore task"})
		return
	}

	h.Activity.LogActivity(c.Request.Context(), userID, "restore", model.ItemTypeTask, id, "", "", nil)
	c.JSON(http.StatusOK, gin.H{"message": "task restored"})
}
