package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "taskflow/backend/internal/errors"
	"taskflow/backend/internal/middleware"
	"taskflow/backend/internal/services"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	ownerID, ok := middleware.Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{Error: "access token required"})
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), ownerID)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		c.JSON(httpErr.StatusCode, apperrors.ErrorResponse{Error: httpErr.Message})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, ok := middleware.Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{Error: "access token required"})
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{Error: "invalid request body"})
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		c.JSON(httpErr.StatusCode, apperrors.ErrorResponse{Error: httpErr.Message})
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ownerID, ok := middleware.Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{Error: "access token required"})
		return
	}

	id, ok := taskID(c)
	if !ok {
		c.JSON(http.StatusNotFound, apperrors.ErrorResponse{Error: apperrors.ErrTaskNotFound.Error()})
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.taskService.Update(c.Request.Context(), ownerID, id, req); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		c.JSON(httpErr.StatusCode, apperrors.ErrorResponse{Error: httpErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, ok := middleware.Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{Error: "access token required"})
		return
	}

	id, ok := taskID(c)
	if !ok {
		c.JSON(http.StatusNotFound, apperrors.ErrorResponse{Error: apperrors.ErrTaskNotFound.Error()})
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), ownerID, id); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		c.JSON(httpErr.StatusCode, apperrors.ErrorResponse{Error: httpErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// taskID parses the :id path segment. A non-numeric id can never match
// a row, so it reads as not found rather than a bad request.
func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
