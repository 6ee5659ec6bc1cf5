package services

import (
	"context"
	"log"
	"strings"
	"time"

	apperrors "taskflow/backend/internal/errors"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/worker"
)

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
}

// UpdateTaskRequest distinguishes absent fields from zero values so a
// partial update touches only what the caller sent.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"dueDate"`
}

// TaskService performs task CRUD on behalf of an authenticated subject.
// Every operation takes the subject id and works through an owner-bound
// repository handle, so no call can reach another owner's rows.
type TaskService interface {
	List(ctx context.Context, ownerID uint) ([]models.Task, error)
	Create(ctx context.Context, ownerID uint, req CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, ownerID, id uint, req UpdateTaskRequest) error
	Delete(ctx context.Context, ownerID, id uint) error
}

type TaskServiceImpl struct {
	tasks *repositories.TaskRepository
	// queue schedules due-date reminders; nil disables scheduling.
	queue *worker.JobQueue
}

func NewTaskService(tasks *repositories.TaskRepository, queue *worker.JobQueue) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, queue: queue}
}

func (s *TaskServiceImpl) List(ctx context.Context, ownerID uint) ([]models.Task, error) {
	return s.tasks.ForOwner(ownerID).List(ctx)
}

func (s *TaskServiceImpl) Create(ctx context.Context, ownerID uint, req CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.ErrMissingTitle
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.ErrInvalidPriority
	}

	task := &models.Task{
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if err := s.tasks.ForOwner(ownerID).Create(ctx, task); err != nil {
		return nil, err
	}

	s.scheduleReminder(task)

	return task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, ownerID, id uint, req UpdateTaskRequest) error {
	fields := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return apperrors.ErrMissingTitle
		}
		fields["title"] = title
	}

	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return apperrors.ErrInvalidStatus
		}
		fields["status"] = *req.Status
	}

	if req.Priority != nil {
		if !req.Priority.Valid() {
			return apperrors.ErrInvalidPriority
		}
		fields["priority"] = *req.Priority
	}

	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	return s.tasks.ForOwner(ownerID).Update(ctx, id, fields)
}

func (s *TaskServiceImpl) Delete(ctx context.Context, ownerID, id uint) error {
	return s.tasks.ForOwner(ownerID).Delete(ctx, id)
}

// scheduleReminder enqueues a reminder due when the task is. A queue
// failure is logged and swallowed; it must not fail the create.
func (s *TaskServiceImpl) scheduleReminder(task *models.Task) {
	if s.queue == nil || task.DueDate == nil {
		return
	}

	err := s.queue.EnqueueAt(worker.ReminderQueue, worker.JobTypeDueReminder, map[string]interface{}{
		"task_id":  task.ID,
		"owner_id": task.OwnerID,
		"title":    task.Title,
	}, *task.DueDate)
	if err != nil {
		log.Printf("Failed to schedule reminder for task %d: %v", task.ID, err)
	}
}
