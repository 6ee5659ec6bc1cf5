package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "taskflow/backend/internal/errors"
	"taskflow/backend/internal/models"
)

// TaskRepository hands out owner-bound task handles. It exposes no
// unscoped query surface: callers must go through ForOwner, so every
// task read and write carries the ownership predicate.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ForOwner returns a handle bound to the given subject id.
func (r *TaskRepository) ForOwner(ownerID uint) OwnedTasks {
	return OwnedTasks{db: r.db, ownerID: ownerID}
}

// OwnedTasks is a capability-scoped view of the tasks table. The owner
// id is fixed at construction and applied to every statement.
type OwnedTasks struct {
	db      *gorm.DB
	ownerID uint
}

// OwnerID reports the subject the handle is bound to.
func (o OwnedTasks) OwnerID() uint {
	return o.ownerID
}

func (o OwnedTasks) List(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	err := o.db.WithContext(ctx).
		Where("owner_id = ?", o.ownerID).
		Find(&tasks).Error
	return tasks, err
}

func (o OwnedTasks) Find(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := o.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, o.ownerID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (o OwnedTasks) Create(ctx context.Context, task *models.Task) error {
	task.OwnerID = o.ownerID
	return o.db.WithContext(ctx).Create(task).Error
}

// Update applies the given column values to the task matching both id
// and owner. A task owned by someone else is indistinguishable from a
// missing one.
func (o OwnedTasks) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		_, err := o.Find(ctx, id)
		return err
	}

	result := o.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", id, o.ownerID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// Delete physically removes the row; there is no soft delete.
func (o OwnedTasks) Delete(ctx context.Context, id uint) error {
	result := o.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, o.ownerID).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}
