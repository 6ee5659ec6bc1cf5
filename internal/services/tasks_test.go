package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskflow/backend/internal/cache"
	apperrors "taskflow/backend/internal/errors"
	"taskflow/backend/internal/models"
	"taskflow/backend/internal/repositories"
	"taskflow/backend/internal/services"
)

func newTaskService(t *testing.T) (services.TaskService, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	return services.NewTaskService(repositories.NewTaskRepository(db), nil), db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Username: email, Email: email, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateTask_Defaults(t *testing.T) {
	svc, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")

	task, err := svc.Create(context.Background(), owner.ID, services.CreateTaskRequest{Title: "buy milk"})
	require.NoError(t, err)

	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, owner.ID, task.OwnerID)
	assert.Nil(t, task.DueDate)
}

func TestCreateTask_MissingTitle(t *testing.T) {
	svc, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")

	_, err := svc.Create(context.Background(), owner.ID, services.CreateTaskRequest{Title: "   "})
	assert.ErrorIs(t, err, apperrors.ErrMissingTitle)
}

func TestCreateTask_InvalidEnums(t *testing.T) {
	svc, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")
	ctx := context.Background()

	_, err := svc.Create(ctx, owner.ID, services.CreateTaskRequest{Title: "t", Status: "DONE"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = svc.Create(ctx, owner.ID, services.CreateTaskRequest{Title: "t", Priority: "URGENT"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPriority)
}

func TestListTasks_OwnerScoped(t *testing.T) {
	svc, db := newTaskService(t)
	alice := createTestUser(t, db, "alice@x.com")
	bob := createTestUser(t, db, "bob@x.com")
	ctx := context.Background()

	_, err := svc.Create(ctx, alice.ID, services.CreateTaskRequest{Title: "alice task"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, services.CreateTaskRequest{Title: "bob task"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "alice task", tasks[0].Title)
}

func TestUpdateTask_PartialFields(t *testing.T) {
	svc, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")
	ctx := context.Background()

	task, err := svc.Create(ctx, owner.ID, services.CreateTaskRequest{
		Title:       "original",
		Description: "keep me",
		Priority:    models.PriorityHigh,
	})
	require.NoError(t, err)

	status := models.StatusCompleted
	err = svc.Update(ctx, owner.ID, task.ID, services.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusCompleted, tasks[0].Status)
	assert.Equal(t, "original", tasks[0].Title)
	assert.Equal(t, "keep me", tasks[0].Description)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
}

func TestUpdateTask_Validation(t *testing.T) {
	svc, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")
	ctx := context.Background()

	task, err := svc.Create(ctx, owner.ID, services.CreateTaskRequest{Title: "t"})
	require.NoError(t, err)

	empty := ""
	err = svc.Update(ctx, owner.ID, task.ID, services.UpdateTaskRequest{Title: &empty})
	assert.ErrorIs(t, err, apperrors.ErrMissingTitle)

	bad := models.TaskStatus("DONE")
	err = svc.Update(ctx, owner.ID, task.ID, services.UpdateTaskRequest{Status: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestUpdateTask_ForeignOwner(t *testing.T) {
	svc, db := newTaskService(t)
	alice := createTestUser(t, db, "alice@x.com")
	bob := createTestUser(t, db, "bob@x.com")
	ctx := context.Background()

	task, err := svc.Create(ctx, alice.ID, services.CreateTaskRequest{Title: "alice task"})
	require.NoError(t, err)

	title := "stolen"
	err = svc.Update(ctx, bob.ID, task.ID, services.UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	// Alice's task is untouched.
	tasks, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "alice task", tasks[0].Title)
}

func TestDeleteTask(t *testing.T) {
	svc, db := newTaskService(t)
	alice := createTestUser(t, db, "alice@x.com")
	bob := createTestUser(t, db, "bob@x.com")
	ctx := context.Background()

	task, err := svc.Create(ctx, alice.ID, services.CreateTaskRequest{Title: "alice task"})
	require.NoError(t, err)

	err = svc.Delete(ctx, bob.ID, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	require.NoError(t, svc.Delete(ctx, alice.ID, task.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice.ID, task.ID), apperrors.ErrTaskNotFound)
}

func TestCachedTaskService_ListCaching(t *testing.T) {
	inner, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")
	ctx := context.Background()

	svc := services.NewCachedTaskService(inner, cache.NewMemoryCache())

	_, err := svc.Create(ctx, owner.ID, services.CreateTaskRequest{Title: "cached"})
	require.NoError(t, err)

	first, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write behind the decorator's back is masked by the cache.
	require.NoError(t, db.Create(&models.Task{
		OwnerID:  owner.ID,
		Title:    "sneaky",
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
	}).Error)

	second, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestCachedTaskService_WriteInvalidation(t *testing.T) {
	inner, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")
	ctx := context.Background()

	svc := services.NewCachedTaskService(inner, cache.NewMemoryCache())

	task, err := svc.Create(ctx, owner.ID, services.CreateTaskRequest{Title: "first"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// Create invalidates the owner's cached list.
	_, err = svc.Create(ctx, owner.ID, services.CreateTaskRequest{Title: "second"})
	require.NoError(t, err)

	tasks, err = svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	// So do update and delete.
	title := "renamed"
	require.NoError(t, svc.Update(ctx, owner.ID, task.ID, services.UpdateTaskRequest{Title: &title}))

	tasks, err = svc.List(ctx, owner.ID)
	require.NoError(t, err)
	names := []string{tasks[0].Title, tasks[1].Title}
	assert.Contains(t, names, "renamed")

	require.NoError(t, svc.Delete(ctx, owner.ID, task.ID))

	tasks, err = svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateTask_WithDueDate(t *testing.T) {
	svc, db := newTaskService(t)
	owner := createTestUser(t, db, "owner@x.com")

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	task, err := svc.Create(context.Background(), owner.ID, services.CreateTaskRequest{
		Title:   "with deadline",
		DueDate: &due,
	})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))
}
