package services

import (
	"context"
	"fmt"
	"time"

	"taskflow/backend/internal/cache"
	"taskflow/backend/internal/models"
)

const taskListTTL = 15 * time.Minute

// CachedTaskService decorates a TaskService with a per-owner list
// cache. Keys embed the owner id, so a cache read can never cross the
// ownership boundary, and every write invalidates only that owner.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		inner: inner,
		cache: cacheInstance,
	}
}

func ownerTasksKey(ownerID uint) string {
	return fmt.Sprintf("user_tasks:%d", ownerID)
}

func (s *CachedTaskService) List(ctx context.Context, ownerID uint) ([]models.Task, error) {
	key := ownerTasksKey(ownerID)

	var cached []models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.inner.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, tasks, taskListTTL)

	return tasks, nil
}

func (s *CachedTaskService) Create(ctx context.Context, ownerID uint, req CreateTaskRequest) (*models.Task, error) {
	task, err := s.inner.Create(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ownerTasksKey(ownerID))

	return task, nil
}

func (s *CachedTaskService) Update(ctx context.Context, ownerID, id uint, req UpdateTaskRequest) error {
	if err := s.inner.Update(ctx, ownerID, id, req); err != nil {
		return err
	}

	s.cache.Delete(ownerTasksKey(ownerID))

	return nil
}

func (s *CachedTaskService) Delete(ctx context.Context, ownerID, id uint) error {
	if err := s.inner.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.cache.Delete(ownerTasksKey(ownerID))

	return nil
}

func (s *CachedTaskService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}
