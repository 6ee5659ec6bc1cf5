package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestQueue(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, mr
}

func TestJobQueue_Enqueue(t *testing.T) {
	client, _ := setupTestQueue(t)
	queue := NewJobQueue(client)

	err := queue.Enqueue(ReminderQueue, JobTypeDueReminder, map[string]interface{}{
		"task_id":  float64(7),
		"owner_id": float64(3),
	})
	if err != nil {
		t.Fatalf("Failed to enqueue job: %v", err)
	}

	size, err := queue.GetQueueSize(ReminderQueue)
	if err != nil {
		t.Fatalf("Failed to read queue size: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected queue size 1, got %d", size)
	}

	data, err := client.LPop(context.Background(), ReminderQueue).Result()
	if err != nil {
		t.Fatalf("Failed to pop job: %v", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		t.Fatalf("Failed to unmarshal job: %v", err)
	}

	if job.ID == "" {
		t.Error("Expected a generated job ID")
	}
	if job.Type != JobTypeDueReminder {
		t.Errorf("Expected job type %s, got %s", JobTypeDueReminder, job.Type)
	}
	if job.MaxTries != 3 {
		t.Errorf("Expected MaxTries 3, got %d", job.MaxTries)
	}
	if job.Payload["task_id"] != float64(7) {
		t.Errorf("Expected task_id 7 in payload, got %v", job.Payload["task_id"])
	}
}

func TestWorker_ProcessesDueJob(t *testing.T) {
	client, _ := setupTestQueue(t)
	queue := NewJobQueue(client)

	var mu sync.Mutex
	processed := make([]string, 0)

	w := NewWorker(WorkerConfig{RedisClient: client})
	w.RegisterHandler(JobTypeDueReminder, func(ctx context.Context, job *Job) error {
		mu.Lock()
		processed = append(processed, job.ID)
		mu.Unlock()
		return nil
	})

	if err := queue.Enqueue(ReminderQueue, JobTypeDueReminder, map[string]interface{}{"task_id": float64(1)}); err != nil {
		t.Fatalf("Failed to enqueue job: %v", err)
	}

	w.Start(1)
	defer w.Stop()

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		done := len(processed) == 1
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for job to be processed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorker_FailedJobLandsInDeadQueue(t *testing.T) {
	client, _ := setupTestQueue(t)

	w := NewWorker(WorkerConfig{RedisClient: client})
	w.RegisterHandler(JobTypeDueReminder, func(ctx context.Context, job *Job) error {
		return context.DeadlineExceeded
	})

	// Last allowed attempt: failure goes straight to the dead queue.
	job := &Job{
		ID:        "job-1",
		Type:      JobTypeDueReminder,
		Attempts:  2,
		MaxTries:  3,
		CreatedAt: time.Now(),
		ProcessAt: time.Now().Add(-time.Minute),
	}

	if err := w.executeJob(job); err != nil {
		t.Fatalf("Dead-queue move failed: %v", err)
	}

	size, err := client.LLen(context.Background(), DeadQueue).Result()
	if err != nil {
		t.Fatalf("Failed to read dead queue: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected 1 dead job, got %d", size)
	}
}

func TestWorker_RetriesBeforeDeadQueue(t *testing.T) {
	client, _ := setupTestQueue(t)

	w := NewWorker(WorkerConfig{RedisClient: client})
	w.RegisterHandler(JobTypeDueReminder, func(ctx context.Context, job *Job) error {
		return context.DeadlineExceeded
	})

	job := &Job{
		ID:        "job-1",
		Type:      JobTypeDueReminder,
		Attempts:  0,
		MaxTries:  3,
		CreatedAt: time.Now(),
		ProcessAt: time.Now().Add(-time.Minute),
	}

	if err := w.executeJob(job); err != nil {
		t.Fatalf("Retry enqueue failed: %v", err)
	}

	size, err := client.LLen(context.Background(), RetryQueue).Result()
	if err != nil {
		t.Fatalf("Failed to read retry queue: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected 1 retried job, got %d", size)
	}

	data, _ := client.LPop(context.Background(), RetryQueue).Result()
	var retried Job
	if err := json.Unmarshal([]byte(data), &retried); err != nil {
		t.Fatalf("Failed to unmarshal retried job: %v", err)
	}
	if retried.Attempts != 1 {
		t.Errorf("Expected 1 attempt recorded, got %d", retried.Attempts)
	}
	if !retried.ProcessAt.After(time.Now()) {
		t.Error("Expected retry to be scheduled in the future")
	}
}

func TestWorker_FutureJobRequeuedWithBackoff(t *testing.T) {
	client, _ := setupTestQueue(t)
	queue := NewJobQueue(client)

	pollInterval := 50 * time.Millisecond
	w := NewWorker(WorkerConfig{
		RedisClient:  client,
		PollInterval: pollInterval,
		Queues:       []string{ReminderQueue},
	})

	due := time.Now().Add(time.Hour)
	if err := queue.EnqueueAt(ReminderQueue, JobTypeDueReminder, map[string]interface{}{
		"task_id": float64(1),
	}, due); err != nil {
		t.Fatalf("Failed to enqueue job: %v", err)
	}

	start := time.Now()
	if err := w.processNextJob(); err != nil {
		t.Fatalf("processNextJob failed: %v", err)
	}
	elapsed := time.Since(start)

	// The pass must pause after requeuing instead of spinning back to
	// BLPop immediately.
	if elapsed < pollInterval {
		t.Errorf("Expected a pause of at least %v after requeue, took %v", pollInterval, elapsed)
	}

	size, err := queue.GetQueueSize(ReminderQueue)
	if err != nil {
		t.Fatalf("Failed to read queue size: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected the job back in the queue, size %d", size)
	}

	data, _ := client.LPop(context.Background(), ReminderQueue).Result()
	var requeued Job
	if err := json.Unmarshal([]byte(data), &requeued); err != nil {
		t.Fatalf("Failed to unmarshal requeued job: %v", err)
	}
	if requeued.Attempts != 0 {
		t.Errorf("Requeue must not count as an attempt, got %d", requeued.Attempts)
	}
	if !requeued.ProcessAt.Equal(due) {
		t.Errorf("Expected ProcessAt preserved, got %v", requeued.ProcessAt)
	}
}
