package service

import (
	"context"
	"errors"
	"fmt"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

// TaskService owns validation and turns repository errors into
// BusinessErrors.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

// CreateTask stores a new task. An empty status means the default, pending.
func (s *TaskService) CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error) {
	if status == "" {
		status = task.StatusPending
	}

	newTask := &task.Task{
		Title:       title,
		Description: description,
		Status:      status,
	}
	if err := newTask.Validate(); err != nil {
		logger.Info("Service: task rejected", zap.Error(err))
		return nil, validationError(err)
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.Info("Service: task created", zap.String("task_id", newTask.ID))
	return newTask, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError(fmt.Errorf("%w: got %q", task.ErrInvalidStatus, string(filter.Status)))
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repoError(err, id, "get task")
	}
	return found, nil
}

// UpdateTask loads the task, applies opts and stores the result. Nothing is
// written when the updated task fails validation.
func (s *TaskService) UpdateTask(ctx context.Context, id string, opts ...task.TaskOption) (*task.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repoError(err, id, "get task")
	}

	existing.Apply(opts...)
	if err := existing.Validate(); err != nil {
		logger.Info("Service: update rejected", zap.String("task_id", id), zap.Error(err))
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.repoError(err, id, "update task")
	}

	logger.Info("Service: task updated", zap.String("task_id", id))
	return existing, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.repoError(err, id, "delete task")
	}

	logger.Info("Service: task deleted", zap.String("task_id", id))
	return nil
}

func (s *TaskService) repoError(err error, id, op string) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Service: task not found", zap.String("target_id", id))
		return NewNotFound(id)
	case errors.Is(err, rep.ErrInvalidID):
		logger.Info("Service: malformed task id", zap.String("target_id", id))
		return NewInvalidID(id)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
