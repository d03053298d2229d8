package handlers

import (
	"context"
	"taskManager/internal/models/task"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error)
	ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, opts ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}
