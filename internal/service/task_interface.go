package service

import (
	"context"
	"taskManager/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	List(context.Context, task.Filter) ([]*task.Task, error)
	GetByID(context.Context, string) (*task.Task, error)
	Update(context.Context, *task.Task) error
	Delete(context.Context, string) error
}
