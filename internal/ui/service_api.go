package ui

import (
	"context"
	"taskManager/internal/client"
	"taskManager/internal/models/task"
)

// TaskService is the slice of the task service the board needs when it runs
// in the same process as the API.
type TaskService interface {
	CreateTask(ctx context.Context, title, description string, status task.Status) (*task.Task, error)
	ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	UpdateTask(ctx context.Context, id string, opts ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ServiceAPI serves the board straight from the service, without a network
// hop through the API.
type ServiceAPI struct {
	svc TaskService
}

func NewServiceAPI(svc TaskService) *ServiceAPI {
	return &ServiceAPI{svc: svc}
}

func (a *ServiceAPI) Create(ctx context.Context, in client.CreateInput) (*task.Task, error) {
	return a.svc.CreateTask(ctx, in.Title, in.Description, in.Status)
}

func (a *ServiceAPI) List(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	found, err := a.svc.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(found))
	for _, t := range found {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (a *ServiceAPI) Update(ctx context.Context, id string, in client.UpdateInput) (*task.Task, error) {
	var opts []task.TaskOption
	if in.Title != nil {
		opts = append(opts, task.WithTitle(*in.Title))
	}
	if in.Description != nil {
		opts = append(opts, task.WithDescription(*in.Description))
	}
	if in.Status != nil {
		opts = append(opts, task.WithStatus(*in.Status))
	}
	return a.svc.UpdateTask(ctx, id, opts...)
}

func (a *ServiceAPI) Delete(ctx context.Context, id string) (string, error) {
	if err := a.svc.DeleteTask(ctx, id); err != nil {
		return "", err
	}
	return "Task deleted successfully", nil
}
