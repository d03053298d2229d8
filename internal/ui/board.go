// Package ui serves the browser task board and keeps its state.
package ui

import (
	"context"
	"sync"
	"taskManager/internal/client"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

// TaskAPI is the part of the API client the board uses.
type TaskAPI interface {
	Create(ctx context.Context, in client.CreateInput) (*task.Task, error)
	List(ctx context.Context, filter task.Filter) ([]task.Task, error)
	Update(ctx context.Context, id string, in client.UpdateInput) (*task.Task, error)
	Delete(ctx context.Context, id string) (string, error)
}

type Form struct {
	Title       string
	Description string
	Status      task.Status
}

func emptyForm() Form {
	return Form{Status: task.StatusPending}
}

// View is a copy of the board state for rendering.
type View struct {
	Tasks        []task.Task
	Form         Form
	Keyword      string
	StatusFilter task.Status
	Editing      *task.Task
	Statuses     []task.Status
}

// Board is the state behind one page view: the last fetched list, the form,
// the filters and the task being edited. The browser carries that state
// between requests, so a Board lives for one request. Network failures are
// logged and leave the state as it was.
type Board struct {
	api TaskAPI

	mtx          sync.Mutex
	tasks        []task.Task
	form         Form
	keyword      string
	statusFilter task.Status
	editing      *task.Task
}

func NewBoard(api TaskAPI) *Board {
	return &Board{
		api:   api,
		tasks: []task.Task{},
		form:  emptyForm(),
	}
}

// restoreFilters sets the filters without fetching.
func (b *Board) restoreFilters(keyword string, status task.Status) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.keyword = keyword
	b.statusFilter = status
}

func (b *Board) Refresh(ctx context.Context) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.refresh(ctx)
}

func (b *Board) refresh(ctx context.Context) {
	tasks, err := b.api.List(ctx, task.Filter{Keyword: b.keyword, Status: b.statusFilter})
	if err != nil {
		logger.Error("UI: failed to fetch tasks", err,
			zap.String("keyword", b.keyword),
			zap.String("status", string(b.statusFilter)))
		return
	}
	b.tasks = tasks
}

func (b *Board) SetKeyword(ctx context.Context, keyword string) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.keyword = keyword
	b.refresh(ctx)
}

// SetStatusFilter sets the status filter; "" shows every status.
func (b *Board) SetStatusFilter(ctx context.Context, status task.Status) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.statusFilter = status
	b.refresh(ctx)
}

func (b *Board) SetForm(form Form) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.form = form
}

// Edit loads t into the form and marks it as the task being edited.
func (b *Board) Edit(t task.Task) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.editing = &t
	b.form = Form{Title: t.Title, Description: t.Description, Status: t.Status}
}

// EditByID edits a task from the current list. It reports false when the
// id is not on the board.
func (b *Board) EditByID(id string) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for _, t := range b.tasks {
		if t.ID == id {
			edited := t
			b.editing = &edited
			b.form = Form{Title: t.Title, Description: t.Description, Status: t.Status}
			return true
		}
	}
	return false
}

// Submit creates a task from the form, or updates the edited one. On success
// the form and the edit reference are cleared and the list is refreshed. It
// reports whether the write went through.
func (b *Board) Submit(ctx context.Context) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	form := b.form
	if b.editing == nil {
		_, err := b.api.Create(ctx, client.CreateInput{
			Title:       form.Title,
			Description: form.Description,
			Status:      form.Status,
		})
		if err != nil {
			logger.Error("UI: failed to create task", err)
			return false
		}
	} else {
		_, err := b.api.Update(ctx, b.editing.ID, client.UpdateInput{
			Title:       &form.Title,
			Description: &form.Description,
			Status:      &form.Status,
		})
		if err != nil {
			logger.Error("UI: failed to update task", err, zap.String("task_id", b.editing.ID))
			return false
		}
		b.editing = nil
	}

	b.form = emptyForm()
	b.refresh(ctx)
	return true
}

func (b *Board) Delete(ctx context.Context, id string) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if _, err := b.api.Delete(ctx, id); err != nil {
		logger.Error("UI: failed to delete task", err, zap.String("task_id", id))
		return
	}
	b.refresh(ctx)
}

// HomeURL is the board with the current filters and nothing being edited.
func (v View) HomeURL() string {
	return boardURL(v.Keyword, v.StatusFilter, "")
}

// EditURL is the board with the current filters and id loaded into the form.
func (v View) EditURL(id string) string {
	return boardURL(v.Keyword, v.StatusFilter, id)
}

func (b *Board) View() View {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	view := View{
		Tasks:        append([]task.Task(nil), b.tasks...),
		Form:         b.form,
		Keyword:      b.keyword,
		StatusFilter: b.statusFilter,
		Statuses:     task.Statuses(),
	}
	if b.editing != nil {
		edited := *b.editing
		view.Editing = &edited
	}
	return view
}
