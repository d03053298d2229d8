package ui

import (
	"context"
	"errors"
	"taskManager/internal/client"
	"taskManager/internal/models/task"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) Create(ctx context.Context, in client.CreateInput) (*task.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskAPI) List(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockTaskAPI) Update(ctx context.Context, id string, in client.UpdateInput) (*task.Task, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskAPI) Delete(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

var _ TaskAPI = (*MockTaskAPI)(nil)
var _ TaskAPI = (*client.Client)(nil)

var (
	milk   = task.Task{ID: "1", Title: "Buy milk", Description: "2 litres", Status: task.StatusPending}
	report = task.Task{ID: "2", Title: "Write report", Status: task.StatusInProgress}
)

func TestBoard_New(t *testing.T) {
	view := NewBoard(new(MockTaskAPI)).View()

	assert.Empty(t, view.Tasks)
	assert.Equal(t, task.StatusPending, view.Form.Status)
	assert.Nil(t, view.Editing)
	assert.Equal(t, task.Statuses(), view.Statuses)
}

func TestBoard_Refresh(t *testing.T) {
	api := new(MockTaskAPI)
	api.On("List", mock.Anything, task.Filter{}).Return([]task.Task{report, milk}, nil).Once()
	api.On("List", mock.Anything, task.Filter{}).Return(nil, errors.New("connection refused")).Once()

	board := NewBoard(api)
	board.Refresh(context.Background())
	assert.Len(t, board.View().Tasks, 2)

	// failure keeps the last list
	board.Refresh(context.Background())
	assert.Len(t, board.View().Tasks, 2)

	api.AssertExpectations(t)
}

func TestBoard_FiltersRefetch(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	api.On("List", mock.Anything, task.Filter{Keyword: "m"}).Return([]task.Task{milk}, nil).Once()
	api.On("List", mock.Anything, task.Filter{Keyword: "mi"}).Return([]task.Task{milk}, nil).Once()
	api.On("List", mock.Anything, task.Filter{Keyword: "mi", Status: task.StatusCompleted}).Return([]task.Task{}, nil).Once()

	board := NewBoard(api)
	board.SetKeyword(ctx, "m")
	board.SetKeyword(ctx, "mi")
	assert.Len(t, board.View().Tasks, 1)

	board.SetStatusFilter(ctx, task.StatusCompleted)
	view := board.View()
	assert.Empty(t, view.Tasks)
	assert.Equal(t, "mi", view.Keyword)
	assert.Equal(t, task.StatusCompleted, view.StatusFilter)

	api.AssertExpectations(t)
}

func TestBoard_SubmitCreates(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	api.On("Create", mock.Anything, client.CreateInput{Title: "Buy milk", Description: "2 litres", Status: task.StatusPending}).
		Return(&milk, nil)
	api.On("List", mock.Anything, task.Filter{}).Return([]task.Task{milk}, nil)

	board := NewBoard(api)
	board.SetForm(Form{Title: "Buy milk", Description: "2 litres", Status: task.StatusPending})
	assert.True(t, board.Submit(ctx))

	view := board.View()
	assert.Equal(t, emptyForm(), view.Form)
	assert.Equal(t, []task.Task{milk}, view.Tasks)
	api.AssertExpectations(t)
}

func TestBoard_SubmitUpdatesEditedTask(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	api.On("List", mock.Anything, task.Filter{}).Return([]task.Task{milk, report}, nil)
	api.On("Update", mock.Anything, "1", mock.MatchedBy(func(in client.UpdateInput) bool {
		return in.Title != nil && *in.Title == "Buy oat milk" &&
			in.Description != nil && *in.Description == "2 litres" &&
			in.Status != nil && *in.Status == task.StatusCompleted
	})).Return(&task.Task{ID: "1", Title: "Buy oat milk", Status: task.StatusCompleted}, nil)

	board := NewBoard(api)
	board.Refresh(ctx)

	require.True(t, board.EditByID("1"))
	view := board.View()
	require.NotNil(t, view.Editing)
	assert.Equal(t, "Buy milk", view.Form.Title)
	assert.Equal(t, "2 litres", view.Form.Description)

	board.SetForm(Form{Title: "Buy oat milk", Description: "2 litres", Status: task.StatusCompleted})
	assert.True(t, board.Submit(ctx))

	view = board.View()
	assert.Nil(t, view.Editing)
	assert.Equal(t, emptyForm(), view.Form)
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	api.AssertExpectations(t)
}

func TestBoard_SubmitFailureKeepsForm(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	api.On("Update", mock.Anything, "2", mock.Anything).Return(nil, &client.APIError{StatusCode: 404, Message: "Task not found"})

	board := NewBoard(api)
	board.Edit(report)
	board.SetForm(Form{Title: "Write it", Status: task.StatusInProgress})
	assert.False(t, board.Submit(ctx))

	view := board.View()
	require.NotNil(t, view.Editing)
	assert.Equal(t, "2", view.Editing.ID)
	assert.Equal(t, "Write it", view.Form.Title)
	api.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestBoard_EditByIDUnknown(t *testing.T) {
	board := NewBoard(new(MockTaskAPI))
	assert.False(t, board.EditByID("missing"))
	assert.Nil(t, board.View().Editing)
}

func TestBoard_Delete(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	api.On("Delete", mock.Anything, "1").Return("Task deleted successfully", nil).Once()
	api.On("Delete", mock.Anything, "9").Return("", &client.APIError{StatusCode: 404}).Once()
	api.On("List", mock.Anything, task.Filter{}).Return([]task.Task{report}, nil).Once()

	board := NewBoard(api)
	board.Delete(ctx, "1")
	assert.Equal(t, []task.Task{report}, board.View().Tasks)

	// failed delete does not refresh
	board.Delete(ctx, "9")
	api.AssertExpectations(t)
}

func TestBoard_ViewIsACopy(t *testing.T) {
	api := new(MockTaskAPI)
	api.On("List", mock.Anything, task.Filter{}).Return([]task.Task{milk}, nil)

	board := NewBoard(api)
	board.Refresh(context.Background())
	board.Edit(milk)

	view := board.View()
	view.Tasks[0].Title = "changed"
	view.Editing.Title = "changed"

	again := board.View()
	assert.Equal(t, "Buy milk", again.Tasks[0].Title)
	assert.Equal(t, "Buy milk", again.Editing.Title)
}

func TestView_URLsKeepFilters(t *testing.T) {
	board := NewBoard(new(MockTaskAPI))
	board.restoreFilters("milk", task.StatusPending)

	view := board.View()
	assert.Equal(t, "/?keyword=milk&status=pending", view.HomeURL())
	assert.Equal(t, "/?edit=1&keyword=milk&status=pending", view.EditURL("1"))
	assert.Empty(t, view.Tasks)
}
