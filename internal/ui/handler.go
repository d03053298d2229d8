package ui

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templates embed.FS

var boardTemplate = template.Must(template.ParseFS(templates, "templates/board.html"))

// Handler serves the board. Nothing is kept between requests: filters travel
// in the query string or hidden fields, and the task being edited is the
// form's hidden id.
type Handler struct {
	api TaskAPI
}

func NewHandler(api TaskAPI) *Handler {
	return &Handler{api: api}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Route("/ui/tasks", func(r chi.Router) {
		r.Post("/", h.Submit)
		r.Post("/{id}/delete", h.Delete)
	})
}

// Index renders the board for the keyword and status in the query. With
// edit=<id> that task is loaded into the form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	keyword, status := parseFilters(query.Get("keyword"), query.Get("status"))

	board := NewBoard(h.api)
	if keyword == "" && status == "" {
		board.Refresh(ctx)
	}
	if keyword != "" {
		board.SetKeyword(ctx, keyword)
	}
	if status != "" {
		board.SetStatusFilter(ctx, status)
	}

	if id := query.Get("edit"); id != "" && !board.EditByID(id) {
		logger.Warn("UI: task to edit is not on the board", zap.String("task_id", id))
	}

	render(w, board)
}

// Submit creates a task, or updates the one named by the hidden id field.
// A failed write renders the board again with the form as it was posted.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Warn("UI: bad form", zap.Error(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	form := r.PostForm
	keyword, status := parseFilters(form.Get("keyword"), form.Get("filter_status"))

	board := NewBoard(h.api)
	board.restoreFilters(keyword, status)
	if id := form.Get("id"); id != "" {
		board.Edit(task.Task{ID: id})
	}
	board.SetForm(Form{
		Title:       form.Get("title"),
		Description: form.Get("description"),
		Status:      task.Status(form.Get("status")),
	})

	if board.Submit(r.Context()) {
		http.Redirect(w, r, boardURL(keyword, status, ""), http.StatusSeeOther)
		return
	}

	board.Refresh(r.Context())
	render(w, board)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Warn("UI: bad form", zap.Error(err))
	}
	keyword, status := parseFilters(r.PostForm.Get("keyword"), r.PostForm.Get("filter_status"))

	board := NewBoard(h.api)
	board.restoreFilters(keyword, status)
	board.Delete(r.Context(), chi.URLParam(r, "id"))

	http.Redirect(w, r, boardURL(keyword, status, ""), http.StatusSeeOther)
}

// parseFilters drops a status outside the closed set; "" means all.
func parseFilters(keyword, rawStatus string) (string, task.Status) {
	if rawStatus == "" {
		return keyword, ""
	}
	status, err := task.ParseStatus(rawStatus)
	if err != nil {
		logger.Warn("UI: ignoring status filter", zap.String("status", rawStatus), zap.Error(err))
		return keyword, ""
	}
	return keyword, status
}

func boardURL(keyword string, status task.Status, edit string) string {
	query := url.Values{}
	if keyword != "" {
		query.Set("keyword", keyword)
	}
	if status != "" {
		query.Set("status", string(status))
	}
	if edit != "" {
		query.Set("edit", edit)
	}
	if len(query) == 0 {
		return "/"
	}
	return "/?" + query.Encode()
}

func render(w http.ResponseWriter, board *Board) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := boardTemplate.Execute(w, board.View()); err != nil {
		logger.Error("UI: failed to render board", err)
	}
}
