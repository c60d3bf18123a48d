package api

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/session"
	"github.com/starford/extdeck/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageHandler renders the extension list as HTML forms.
type PageHandler struct {
	sess *session.Session
	// live enables the EventSource reload script.
	live bool
}

// NewPageHandler creates a PageHandler. live controls whether pages subscribe
// to /api/events for reloads.
func NewPageHandler(sess *session.Session, live bool) *PageHandler {
	return &PageHandler{sess: sess, live: live}
}

type indexData struct {
	Page view.Page
	Live bool
}

type confirmData struct {
	Prompt string
	Index  int
	Name   string
}

type errorData struct {
	Message string
}

func renderHTML(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render template failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func renderFailure(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	renderHTML(w, status, "error", errorData{Message: msg})
}

func backToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index handles GET /.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := h.sess.Page()
	if err != nil {
		renderFailure(w, "render page", err)
		return
	}
	renderHTML(w, http.StatusOK, "index", indexData{Page: page, Live: h.live})
}

// Filter handles POST /filter.
func (h *PageHandler) Filter(w http.ResponseWriter, r *http.Request) {
	mode, err := models.ParseFilter(r.FormValue("mode"))
	if err != nil {
		renderFailure(w, "select filter", err)
		return
	}
	if _, err := h.sess.Select(mode); err != nil {
		renderFailure(w, "select filter", err)
		return
	}
	backToList(w, r)
}

// Toggle handles POST /extensions/{index}/toggle.
func (h *PageHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	index, err := extensionIndex(r)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, "error", errorData{Message: "invalid index"})
		return
	}
	if _, err := h.sess.Toggle(index, r.FormValue("name")); err != nil {
		renderFailure(w, "toggle extension", err)
		return
	}
	backToList(w, r)
}

// Remove handles POST /extensions/{index}/remove. Without a confirm field it
// renders the confirmation prompt; confirm=yes removes and confirm=no cancels.
func (h *PageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	index, err := extensionIndex(r)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, "error", errorData{Message: "invalid index"})
		return
	}
	name := r.FormValue("name")
	answer := r.FormValue("confirm")
	if answer == "" {
		ext, err := h.sess.Lookup(index, name)
		if err != nil {
			renderFailure(w, "remove extension", err)
			return
		}
		renderHTML(w, http.StatusOK, "confirm", confirmData{
			Prompt: view.RemovePrompt(ext.Name),
			Index:  index,
			Name:   ext.Name,
		})
		return
	}
	if _, err := h.sess.Remove(index, name, func(string) bool { return answer == "yes" }); err != nil {
		renderFailure(w, "remove extension", err)
		return
	}
	backToList(w, r)
}
