package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mergington/activities/internal/app/viewcontroller"
	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/platform/clock"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// View is the page controller the handler renders.
type View interface {
	LoadActivities(ctx context.Context) viewcontroller.Page
	Signup(ctx context.Context, form viewcontroller.SignupForm) viewcontroller.Page
	Unregister(ctx context.Context, activity domain.ActivityName, email string) viewcontroller.Page
}

// Handler serves the signup page. BasePath is the prefix the handler is mounted under
// and is used for form actions.
//
// Form POSTs answer 303 See Other to the page; the page they produced is shown once by
// the following GET.
type Handler struct {
	View     View
	BasePath string
	Log      *zap.Logger

	flash *flashStore
}

func NewHandler(view View, basePath string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		View:     view,
		BasePath: strings.TrimRight(basePath, "/"),
		Log:      log,
		flash:    newFlashStore(clock.NewSystemClock(), flashTTL),
	}
}

// Routes returns the page router, relative to BasePath.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/signup", h.Signup)
	r.Post("/unregister", h.Unregister)
	return r
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(flashCookie); err == nil {
		h.setFlashCookie(w, "", -1)
		if p, ok := h.flash.take(c.Value); ok {
			h.render(w, p)
			return
		}
	}
	h.render(w, h.View.LoadActivities(r.Context()))
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := viewcontroller.SignupForm{
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Email:     r.PostForm.Get("email"),
		Activity:  r.PostForm.Get("activity"),
	}
	h.redirectToPage(w, r, h.View.Signup(r.Context(), form))
}

func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	activity := domain.ActivityName(r.PostForm.Get("activity"))
	h.redirectToPage(w, r, h.View.Unregister(r.Context(), activity, r.PostForm.Get("email")))
}

func (h *Handler) redirectToPage(w http.ResponseWriter, r *http.Request, p viewcontroller.Page) {
	h.setFlashCookie(w, h.flash.put(p), int(flashTTL/time.Second))
	http.Redirect(w, r, h.BasePath+"/", http.StatusSeeOther)
}

func (h *Handler) setFlashCookie(w http.ResponseWriter, value string, maxAge int) {
	path := h.BasePath
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type pageData struct {
	BasePath string
	Page     viewcontroller.Page
}

func (h *Handler) render(w http.ResponseWriter, p viewcontroller.Page) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, pageData{BasePath: h.BasePath, Page: p}); err != nil {
		h.Log.Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
