// Package web implements the HTML driving adapter: the connection status page
// and the Slack OAuth redirect and callback, rendered with templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/slackpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/slackpanel/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/slackpanel/internal/application"
	"github.com/ericfisherdev/slackpanel/internal/domain/model"
)

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	authSvc *application.AuthService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(authSvc *application.AuthService, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc: authSvc,
		logger:  logger,
	}
}

// Status renders the connection status page.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	cred, err := h.authSvc.Current(r.Context())
	if err != nil {
		h.logger.Error("failed to load credential", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, templates.Layout("Slack Panel", pages.Status(toConnectionViewModel(cred))))
}

// Authorize redirects the browser to Slack's consent screen.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.authSvc.AuthorizeURL(), http.StatusFound)
}

// Callback completes the OAuth flow. Failures are answered in plain text:
// the Slack error code when Slack rejected the exchange, otherwise the
// error message.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "No code provided", http.StatusBadRequest)
		return
	}

	cred, err := h.authSvc.CompleteAuthorization(r.Context(), code)
	if err != nil {
		var gwErr *model.GatewayError
		if errors.As(err, &gwErr) && gwErr.RemoteReported() {
			h.logger.Warn("slack rejected oauth exchange", "error", gwErr.Remote)
			http.Error(w, gwErr.Remote, http.StatusInternalServerError)
			return
		}
		h.logger.Error("oauth exchange failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, templates.Layout("Slack connected", pages.Connected(toConnectionViewModel(&cred))))
}

// render writes component as an HTML response with the given status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
