// Package httphandler serves the JSON API for sending, listing and scheduling
// Slack messages.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/slackpanel/internal/application"
	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/metrics"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Unauthenticated error messages. /api/send reports a missing token as 500
// with msgNoTokenStored; the other token-backed routes answer 400 with
// msgConnectFirst.
const (
	msgConnectFirst  = "Connect Slack first"
	msgNoTokenStored = "No token stored. Connect Slack first."
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	msgSvc *application.MessageService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(msgSvc *application.MessageService, logger *slog.Logger) *Handler {
	return &Handler{
		msgSvc: msgSvc,
		logger: logger,
	}
}

// RegisterAPIRoutes registers the JSON API, health and metrics routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/send", h.SendNow)
	mux.HandleFunc("GET /api/channels", h.ListChannels)
	mux.HandleFunc("POST /api/schedule", h.Schedule)
	mux.HandleFunc("GET /api/scheduled", h.ListScheduled)
	mux.HandleFunc("DELETE /api/scheduled/{id}", h.CancelScheduled)
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())
}

// SendNow posts a message to a channel immediately.
func (h *Handler) SendNow(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Channel == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "channel and text are required")
		return
	}

	if _, err := h.msgSvc.SendNow(r.Context(), req.Channel, req.Text); err != nil {
		if errors.Is(err, model.ErrNoCredential) {
			writeError(w, http.StatusInternalServerError, msgNoTokenStored)
			return
		}
		h.writeFailure(w, "send message", err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ListChannels returns up to one page of channels visible to the bot.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.msgSvc.ListChannels(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrNoCredential) {
			writeError(w, http.StatusBadRequest, msgConnectFirst)
			return
		}
		h.writeFailure(w, "list channels", err)
		return
	}

	resp := ChannelsResponse{OK: true, Channels: make([]ChannelResponse, 0, len(channels))}
	for _, ch := range channels {
		resp.Channels = append(resp.Channels, toChannelResponse(ch))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Schedule asks Slack to deliver a message later and records it locally.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Channel == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "channel and text are required")
		return
	}

	sendAt, err := parseSendAt(req.SendAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.msgSvc.Schedule(r.Context(), req.Channel, req.Text, sendAt); err != nil {
		if errors.Is(err, model.ErrNoCredential) {
			writeError(w, http.StatusBadRequest, msgConnectFirst)
			return
		}
		h.writeFailure(w, "schedule message", err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ListScheduled returns the locally recorded scheduled messages.
func (h *Handler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.msgSvc.ListScheduled(r.Context())
	if err != nil {
		h.logger.Error("failed to list scheduled messages", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ScheduledListResponse{OK: true, Messages: make([]ScheduledMessageResponse, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toScheduledMessageResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CancelScheduled cancels a scheduled message in Slack and forgets it locally.
// The body may carry the channel; it is optional.
func (h *Handler) CancelScheduled(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req CancelRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.msgSvc.Cancel(r.Context(), id, req.Channel); err != nil {
		if errors.Is(err, model.ErrNoCredential) {
			writeError(w, http.StatusBadRequest, msgConnectFirst)
			return
		}
		h.writeFailure(w, "cancel scheduled message", err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Health returns a simple liveness response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeFailure maps a service error to a 500 response. Slack rejections are
// relayed as Slack's own {ok:false, error, response_metadata} payload;
// anything else becomes {error: message}.
func (h *Handler) writeFailure(w http.ResponseWriter, action string, err error) {
	var gwErr *model.GatewayError
	if errors.As(err, &gwErr) && gwErr.RemoteReported() {
		h.logger.Warn("slack rejected request", "action", action, "method", gwErr.Op, "error", gwErr.Remote)
		writeJSON(w, http.StatusInternalServerError, toRemoteFailureResponse(gwErr))
		return
	}

	h.logger.Error("request failed", "action", action, "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decodeJSON decodes a size-limited JSON body into v. An empty body yields io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
