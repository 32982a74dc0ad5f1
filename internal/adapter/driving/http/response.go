package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// okResponse acknowledges a successful operation.
type okResponse struct {
	OK bool `json:"ok"`
}

// remoteFailureResponse relays Slack's own ok:false payload.
type remoteFailureResponse struct {
	OK               bool                      `json:"ok"`
	Error            string                    `json:"error"`
	ResponseMetadata *responseMetadataResponse `json:"response_metadata,omitempty"`
}

// responseMetadataResponse mirrors Slack's response_metadata diagnostics.
type responseMetadataResponse struct {
	Messages []string `json:"messages,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// SendRequest is the JSON body for the send-now endpoint.
type SendRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// ScheduleRequest is the JSON body for the schedule endpoint. SendAt is a
// date/time string or a number of epoch milliseconds; see parseSendAt.
type ScheduleRequest struct {
	Channel string          `json:"channel"`
	Text    string          `json:"text"`
	SendAt  json.RawMessage `json:"sendAt"`
}

// CancelRequest is the optional JSON body for the cancel endpoint.
type CancelRequest struct {
	Channel string `json:"channel"`
}

// ChannelResponse is the JSON representation of a Slack channel.
type ChannelResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPrivate  bool   `json:"is_private"`
	IsMember   bool   `json:"is_member"`
	IsArchived bool   `json:"is_archived"`
	NumMembers int    `json:"num_members"`
	Topic      string `json:"topic"`
	Purpose    string `json:"purpose"`
}

// ChannelsResponse is the body of GET /api/channels.
type ChannelsResponse struct {
	OK       bool              `json:"ok"`
	Channels []ChannelResponse `json:"channels"`
}

// ScheduledMessageResponse is the JSON representation of a scheduled message.
type ScheduledMessageResponse struct {
	ID      string `json:"id"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
	PostAt  int64  `json:"post_at"`
}

// ScheduledListResponse is the body of GET /api/scheduled.
type ScheduledListResponse struct {
	OK       bool                       `json:"ok"`
	Messages []ScheduledMessageResponse `json:"messages"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toRemoteFailureResponse rebuilds Slack's rejection payload from a gateway error.
func toRemoteFailureResponse(gwErr *model.GatewayError) remoteFailureResponse {
	resp := remoteFailureResponse{OK: false, Error: gwErr.Remote}
	if !gwErr.Metadata.Empty() {
		resp.ResponseMetadata = &responseMetadataResponse{
			Messages: gwErr.Metadata.Messages,
			Warnings: gwErr.Metadata.Warnings,
		}
	}
	return resp
}

// toChannelResponse converts a domain Channel to its JSON representation.
func toChannelResponse(ch model.Channel) ChannelResponse {
	return ChannelResponse{
		ID:         ch.ID,
		Name:       ch.Name,
		IsPrivate:  ch.IsPrivate,
		IsMember:   ch.IsMember,
		IsArchived: ch.IsArchived,
		NumMembers: ch.NumMembers,
		Topic:      ch.Topic,
		Purpose:    ch.Purpose,
	}
}

// toScheduledMessageResponse converts a domain ScheduledMessage to its JSON representation.
func toScheduledMessageResponse(m model.ScheduledMessage) ScheduledMessageResponse {
	return ScheduledMessageResponse{
		ID:      m.ID,
		Channel: m.Channel,
		Text:    m.Text,
		PostAt:  m.PostAt,
	}
}
