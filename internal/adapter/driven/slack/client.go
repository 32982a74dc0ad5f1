// Package slack implements the SlackGateway port using the slack-go library.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/slackpanel/internal/metrics"
)

// Compile-time interface satisfaction check.
var _ driven.SlackGateway = (*Client)(nil)

// DefaultAPIURL is the Slack Web API base URL.
const DefaultAPIURL = "https://slack.com/api/"

// RequestTimeout bounds each gateway operation, including every Slack call
// the operation makes.
const RequestTimeout = 30 * time.Second

// Client implements the driven.SlackGateway port. It holds no token: every
// call receives the bot token read from the credential store, so a new
// authorization takes effect on the next request.
type Client struct {
	httpClient *http.Client
	apiURL     string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a gateway that talks to apiURL with RequestTimeout per
// operation. No retries are performed on any call.
func NewClient(apiURL string, logger *slog.Logger) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: RequestTimeout}, apiURL, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest transport.
func NewClientWithHTTPClient(httpClient *http.Client, apiURL string, logger *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/") + "/",
		timeout:    RequestTimeout,
		logger:     logger,
	}
}

// WithTimeout replaces the per-operation deadline and returns c.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// api builds a slack-go client bound to token.
func (c *Client) api(token string) *slackapi.Client {
	return slackapi.New(token,
		slackapi.OptionHTTPClient(c.httpClient),
		slackapi.OptionAPIURL(c.apiURL),
	)
}

// ExchangeCode trades an OAuth code for a bot credential via oauth.v2.access.
// The exchange goes to the configured API URL; slack-go's helper for it
// always targets the package-level slackapi.APIURL.
func (c *Client) ExchangeCode(ctx context.Context, code, clientID, clientSecret, redirectURI string) (model.Credential, error) {
	const op = "oauth.v2.access"

	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}
	var resp slackapi.OAuthV2Response
	if err := c.postForm(ctx, op, form, &resp); err != nil {
		return model.Credential{}, c.fail(model.KindAuth, op, err)
	}
	if err := resp.Err(); err != nil {
		return model.Credential{}, c.fail(model.KindAuth, op, err)
	}
	if resp.AccessToken == "" {
		return model.Credential{}, c.fail(model.KindAuth, op, errors.New("response carried no access token"))
	}
	metrics.IncSlackCall(op, metrics.OutcomeOK)

	return model.Credential{
		BotToken:   resp.AccessToken,
		Scope:      resp.Scope,
		TeamID:     resp.Team.ID,
		TeamName:   resp.Team.Name,
		AppID:      resp.AppID,
		ObtainedAt: time.Now().UTC(),
	}, nil
}

// PostMessage joins channel on a best-effort basis and then posts text.
// The join result never influences the outcome: the bot may already be a
// member, or the conversation type (e.g. a DM) may not support joining.
func (c *Client) PostMessage(ctx context.Context, token, channel, text string) (model.DeliveryResult, error) {
	const op = "chat.postMessage"
	api := c.api(token)

	// The join and the post share one deadline.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, _, _, err := api.JoinConversationContext(ctx, channel); err != nil {
		c.logger.Debug("channel join skipped", "channel", channel, "error", err)
	}

	respChannel, ts, err := api.PostMessageContext(ctx, channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return model.DeliveryResult{}, c.fail(model.KindDelivery, op, err)
	}
	metrics.IncSlackCall(op, metrics.OutcomeOK)

	return model.DeliveryResult{Channel: respChannel, Timestamp: ts}, nil
}

// ListChannels returns a single conversations.list page of at most limit
// channels. A non-positive limit falls back to driven.DefaultChannelLimit.
func (c *Client) ListChannels(ctx context.Context, token string, limit int) ([]model.Channel, error) {
	const op = "conversations.list"
	if token == "" {
		return nil, &model.GatewayError{Kind: model.KindAuth, Op: op, Err: model.ErrNoCredential}
	}
	if limit <= 0 {
		limit = driven.DefaultChannelLimit
	}

	channels, _, err := c.api(token).GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
		Limit: limit,
	})
	if err != nil {
		return nil, c.fail(model.KindGateway, op, err)
	}
	metrics.IncSlackCall(op, metrics.OutcomeOK)

	result := make([]model.Channel, 0, len(channels))
	for _, ch := range channels {
		result = append(result, mapChannel(ch))
	}
	return result, nil
}

// scheduleRequest is the JSON body of chat.scheduleMessage.
type scheduleRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
	PostAt  int64  `json:"post_at"`
}

// scheduleResponse is the subset of the chat.scheduleMessage response we use.
type scheduleResponse struct {
	slackapi.SlackResponse
	Channel            string `json:"channel"`
	ScheduledMessageID string `json:"scheduled_message_id"`
}

// ScheduleMessage asks Slack to deliver text to channel at postAt (unix
// seconds) and returns the scheduled_message_id Slack assigned.
//
// The call is issued directly rather than through slack-go's
// ScheduleMessageContext, which reports a message timestamp and drops the
// scheduled_message_id needed for cancellation.
func (c *Client) ScheduleMessage(ctx context.Context, token, channel, text string, postAt int64) (string, error) {
	const op = "chat.scheduleMessage"

	var resp scheduleResponse
	if err := c.postJSON(ctx, token, op, scheduleRequest{Channel: channel, Text: text, PostAt: postAt}, &resp); err != nil {
		return "", c.fail(model.KindGateway, op, err)
	}
	if !resp.Ok {
		code := resp.Error
		if code == "" {
			code = "unknown_error"
		}
		return "", c.fail(model.KindGateway, op, slackapi.SlackErrorResponse{Err: code, ResponseMetadata: resp.ResponseMetadata})
	}
	if resp.ScheduledMessageID == "" {
		return "", c.fail(model.KindGateway, op, errors.New("response carried no scheduled_message_id"))
	}
	metrics.IncSlackCall(op, metrics.OutcomeOK)

	return resp.ScheduledMessageID, nil
}

// CancelScheduled deletes a pending scheduled message via
// chat.deleteScheduledMessage.
func (c *Client) CancelScheduled(ctx context.Context, token, channel, id string) error {
	const op = "chat.deleteScheduledMessage"

	_, err := c.api(token).DeleteScheduledMessageContext(ctx, &slackapi.DeleteScheduledMessageParameters{
		Channel:            channel,
		ScheduledMessageID: id,
	})
	if err != nil {
		return c.fail(model.KindGateway, op, err)
	}
	metrics.IncSlackCall(op, metrics.OutcomeOK)
	return nil
}

// postJSON POSTs body as JSON to the given Web API method with bearer auth and
// decodes the response into out.
func (c *Client) postJSON(ctx context.Context, token, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	return c.do(req, method, out)
}

// postForm POSTs form-encoded values to the given Web API method without a
// bearer token and decodes the response into out.
func (c *Client) postForm(ctx context.Context, method string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, method, out)
}

// do sends req and decodes a 200 response body into out.
func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("slack server error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// fail normalizes err into a *model.GatewayError, records the outcome and logs it.
// Slack's ok:false answers become remote failures carrying the Slack error code
// and response_metadata; everything else is a transport failure.
func (c *Client) fail(kind model.GatewayErrorKind, op string, err error) error {
	var slackErr slackapi.SlackErrorResponse
	if errors.As(err, &slackErr) {
		metrics.IncSlackCall(op, metrics.OutcomeRemoteError)
		meta := model.RemoteMetadata{
			Messages: slackErr.ResponseMetadata.Messages,
			Warnings: slackErr.ResponseMetadata.Warnings,
		}
		c.logger.Warn("slack call rejected", "method", op, "error", slackErr.Err, "messages", meta.Messages)
		return &model.GatewayError{Kind: kind, Op: op, Remote: slackErr.Err, Metadata: meta}
	}

	metrics.IncSlackCall(op, metrics.OutcomeTransportError)
	c.logger.Error("slack call failed", "method", op, "error", err)
	return &model.GatewayError{Kind: kind, Op: op, Err: err}
}

// mapChannel converts a slack-go Channel to the domain descriptor.
func mapChannel(ch slackapi.Channel) model.Channel {
	return model.Channel{
		ID:         ch.ID,
		Name:       ch.Name,
		IsPrivate:  ch.IsPrivate,
		IsMember:   ch.IsMember,
		IsArchived: ch.IsArchived,
		NumMembers: ch.NumMembers,
		Topic:      ch.Topic.Value,
		Purpose:    ch.Purpose.Value,
	}
}
