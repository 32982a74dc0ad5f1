package driven

import (
	"context"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
)

// DefaultChannelLimit is the page size used when listing channels. No
// pagination loop is performed beyond it.
const DefaultChannelLimit = 200

// SlackGateway defines the driven port for outbound Slack Web API calls.
// Every failure is returned as a *model.GatewayError.
type SlackGateway interface {
	// ExchangeCode trades an OAuth code for a bot credential (oauth.v2.access).
	ExchangeCode(ctx context.Context, code, clientID, clientSecret, redirectURI string) (model.Credential, error)

	// PostMessage joins the channel on a best-effort basis, then posts text.
	// Only the post outcome determines the result.
	PostMessage(ctx context.Context, token, channel, text string) (model.DeliveryResult, error)

	// ListChannels returns a single page of at most limit conversations.
	ListChannels(ctx context.Context, token string, limit int) ([]model.Channel, error)

	// ScheduleMessage asks Slack to deliver text at postAt (unix seconds) and
	// returns Slack's scheduled_message_id.
	ScheduleMessage(ctx context.Context, token, channel, text string, postAt int64) (string, error)

	// CancelScheduled deletes a pending scheduled message.
	CancelScheduled(ctx context.Context, token, channel, id string) error
}
