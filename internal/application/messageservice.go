package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
)

// remoteAlreadyGone is Slack's answer when cancelling a scheduled message it
// no longer holds (already cancelled or already delivered).
const remoteAlreadyGone = "invalid_scheduled_message_id"

// MessageService sends, schedules and cancels Slack messages on behalf of the
// authorized workspace. Every operation reads the current token from the
// credential store; the local schedule mirror is written only after Slack
// accepts the corresponding call.
type MessageService struct {
	credStore     driven.CredentialStore
	scheduleStore driven.ScheduleStore
	gateway       driven.SlackGateway
	logger        *slog.Logger
}

// NewMessageService creates a new MessageService with the required dependencies.
func NewMessageService(
	credStore driven.CredentialStore,
	scheduleStore driven.ScheduleStore,
	gateway driven.SlackGateway,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		credStore:     credStore,
		scheduleStore: scheduleStore,
		gateway:       gateway,
		logger:        logger,
	}
}

// token returns the stored bot token or model.ErrNoCredential.
func (s *MessageService) token(ctx context.Context) (string, error) {
	cred, err := s.credStore.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.BotToken == "" {
		return "", model.ErrNoCredential
	}
	return cred.BotToken, nil
}

// SendNow posts text to channel immediately.
func (s *MessageService) SendNow(ctx context.Context, channel, text string) (model.DeliveryResult, error) {
	token, err := s.token(ctx)
	if err != nil {
		return model.DeliveryResult{}, err
	}
	return s.gateway.PostMessage(ctx, token, channel, text)
}

// ListChannels returns one page of up to driven.DefaultChannelLimit channels.
func (s *MessageService) ListChannels(ctx context.Context) ([]model.Channel, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.gateway.ListChannels(ctx, token, driven.DefaultChannelLimit)
}

// Schedule asks Slack to deliver text at sendAt and, once Slack accepts,
// records the message under the id Slack assigned. Nothing is stored when
// Slack rejects the request.
func (s *MessageService) Schedule(ctx context.Context, channel, text string, sendAt time.Time) (model.ScheduledMessage, error) {
	token, err := s.token(ctx)
	if err != nil {
		return model.ScheduledMessage{}, err
	}

	postAt := model.PostAtUnix(sendAt)
	id, err := s.gateway.ScheduleMessage(ctx, token, channel, text, postAt)
	if err != nil {
		return model.ScheduledMessage{}, err
	}

	msg := model.ScheduledMessage{ID: id, Channel: channel, Text: text, PostAt: postAt}
	if err := s.scheduleStore.Insert(ctx, msg); err != nil {
		// Slack holds the message but we do not; there is no compensation.
		s.logger.Error("scheduled message not recorded locally", "id", id, "channel", channel, "error", err)
		return model.ScheduledMessage{}, fmt.Errorf("record scheduled message: %w", err)
	}

	s.logger.Info("message scheduled", "id", id, "channel", channel, "post_at", postAt)
	return msg, nil
}

// ListScheduled returns the local mirror without consulting Slack.
func (s *MessageService) ListScheduled(ctx context.Context) ([]model.ScheduledMessage, error) {
	msgs, err := s.scheduleStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scheduled messages: %w", err)
	}
	return msgs, nil
}

// Cancel deletes a scheduled message from Slack and then from the local
// mirror. channel comes from the caller; when empty, the channel recorded at
// scheduling time is used instead.
//
// A Slack rejection keeps the local record, except invalid_scheduled_message_id:
// Slack no longer holds the message, so the local record is dropped and the
// cancel reports success. Cancelling the same id twice therefore succeeds.
func (s *MessageService) Cancel(ctx context.Context, id, channel string) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	if channel == "" {
		stored, err := s.scheduleStore.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("look up scheduled message: %w", err)
		}
		if stored != nil {
			channel = stored.Channel
		}
	}

	if err := s.gateway.CancelScheduled(ctx, token, channel, id); err != nil {
		if model.RemoteCode(err) != remoteAlreadyGone {
			return err
		}
		s.logger.Info("scheduled message already gone remotely", "id", id, "channel", channel)
	}

	if err := s.scheduleStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete scheduled message: %w", err)
	}

	s.logger.Info("scheduled message cancelled", "id", id, "channel", channel)
	return nil
}
