package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
)

// ErrDuplicateScheduled is returned by ScheduleStore.Insert when a record with
// the same Slack scheduled_message_id already exists.
var ErrDuplicateScheduled = errors.New("scheduled message already exists")

// ScheduleStore defines the driven port for the local mirror of messages
// scheduled through Slack.
type ScheduleStore interface {
	// Insert stores a new record. Returns ErrDuplicateScheduled if the id is
	// already present.
	Insert(ctx context.Context, msg model.ScheduledMessage) error

	// List returns every stored record in insertion order.
	List(ctx context.Context) ([]model.ScheduledMessage, error)

	// Get returns the record with the given id, or (nil, nil) if absent.
	Get(ctx context.Context, id string) (*model.ScheduledMessage, error)

	// Delete removes the record with the given id. Deleting an absent id is a
	// no-op and returns nil.
	Delete(ctx context.Context, id string) error
}
