package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScheduleStore = (*ScheduleRepo)(nil)

// ScheduleRepo is the SQLite implementation of the ScheduleStore port interface.
type ScheduleRepo struct {
	db *DB
}

// NewScheduleRepo creates a new ScheduleRepo backed by the given DB.
func NewScheduleRepo(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// Insert stores a scheduled message. Returns driven.ErrDuplicateScheduled if
// the Slack id is already tracked.
func (r *ScheduleRepo) Insert(ctx context.Context, msg model.ScheduledMessage) error {
	const query = `INSERT INTO scheduled (id, channel, text, post_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query, msg.ID, msg.Channel, msg.Text, msg.PostAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("insert scheduled message %q: %w", msg.ID, driven.ErrDuplicateScheduled)
		}
		return fmt.Errorf("insert scheduled message %q: %w", msg.ID, err)
	}
	return nil
}

// List returns all scheduled messages in insertion order.
func (r *ScheduleRepo) List(ctx context.Context) ([]model.ScheduledMessage, error) {
	const query = `SELECT id, channel, text, post_at FROM scheduled ORDER BY rowid`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list scheduled messages: %w", err)
	}
	defer rows.Close()

	result := []model.ScheduledMessage{}
	for rows.Next() {
		var msg model.ScheduledMessage
		if err := rows.Scan(&msg.ID, &msg.Channel, &msg.Text, &msg.PostAt); err != nil {
			return nil, fmt.Errorf("scan scheduled message: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scheduled messages: %w", err)
	}
	return result, nil
}

// Get returns the scheduled message with the given id, or (nil, nil) if absent.
func (r *ScheduleRepo) Get(ctx context.Context, id string) (*model.ScheduledMessage, error) {
	const query = `SELECT id, channel, text, post_at FROM scheduled WHERE id = ?`
	var msg model.ScheduledMessage
	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(&msg.ID, &msg.Channel, &msg.Text, &msg.PostAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled message %q: %w", id, err)
	}
	return &msg, nil
}

// Delete removes a scheduled message. No-op if the id is not tracked.
func (r *ScheduleRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM scheduled WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete scheduled message %q: %w", id, err)
	}
	return nil
}
