package model

import "time"

// ScheduledMessage mirrors a message Slack has agreed to deliver later.
// ID is Slack's scheduled_message_id and is never generated locally.
type ScheduledMessage struct {
	ID      string
	Channel string
	Text    string
	PostAt  int64 // unix seconds
}

// PostAtTime returns PostAt as a UTC time.
func (m ScheduledMessage) PostAtTime() time.Time {
	return time.Unix(m.PostAt, 0).UTC()
}

// PostAtUnix converts a wall-clock send time to unix seconds, truncating
// sub-second precision (floor, never rounded).
func PostAtUnix(t time.Time) int64 {
	return t.Unix()
}
