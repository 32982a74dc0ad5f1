package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostAtUnix_TruncatesSubSecond(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "half second floors", in: "2024-01-01T00:00:00.500Z", want: 1704067200},
		{name: "just under next second floors", in: "2024-01-01T00:00:00.999Z", want: 1704067200},
		{name: "whole second", in: "2030-01-01T00:00:00Z", want: 1893456000},
		{name: "offset zone", in: "2030-01-01T02:00:00+02:00", want: 1893456000},
		{name: "before epoch floors toward negative", in: "1969-12-31T23:59:59.500Z", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := time.Parse(time.RFC3339Nano, tt.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			assert.Equal(t, tt.want, PostAtUnix(ts))
		})
	}
}

func TestGatewayError(t *testing.T) {
	remote := &GatewayError{Kind: KindGateway, Op: "chat.scheduleMessage", Remote: "time_in_past"}
	assert.Equal(t, "time_in_past", remote.Error())
	assert.True(t, remote.RemoteReported())
	assert.Equal(t, "time_in_past", RemoteCode(remote))

	cause := errors.New("dial tcp: connection refused")
	transport := &GatewayError{Kind: KindDelivery, Op: "chat.postMessage", Err: cause}
	assert.Equal(t, "chat.postMessage: dial tcp: connection refused", transport.Error())
	assert.False(t, transport.RemoteReported())
	assert.ErrorIs(t, transport, cause)
	assert.Empty(t, RemoteCode(transport))
}

func TestRemoteMetadata_Empty(t *testing.T) {
	assert.True(t, RemoteMetadata{}.Empty())
	assert.False(t, RemoteMetadata{Messages: []string{"[ERROR] missing required field: post_at"}}.Empty())
	assert.False(t, RemoteMetadata{Warnings: []string{"superfluous_charset"}}.Empty())
}
