package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
)

func authedStore() *memCredentialStore {
	return &memCredentialStore{cred: &model.Credential{BotToken: "xoxb-live"}}
}

func newMessageService(creds *memCredentialStore, schedules *memScheduleStore, gw *fakeGateway) *MessageService {
	return NewMessageService(creds, schedules, gw, slog.Default())
}

func TestMessageService_RequiresCredential(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := newMessageService(&memCredentialStore{}, &memScheduleStore{}, gw)

	_, err := svc.SendNow(ctx, "C1", "hi")
	assert.ErrorIs(t, err, model.ErrNoCredential)

	_, err = svc.ListChannels(ctx)
	assert.ErrorIs(t, err, model.ErrNoCredential)

	_, err = svc.Schedule(ctx, "C1", "hi", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, model.ErrNoCredential)

	err = svc.Cancel(ctx, "Q1", "C1")
	assert.ErrorIs(t, err, model.ErrNoCredential)

	// No remote call may happen without a token.
	assert.Equal(t, 0, gw.callCount())
}

func TestMessageService_CredentialStoreError(t *testing.T) {
	storeErr := errors.New("database is locked")
	gw := &fakeGateway{}
	svc := newMessageService(&memCredentialStore{getErr: storeErr}, &memScheduleStore{}, gw)

	_, err := svc.SendNow(context.Background(), "C1", "hi")
	require.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, model.ErrNoCredential)
	assert.Equal(t, 0, gw.callCount())
}

func TestMessageService_SendNow(t *testing.T) {
	gw := &fakeGateway{postResult: model.DeliveryResult{Channel: "C1", Timestamp: "1.2"}}
	svc := newMessageService(authedStore(), &memScheduleStore{}, gw)

	res, err := svc.SendNow(context.Background(), "C1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "1.2", res.Timestamp)
	assert.Equal(t, "xoxb-live", gw.lastToken)
}

func TestMessageService_SendNow_RemoteFailure(t *testing.T) {
	gw := &fakeGateway{postErr: &model.GatewayError{Kind: model.KindDelivery, Op: "chat.postMessage", Remote: "not_in_channel"}}
	svc := newMessageService(authedStore(), &memScheduleStore{}, gw)

	_, err := svc.SendNow(context.Background(), "C1", "hi")
	assert.Equal(t, "not_in_channel", model.RemoteCode(err))
}

func TestMessageService_ListChannels_UsesPageLimit(t *testing.T) {
	gw := &fakeGateway{channels: []model.Channel{{ID: "C1", Name: "general"}}}
	svc := newMessageService(authedStore(), &memScheduleStore{}, gw)

	channels, err := svc.ListChannels(context.Background())
	require.NoError(t, err)
	assert.Len(t, channels, 1)
	assert.Equal(t, driven.DefaultChannelLimit, gw.lastLimit)
}

func TestMessageService_Schedule_PersistsRemoteID(t *testing.T) {
	schedules := &memScheduleStore{}
	gw := &fakeGateway{scheduleID: "Q123"}
	svc := newMessageService(authedStore(), schedules, gw)
	ctx := context.Background()

	sendAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	msg, err := svc.Schedule(ctx, "C1", "hi", sendAt)
	require.NoError(t, err)

	want := model.ScheduledMessage{ID: "Q123", Channel: "C1", Text: "hi", PostAt: 1893456000}
	assert.Equal(t, want, msg)

	stored, err := svc.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.ScheduledMessage{want}, stored)
}

func TestMessageService_Schedule_TruncatesSubSecond(t *testing.T) {
	gw := &fakeGateway{scheduleID: "Q1"}
	svc := newMessageService(authedStore(), &memScheduleStore{}, gw)

	sendAt, err := time.Parse(time.RFC3339Nano, "2024-01-01T00:00:00.500Z")
	require.NoError(t, err)

	msg, err := svc.Schedule(context.Background(), "C1", "hi", sendAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1704067200), msg.PostAt)
	assert.Equal(t, int64(1704067200), gw.lastPostAt)
}

func TestMessageService_Schedule_RemoteFailureStoresNothing(t *testing.T) {
	schedules := &memScheduleStore{}
	gw := &fakeGateway{scheduleErr: &model.GatewayError{Kind: model.KindGateway, Op: "chat.scheduleMessage", Remote: "time_in_past"}}
	svc := newMessageService(authedStore(), schedules, gw)
	ctx := context.Background()

	_, err := svc.Schedule(ctx, "C1", "hi", time.Unix(1, 0))
	assert.Equal(t, "time_in_past", model.RemoteCode(err))

	stored, err := svc.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMessageService_Schedule_LocalRecordIffRemoteSuccess(t *testing.T) {
	tests := []struct {
		name        string
		scheduleErr error
		wantRecords int
	}{
		{name: "remote success", wantRecords: 1},
		{name: "remote rejection", scheduleErr: &model.GatewayError{Kind: model.KindGateway, Remote: "invalid_time"}, wantRecords: 0},
		{name: "transport failure", scheduleErr: &model.GatewayError{Kind: model.KindGateway, Err: errors.New("timeout")}, wantRecords: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedules := &memScheduleStore{}
			gw := &fakeGateway{scheduleID: "Q9", scheduleErr: tt.scheduleErr}
			svc := newMessageService(authedStore(), schedules, gw)

			_, _ = svc.Schedule(context.Background(), "C1", "hi", time.Unix(1893456000, 0))

			stored, err := svc.ListScheduled(context.Background())
			require.NoError(t, err)
			assert.Len(t, stored, tt.wantRecords)
		})
	}
}

func TestMessageService_Schedule_StoreFailure(t *testing.T) {
	insertErr := errors.New("disk I/O error")
	gw := &fakeGateway{scheduleID: "Q1"}
	svc := newMessageService(authedStore(), &memScheduleStore{insertErr: insertErr}, gw)

	_, err := svc.Schedule(context.Background(), "C1", "hi", time.Unix(1893456000, 0))
	require.ErrorIs(t, err, insertErr)
}

func TestMessageService_Cancel_Idempotent(t *testing.T) {
	schedules := &memScheduleStore{msgs: []model.ScheduledMessage{{ID: "Q1", Channel: "C1", Text: "hi", PostAt: 1}}}
	gw := &fakeGateway{}
	svc := newMessageService(authedStore(), schedules, gw)
	ctx := context.Background()

	require.NoError(t, svc.Cancel(ctx, "Q1", "C1"))

	// Slack no longer knows the id on the second attempt.
	gw.cancelErr = &model.GatewayError{Kind: model.KindGateway, Op: "chat.deleteScheduledMessage", Remote: "invalid_scheduled_message_id"}
	require.NoError(t, svc.Cancel(ctx, "Q1", "C1"))

	stored, err := svc.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Len(t, gw.cancelCalls, 2)
}

func TestMessageService_Cancel_RemoteRejectionKeepsRecord(t *testing.T) {
	schedules := &memScheduleStore{msgs: []model.ScheduledMessage{{ID: "Q1", Channel: "C1", Text: "hi", PostAt: 1}}}
	gw := &fakeGateway{cancelErr: &model.GatewayError{Kind: model.KindGateway, Remote: "channel_not_found"}}
	svc := newMessageService(authedStore(), schedules, gw)
	ctx := context.Background()

	err := svc.Cancel(ctx, "Q1", "CWRONG")
	assert.Equal(t, "channel_not_found", model.RemoteCode(err))

	stored, err := svc.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestMessageService_Cancel_TransportFailureKeepsRecord(t *testing.T) {
	schedules := &memScheduleStore{msgs: []model.ScheduledMessage{{ID: "Q1", Channel: "C1", Text: "hi", PostAt: 1}}}
	gw := &fakeGateway{cancelErr: &model.GatewayError{Kind: model.KindGateway, Err: errors.New("connection reset")}}
	svc := newMessageService(authedStore(), schedules, gw)
	ctx := context.Background()

	require.Error(t, svc.Cancel(ctx, "Q1", "C1"))

	stored, err := svc.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestMessageService_Cancel_ChannelSource(t *testing.T) {
	tests := []struct {
		name        string
		callerChan  string
		wantChannel string
	}{
		{name: "caller channel wins", callerChan: "CCALLER", wantChannel: "CCALLER"},
		{name: "stored channel fills in when omitted", callerChan: "", wantChannel: "CSTORED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedules := &memScheduleStore{msgs: []model.ScheduledMessage{{ID: "Q1", Channel: "CSTORED", Text: "hi", PostAt: 1}}}
			gw := &fakeGateway{}
			svc := newMessageService(authedStore(), schedules, gw)

			require.NoError(t, svc.Cancel(context.Background(), "Q1", tt.callerChan))
			require.Len(t, gw.cancelCalls, 1)
			assert.Equal(t, cancelCall{Token: "xoxb-live", Channel: tt.wantChannel, ID: "Q1"}, gw.cancelCalls[0])
		})
	}
}

func TestMessageService_Cancel_LocalDeleteFailure(t *testing.T) {
	deleteErr := errors.New("readonly database")
	schedules := &memScheduleStore{deleteErr: deleteErr}
	svc := newMessageService(authedStore(), schedules, &fakeGateway{})

	err := svc.Cancel(context.Background(), "Q1", "C1")
	require.ErrorIs(t, err, deleteErr)
}
