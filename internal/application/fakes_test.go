package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
)

// memCredentialStore is an in-memory driven.CredentialStore.
type memCredentialStore struct {
	mu     sync.Mutex
	cred   *model.Credential
	getErr error
	setErr error
}

func (m *memCredentialStore) Replace(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	c := cred
	m.cred = &c
	return nil
}

func (m *memCredentialStore) Get(_ context.Context) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cred == nil {
		return nil, nil
	}
	c := *m.cred
	return &c, nil
}

// memScheduleStore is an in-memory driven.ScheduleStore preserving insertion order.
type memScheduleStore struct {
	mu        sync.Mutex
	msgs      []model.ScheduledMessage
	insertErr error
	deleteErr error
}

func (m *memScheduleStore) Insert(_ context.Context, msg model.ScheduledMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, existing := range m.msgs {
		if existing.ID == msg.ID {
			return driven.ErrDuplicateScheduled
		}
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memScheduleStore) List(_ context.Context) ([]model.ScheduledMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScheduledMessage{}, m.msgs...), nil
}

func (m *memScheduleStore) Get(_ context.Context, id string) (*model.ScheduledMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.ID == id {
			found := msg
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memScheduleStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.msgs[:0]
	for _, msg := range m.msgs {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	m.msgs = kept
	return nil
}

// cancelCall captures the arguments of one CancelScheduled call.
type cancelCall struct {
	Token, Channel, ID string
}

// fakeGateway is a scriptable driven.SlackGateway that records every call.
type fakeGateway struct {
	mu sync.Mutex

	exchangeCred model.Credential
	exchangeErr  error
	postResult   model.DeliveryResult
	postErr      error
	channels     []model.Channel
	listErr      error
	scheduleID   string
	scheduleErr  error
	cancelErr    error

	calls       []string
	lastToken   string
	lastPostAt  int64
	lastLimit   int
	cancelCalls []cancelCall
}

var _ driven.SlackGateway = (*fakeGateway)(nil)

func (f *fakeGateway) record(method, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	f.lastToken = token
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) ExchangeCode(_ context.Context, _, _, _, _ string) (model.Credential, error) {
	f.record("oauth.v2.access", "")
	return f.exchangeCred, f.exchangeErr
}

func (f *fakeGateway) PostMessage(_ context.Context, token, _, _ string) (model.DeliveryResult, error) {
	f.record("chat.postMessage", token)
	return f.postResult, f.postErr
}

func (f *fakeGateway) ListChannels(_ context.Context, token string, limit int) ([]model.Channel, error) {
	f.record("conversations.list", token)
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	return f.channels, f.listErr
}

func (f *fakeGateway) ScheduleMessage(_ context.Context, token, _, _ string, postAt int64) (string, error) {
	f.record("chat.scheduleMessage", token)
	f.mu.Lock()
	f.lastPostAt = postAt
	f.mu.Unlock()
	return f.scheduleID, f.scheduleErr
}

func (f *fakeGateway) CancelScheduled(_ context.Context, token, channel, id string) error {
	f.record("chat.deleteScheduledMessage", token)
	f.mu.Lock()
	f.cancelCalls = append(f.cancelCalls, cancelCall{Token: token, Channel: channel, ID: id})
	f.mu.Unlock()
	return f.cancelErr
}
