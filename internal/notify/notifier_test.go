package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/referral"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	to    []telebot.Recipient
	fail  int
	calls int
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("telegram unavailable")
	}

	f.to = append(f.to, to)
	f.sent = append(f.sent, what.(string))
	return &telebot.Message{}, nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_DeliversEvent(t *testing.T) {
	sender := &fakeSender{}
	events := make(chan referral.Event, 1)

	notifier := New(sender, events, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Run(ctx)

	events <- referral.Event{ReferrerID: "100", ReferredName: "bob", Count: 1, Required: 2}

	assert.Eventually(t, func() bool {
		return sender.sentCount() == 1
	}, time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, telebot.ChatID(100), sender.to[0])
	assert.Contains(t, sender.sent[0], "bob")
	assert.Contains(t, sender.sent[0], "1/2")
}

func TestNotifier_RetriesTransientSendFailure(t *testing.T) {
	sender := &fakeSender{fail: 1}
	events := make(chan referral.Event, 1)

	notifier := New(sender, events, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.Run(ctx)

	events <- referral.Event{ReferrerID: "100", ReferredName: "bob", Count: 2, Required: 2}

	assert.Eventually(t, func() bool {
		return sender.sentCount() == 1
	}, 3*time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 2, sender.calls)
}

func TestNotifier_NonNumericReferrerDropped(t *testing.T) {
	sender := &fakeSender{}
	events := make(chan referral.Event, 1)

	notifier := New(sender, events, testLogger())
	events <- referral.Event{ReferrerID: "not-a-number", ReferredName: "bob"}
	close(events)

	notifier.Run(context.Background())

	assert.Zero(t, sender.sentCount())
}

func TestNotifier_StopsWhenChannelCloses(t *testing.T) {
	sender := &fakeSender{}
	events := make(chan referral.Event)

	notifier := New(sender, events, testLogger())

	done := make(chan struct{})
	go func() {
		notifier.Run(context.Background())
		close(done)
	}()

	close(events)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop after channel close")
	}
}
