package notify_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/internal/notify"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []notify.Message
	failTo string
}

func (f *fakeMailer) Send(m notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo != "" && m.To == f.failTo {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message(nil), f.sent...)
}

func testUser() *entity.User {
	return &entity.User{
		Username:  "alice",
		Email:     "alice@x.com",
		FirstName: "Alice",
		LastName:  "A",
	}
}

func testQueueConfig() notify.Config {
	return notify.Config{
		AdminEmail: "admin@x.com",
		BaseURL:    "https://dash.example.com",
		QueueSize:  16,
		Workers:    2,
	}
}

func TestQueueDeliversLifecycleMail(t *testing.T) {
	mailer := &fakeMailer{}
	q := notify.NewQueue(testQueueConfig(), mailer, zap.NewNop().Sugar())
	q.Start()

	u := testUser()
	q.SendVerification(u, "tok-123")
	q.SendAdminAlert(u)
	q.SendDecision(u, true)
	q.SendDecision(u, false)
	q.Stop()

	msgs := mailer.messages()
	require.Len(t, msgs, 4)

	byTo := map[string][]notify.Message{}
	for _, m := range msgs {
		byTo[m.To] = append(byTo[m.To], m)
	}
	require.Len(t, byTo["alice@x.com"], 3)
	require.Len(t, byTo["admin@x.com"], 1)

	var verification *notify.Message
	for i := range msgs {
		if msgs[i].Subject == "Verify your email address" {
			verification = &msgs[i]
		}
	}
	require.NotNil(t, verification)
	assert.Contains(t, verification.Body, "https://dash.example.com/verify-email/tok-123")
	assert.Contains(t, verification.HTML, "https://dash.example.com/verify-email/tok-123")

	assert.Contains(t, byTo["admin@x.com"][0].Body, "Username: alice")
}

func TestQueueSwallowsSendFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core).Sugar()

	mailer := &fakeMailer{failTo: "admin@x.com"}
	q := notify.NewQueue(testQueueConfig(), mailer, logger)
	q.Start()

	u := testUser()
	q.SendAdminAlert(u)
	q.SendDecision(u, true)
	q.Stop()

	// the failing send is logged, the other one still goes out
	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@x.com", msgs[0].To)

	var warned bool
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "mail send failed") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core).Sugar()

	cfg := testQueueConfig()
	cfg.QueueSize = 1
	cfg.Workers = 0
	mailer := &fakeMailer{}
	// no workers drain the queue, so the second job cannot fit
	q := notify.NewQueue(cfg, mailer, logger)

	u := testUser()
	q.SendDecision(u, true)
	q.SendDecision(u, false)

	var dropped int
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "mail queue full") {
			dropped++
		}
	}
	assert.Equal(t, 1, dropped)
	assert.Empty(t, mailer.messages())
}
