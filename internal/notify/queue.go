package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/pkg/utilities"
)

type job struct {
	id  string
	msg Message
}

// Queue dispatches lifecycle emails through a bounded channel consumed
// by a fixed set of workers. Enqueueing never blocks the request path:
// when the queue is full the job is dropped and logged. Delivery is
// best-effort; send failures are logged and swallowed.
type Queue struct {
	cfg    Config
	mailer Mailer
	logger *zap.SugaredLogger

	jobs chan job
	wg   sync.WaitGroup
}

func NewQueue(cfg Config, mailer Mailer, logger *zap.SugaredLogger) *Queue {
	return &Queue{
		cfg:    cfg,
		mailer: mailer,
		logger: logger,
		jobs:   make(chan job, cfg.QueueSize),
	}
}

// Start launches the worker goroutines.
func (q *Queue) Start() {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Stop drains the queue and waits for in-flight sends to finish.
func (q *Queue) Stop() {
	close(q.jobs)
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		if err := q.mailer.Send(j.msg); err != nil {
			q.logger.Warnw("mail send failed", "job", j.id, "to", j.msg.To, "subject", j.msg.Subject, "err", err)
			continue
		}
		q.logger.Debugw("mail sent", "job", j.id, "to", j.msg.To, "subject", j.msg.Subject)
	}
}

// Enqueue submits a message without blocking.
func (q *Queue) Enqueue(msg Message) {
	j := job{id: utilities.NewJobID(), msg: msg}
	select {
	case q.jobs <- j:
	default:
		q.logger.Warnw("mail queue full, dropping job", "job", j.id, "to", msg.To, "subject", msg.Subject)
	}
}

// SendVerification queues the verification link email for a new account.
func (q *Queue) SendVerification(u *entity.User, token string) {
	q.Enqueue(verificationMessage(q.cfg.BaseURL, u, token))
}

// SendAdminAlert queues the new-registration notice for the admin address.
func (q *Queue) SendAdminAlert(u *entity.User) {
	q.Enqueue(adminAlertMessage(q.cfg.AdminEmail, u))
}

// SendDecision queues the approval or under-review notice for the user.
func (q *Queue) SendDecision(u *entity.User, approved bool) {
	q.Enqueue(decisionMessage(u, approved))
}
