package notify

import (
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

type Config struct {
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	From       string
	AdminEmail string
	// BaseURL is the externally visible origin used to build the
	// verification link.
	BaseURL   string
	QueueSize int
	Workers   int
}

// ConfigFromEnv reads mail transport config from env vars.
func ConfigFromEnv() Config {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			port = parsed
		}
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@localhost"
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8431"
	}
	size := 256
	if v := os.Getenv("MAIL_QUEUE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	workers := 2
	if v := os.Getenv("MAIL_WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			workers = parsed
		}
	}
	return Config{
		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   port,
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		From:       from,
		AdminEmail: adminEmail,
		BaseURL:    baseURL,
		QueueSize:  size,
		Workers:    workers,
	}
}

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// Mailer sends a single message synchronously.
type Mailer interface {
	Send(m Message) error
}

// SMTPMailer delivers mail over SMTP using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	return m.dialer.DialAndSend(gm)
}
