package notify

import "time"

const (
	BackendSES  = "ses"
	BackendSMTP = "smtp"
)

type Config struct {
	Backend      string        `split_words:"true" default:"ses"`
	Sender       string        `split_words:"true"`
	SMTPHost     string        `envconfig:"SMTP_HOST"`
	SMTPPort     int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`
}
