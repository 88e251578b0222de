package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	gosmtp "net/smtp"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

const defaultSMTPTimeout = 30 * time.Second

type sendMailFunc func(ctx context.Context, addr string, auth gosmtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers plain-text mail through a relay. Each delivery is bound
// by the caller's context and by the configured timeout, whichever ends first.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	from     *mail.Address
	sendMail sendMailFunc
	now      func() time.Time
}

var _ contractx.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg Config) (*SMTPNotifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	if host == "" {
		return nil, fmt.Errorf("%w: smtp host is required", contractx.ErrNotConfigured)
	}
	from, err := mail.ParseAddress(strings.TrimSpace(cfg.Sender))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sender: %w", contractx.ErrNotConfigured, err)
	}
	if strings.TrimSpace(cfg.SMTPUsername) != "" && strings.TrimSpace(cfg.SMTPPassword) == "" {
		return nil, fmt.Errorf("%w: smtp password is required when username is set", contractx.ErrNotConfigured)
	}
	port := cfg.SMTPPort
	if port < 1 {
		port = 587
	}
	timeout := cfg.SMTPTimeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	n := &SMTPNotifier{
		host:     host,
		port:     port,
		username: strings.TrimSpace(cfg.SMTPUsername),
		password: cfg.SMTPPassword,
		timeout:  timeout,
		from:     from,
		now:      time.Now,
	}
	n.sendMail = n.deliver
	return n, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return fmt.Errorf("%w: invalid recipient %q: %w", contractx.ErrNotify, recipient, err)
	}

	headers := []string{
		"From: " + n.from.String(),
		"To: " + to.Address,
		"Subject: " + sanitizeHeader(subject),
		"Date: " + n.now().UTC().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + normalizeBody(body)

	var auth gosmtp.Auth
	if n.username != "" {
		auth = gosmtp.PlainAuth("", n.username, n.password, n.host)
	}
	addr := n.host + ":" + strconv.Itoa(n.port)
	if err := n.sendMail(ctx, addr, auth, n.from.Address, []string{to.Address}, []byte(msg)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return fmt.Errorf("%w: smtp: %w (%w)", contractx.ErrNotify, err, ctxErr)
		}
		return fmt.Errorf("%w: smtp: %w", contractx.ErrNotify, err)
	}
	return nil
}

// deliver runs one SMTP session the way net/smtp.SendMail does, over a
// connection that carries a deadline and is closed when ctx is done.
func (n *SMTPNotifier) deliver(ctx context.Context, addr string, auth gosmtp.Auth, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: n.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(n.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := gosmtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server doesn't support AUTH")
		}
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func sanitizeHeader(value string) string {
	replacer := strings.NewReplacer("\r", " ", "\n", " ")
	return strings.TrimSpace(replacer.Replace(value))
}

func normalizeBody(value string) string {
	text := strings.ReplaceAll(value, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n")
}
