package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"time"

	"go-openclaw-cv-sender/internal/models"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

type Security string

const (
	SecuritySSL      Security = "ssl"      //implicit TLS, usually port 465
	SecurityStartTLS Security = "starttls" //usually port 587
	SecurityNone     Security = "none"

	DefaultAddr    = "smtp.gmail.com:465"
	DefaultTimeout = 30 * time.Second
)

type Options struct {
	Addr     string
	Security Security
	Username string
	Password string
	Timeout  time.Duration
	//only used by tests against a self-signed server
	TLSConfig *tls.Config
}

// Sender submits messages to an SMTP server, one authenticated session per message
type Sender struct {
	opts Options
	host string
	now  func() time.Time
}

func NewSender(opts Options) (*Sender, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Security == "" {
		opts.Security = SecuritySSL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	switch opts.Security {
	case SecuritySSL, SecurityStartTLS, SecurityNone:
	default:
		return nil, fmt.Errorf("unknown smtp security mode %q", opts.Security)
	}

	host, _, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp address %q: %w", opts.Addr, err)
	}
	return &Sender{opts: opts, host: host, now: time.Now}, nil
}

// Send delivers msg. Any failure is a *models.DeliveryError carrying the
// server's error unchanged. There is no retry.
func (s *Sender) Send(ctx context.Context, msg *models.OutboundMessage) error {
	var buf bytes.Buffer
	if err := Render(&buf, msg, s.now()); err != nil {
		return &models.DeliveryError{Err: err}
	}

	c, err := s.dial(ctx)
	if err != nil {
		return &models.DeliveryError{Err: err}
	}
	//release the session on every path, Quit already closed it on success
	defer c.Close()

	c.CommandTimeout = s.opts.Timeout
	c.SubmissionTimeout = s.opts.Timeout

	if s.opts.Security == SecurityStartTLS {
		if err := c.StartTLS(s.tlsConfig()); err != nil {
			return &models.DeliveryError{Err: err}
		}
	}

	if s.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.opts.Username, s.opts.Password)); err != nil {
			return &models.DeliveryError{Err: err}
		}
	}

	if err := c.Mail(envelopeAddress(msg.From), nil); err != nil {
		return &models.DeliveryError{Err: err}
	}
	if err := c.Rcpt(envelopeAddress(msg.To)); err != nil {
		return &models.DeliveryError{Err: err}
	}

	w, err := c.Data()
	if err != nil {
		return &models.DeliveryError{Err: err}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		w.Close()
		return &models.DeliveryError{Err: err}
	}
	if err := w.Close(); err != nil {
		return &models.DeliveryError{Err: err}
	}

	if err := c.Quit(); err != nil {
		log.Printf("⚠️ SMTP QUIT failed after delivery to %s: %v", msg.To, err)
	}
	return nil
}

func (s *Sender) dial(ctx context.Context) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: s.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return nil, err
	}

	if s.opts.Security == SecuritySSL {
		tlsConn := tls.Client(conn, s.tlsConfig())
		hsCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
		if err := tlsConn.HandshakeContext(hsCtx); err != nil {
			conn.Close()
			return nil, err
		}
		conn = tlsConn
	}

	//NewClient reads the greeting, bound it by the timeout
	conn.SetDeadline(time.Now().Add(s.opts.Timeout))
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})
	return c, nil
}

func (s *Sender) tlsConfig() *tls.Config {
	if s.opts.TLSConfig != nil {
		return s.opts.TLSConfig
	}
	return &tls.Config{ServerName: s.host}
}
