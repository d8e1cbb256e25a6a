// Package delivery sends finished reports to the internal mailbox.
// Delivery is a single attempt: there is no retry and no queue.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/katachat/katareport/internal/config"
)

// ErrDelivery wraps every transport failure.
var ErrDelivery = errors.New("delivery: send failed")

// Gateway hands an HTML report to a mail transport.
type Gateway interface {
	Name() string
	Send(ctx context.Context, subject, htmlBody string) error
}

// DefaultTimeout bounds an SMTP exchange when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// New returns an SMTP gateway when a host is configured and a logging
// gateway otherwise.
func New(cfg config.SMTPConfig, timeout time.Duration, logger *zap.Logger) (Gateway, error) {
	if !cfg.Enabled() {
		return NewLogGateway(logger), nil
	}
	return NewSMTPGateway(cfg, timeout, logger)
}

// ── SMTP ──

// SMTPGateway delivers reports over SMTP with STARTTLS and PLAIN auth.
type SMTPGateway struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	logger  *zap.Logger
}

// NewSMTPGateway validates cfg and returns a gateway whose client gives up
// after timeout (DefaultTimeout when not positive).
func NewSMTPGateway(cfg config.SMTPConfig, timeout time.Duration, logger *zap.Logger) (*SMTPGateway, error) {
	if cfg.Host == "" {
		return nil, errors.New("delivery: smtp host is required")
	}
	if cfg.Recipient() == "" {
		return nil, errors.New("delivery: no recipient mailbox configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SMTPGateway{cfg: cfg, timeout: timeout, logger: logger.Named("smtp")}, nil
}

func (g *SMTPGateway) Name() string { return "smtp" }

// sender returns the From address: the configured From, else the username.
func (g *SMTPGateway) sender() string {
	if g.cfg.From != "" {
		return g.cfg.From
	}
	if g.cfg.Username != "" {
		return g.cfg.Username
	}
	return g.cfg.Recipient()
}

func tlsPolicy(s string) mail.TLSPolicy {
	switch strings.ToLower(s) {
	case "opportunistic":
		return mail.TLSOpportunistic
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSMandatory
	}
}

// message builds the outgoing mail.
func (g *SMTPGateway) message(subject, htmlBody string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(g.sender()); err != nil {
		return nil, fmt.Errorf("%w: from address: %w", ErrDelivery, err)
	}
	if err := m.To(g.cfg.Recipient()); err != nil {
		return nil, fmt.Errorf("%w: to address: %w", ErrDelivery, err)
	}
	m.Subject(subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextHTML, htmlBody)
	return m, nil
}

func (g *SMTPGateway) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(g.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(g.cfg.TLS)),
		mail.WithTimeout(g.timeout),
	}
	if g.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(g.cfg.Username),
			mail.WithPassword(g.cfg.Password),
		)
	}
	c, err := mail.NewClient(g.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: client: %w", ErrDelivery, err)
	}
	return c, nil
}

// Send delivers one message. The error is for the caller to log; there is
// no retry.
func (g *SMTPGateway) Send(ctx context.Context, subject, htmlBody string) error {
	m, err := g.message(subject, htmlBody)
	if err != nil {
		return err
	}
	c, err := g.client()
	if err != nil {
		return err
	}

	start := time.Now()
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %s:%d: %w", ErrDelivery, g.cfg.Host, g.cfg.Port, err)
	}
	g.logger.Debug("report mailed",
		zap.String("to", g.cfg.Recipient()),
		zap.Int("bytes", len(htmlBody)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// ── Log only ──

// LogGateway records deliveries in the log instead of sending them. It is
// used when no SMTP host is configured.
type LogGateway struct {
	logger *zap.Logger
}

// NewLogGateway returns a gateway that only logs.
func NewLogGateway(logger *zap.Logger) *LogGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogGateway{logger: logger.Named("delivery")}
}

func (g *LogGateway) Name() string { return "log" }

// Send implements Gateway.
func (g *LogGateway) Send(ctx context.Context, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	g.logger.Info("smtp not configured, report not mailed",
		zap.String("subject", subject),
		zap.Int("bytes", len(htmlBody)))
	return nil
}
