package delivery

import (
	"context"
	"mime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katachat/katareport/internal/config"
)

func TestNewSelectsGateway(t *testing.T) {
	g, err := New(config.SMTPConfig{}, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "log", g.Name())

	g, err = New(config.SMTPConfig{Host: "smtp.gmail.com", Port: 587, Username: "reports@example.com", TLS: "mandatory"}, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "smtp", g.Name())
}

func TestNewSMTPGatewayValidation(t *testing.T) {
	_, err := NewSMTPGateway(config.SMTPConfig{}, 0, nil)
	assert.Error(t, err)

	_, err = NewSMTPGateway(config.SMTPConfig{Host: "smtp.example.com"}, 0, nil)
	assert.Error(t, err)
}

func TestSMTPMessageToFixedMailbox(t *testing.T) {
	g, err := NewSMTPGateway(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "reports@example.com"}, 0, nil)
	require.NoError(t, err)

	m, err := g.message("🎓 孩子学习分析报告 | KataChat AI", "<html>report</html>")
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"reports@example.com"}, rcpts)

	encoded := m.GetGenHeader(mail.HeaderSubject)
	require.Len(t, encoded, 1)
	subject, err := new(mime.WordDecoder).DecodeHeader(encoded[0])
	require.NoError(t, err)
	assert.Equal(t, "🎓 孩子学习分析报告 | KataChat AI", subject)
	assert.Equal(t, "reports@example.com", g.sender())
}

func TestSMTPTimeoutFromConfig(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "reports@example.com"}

	g, err := NewSMTPGateway(cfg, 7*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, g.timeout)

	g, err = NewSMTPGateway(cfg, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, g.timeout)

	gw, err := New(cfg, 12*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, gw.(*SMTPGateway).timeout)
}

func TestSMTPExplicitFromAndTo(t *testing.T) {
	g, err := NewSMTPGateway(config.SMTPConfig{
		Host: "smtp.example.com", Port: 587,
		Username: "login@example.com", From: "noreply@example.com", To: "inbox@example.com",
	}, 0, nil)
	require.NoError(t, err)

	m, err := g.message("s", "b")
	require.NoError(t, err)
	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox@example.com"}, rcpts)
	assert.Equal(t, "noreply@example.com", g.sender())
}

func TestSMTPBadAddress(t *testing.T) {
	g, err := NewSMTPGateway(config.SMTPConfig{Host: "smtp.example.com", Port: 587, To: "not an address"}, 0, nil)
	require.NoError(t, err)
	_, err = g.message("s", "b")
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestSMTPSendFailureIsWrapped(t *testing.T) {
	g, err := NewSMTPGateway(config.SMTPConfig{Host: "127.0.0.1", Port: 1, To: "inbox@example.com", TLS: "none"}, 0, nil)
	require.NoError(t, err)
	g.timeout = 500 * time.Millisecond

	err = g.Send(context.Background(), "subject", "<p>x</p>")
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestTLSPolicy(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicy("mandatory"))
	assert.Equal(t, mail.TLSMandatory, tlsPolicy(""))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicy("Opportunistic"))
	assert.Equal(t, mail.NoTLS, tlsPolicy("none"))
}

func TestLogGateway(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g := NewLogGateway(zap.New(core))

	require.NoError(t, g.Send(context.Background(), "subject", "<p>hello</p>"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "subject", entry.ContextMap()["subject"])
	assert.EqualValues(t, len("<p>hello</p>"), entry.ContextMap()["bytes"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Send(ctx, "s", "b"), ErrDelivery)
}
