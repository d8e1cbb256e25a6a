package infra

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── RateLimiter ──

func TestRateLimiterBurstThenRefill(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }
	rl.lastRefill = now

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	now = now.Add(time.Hour)
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow(), "tokens must be capped at max")
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestPerMinute(t *testing.T) {
	assert.Nil(t, PerMinute(0))
	var rl *RateLimiter
	assert.True(t, rl.Allow())
	assert.NoError(t, rl.Wait(context.Background()))

	rl = PerMinute(60)
	require.NotNil(t, rl)
	assert.Equal(t, time.Second, rl.refillRate)
	assert.Equal(t, 60, rl.maxTokens)
}

// ── Collectors ──

func TestCollectorsCount(t *testing.T) {
	c := NewCollectors()

	c.Report("zh-child", OutcomeOK)
	c.Report("zh-child", OutcomeOK)
	c.Report("en-employee", OutcomeInputError)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.reports.WithLabelValues("zh-child", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reports.WithLabelValues("en-employee", OutcomeInputError)))

	c.DeliveryStarted()
	c.DeliveryStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.inflight))
	c.DeliveryFinished(nil)
	c.DeliveryFinished(errors.New("boom"))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.inflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.delivery.WithLabelValues(DeliverySent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.delivery.WithLabelValues(DeliveryFailed)))

	c.ObserveRender(20 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(c.render))
}

func TestCollectorsHandler(t *testing.T) {
	c := NewCollectors()
	c.Report("zh-child", OutcomeOK)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `katareport_reports_total{outcome="ok",set="zh-child"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNilCollectors(t *testing.T) {
	var c *Collectors
	c.Report("x", OutcomeOK)
	c.ObserveRender(time.Second)
	c.DeliveryStarted()
	c.DeliveryFinished(nil)
}
