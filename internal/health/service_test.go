package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, map[string]bool{"ok": true}, NewService(0).Status())
}

func TestReady(t *testing.T) {
	s := NewService(50 * time.Millisecond)
	s.Register("store", func(context.Context) error { return nil })
	report := s.Ready(context.Background())
	assert.True(t, report.OK)
	assert.Equal(t, map[string]string{"store": "ok"}, report.Checks)

	s.Register("analysis", func(context.Context) error { return errors.New("connection refused") })
	s.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	report = s.Ready(context.Background())
	assert.False(t, report.OK)
	assert.Equal(t, "ok", report.Checks["store"])
	assert.Equal(t, "connection refused", report.Checks["analysis"])
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks["slow"])
}
