package health

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun_AllHealthy(t *testing.T) {
	r := NewRegistry(time.Second)
	r.RegisterCritical("redis", func(ctx context.Context) error { return nil })
	r.RegisterNonCritical("storefront", func(ctx context.Context) error { return nil })

	report := r.Run(context.Background())

	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, StatusUp, report.Checks["redis"].Status)
	assert.Equal(t, StatusUp, report.Checks["storefront"].Status)
	assert.False(t, report.Timestamp.IsZero())
}

func TestRun_CriticalDown(t *testing.T) {
	r := NewRegistry(time.Second)
	r.RegisterCritical("redis", func(ctx context.Context) error { return fmt.Errorf("connection refused") })
	r.RegisterNonCritical("storefront", func(ctx context.Context) error { return nil })

	report := r.Run(context.Background())

	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "connection refused", report.Checks["redis"].Error)
	assert.True(t, report.Checks["redis"].Critical)
}

func TestRun_NonCriticalDownDegrades(t *testing.T) {
	r := NewRegistry(time.Second)
	r.RegisterCritical("redis", func(ctx context.Context) error { return nil })
	r.RegisterNonCritical("storefront", func(ctx context.Context) error { return fmt.Errorf("timeout") })

	report := r.Run(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
}

func TestRun_TimeoutAppliesToChecks(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	r.RegisterCritical("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := r.Run(context.Background())

	assert.Equal(t, StatusDown, report.Status)
	assert.Contains(t, report.Checks["slow"].Error, "deadline exceeded")
}

func TestNames_Sorted(t *testing.T) {
	r := NewRegistry(time.Second)
	r.RegisterNonCritical("storefront", func(ctx context.Context) error { return nil })
	r.RegisterCritical("redis", func(ctx context.Context) error { return nil })

	assert.Equal(t, []string{"redis", "storefront"}, r.Names())
}
