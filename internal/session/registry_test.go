package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/subscribebox/internal/domain"
	"github.com/ignite/subscribebox/internal/form"
	"github.com/ignite/subscribebox/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type okSubscriber struct{}

func (okSubscriber) Subscribe(context.Context, string) (domain.SubscriptionResponse, error) {
	return domain.SubscriptionResponse{Success: true}, nil
}

func newFactory() Factory {
	return func(string) *form.Controller {
		return form.New(okSubscriber{}, form.Options{Logger: logger.New(io.Discard, logger.ERROR)})
	}
}

func TestRegistry_AcquireCreatesSession(t *testing.T) {
	r := NewRegistry(newFactory(), time.Minute)
	defer r.Close()

	id, c, created := r.Acquire("", "en")

	require.NotNil(t, c)
	assert.True(t, created)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AcquireReturnsSameInstance(t *testing.T) {
	r := NewRegistry(newFactory(), time.Minute)
	defer r.Close()

	id, c1, _ := r.Acquire("", "en")
	c1.OnEmailChange("user@gmail.com")

	id2, c2, created := r.Acquire(id, "en")

	assert.False(t, created)
	assert.Equal(t, id, id2)
	assert.Same(t, c1, c2)
	assert.Equal(t, "user@gmail.com", c2.State().Email)
}

func TestRegistry_UnknownOrMalformedIDGetsNewSession(t *testing.T) {
	r := NewRegistry(newFactory(), time.Minute)
	defer r.Close()

	unknown := uuid.NewString()
	id, _, created := r.Acquire(unknown, "en")
	assert.True(t, created)
	assert.NotEqual(t, unknown, id)

	id, _, created = r.Acquire("../../etc/passwd", "en")
	assert.True(t, created)
	assert.NotEqual(t, "../../etc/passwd", id)
}

func TestRegistry_RemoveClosesController(t *testing.T) {
	r := NewRegistry(newFactory(), time.Minute)
	defer r.Close()

	id, c, _ := r.Acquire("", "en")
	r.Remove(id)

	assert.True(t, c.Closed())
	_, found := r.Lookup(id)
	assert.False(t, found)
}

func TestRegistry_SweepClosesExpired(t *testing.T) {
	r := NewRegistry(newFactory(), 10*time.Millisecond)
	defer r.Close()

	id, c, _ := r.Acquire("", "en")
	c.OnEmailChange("user@gmail.com")
	_, err := c.OnSubmit(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	r.Sweep()

	assert.True(t, c.Closed(), "expiry unmounts the form and stops its reset timer")
	assert.Equal(t, 0, r.Len())

	newID, _, created := r.Acquire(id, "en")
	assert.True(t, created)
	assert.NotEqual(t, id, newID)
}

func TestRegistry_RunClosesAllOnShutdown(t *testing.T) {
	r := NewRegistry(newFactory(), time.Minute)

	_, c1, _ := r.Acquire("", "en")
	_, c2, _ := r.Acquire("", "en")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	cancel()
	<-done

	assert.True(t, c1.Closed())
	assert.True(t, c2.Closed())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_CloseUnmountsExpiredUnswept(t *testing.T) {
	r := NewRegistry(newFactory(), 20*time.Millisecond)

	_, c, _ := r.Acquire("", "en")
	c.OnEmailChange("user@gmail.com")
	outcome, err := c.OnSubmit(context.Background())
	require.NoError(t, err)
	require.Equal(t, form.OutcomeSubscribed, outcome)

	time.Sleep(50 * time.Millisecond)
	r.Close()

	assert.True(t, c.Closed(), "shutdown must stop the pending reset timer of an expired session")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SweepWaitsForAcquire(t *testing.T) {
	r := NewRegistry(newFactory(), time.Millisecond)
	defer r.Close()

	id, c, _ := r.Acquire("", "en")
	time.Sleep(5 * time.Millisecond)

	// Hold the registry lock the way Acquire does between lookup and refresh.
	r.mu.Lock()
	swept := make(chan struct{})
	go func() {
		r.Sweep()
		close(swept)
	}()

	select {
	case <-swept:
		r.mu.Unlock()
		t.Fatal("sweep evicted a session while Acquire held the registry")
	case <-time.After(20 * time.Millisecond):
	}
	assert.False(t, c.Closed())
	r.mu.Unlock()
	<-swept

	assert.True(t, c.Closed())
	newID, fresh, created := r.Acquire(id, "en")
	assert.True(t, created)
	assert.NotEqual(t, id, newID)
	assert.False(t, fresh.Closed())
}
