package form

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ignite/subscribebox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_InitialState(t *testing.T) {
	c, _ := newTestController(t, &stubSubscriber{})

	v := c.Render()
	assert.Equal(t, domain.FormState{}, v.State)
	assert.False(t, v.ShowLoader)
	assert.False(t, v.ShowSuccess)
	assert.False(t, v.ShowError)
	assert.Equal(t, DefaultResetDelay, c.ResetDelay())
}

func TestController_OnEmailChange_NoValidation(t *testing.T) {
	c, _ := newTestController(t, &stubSubscriber{})

	c.OnEmailChange("not an email")

	s := c.State()
	assert.Equal(t, "not an email", s.Email)
	assert.Equal(t, domain.StatusNone, s.Status)
	assert.Empty(t, s.Message)
}

func TestController_InvalidEmail_NoNetworkCall(t *testing.T) {
	inputs := []string{"", "user@yahoo.com", "user@GMAIL.COM", "user@gmail.co", "user name@gmail.com", "@gmail.com"}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
			c, _ := newTestController(t, sub)
			c.OnEmailChange(in)

			outcome, err := c.OnSubmit(context.Background())

			assert.Equal(t, OutcomeInvalid, outcome)
			assert.ErrorIs(t, err, ErrInvalidEmail)
			assert.Empty(t, sub.Calls())

			s := c.State()
			assert.Equal(t, domain.StatusError, s.Status)
			assert.Equal(t, "Please enter a valid Gmail address", s.Message)
			assert.Equal(t, in, s.Email)
		})
	}
}

func TestController_InvalidEmail_LoaderStaysOn(t *testing.T) {
	c, _ := newTestController(t, &stubSubscriber{})
	c.OnEmailChange("user@yahoo.com")

	_, _ = c.OnSubmit(context.Background())

	// reproduces the widget: the loader is never cleared on this path
	assert.True(t, c.State().IsSubmitting)
	assert.True(t, c.Render().ShowLoader)
}

func TestController_InvalidEmail_LoaderClearedWhenFixed(t *testing.T) {
	c, _ := newTestController(t, &stubSubscriber{}, func(o *Options) {
		o.ResetSubmittingOnFailure = true
	})
	c.OnEmailChange("user@yahoo.com")

	_, _ = c.OnSubmit(context.Background())

	assert.False(t, c.State().IsSubmitting)
}

func TestController_ValidEmail_ExactlyOneCall(t *testing.T) {
	inputs := []string{"user@gmail.com", "first.last@gmail.com", "a_b-c@gmail.com", "X9@gmail.com"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
			c, _ := newTestController(t, sub)
			c.OnEmailChange(in)

			_, err := c.OnSubmit(context.Background())

			require.NoError(t, err)
			assert.Equal(t, []string{in}, sub.Calls())
		})
	}
}

func TestController_Success_ClearsEmailAndResetsAfterDelay(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, clock := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	outcome, err := c.OnSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubscribed, outcome)

	s := c.State()
	assert.Equal(t, domain.StatusSuccess, s.Status)
	assert.Equal(t, domain.EnglishMessages.Subscribed, s.Message)
	assert.Empty(t, s.Email)
	assert.False(t, s.IsSubmitting)
	assert.True(t, c.Render().ShowSuccess)

	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, domain.StatusSuccess, c.State().Status)

	clock.Advance(time.Millisecond)
	s = c.State()
	assert.Equal(t, domain.StatusNone, s.Status)
	assert.Empty(t, s.Message)
	assert.Equal(t, 0, clock.Pending())
}

func TestController_Success_ResetKeepsNewInput(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, clock := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")
	_, _ = c.OnSubmit(context.Background())

	c.OnEmailChange("typing@gm")
	clock.Advance(DefaultResetDelay)

	assert.Equal(t, domain.FormState{Email: "typing@gm"}, c.State())
}

func TestController_Rejected_KeepsEmail(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: false}}
	c, clock := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	outcome, err := c.OnSubmit(context.Background())

	assert.Equal(t, OutcomeRejected, outcome)
	assert.ErrorIs(t, err, ErrRejected)
	s := c.State()
	assert.Equal(t, domain.StatusError, s.Status)
	assert.Equal(t, domain.EnglishMessages.Rejected, s.Message)
	assert.Equal(t, "user@gmail.com", s.Email)
	assert.False(t, s.IsSubmitting)
	assert.Equal(t, 0, clock.Pending(), "no reset timer after a rejection")
}

func TestController_NetworkError(t *testing.T) {
	transportErr := errors.New("dial tcp: connection refused")
	sub := &stubSubscriber{err: transportErr}
	c, _ := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	outcome, err := c.OnSubmit(context.Background())

	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, transportErr)

	s := c.State()
	assert.Equal(t, domain.StatusError, s.Status)
	assert.Equal(t, domain.EnglishMessages.Failed, s.Message)
	assert.Equal(t, "user@gmail.com", s.Email)
	// reproduces the widget: the loader stays on after a transport failure
	assert.True(t, s.IsSubmitting)
}

func TestController_NetworkError_LoaderClearedWhenFixed(t *testing.T) {
	sub := &stubSubscriber{err: errors.New("timeout")}
	c, _ := newTestController(t, sub, func(o *Options) {
		o.ResetSubmittingOnFailure = true
	})
	c.OnEmailChange("user@gmail.com")

	_, _ = c.OnSubmit(context.Background())

	assert.False(t, c.State().IsSubmitting)
}

func TestController_UnreadableResponse_ClearsLoader(t *testing.T) {
	sub := &stubSubscriber{err: fmt.Errorf("parse: %w", domain.ErrUnreadableResponse)}
	c, _ := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	outcome, _ := c.OnSubmit(context.Background())

	assert.Equal(t, OutcomeFailed, outcome)
	s := c.State()
	assert.Equal(t, domain.EnglishMessages.Failed, s.Message)
	assert.False(t, s.IsSubmitting)
}

func TestController_StuckLoaderDoesNotBlockResubmit(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, _ := newTestController(t, sub)

	c.OnEmailChange("bad")
	_, _ = c.OnSubmit(context.Background())
	require.True(t, c.State().IsSubmitting)

	c.OnEmailChange("user@gmail.com")
	outcome, err := c.OnSubmit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, OutcomeSubscribed, outcome)
	assert.Len(t, sub.Calls(), 1)
}

func TestController_BusyGuard(t *testing.T) {
	sub := &stubSubscriber{
		resp:    domain.SubscriptionResponse{Success: true},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c, _ := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := c.OnSubmit(context.Background())
		done <- outcome
	}()
	<-sub.started

	// input events are still processed while the request is in flight
	assert.True(t, c.State().IsSubmitting)
	c.OnEmailChange("other@gmail.com")

	outcome, err := c.OnSubmit(context.Background())
	assert.Equal(t, OutcomeBusy, outcome)
	assert.ErrorIs(t, err, ErrBusy)

	close(sub.block)
	assert.Equal(t, OutcomeSubscribed, <-done)
	assert.Len(t, sub.Calls(), 1)
	// the success clears whatever was typed meanwhile
	assert.Empty(t, c.State().Email)
}

func TestController_NewSubmitCancelsPendingReset(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, clock := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")
	_, _ = c.OnSubmit(context.Background())

	clock.Advance(3 * time.Second)
	c.OnEmailChange("user@yahoo.com")
	_, _ = c.OnSubmit(context.Background())

	clock.Advance(3 * time.Second)
	s := c.State()
	assert.Equal(t, domain.StatusError, s.Status)
	assert.Equal(t, domain.EnglishMessages.Invalid, s.Message)
}

func TestController_SecondSuccessRestartsResetWindow(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, clock := newTestController(t, sub)

	c.OnEmailChange("a@gmail.com")
	_, _ = c.OnSubmit(context.Background())
	clock.Advance(4 * time.Second)

	c.OnEmailChange("b@gmail.com")
	_, _ = c.OnSubmit(context.Background())
	clock.Advance(4 * time.Second)
	assert.Equal(t, domain.StatusSuccess, c.State().Status)

	clock.Advance(time.Second)
	assert.Equal(t, domain.StatusNone, c.State().Status)
}

func TestController_CloseStopsResetTimer(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, clock := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")
	_, _ = c.OnSubmit(context.Background())
	require.Equal(t, 1, clock.Pending())

	c.Close()
	c.Close()

	assert.True(t, c.Closed())
	assert.Equal(t, 0, clock.Pending())
}

func TestController_CloseDuringFlightDropsUpdate(t *testing.T) {
	sub := &stubSubscriber{
		resp:    domain.SubscriptionResponse{Success: true},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c, clock := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := c.OnSubmit(context.Background())
		done <- outcome
	}()
	<-sub.started

	c.Close()

	assert.Equal(t, OutcomeClosed, <-done)
	s := c.State()
	assert.Equal(t, domain.StatusNone, s.Status, "no update after unmount")
	assert.Equal(t, "user@gmail.com", s.Email)
	assert.Equal(t, 0, clock.Pending())

	outcome, err := c.OnSubmit(context.Background())
	assert.Equal(t, OutcomeClosed, outcome)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestController_CallerCancelAbortsRequest(t *testing.T) {
	sub := &stubSubscriber{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c, _ := newTestController(t, sub)
	c.OnEmailChange("user@gmail.com")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.OnSubmit(ctx)
		done <- err
	}()
	<-sub.started
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.EnglishMessages.Failed, c.State().Message)
	assert.False(t, c.Closed(), "caller cancel is not an unmount")
}

func TestController_LocalizedMessages(t *testing.T) {
	c, _ := newTestController(t, &stubSubscriber{}, func(o *Options) {
		o.Messages = domain.SpanishMessages
	})
	c.OnEmailChange("user@yahoo.com")

	_, _ = c.OnSubmit(context.Background())

	assert.Equal(t, "Por favor, introduce un Gmail válido", c.State().Message)
}

func TestController_WallClockReset(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c := New(sub, Options{ResetDelay: 20 * time.Millisecond})
	defer c.Close()

	c.OnEmailChange("user@gmail.com")
	_, err := c.OnSubmit(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return c.State().Status == domain.StatusNone
	}, time.Second, 5*time.Millisecond)
}

func TestController_ScenarioGmail(t *testing.T) {
	sub := &stubSubscriber{resp: domain.SubscriptionResponse{Success: true}}
	c, _ := newTestController(t, sub)

	c.OnEmailChange("user@gmail.com")
	_, _ = c.OnSubmit(context.Background())

	assert.Equal(t, []string{"user@gmail.com"}, sub.Calls())
	v := c.Render()
	assert.True(t, v.ShowSuccess)
	assert.Equal(t, domain.EnglishMessages.Subscribed, v.State.Message)
	assert.Empty(t, v.State.Email)
}

func TestController_ScenarioYahoo(t *testing.T) {
	sub := &stubSubscriber{}
	c, _ := newTestController(t, sub)

	c.OnEmailChange("user@yahoo.com")
	_, _ = c.OnSubmit(context.Background())

	assert.Empty(t, sub.Calls())
	v := c.Render()
	assert.True(t, v.ShowError)
	assert.Equal(t, "Please enter a valid Gmail address", v.State.Message)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "subscribed", OutcomeSubscribed.String())
	assert.Equal(t, "busy", OutcomeBusy.String())
	assert.Equal(t, "unknown", Outcome(99).String())

	text, err := OutcomeFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))
}
