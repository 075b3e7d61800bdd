package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/subscribebox/internal/domain"
	"github.com/ignite/subscribebox/internal/pkg/logger"
)

// DefaultResetDelay is how long a success message stays visible.
const DefaultResetDelay = 5000 * time.Millisecond

// Subscriber performs the outbound subscription request.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (domain.SubscriptionResponse, error)
}

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	Messages                 domain.Messages
	ResetDelay               time.Duration
	ResetSubmittingOnFailure bool
	Clock                    Clock
	Logger                   *logger.Logger
}

// View is what the markup is rendered from.
type View struct {
	State       domain.FormState `json:"state"`
	ShowLoader  bool             `json:"show_loader"`
	ShowSuccess bool             `json:"show_success"`
	ShowError   bool             `json:"show_error"`
}

// Controller is one rendered instance of the subscription form.
// It is safe for concurrent use.
type Controller struct {
	sub    Subscriber
	policy Policy
	delay  time.Duration
	clock  Clock
	log    *logger.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu         sync.Mutex
	state      domain.FormState
	inFlight   bool
	closed     bool
	resetGen   uint64
	resetTimer Timer
}

// New mounts a form instance with an empty state.
func New(sub Subscriber, opts Options) *Controller {
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = DefaultResetDelay
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sub: sub,
		policy: Policy{
			Messages:                 opts.Messages.WithDefaults(),
			ResetSubmittingOnFailure: opts.ResetSubmittingOnFailure,
		},
		delay:    opts.ResetDelay,
		clock:    opts.Clock,
		log:      opts.Logger.With("component", "form"),
		lifetime: ctx,
		cancel:   cancel,
	}
}

// State returns a snapshot of the current form state.
func (c *Controller) State() domain.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Render returns the view model for the current state.
func (c *Controller) Render() View {
	s := c.State()
	return View{
		State:       s,
		ShowLoader:  s.IsSubmitting,
		ShowSuccess: s.Status == domain.StatusSuccess,
		ShowError:   s.Status == domain.StatusError,
	}
}

// OnEmailChange records the input text.
func (c *Controller) OnEmailChange(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = ChangeEmail(c.state, text)
}

// OnSubmit runs one submit attempt. It blocks for the duration of the
// outbound request; other methods may be called concurrently meanwhile.
// Canceling ctx aborts the request like an unmount would, but only for this
// attempt.
func (c *Controller) OnSubmit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return OutcomeClosed, ErrClosed
	}
	if c.inFlight {
		c.mu.Unlock()
		return OutcomeBusy, ErrBusy
	}

	// a new attempt owns the feedback area; a pending reset must not clear it
	c.stopResetLocked()

	c.state = BeginSubmit(c.state)
	email := c.state.Email

	if !domain.IsGmailAddress(email) {
		c.state = RejectInvalid(c.state, c.policy)
		c.mu.Unlock()
		c.log.Debug("submission rejected by validation", "email", email)
		return OutcomeInvalid, ErrInvalidEmail
	}

	c.inFlight = true
	reqCtx, cancel := context.WithCancel(c.lifetime)
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, cancel)
	resp, err := c.sub.Subscribe(reqCtx, email)
	stop()
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if c.closed {
		c.log.Debug("dropping response for closed form", "email", email)
		return OutcomeClosed, ErrClosed
	}

	if err != nil {
		received := errors.Is(err, domain.ErrUnreadableResponse)
		c.state = ApplyFailure(c.state, received, c.policy)
		c.log.Error("subscription request failed", "email", email, "error", err)
		return OutcomeFailed, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	c.state = ApplyResponse(c.state, resp.Success, c.policy)
	if !resp.Success {
		c.log.Info("subscription rejected by endpoint", "email", email)
		return OutcomeRejected, ErrRejected
	}

	c.armResetLocked()
	c.log.Info("subscription accepted", "email", email)
	return OutcomeSubscribed, nil
}

// Close unmounts the instance: the in-flight request is canceled, the
// pending reset is stopped and every later update is ignored. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopResetLocked()
	c.mu.Unlock()

	c.cancel()
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ResetDelay returns how long success feedback stays visible.
func (c *Controller) ResetDelay() time.Duration {
	return c.delay
}

func (c *Controller) armResetLocked() {
	c.resetGen++
	gen := c.resetGen
	c.resetTimer = c.clock.AfterFunc(c.delay, func() {
		c.resetFeedback(gen)
	})
}

func (c *Controller) stopResetLocked() {
	c.resetGen++
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

func (c *Controller) resetFeedback(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// stale timers (stopped too late, or superseded) are ignored
	if c.closed || gen != c.resetGen {
		return
	}
	c.state = ClearFeedback(c.state)
	c.resetTimer = nil
}
