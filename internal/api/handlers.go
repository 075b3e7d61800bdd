package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ignite/subscribebox/internal/config"
	"github.com/ignite/subscribebox/internal/domain"
	"github.com/ignite/subscribebox/internal/form"
	"github.com/ignite/subscribebox/internal/metrics"
	"github.com/ignite/subscribebox/internal/pkg/distlock"
	"github.com/ignite/subscribebox/internal/pkg/httputil"
	"github.com/ignite/subscribebox/internal/pkg/logger"
	"github.com/ignite/subscribebox/internal/session"
	"github.com/ignite/subscribebox/internal/ui"
)

// SubmitLockPrefix namespaces per-address submit locks in Redis.
const SubmitLockPrefix = "subscribebox:submit:"

// errLockUnavailable marks a submit that could not reach the lock backend.
var errLockUnavailable = errors.New("submit lock unavailable")

// Handlers contains the HTTP handlers for the widget.
type Handlers struct {
	sessions *session.Registry
	renderer *ui.Renderer
	metrics  *metrics.Metrics
	locker   *distlock.Locker
	log      *logger.Logger

	formCfg    config.FormConfig
	sessionCfg config.SessionConfig
}

// NewHandlers creates the handlers. A nil locker disables cross-replica
// de-duplication of submits for the same address.
func NewHandlers(
	sessions *session.Registry,
	renderer *ui.Renderer,
	m *metrics.Metrics,
	locker *distlock.Locker,
	formCfg config.FormConfig,
	sessionCfg config.SessionConfig,
	log *logger.Logger,
) *Handlers {
	if log == nil {
		log = logger.Default()
	}
	return &Handlers{
		sessions:   sessions,
		renderer:   renderer,
		metrics:    m,
		locker:     locker,
		log:        log.With("component", "api"),
		formCfg:    formCfg,
		sessionCfg: sessionCfg,
	}
}

// submitRequest is the body of POST /api/subscribe.
type submitRequest struct {
	Email string `json:"email"`
}

// submitResponse is the body returned by POST /api/subscribe.
type submitResponse struct {
	Outcome form.Outcome `json:"outcome"`
	View    form.View    `json:"view"`
}

// HandlePage renders the widget for the caller's session.
//
//	GET /
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	_, c, locale := h.session(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := h.renderer.Render(w, ui.Page{
		View:       c.Render(),
		Locale:     locale,
		ResetDelay: c.ResetDelay(),
		SubmitPath: withLang("/subscribe", r),
		PagePath:   withLang("/", r),
	})
	if err != nil {
		h.log.Error("page render failed", "error", err)
	}
}

// HandleFormSubmit handles the no-script form post and redirects back to the page.
//
//	POST /subscribe
func (h *Handlers) HandleFormSubmit(w http.ResponseWriter, r *http.Request) {
	id, c, _ := h.session(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	email := r.PostForm.Get("email")
	c.OnEmailChange(email)
	if _, err := h.submit(r.Context(), email, c); errors.Is(err, errLockUnavailable) {
		h.log.Error("form submit skipped", "session", id, "error", err)
	}

	http.Redirect(w, r, withLang("/", r), http.StatusSeeOther)
}

// HandleState returns the session's current view.
//
//	GET /api/state
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	_, c, _ := h.session(w, r)
	httputil.OK(w, c.Render())
}

// HandleSubscribe runs one submit attempt and reports its outcome.
//
//	POST /api/subscribe
func (h *Handlers) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	_, c, _ := h.session(w, r)

	var req submitRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	c.OnEmailChange(req.Email)
	outcome, err := h.submit(r.Context(), req.Email, c)
	switch {
	case errors.Is(err, errLockUnavailable):
		respondSafeError(w, http.StatusServiceUnavailable, err, "Service temporarily unavailable")
	case outcome == form.OutcomeBusy || outcome == form.OutcomeClosed:
		httputil.Conflict(w, outcome.String(), err.Error(), submitResponse{Outcome: outcome, View: c.Render()})
	default:
		httputil.OK(w, submitResponse{Outcome: outcome, View: c.Render()})
	}
}

// submit runs OnSubmit and records the outcome. A valid address is sent
// under a Redis lock keyed by the address, so replicas that do not share
// sessions still send at most one request per address at a time. Invalid
// input never reaches the network and skips the lock.
func (h *Handlers) submit(ctx context.Context, email string, c *form.Controller) (form.Outcome, error) {
	if !domain.IsGmailAddress(email) {
		outcome, err := c.OnSubmit(ctx)
		h.metrics.RecordSubmission(outcome.String())
		return outcome, err
	}

	lock := h.locker.Lock(submitLockKey(email))
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return form.OutcomeFailed, fmt.Errorf("%w: %w", errLockUnavailable, err)
	}
	if !acquired {
		h.metrics.RecordSubmission(form.OutcomeBusy.String())
		return form.OutcomeBusy, form.ErrBusy
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			h.log.Warn("submit lock release failed", "email", email, "error", err)
		}
	}()

	outcome, err := c.OnSubmit(ctx)
	h.metrics.RecordSubmission(outcome.String())
	return outcome, err
}

// submitLockKey identifies an address without storing it in Redis.
func submitLockKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// session resolves the caller's form instance, minting a session cookie when
// the browser did not present a live one.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (string, *form.Controller, string) {
	locale := ui.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), h.formCfg.DefaultLocale)

	var presented string
	if ck, err := r.Cookie(h.sessionCfg.CookieName); err == nil {
		presented = ck.Value
	}

	id, c, created := h.sessions.Acquire(presented, locale)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     h.sessionCfg.CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.sessionCfg.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id, c, locale
}

// withLang carries an explicit ?lang= over to path.
func withLang(path string, r *http.Request) string {
	lang := r.URL.Query().Get("lang")
	if lang == "" || !ui.Supported(lang) {
		return path
	}
	return path + "?" + url.Values{"lang": {lang}}.Encode()
}
