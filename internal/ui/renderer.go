package ui

import (
	"embed"
	"fmt"
	"html"
	"io"
	"math"
	"time"

	"github.com/ignite/subscribebox/internal/form"
	"github.com/osteele/liquid"
)

//go:embed templates/page.liquid
var templates embed.FS

// Page is everything one render of the widget needs.
type Page struct {
	View       form.View
	Locale     string
	ResetDelay time.Duration
	SubmitPath string
	PagePath   string
}

// Renderer renders widget pages. It is safe for concurrent use.
type Renderer struct {
	engine *liquid.Engine
	page   *liquid.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	engine := liquid.NewEngine()

	// HTML escape, quotes included so values are safe inside attributes
	engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	src, err := templates.ReadFile("templates/page.liquid")
	if err != nil {
		return nil, fmt.Errorf("read page template: %w", err)
	}
	tpl, err := engine.ParseTemplate(src)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{engine: engine, page: tpl}, nil
}

// Render writes the page to w.
func (r *Renderer) Render(w io.Writer, p Page) error {
	out, serr := r.page.Render(bindings(p))
	if serr != nil {
		return fmt.Errorf("render page: %w", serr)
	}
	_, err := w.Write(out)
	return err
}

func bindings(p Page) liquid.Bindings {
	c := CopyFor(p.Locale)
	if p.SubmitPath == "" {
		p.SubmitPath = "/subscribe"
	}
	if p.PagePath == "" {
		p.PagePath = "/"
	}
	if p.ResetDelay <= 0 {
		p.ResetDelay = form.DefaultResetDelay
	}

	return liquid.Bindings{
		"copy": map[string]any{
			"lang":          c.Lang,
			"title":         c.Title,
			"subtitle_lead": c.SubtitleLead,
			"subtitle_tail": c.SubtitleTail,
			"placeholder":   c.Placeholder,
			"button":        c.Button,
		},
		"view": map[string]any{
			"email":        p.View.State.Email,
			"message":      p.View.State.Message,
			"show_loader":  p.View.ShowLoader,
			"show_success": p.View.ShowSuccess,
			"show_error":   p.View.ShowError,
		},
		"refresh_seconds": int(math.Ceil(p.ResetDelay.Seconds())),
		"action_submit":   p.SubmitPath,
		"action_page":     p.PagePath,
	}
}
