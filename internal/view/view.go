// Package view renders the password widget as HTML.
//
// Every function here is a pure mapping from model.PasswordState to a
// templ.Component; the handlers decide when to render.
package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/passgen/passgen-go/internal/generator"
	"github.com/passgen/passgen-go/internal/model"
)

// WidgetID is the element id targeted by partial swaps.
const WidgetID = "password-widget"

// Page renders the full HTML document around the widget.
func Page(state model.PasswordState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>Password Generator</title>`+
			`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`+
			`<script src="https://unpkg.com/htmx-ext-sse@2.2.2/sse.js"></script>`+
			`</head><body hx-ext="sse" sse-connect="/widget/events">`); err != nil {
			return err
		}
		if err := Widget(state).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Widget renders the swappable widget fragment.
//
// The notification, password and length label sit in regions that the event
// stream fills in place (see Regions). The range control never swaps the
// widget it lives in: it only pulls those regions out of the response, so a
// drag in progress is not interrupted.
func Widget(state model.PasswordState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.printf(`<div id="%s" class="password-widget" hx-target="this" hx-swap="outerHTML">`, WidgetID)
		ew.print(`<h1>Password Generator</h1>`)

		ew.printf(`<div id="%s" sse-swap="%s" hx-swap="innerHTML">`, NotificationRegionID, EventNotification)
		ew.render(ctx, notificationContent(state))
		ew.print(`</div>`)

		ew.print(`<div class="password-row">`)
		ew.printf(`<span id="%s" sse-swap="%s" hx-swap="innerHTML">`, PasswordRegionID, EventPassword)
		ew.render(ctx, passwordContent(state))
		ew.print(`</span>`)
		ew.print(`<button hx-post="/widget/copy" aria-label="Copy Password">Copy</button>`)
		ew.print(`</div>`)

		ew.printf(`<div class="length"><label id="%s" for="length" sse-swap="%s" hx-swap="innerHTML">`, LengthRegionID, EventLength)
		ew.render(ctx, lengthContent(state))
		ew.print(`</label>`)
		ew.printf(`<input id="length" type="range" name="length" min="%d" max="%d" value="%d" `+
			`hx-post="/widget/length" hx-trigger="input" hx-sync="this:replace" `+
			`hx-swap="none" hx-select-oob="#%s,#%s">`,
			generator.MinLength, generator.MaxLength, state.Length, PasswordRegionID, LengthRegionID)
		ew.print(`</div>`)

		ew.print(checkbox("numbers", "Numbers", "Include Numbers", state.Options.IncludeNumbers))
		ew.print(checkbox("characters", "Characters", "Include Special Characters", state.Options.IncludeSpecialCharacters))

		ew.print(`<button class="generate" hx-post="/widget/generate" aria-label="Generate Password">Generate Password</button>`)
		ew.print(`</div>`)
		return ew.err
	})
}

// Element ids and event names of the in-place regions.
const (
	NotificationRegionID = "notification-region"
	PasswordRegionID     = "password-region"
	LengthRegionID       = "length-label"

	EventNotification = "notification"
	EventPassword     = "password"
	EventLength       = "length"
)

// Region is a part of the widget the event stream updates in place.
type Region struct {
	Event   string
	Content templ.Component
}

// Regions returns the contents of every in-place region for state.
func Regions(state model.PasswordState) []Region {
	return []Region{
		{Event: EventNotification, Content: notificationContent(state)},
		{Event: EventPassword, Content: passwordContent(state)},
		{Event: EventLength, Content: lengthContent(state)},
	}
}

func notificationContent(state model.PasswordState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if state.Notification == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, `<div class="notification" role="status">%s</div>`, templ.EscapeString(state.Notification))
		return err
	})
}

func passwordContent(state model.PasswordState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<input type="text" value="%s" placeholder="Password" readonly aria-label="Generated Password">`,
			templ.EscapeString(state.Password))
		return err
	})
}

func lengthContent(state model.PasswordState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(LengthLabel(state.Length)))
		return err
	})
}

func checkbox(option, label, ariaLabel string, checked bool) string {
	attr := ""
	if checked {
		attr = " checked"
	}
	return `<div class="option"><label><input type="checkbox" name="` + option + `"` + attr +
		` hx-post="/widget/options/` + option + `" aria-label="` + ariaLabel + `">` +
		label + `</label></div>`
}

// SSEEvent formats a rendered fragment as a single server-sent event.
// Each line of data gets its own data: field.
func SSEEvent(event string, html []byte) []byte {
	out := make([]byte, 0, len(html)+32)
	out = append(out, "event: "...)
	out = append(out, event...)
	out = append(out, '\n')
	start := 0
	for i, b := range html {
		if b == '\n' {
			out = append(out, "data: "...)
			out = append(out, html[start:i]...)
			out = append(out, '\n')
			start = i + 1
		}
	}
	out = append(out, "data: "...)
	out = append(out, html[start:]...)
	out = append(out, "\n\n"...)
	return out
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) render(ctx context.Context, c templ.Component) {
	if ew.err != nil {
		return
	}
	ew.err = c.Render(ctx, ew.w)
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// LengthLabel is the text of the range control label.
func LengthLabel(length int) string {
	return "Password Length: " + strconv.Itoa(length)
}
