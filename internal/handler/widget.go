package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/passgen/passgen-go/internal/model"
	"github.com/passgen/passgen-go/internal/view"
	"github.com/passgen/passgen-go/internal/widget"
)

// WidgetHandler serves the password widget page and its actions.
type WidgetHandler struct {
	widget *widget.Widget
}

// NewWidgetHandler creates a new WidgetHandler.
func NewWidgetHandler(w *widget.Widget) *WidgetHandler {
	return &WidgetHandler{widget: w}
}

// HandlePage handles GET / requests.
func (h *WidgetHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.Page(h.widget.State()))
}

// HandleFragment handles GET /widget requests.
func (h *WidgetHandler) HandleFragment(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.Widget(h.widget.State()))
}

// HandleState handles GET /api/v1/state requests.
func (h *WidgetHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.widget.State())
}

// HandleLength handles POST /widget/length requests.
func (h *WidgetHandler) HandleLength(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid form"))
		return
	}

	length, err := strconv.Atoi(r.PostFormValue("length"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("length must be an integer"))
		return
	}

	render(w, r, http.StatusOK, view.Widget(h.widget.SetLength(length)))
}

// HandleToggleOption handles POST /widget/options/{option} requests.
func (h *WidgetHandler) HandleToggleOption(w http.ResponseWriter, r *http.Request) {
	state, err := h.widget.ToggleOption(chi.URLParam(r, "option"))
	if err != nil {
		if errors.Is(err, widget.ErrUnknownOption) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	render(w, r, http.StatusOK, view.Widget(state))
}

// HandleGenerate handles POST /widget/generate requests.
func (h *WidgetHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, view.Widget(h.widget.Generate()))
}

// HandleCopy handles POST /widget/copy requests.
func (h *WidgetHandler) HandleCopy(w http.ResponseWriter, r *http.Request) {
	state, err := h.widget.Copy(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse("clipboard write failed"))
		return
	}

	render(w, r, http.StatusOK, view.Widget(state))
}

// HandleEvents handles GET /widget/events requests. The widget regions are
// sent on connect and again after every state change until the client leaves.
func (h *WidgetHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse("streaming unsupported"))
		return
	}

	// Holds at most the latest state; a slow client skips intermediate ones.
	updates := make(chan model.PasswordState, 1)
	unsubscribe := h.widget.Subscribe(func(_ model.Change, state model.PasswordState) {
		for {
			select {
			case updates <- state:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	state := h.widget.State()
	for {
		for _, region := range view.Regions(state) {
			var buf bytes.Buffer
			if err := region.Content.Render(r.Context(), &buf); err != nil {
				slog.Error("render widget event", "event", region.Event, "error", err)
				return
			}
			if _, err := w.Write(view.SSEEvent(region.Event, buf.Bytes())); err != nil {
				return
			}
		}
		flusher.Flush()

		select {
		case <-r.Context().Done():
			return
		case state = <-updates:
		}
	}
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		slog.Error("render component", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
