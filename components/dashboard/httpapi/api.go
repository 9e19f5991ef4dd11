package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/queries"
)

// Opener creates page views.
type Opener interface {
	Open(ctx context.Context) (dashboard.PageView, error)
}

// Handlers exposes JSON endpoints backed by shared commands and queries.
type Handlers struct {
	Open      Opener
	View      gocommand.Querier[queries.ViewInput, dashboard.PageView]
	Widget    gocommand.Querier[queries.WidgetInput, dashboard.WidgetView]
	Select    gocommand.Commander[commands.SelectRangeInput]
	Tab       gocommand.Commander[commands.SwitchTabInput]
	Close     gocommand.Commander[commands.CloseViewInput]
	Refresh   gocommand.Commander[commands.RefreshWidgetInput]
	Sweep     gocommand.Commander[commands.SweepViewsInput]
	Broadcast *dashboard.BroadcastHook
}

// HandleOpen creates a view and returns its first snapshot.
func (h *Handlers) HandleOpen(w http.ResponseWriter, r *http.Request) {
	page, err := h.Open.Open(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// HandleView returns the snapshot of a view.
func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request, viewID string) {
	page, err := h.View.Query(r.Context(), queries.ViewInput{ViewID: viewID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleWidget returns the snapshot of one widget.
func (h *Handlers) HandleWidget(w http.ResponseWriter, r *http.Request, viewID, widgetID string) {
	view, err := h.Widget.Query(r.Context(), queries.WidgetInput{ViewID: viewID, WidgetID: widgetID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSelect moves a widget's range selector and returns the re-rendered widget.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request, viewID, widgetID, rawIndex string) {
	index, err := ParseIndex(rawIndex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.SelectRangeInput{ViewID: viewID, WidgetID: widgetID, Index: index}
	if err := h.Select.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	h.HandleWidget(w, r, viewID, widgetID)
}

// HandleTab switches the page tab and returns the view snapshot.
func (h *Handlers) HandleTab(w http.ResponseWriter, r *http.Request, viewID, rawIndex string) {
	index, err := ParseIndex(rawIndex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Tab.Execute(r.Context(), commands.SwitchTabInput{ViewID: viewID, Index: index}); err != nil {
		writeError(w, err)
		return
	}
	h.HandleView(w, r, viewID)
}

// HandleClose tears the view down.
func (h *Handlers) HandleClose(w http.ResponseWriter, r *http.Request, viewID string) {
	if err := h.Close.Execute(r.Context(), commands.CloseViewInput{ViewID: viewID}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh re-announces a widget's current state so subscribed pages refetch its fragment.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request, viewID, widgetID string) {
	view, err := h.Widget.Query(r.Context(), queries.WidgetInput{ViewID: viewID, WidgetID: widgetID})
	if err != nil {
		writeError(w, err)
		return
	}
	event := dashboard.WidgetEvent{ViewID: viewID, WidgetID: view.ID, Code: view.Code, Status: view.Status}
	if err := h.Refresh.Execute(r.Context(), commands.RefreshWidgetInput{Event: event}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleSweep expires idle views immediately.
func (h *Handlers) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.Sweep.Execute(r.Context(), commands.SweepViewsInput{}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mux mounts the handlers on a net/http mux under basePath.
func (h *Handlers) Mux(basePath string) *http.ServeMux {
	base := strings.TrimRight(basePath, "/") + "/dashboard"
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+base+"/views", h.HandleOpen)
	mux.HandleFunc("GET "+base+"/views/{view}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleView(w, r, r.PathValue("view"))
	})
	mux.HandleFunc("DELETE "+base+"/views/{view}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleClose(w, r, r.PathValue("view"))
	})
	mux.HandleFunc("POST "+base+"/views/{view}/close", func(w http.ResponseWriter, r *http.Request) {
		h.HandleClose(w, r, r.PathValue("view"))
	})
	mux.HandleFunc("POST "+base+"/views/{view}/tabs/{index}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleTab(w, r, r.PathValue("view"), r.PathValue("index"))
	})
	mux.HandleFunc("GET "+base+"/views/{view}/widgets/{widget}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleWidget(w, r, r.PathValue("view"), r.PathValue("widget"))
	})
	mux.HandleFunc("POST "+base+"/views/{view}/widgets/{widget}/select/{index}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSelect(w, r, r.PathValue("view"), r.PathValue("widget"), r.PathValue("index"))
	})
	if h.Refresh != nil {
		mux.HandleFunc("POST "+base+"/views/{view}/widgets/{widget}/refresh", func(w http.ResponseWriter, r *http.Request) {
			h.HandleRefresh(w, r, r.PathValue("view"), r.PathValue("widget"))
		})
	}
	if h.Sweep != nil {
		mux.HandleFunc("POST "+base+"/sweep", h.HandleSweep)
	}
	if h.Broadcast != nil {
		mux.HandleFunc("GET "+base+"/events", h.Broadcast.ServeSSE)
		mux.HandleFunc("GET "+base+"/ws", h.Broadcast.ServeWebSocket)
	}
	return mux
}

// ParseIndex parses a tab index path segment.
func ParseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("index must be an integer")
	}
	return index, nil
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrViewNotFound), errors.Is(err, dashboard.ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
