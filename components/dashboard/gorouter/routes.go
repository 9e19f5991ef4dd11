package gorouter

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-wbt-dashboard/components/dashboard"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/queries"
)

// Config wires go-router with the dashboard controller, API commands, and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        *httpapi.Handlers
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	View      string
	State     string
	Widget    string
	Select    string
	Tab       string
	Close     string
	Refresh   string
	Sweep     string
	WebSocket string
}

// routeContext is the subset of router.Context the handlers use.
type routeContext interface {
	Context() context.Context
	Param(name string, defaultValue ...string) string
	SetHeader(key, value string) router.Context
	Send(body []byte) error
	JSON(code int, v any) error
	NoContent(code int) error
}

type handlers struct {
	controller *dashboard.Controller
	api        *httpapi.Handlers
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/wbt"
	}
	h := handlers{controller: cfg.Controller, api: cfg.API}

	group := cfg.Router.Group(base)
	group.Get(routes.HTML, wrap(h.open))
	group.Get(routes.View, wrap(h.view))
	group.Get(routes.Widget, wrap(h.widget))

	if cfg.API != nil {
		group.Get(routes.State, wrap(h.state))
		group.Post(routes.Select, wrap(h.selectRange))
		group.Post(routes.Tab, wrap(h.switchTab))
		group.Post(routes.Close, wrap(h.closeView))
		group.Delete(routes.View, wrap(h.closeView))
		if cfg.API.Refresh != nil {
			group.Post(routes.Refresh, wrap(h.refreshWidget))
		}
		if cfg.API.Sweep != nil {
			group.Post(routes.Sweep, wrap(h.sweepViews))
		}
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func wrap(fn func(routeContext) error) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return fn(ctx)
	})
}

func (h handlers) open(ctx routeContext) error {
	var buf bytes.Buffer
	if _, err := h.controller.RenderOpen(ctx.Context(), &buf); err != nil {
		return respondError(ctx, err)
	}
	return sendHTML(ctx, buf.Bytes())
}

func (h handlers) view(ctx routeContext) error {
	var buf bytes.Buffer
	if err := h.controller.RenderView(ctx.Context(), ctx.Param("view"), &buf); err != nil {
		return respondError(ctx, err)
	}
	return sendHTML(ctx, buf.Bytes())
}

func (h handlers) widget(ctx routeContext) error {
	var buf bytes.Buffer
	if err := h.controller.RenderWidgetFragment(ctx.Context(), ctx.Param("view"), ctx.Param("widget"), &buf); err != nil {
		return respondError(ctx, err)
	}
	return sendHTML(ctx, buf.Bytes())
}

func (h handlers) state(ctx routeContext) error {
	page, err := h.api.View.Query(ctx.Context(), queries.ViewInput{ViewID: ctx.Param("view")})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, page)
}

func (h handlers) selectRange(ctx routeContext) error {
	index, err := httpapi.ParseIndex(ctx.Param("index"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	input := commands.SelectRangeInput{ViewID: ctx.Param("view"), WidgetID: ctx.Param("widget"), Index: index}
	if err := h.api.Select.Execute(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	view, err := h.api.Widget.Query(ctx.Context(), queries.WidgetInput{ViewID: input.ViewID, WidgetID: input.WidgetID})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h handlers) switchTab(ctx routeContext) error {
	index, err := httpapi.ParseIndex(ctx.Param("index"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	viewID := ctx.Param("view")
	if err := h.api.Tab.Execute(ctx.Context(), commands.SwitchTabInput{ViewID: viewID, Index: index}); err != nil {
		return respondError(ctx, err)
	}
	page, err := h.api.View.Query(ctx.Context(), queries.ViewInput{ViewID: viewID})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, page)
}

func (h handlers) closeView(ctx routeContext) error {
	if err := h.api.Close.Execute(ctx.Context(), commands.CloseViewInput{ViewID: ctx.Param("view")}); err != nil {
		return respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (h handlers) refreshWidget(ctx routeContext) error {
	input := queries.WidgetInput{ViewID: ctx.Param("view"), WidgetID: ctx.Param("widget")}
	view, err := h.api.Widget.Query(ctx.Context(), input)
	if err != nil {
		return respondError(ctx, err)
	}
	event := dashboard.WidgetEvent{ViewID: input.ViewID, WidgetID: view.ID, Code: view.Code, Status: view.Status}
	if err := h.api.Refresh.Execute(ctx.Context(), commands.RefreshWidgetInput{Event: event}); err != nil {
		return respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusAccepted)
}

func (h handlers) sweepViews(ctx routeContext) error {
	if err := h.api.Sweep.Execute(ctx.Context(), commands.SweepViewsInput{}); err != nil {
		return respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// eventSocket is the subset of router.WebSocketContext the event stream uses.
type eventSocket interface {
	Context() context.Context
	Query(name string, defaultValue ...string) string
	WriteJSON(v any) error
	Close() error
}

// registerWebSocket streams the widget events of the view named by the `view` query parameter.
func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		return streamEvents(ws, hook)
	})
}

func streamEvents(ws eventSocket, hook *dashboard.BroadcastHook) error {
	events, cancel := hook.SubscribeView(ws.Query("view"))
	defer cancel()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				return err
			}
		case <-ws.Context().Done():
			return ws.Close()
		}
	}
}

func sendHTML(ctx routeContext, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func respondError(ctx routeContext, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.View == "" {
		routes.View = "/dashboard/views/:view"
	}
	if routes.State == "" {
		routes.State = "/dashboard/views/:view/state"
	}
	if routes.Widget == "" {
		routes.Widget = "/dashboard/views/:view/widgets/:widget"
	}
	if routes.Select == "" {
		routes.Select = "/dashboard/views/:view/widgets/:widget/select/:index"
	}
	if routes.Tab == "" {
		routes.Tab = "/dashboard/views/:view/tabs/:index"
	}
	if routes.Close == "" {
		routes.Close = "/dashboard/views/:view/close"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/views/:view/widgets/:widget/refresh"
	}
	if routes.Sweep == "" {
		routes.Sweep = "/dashboard/sweep"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
