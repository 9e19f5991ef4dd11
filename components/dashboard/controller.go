package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
)

const (
	defaultPageTemplate   = "dashboard.html"
	defaultWidgetTemplate = "widgets/widget.html"
	defaultBasePath       = "/wbt"
)

// PageResolver is the subset of Service the controller renders from.
type PageResolver interface {
	Open(ctx context.Context) (PageView, error)
	Page(ctx context.Context, viewID string) (PageView, error)
	Widget(ctx context.Context, viewID, widgetID string) (WidgetView, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service        PageResolver
	Renderer       Renderer
	Template       string
	WidgetTemplate string
	// BasePath is the mount point used to build client endpoints in templates.
	BasePath string
}

// Controller renders dashboard pages and widget fragments through the template renderer.
type Controller struct {
	service        PageResolver
	renderer       Renderer
	template       string
	widgetTemplate string
	basePath       string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	c := &Controller{
		service:        opts.Service,
		renderer:       opts.Renderer,
		template:       opts.Template,
		widgetTemplate: opts.WidgetTemplate,
		basePath:       strings.TrimRight(opts.BasePath, "/"),
	}
	if c.template == "" {
		c.template = defaultPageTemplate
	}
	if c.widgetTemplate == "" {
		c.widgetTemplate = defaultWidgetTemplate
	}
	if c.basePath == "" {
		c.basePath = defaultBasePath
	}
	return c
}

var (
	errMissingService  = errors.New("dashboard: controller service not configured")
	errMissingRenderer = errors.New("dashboard: controller renderer not configured")
)

// RenderOpen opens a new page view and renders it.
func (c *Controller) RenderOpen(ctx context.Context, out io.Writer) (PageView, error) {
	if c.service == nil {
		return PageView{}, errMissingService
	}
	page, err := c.service.Open(ctx)
	if err != nil {
		return PageView{}, err
	}
	return page, c.RenderPage(page, out)
}

// RenderView re-renders an existing page view.
func (c *Controller) RenderView(ctx context.Context, viewID string, out io.Writer) error {
	if c.service == nil {
		return errMissingService
	}
	page, err := c.service.Page(ctx, viewID)
	if err != nil {
		return err
	}
	return c.RenderPage(page, out)
}

// RenderWidgetFragment renders one widget of a view as an HTML fragment.
func (c *Controller) RenderWidgetFragment(ctx context.Context, viewID, widgetID string, out io.Writer) error {
	if c.service == nil {
		return errMissingService
	}
	view, err := c.service.Widget(ctx, viewID, widgetID)
	if err != nil {
		return err
	}
	return c.RenderWidget(viewID, view, out)
}

// RenderPage renders a page snapshot.
func (c *Controller) RenderPage(page PageView, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	widgets := make([]map[string]any, 0, len(page.Widgets))
	for _, w := range page.Widgets {
		var buf bytes.Buffer
		if err := c.RenderWidget(page.ID, w, &buf); err != nil {
			return err
		}
		widgets = append(widgets, map[string]any{
			"widget": w,
			"html":   buf.String(),
		})
	}
	_, err := c.renderer.Render(c.template, map[string]any{
		"page":      page,
		"widgets":   widgets,
		"base_path": c.basePath,
		"endpoints": c.endpoints(page.ID),
	}, out)
	return err
}

// RenderWidget renders a widget snapshot as a fragment.
func (c *Controller) RenderWidget(viewID string, view WidgetView, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	_, err := c.renderer.Render(c.widgetTemplate, map[string]any{
		"view_id":   viewID,
		"widget":    view,
		"base_path": c.basePath,
		"endpoints": c.endpoints(viewID),
	}, out)
	return err
}

func (c *Controller) endpoints(viewID string) map[string]string {
	view := c.basePath + "/dashboard/views/" + viewID
	return map[string]string{
		"view":    view,
		"widgets": view + "/widgets/",
		"tabs":    view + "/tabs/",
		"ws":      c.basePath + "/dashboard/ws?view=" + viewID,
	}
}
