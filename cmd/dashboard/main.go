package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-wbt-dashboard/components/dashboard"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/gorouter"
	pkgdashboard "github.com/goliatone/go-wbt-dashboard/pkg/dashboard"
	"github.com/goliatone/go-wbt-dashboard/pkg/config"
	"github.com/goliatone/go-wbt-dashboard/pkg/survey"
)

type cli struct {
	Config string `short:"c" type:"path" help:"Path to the dashboard YAML config."`
	Mock   bool   `help:"Serve deterministic fixtures instead of calling the survey API."`

	Serve   serveCmd   `cmd:"" default:"1" help:"Serve the dashboard page, widget fragments and event stream."`
	Widgets widgetsCmd `cmd:"" help:"List the widgets in grid order."`
	Probe   probeCmd   `cmd:"" help:"Fetch every widget endpoint once and report the outcome."`
}

type serveCmd struct {
	Addr string `help:"Listen address (overrides config)."`
}

type widgetsCmd struct{}

type probeCmd struct {
	Timeout time.Duration `default:"10s" help:"Per-endpoint timeout."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("dashboard"),
		kong.Description("Survey analytics dashboard server."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&app)
	ctx.FatalIfErrorf(err)
}

// env is the state every subcommand shares.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	client   survey.Client
	registry *dashboard.Registry
}

func (c *cli) env() (*env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Mock {
		cfg.API.Mock = true
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		return nil, err
	}
	registry := pkgdashboard.NewRegistry()
	if cfg.Dashboard.ManifestPath != "" {
		doc, err := registry.LoadManifestFile(cfg.Dashboard.ManifestPath)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded widget manifest", zap.String("path", doc.Source), zap.Int("widgets", len(doc.Widgets)))
	}
	var client survey.Client
	if cfg.API.Mock {
		client = survey.NewMockClient(survey.DemoData(registry.Definitions()))
	} else {
		client, err = survey.NewHTTPClient(survey.HTTPConfig{
			BaseURL:     cfg.API.URL,
			WidgetsPath: cfg.API.WidgetsPath,
		})
		if err != nil {
			return nil, err
		}
	}
	return &env{cfg: cfg, logger: logger, client: client, registry: registry}, nil
}

func (cmd *serveCmd) Run(app *cli) error {
	e, err := app.env()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	addr := e.cfg.Server.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry := dashboard.ZapTelemetry{Logger: e.logger.Named("telemetry")}
	hook := dashboard.NewBroadcastHook()
	renderer := dashboard.NewChartRenderer(
		dashboard.WithChartTheme(e.cfg.Charts.Theme),
		dashboard.WithChartAssetsHost(dashboard.ResolveEChartsAssetsHost(e.cfg.Charts.AssetsHost)),
	)
	service := pkgdashboard.NewService(dashboard.Options{
		Registry:       e.registry,
		Survey:         e.client,
		Counters:       e.client,
		Renderer:       renderer,
		Logger:         e.logger,
		Telemetry:      telemetry,
		RefreshHook:    hook,
		RequestTimeout: e.cfg.Dashboard.RequestTimeout,
		FirstPaintWait: e.cfg.Dashboard.FirstPaintWait,
		ViewTTL:        e.cfg.Dashboard.ViewTTL,
		SweepInterval:  e.cfg.Dashboard.SweepInterval,
		Team:           e.cfg.Dashboard.Team,
	})

	templates, err := dashboard.NewTemplateRenderer(e.cfg.Server.TemplatesDir)
	if err != nil {
		return fmt.Errorf("dashboard: templates: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: templates,
		BasePath: e.cfg.Server.BasePath,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        pkgdashboard.NewHandlers(service, hook, telemetry),
		Broadcast:  hook,
		BasePath:   e.cfg.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("dashboard: register routes: %w", err)
	}

	go func() {
		if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("view sweeper stopped", zap.Error(err))
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		e.logger.Info("dashboard listening",
			zap.String("addr", addr),
			zap.String("page", e.cfg.Server.BasePath+"/dashboard"),
			zap.Bool("mock", e.cfg.API.Mock),
		)
		serveErr <- server.Serve(addr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	service.Shutdown()
	return server.Shutdown(shutdownCtx)
}

func (cmd *widgetsCmd) Run(app *cli) error {
	e, err := app.env()
	if err != nil {
		return err
	}
	return listWidgets(os.Stdout, e.registry.Definitions())
}

func listWidgets(out io.Writer, defs []dashboard.WidgetDefinition) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCODE\tSOURCE\tENDPOINT\tKIND\tCATEGORIES")
	for i, def := range defs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", i+1, def.Code, def.Source, def.Endpoint, def.Chart.Kind, len(def.Categories))
	}
	return tw.Flush()
}

func (cmd *probeCmd) Run(app *cli) error {
	e, err := app.env()
	if err != nil {
		return err
	}
	failures := probe(context.Background(), os.Stdout, e.registry, e.client, cmd.Timeout)
	if failures > 0 {
		return fmt.Errorf("probe: %d of %d widgets failed", failures, len(e.registry.Definitions()))
	}
	return nil
}

// probe runs each widget loader once, resolved the way the service resolves it,
// and prints its settled state.
func probe(ctx context.Context, out io.Writer, registry *dashboard.Registry, client survey.Client, timeout time.Duration) int {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tENDPOINT\tSTATUS\tCLASS\tDETAIL")
	failures := 0
	for _, def := range registry.Definitions() {
		loader, err := dashboard.ResolveLoader(registry, client, client, def)
		if err != nil {
			failures++
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\n", def.Code, def.Endpoint, dashboard.StatusFailed, dashboard.ErrorClass(err), err)
			continue
		}
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := loader.Load(fetchCtx)
		cancel()
		if err != nil {
			failures++
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\n", def.Code, def.Endpoint, dashboard.StatusFailed, dashboard.ErrorClass(err), err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\t%d categories\n", def.Code, def.Endpoint, dashboard.StatusReady, len(result.Series))
	}
	_ = tw.Flush()
	return failures
}
