package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/widget"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
	"go.uber.org/zap"
)

type options struct {
	apiKey     string
	baseURL    string
	version    string
	method     string
	event      string
	launcher   string
	printURL   bool
	runScripts bool
	out        string
	store      string
	endpoints  string
	remember   bool
	verbose    bool
}

func main() {
	var o options
	flag.StringVar(&o.apiKey, "api-key", os.Getenv("RIVAL_API_KEY"), "API key (default $RIVAL_API_KEY)")
	flag.StringVar(&o.baseURL, "base-url", "", "Base URL (overrides the link and remembered value)")
	flag.StringVar(&o.version, "version", "", "Function version (overrides the link)")
	flag.StringVar(&o.method, "method", invoker.DefaultMethod, "HTTP method")
	flag.StringVar(&o.event, "event", "{}", "Event data as JSON")
	flag.StringVar(&o.launcher, "launcher", "http://localhost:8000/launcher", "Launcher page URL for -print-url")
	flag.BoolVar(&o.printURL, "print-url", false, "Print the launcher URL for the link and exit")
	flag.BoolVar(&o.runScripts, "run-scripts", false, "Run the returned page's inline scripts headlessly")
	flag.StringVar(&o.out, "out", "", "Write the returned HTML to this file instead of stdout")
	flag.StringVar(&o.store, "store", "", "Persisted config file (empty keeps it in memory)")
	flag.StringVar(&o.endpoints, "endpoints", "", "Endpoint catalog YAML file")
	flag.BoolVar(&o.remember, "remember", false, "Remember these settings in the store (kept once remembered)")
	flag.BoolVar(&o.verbose, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <rival://function-id | web+rival://function-id>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, launcher.StatusMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, link string) error {
	params, err := scheme.Parse(link)
	if err != nil {
		return err
	}
	if o.printURL {
		fmt.Println(scheme.LauncherURL(o.launcher, params))
		return nil
	}

	logCfg := logging.Config{Level: "warn", Development: true, OutputPaths: []string{"stderr"}}
	if o.verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	endpoints, err := config.LoadEndpoints(o.endpoints)
	if err != nil {
		return err
	}

	var kv store.Store = store.NewMemoryStore()
	if o.store != "" {
		if kv, err = store.OpenFileStore(o.store); err != nil {
			return err
		}
	}
	prefs := store.NewPreferences(kv)

	inv := invoker.New(client.NewClient(client.DefaultOptions()), invoker.RewriteTable(endpoints.RewriteMap()),
		invoker.WithLogger(logger.Component("invoker")))
	l := launcher.New(prefs, inv, endpoints, launcher.WithLogger(logger.Component("launcher")))

	form, _, err := l.Defaults(params.Query())
	if err != nil {
		return err
	}
	form.APIKey = o.apiKey
	if o.baseURL != "" {
		form.BaseURL = o.baseURL
	}
	if o.version != "" {
		form.Version = o.version
	}
	form.HTTPMethod = o.method
	form.EventData = o.event
	form.Remember = form.Remember || o.remember
	if form.APIKey == "" {
		if remembered, err := prefs.Remembered(); err == nil {
			form.APIKey = remembered.APIKey
		}
	}

	res, err := l.Submit(ctx, form)
	if err != nil {
		return err
	}
	if res.Warning != "" {
		logger.Warn(res.Warning)
	}
	logger.Debug("Function returned page",
		zap.String("invocation_id", res.InvocationID.String()),
		zap.String("shape", string(res.Shape)))

	if err := writeOutput(o.out, res.HTML); err != nil {
		return err
	}

	if !o.runScripts {
		return nil
	}
	surface := widget.NewSurface(prefs, inv, o.launcher, logger.Component("widget"))
	rt := widget.NewRuntime(surface, widget.DefaultRuntimeConfig())
	result, err := rt.ExecuteDocument(ctx, res.HTML)
	if result != nil {
		for _, entry := range result.Console {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", entry.Level, entry.Message)
		}
		if result.Reloaded {
			fmt.Fprintln(os.Stderr, "widget requested reload:", surface.ReloadURL())
		}
	}
	if err != nil {
		return errors.Join(errors.New("widget script failed"), err)
	}
	return nil
}

func writeOutput(path, html string) error {
	if path == "" {
		_, err := fmt.Println(html)
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
