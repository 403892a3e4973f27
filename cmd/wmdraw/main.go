// Command wmdraw draws a window manager status bar on an X server, or into
// memory for PNG output and previews.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/logging"
)

// Version can be overridden at build time with
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

// flags holds the parsed command line.
type flags struct {
	configPath string
	version    bool
	display    string
	headless   bool
	pngPath    string
	preview    bool
	watch      bool
	debug      bool
	jsonLog    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	var f flags
	fs.StringVar(&f.configPath, "c", "", "Path to configuration file (Lua or line format)")
	fs.BoolVar(&f.version, "v", false, "Print version and exit")
	fs.StringVar(&f.display, "display", "", "X display to connect to (default $DISPLAY)")
	fs.BoolVar(&f.headless, "headless", false, "Draw into memory instead of an X server")
	fs.StringVar(&f.pngPath, "png", "", "Write the rendered bar to a PNG file and exit")
	fs.BoolVar(&f.preview, "preview", false, "Show a headless bar in a preview window")
	fs.BoolVar(&f.watch, "watch", false, "Reload when the configuration or script changes")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.jsonLog, "json-log", false, "Log as JSON")
	err := fs.Parse(args)
	return f, err
}

func newLogger(f flags) logging.Logger {
	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	if f.jsonLog {
		return logging.JSONLogger(os.Stderr, level)
	}
	if f.debug {
		return logging.DebugLogger()
	}
	return logging.DefaultLogger()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(flag.NewFlagSet("wmdraw", flag.ContinueOnError), args)
	if err != nil {
		return 2
	}
	if f.version {
		fmt.Printf("wmdraw version %s\n", Version)
		return 0
	}

	log := newLogger(f)

	if f.configPath != "" {
		if _, err := os.Stat(f.configPath); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Configuration file not found: %s\n", f.configPath)
			} else {
				fmt.Fprintf(os.Stderr, "Error accessing configuration file %s: %v\n", f.configPath, err)
			}
			return 1
		}
	}

	a, err := newApp(f, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	if err := a.Render(); err != nil {
		log.Warn("render failed", "error", err)
	}

	if f.pngPath != "" {
		if err := a.WritePNG(f.pngPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PNG: %v\n", err)
			return 1
		}
		log.Info("wrote bar image", "path", f.pngPath)
		if !f.preview && !f.watch && a.Headless() {
			return 0
		}
	}

	if a.Headless() && !f.preview && !f.watch {
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			log.Info("received SIGHUP, reloading configuration")
			a.RequestReload()
		}
	}()

	if f.watch {
		if err := a.StartWatcher(); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching configuration: %v\n", err)
			return 1
		}
	}

	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads path, or returns the defaults when path is empty.
// Validation errors fail; warnings are logged.
func loadConfig(p *config.Parser, path string, log logging.Logger) (config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		parsed, err := p.ParseFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = *parsed
	}
	result := config.Validate(&cfg)
	for _, w := range result.Warnings {
		log.Warn("configuration warning", "field", w.Field, "message", w.Message)
	}
	if err := result.Error(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
