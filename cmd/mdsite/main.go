// Package main provides the mdsite static site generator CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/euforicio/mdsite/internal/buildinfo"
	"github.com/euforicio/mdsite/internal/builderr"
	"github.com/euforicio/mdsite/internal/config"
	"github.com/euforicio/mdsite/internal/site"
)

const buildCommand = "build"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Default()

	// .env may name the config file through MDSITE_CONFIG. Real environment
	// variables still win over it.
	if err := config.LoadDotEnv(".env"); err != nil {
		return fail(stderr, builderr.Config("%v", err))
	}

	path, explicit := config.ConfigPathFromArgs(args)
	file, err := config.LoadFile(path, explicit)
	if err != nil {
		return fail(stderr, builderr.Config("%v", err))
	}
	file.Apply(&cfg)
	cfg.ConfigFile = path

	config.ApplyEnvOverrides(&cfg)

	flags := pflag.NewFlagSet("mdsite", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	config.RegisterFlags(flags, &cfg)
	versionFlag := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return builderr.ExitOK
		}
		return fail(stderr, builderr.Config("%v", err))
	}
	if *versionFlag {
		_, _ = fmt.Fprintln(stdout, "mdsite "+buildinfo.Summary())
		return builderr.ExitOK
	}
	switch rest := flags.Args(); {
	case len(rest) == 0, len(rest) == 1 && rest[0] == buildCommand:
	default:
		return fail(stderr, builderr.Config("unknown command %q (only %q is supported)", rest[0], buildCommand))
	}
	if err := config.Finalize(&cfg); err != nil {
		return fail(stderr, builderr.Config("invalid configuration: %v", err))
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger = logger.With("app", "mdsite")
	slog.SetDefault(logger)
	logger.Debug("starting mdsite",
		slog.String("version", buildinfo.Summary()),
		slog.String("content", cfg.ContentDir),
		slog.String("output", cfg.OutputDir))

	builder, err := site.New(logger, site.Options{
		Params:          cfg.Params,
		ExcludeDirs:     cfg.ExcludeDirs,
		ContentDir:      cfg.ContentDir,
		OutputDir:       cfg.OutputDir,
		TemplatesDir:    cfg.TemplatesDir,
		StaticDir:       cfg.StaticDir,
		DefaultTemplate: cfg.DefaultTemplate,
		SiteTitle:       cfg.SiteTitle,
		HighlightStyle:  cfg.HighlightStyle,
		Clean:           cfg.Clean,
		SkipHidden:      !cfg.IncludeHidden,
		HighlightCSS:    cfg.HighlightCSS,
		HeadingIDs:      cfg.HeadingIDs,
		Anchors:         cfg.Anchors,
		Diagrams:        cfg.Diagrams,
	})
	if err != nil {
		return fail(stderr, err)
	}
	if _, err := builder.Build(ctx); err != nil {
		return fail(stderr, err)
	}
	return builderr.ExitOK
}

func fail(stderr io.Writer, err error) int {
	_, _ = fmt.Fprintf(stderr, "mdsite: %v\n", err)
	return builderr.ExitCode(err)
}
