// Package config manages build configuration from a site file, environment
// variables and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	envPrefix = "MDSITE_"
	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "mdsite.yaml"
	// DefaultTemplate names the layout used by pages that do not pick one.
	DefaultTemplate = "default"
)

// Config holds the settings of one build run.
type Config struct {
	Params          map[string]string
	ExcludeDirs     []string
	ContentDir      string
	OutputDir       string
	TemplatesDir    string
	StaticDir       string
	DefaultTemplate string
	SiteTitle       string
	HighlightStyle  string
	ConfigFile      string
	Clean           bool
	IncludeHidden   bool
	HighlightCSS    bool
	HeadingIDs      bool
	Anchors         bool
	Diagrams        bool
	Verbose         bool
}

// Default returns ready-to-use defaults prior to file, env and flag overrides.
func Default() Config {
	return Config{
		ContentDir:      "content",
		OutputDir:       "public",
		TemplatesDir:    "templates",
		StaticDir:       "static",
		DefaultTemplate: DefaultTemplate,
		HighlightStyle:  "github-dark",
		Clean:           true,
		IncludeHidden:   true,
	}
}

// RegisterFlags attaches configuration flags to the provided FlagSet, using
// the current values of cfg as defaults.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ContentDir, "content", "i", cfg.ContentDir, "directory containing markdown content and assets")
	fs.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "output directory for the generated site")
	fs.StringVarP(&cfg.TemplatesDir, "templates", "t", cfg.TemplatesDir, "directory containing HTML layouts")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "extra directory copied verbatim into the output")
	fs.StringVar(&cfg.DefaultTemplate, "default-template", cfg.DefaultTemplate, "layout used when front matter names none")
	fs.StringVar(&cfg.SiteTitle, "title", cfg.SiteTitle, "site title exposed to templates as site_title")
	fs.BoolVar(&cfg.Clean, "clean", cfg.Clean, "wipe the output directory before building")
	fs.BoolVar(&cfg.IncludeHidden, "hidden", cfg.IncludeHidden, "include dot-files and dot-directories (--hidden=false skips them)")
	fs.StringSliceVar(&cfg.ExcludeDirs, "exclude", cfg.ExcludeDirs, "directory names under the content root to skip (repeatable)")
	fs.StringVar(&cfg.HighlightStyle, "highlight-style", cfg.HighlightStyle, "chroma style for code blocks (empty disables highlighting)")
	fs.BoolVar(&cfg.HighlightCSS, "highlight-css", cfg.HighlightCSS, "write chroma.css for the highlight style into the output")
	fs.BoolVar(&cfg.HeadingIDs, "heading-ids", cfg.HeadingIDs, "add id attributes to headings")
	fs.BoolVar(&cfg.Anchors, "anchors", cfg.Anchors, "add anchor links to headings")
	fs.BoolVar(&cfg.Diagrams, "diagrams", cfg.Diagrams, "render ```d2 fences to inline SVG")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "site configuration file (default "+DefaultConfigFile+")")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides reads supported environment variables and overrides cfg in place.
func ApplyEnvOverrides(cfg *Config) {
	applyStringEnv("CONTENT", func(v string) { cfg.ContentDir = v })
	applyStringEnv("OUT", func(v string) { cfg.OutputDir = v })
	applyStringEnv("TEMPLATES", func(v string) { cfg.TemplatesDir = v })
	applyStringEnv("STATIC", func(v string) { cfg.StaticDir = v })
	applyStringEnv("DEFAULT_TEMPLATE", func(v string) { cfg.DefaultTemplate = v })
	applyStringEnv("TITLE", func(v string) { cfg.SiteTitle = v })
	applyStringEnv("HIGHLIGHT_STYLE", func(v string) { cfg.HighlightStyle = v })
	applyStringEnv("EXCLUDE", func(v string) { cfg.ExcludeDirs = splitList(v) })
	applyBoolEnv("CLEAN", func(v bool) { cfg.Clean = v })
	applyBoolEnv("HIDDEN", func(v bool) { cfg.IncludeHidden = v })
	applyBoolEnv("VERBOSE", func(v bool) { cfg.Verbose = v })
}

func applyStringEnv(key string, apply func(string)) {
	if raw, ok := lookupNonEmpty(key); ok {
		apply(raw)
	}
}

func applyBoolEnv(key string, apply func(bool)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.ParseBool(raw); err == nil {
			apply(value)
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lookupNonEmpty(key string) (string, bool) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// Finalize validates cfg and resolves its directories to absolute paths.
func Finalize(cfg *Config) error {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return errors.New("content directory is required")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	cfg.DefaultTemplate = strings.TrimSpace(cfg.DefaultTemplate)
	if cfg.DefaultTemplate == "" {
		return errors.New("default template name is required")
	}

	for _, dir := range []struct {
		name string
		ptr  *string
	}{
		{"content", &cfg.ContentDir},
		{"output", &cfg.OutputDir},
		{"templates", &cfg.TemplatesDir},
		{"static", &cfg.StaticDir},
	} {
		if strings.TrimSpace(*dir.ptr) == "" {
			continue
		}
		abs, err := filepath.Abs(*dir.ptr)
		if err != nil {
			return fmt.Errorf("resolve %s directory: %w", dir.name, err)
		}
		*dir.ptr = abs
	}
	return nil
}
