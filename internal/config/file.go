package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// File mirrors the YAML site configuration. Nil fields leave the current
// value untouched.
type File struct {
	Params          map[string]string `yaml:"params"`
	Exclude         []string          `yaml:"exclude"`
	Content         *string           `yaml:"content"`
	Output          *string           `yaml:"output"`
	Templates       *string           `yaml:"templates"`
	Static          *string           `yaml:"static"`
	DefaultTemplate *string           `yaml:"default_template"`
	Title           *string           `yaml:"title"`
	HighlightStyle  *string           `yaml:"highlight_style"`
	Clean           *bool             `yaml:"clean"`
	Hidden          *bool             `yaml:"hidden"`
	HighlightCSS    *bool             `yaml:"highlight_css"`
	HeadingIDs      *bool             `yaml:"heading_ids"`
	Anchors         *bool             `yaml:"anchors"`
	Diagrams        *bool             `yaml:"diagrams"`

	dir string
}

// LoadFile reads the YAML site configuration at path. When required is false
// a missing file yields (nil, nil). Unknown keys are rejected.
func LoadFile(path string, required bool) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config file: %w", err)
	}
	f.dir = filepath.Dir(abs)
	return &f, nil
}

// Apply copies every value set in f onto cfg. Relative directories are
// resolved against the directory holding the file.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	setDir := func(dst *string, v *string) {
		if v == nil {
			return
		}
		p := strings.TrimSpace(*v)
		if p != "" && !filepath.IsAbs(p) && f.dir != "" {
			p = filepath.Join(f.dir, p)
		}
		*dst = p
	}
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	setDir(&cfg.ContentDir, f.Content)
	setDir(&cfg.OutputDir, f.Output)
	setDir(&cfg.TemplatesDir, f.Templates)
	setDir(&cfg.StaticDir, f.Static)
	setString(&cfg.DefaultTemplate, f.DefaultTemplate)
	setString(&cfg.SiteTitle, f.Title)
	setString(&cfg.HighlightStyle, f.HighlightStyle)
	setBool(&cfg.Clean, f.Clean)
	setBool(&cfg.IncludeHidden, f.Hidden)
	setBool(&cfg.HighlightCSS, f.HighlightCSS)
	setBool(&cfg.HeadingIDs, f.HeadingIDs)
	setBool(&cfg.Anchors, f.Anchors)
	setBool(&cfg.Diagrams, f.Diagrams)

	if f.Exclude != nil {
		cfg.ExcludeDirs = append([]string(nil), f.Exclude...)
	}
	if len(f.Params) > 0 {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string, len(f.Params))
		}
		for k, v := range f.Params {
			cfg.Params[k] = v
		}
	}
}

// ConfigPathFromArgs finds the config file location before the full flag set
// is parsed: --config/-c wins, then MDSITE_CONFIG, then DefaultConfigFile.
// explicit reports whether the operator named the file.
func ConfigPathFromArgs(args []string) (path string, explicit bool) {
	fs := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	flagPath := fs.StringP("config", "c", "", "")
	_ = fs.Parse(args)

	if p := strings.TrimSpace(*flagPath); p != "" {
		return p, true
	}
	if p, ok := lookupNonEmpty("CONFIG"); ok {
		return p, true
	}
	return DefaultConfigFile, false
}
