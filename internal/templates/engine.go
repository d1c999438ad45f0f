// Package templates loads named HTML layouts and renders page contexts into
// them.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/euforicio/mdsite/static"
)

const (
	layoutExt  = ".html"
	partialDir = "partials"
)

// ErrTemplateNotFound is returned when a page asks for a layout that was not
// loaded.
var ErrTemplateNotFound = errors.New("template not found")

// Engine holds every loaded layout keyed by name. Layout names are the
// slash-separated path below the templates directory without the .html
// extension ("default", "blog/post").
type Engine struct {
	layouts map[string]*template.Template
	logger  *slog.Logger
}

type source struct {
	name string
	text string
}

// Load reads the built-in layouts and then every layout under dir, which
// override built-ins of the same name. A missing dir is not an error: the
// built-in layouts are used alone.
func Load(dir string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		layouts: make(map[string]*template.Template),
		logger:  logger.With("component", "templates"),
	}

	builtin, builtinPartials, err := readLayouts(static.Layouts())
	if err != nil {
		return nil, fmt.Errorf("read built-in layouts: %w", err)
	}
	if err := e.add(builtin, builtinPartials); err != nil {
		return nil, err
	}

	if dir == "" {
		return e, nil
	}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.logger.Debug("templates directory not found, using built-in layouts", slog.String("dir", dir))
		return e, nil
	case err != nil:
		return nil, fmt.Errorf("stat templates dir: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("templates path %s is not a directory", dir)
	}

	user, partials, err := readLayouts(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("read templates from %s: %w", dir, err)
	}
	if err := e.add(user, partials); err != nil {
		return nil, err
	}
	e.logger.Debug("loaded templates", slog.String("dir", dir), slog.Any("names", e.Names()))
	return e, nil
}

// readLayouts collects layout and partial sources from fsys in lexical order.
func readLayouts(fsys fs.FS) (layouts, partials []source, err error) {
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), layoutExt) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if strings.HasPrefix(p, partialDir+"/") {
			partials = append(partials, source{name: p, text: string(data)})
			return nil
		}
		layouts = append(layouts, source{name: layoutName(p), text: string(data)})
		return nil
	})
	return layouts, partials, err
}

func (e *Engine) add(layouts, partials []source) error {
	for _, l := range layouts {
		t := template.New(l.name).Funcs(funcMap()).Option("missingkey=error")
		for _, p := range partials {
			if _, err := t.New(p.name).Parse(p.text); err != nil {
				return fmt.Errorf("parse partial %s: %w", p.name, err)
			}
		}
		if _, err := t.Parse(l.text); err != nil {
			return fmt.Errorf("parse template %s: %w", l.name, err)
		}
		e.layouts[l.name] = t
	}
	return nil
}

// Has reports whether a layout with the given name is loaded.
func (e *Engine) Has(name string) bool {
	_, ok := e.layouts[layoutName(name)]
	return ok
}

// Names lists loaded layout names in sorted order.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.layouts))
	for name := range e.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the named layout with data. The name may carry the .html
// extension. Any placeholder without a value in data fails the render.
func (e *Engine) Render(name string, data map[string]any) ([]byte, error) {
	name = layoutName(name)
	t, ok := e.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

func layoutName(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	p = strings.TrimPrefix(p, "./")
	if strings.EqualFold(path.Ext(p), layoutExt) {
		p = p[:len(p)-len(layoutExt)]
	}
	return p
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"join": func(items []string, sep string) string {
			return strings.Join(items, sep)
		},
		"default": func(fallback, value any) any {
			if value == nil {
				return fallback
			}
			if s, ok := value.(string); ok && s == "" {
				return fallback
			}
			return value
		},
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, errors.New("dict requires an even number of args")
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, errors.New("dict keys must be strings")
				}
				m[key] = values[i+1]
			}
			return m, nil
		},
	}
}
