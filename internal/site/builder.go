// Package site turns a content directory into a static HTML site.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/euforicio/mdsite/internal/assets"
	"github.com/euforicio/mdsite/internal/builderr"
	"github.com/euforicio/mdsite/internal/content/walk"
	"github.com/euforicio/mdsite/internal/frontmatter"
	"github.com/euforicio/mdsite/internal/renderer"
	d2renderer "github.com/euforicio/mdsite/internal/renderer/d2"
	"github.com/euforicio/mdsite/internal/templates"
)

const (
	// DefaultTemplate is used by pages whose front matter names no template.
	DefaultTemplate = "default"
	// HighlightCSSFile is written at the output root when HighlightCSS is set.
	HighlightCSSFile = "chroma.css"
)

// Options configure a build.
type Options struct {
	Params          map[string]string
	ContentDir      string
	OutputDir       string
	TemplatesDir    string
	StaticDir       string
	DefaultTemplate string
	SiteTitle       string
	HighlightStyle  string
	Clean           bool
	HighlightCSS    bool
	HeadingIDs      bool
	Anchors         bool
	Diagrams        bool

	// ExcludeDirs names content directories to leave out of the build.
	ExcludeDirs []string
	// SkipHidden leaves dot-files and dot-directories out. By default every
	// file below the content root is built or copied.
	SkipHidden bool
}

// Report counts what a build wrote.
type Report struct {
	Pages  int
	Assets int
	Static int
}

// Builder renders every page of one content directory.
type Builder struct {
	renderer  *renderer.Service
	templates *templates.Engine
	logger    *slog.Logger
	opts      Options
}

// New resolves opts and loads the layouts. Failures are classified with
// builderr.
func New(logger *slog.Logger, opts Options) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(opts.ContentDir) == "" {
		return nil, builderr.Config("content directory is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, builderr.Config("output directory is required")
	}
	if strings.TrimSpace(opts.DefaultTemplate) == "" {
		opts.DefaultTemplate = DefaultTemplate
	}

	var err error
	if opts.ContentDir, err = filepath.Abs(opts.ContentDir); err != nil {
		return nil, builderr.IO("resolve content root", opts.ContentDir, err)
	}
	if opts.OutputDir, err = filepath.Abs(opts.OutputDir); err != nil {
		return nil, builderr.IO("resolve output root", opts.OutputDir, err)
	}
	if opts.StaticDir != "" {
		if opts.StaticDir, err = filepath.Abs(opts.StaticDir); err != nil {
			return nil, builderr.IO("resolve static dir", opts.StaticDir, err)
		}
	}

	engine, err := templates.Load(opts.TemplatesDir, logger)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, builderr.IO("load templates", opts.TemplatesDir, err)
		}
		return nil, builderr.Template("load templates", opts.TemplatesDir, err)
	}

	rOpts := renderer.Options{
		HighlightStyle: opts.HighlightStyle,
		HeadingIDs:     opts.HeadingIDs,
		Anchors:        opts.Anchors,
		Unsafe:         true,
	}
	if opts.Diagrams {
		rOpts.Diagrams = d2renderer.New(logger, 0)
	}

	return &Builder{
		renderer:  renderer.NewService(logger, rOpts),
		templates: engine,
		logger:    logger.With("component", "site"),
		opts:      opts,
	}, nil
}

// Build runs one full pass from the content root to the output root. The
// first failing file aborts the run.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	var report Report
	start := time.Now()
	content, output := b.opts.ContentDir, b.opts.OutputDir

	info, err := os.Stat(content)
	if err != nil {
		return report, builderr.IO("stat content root", content, err)
	}
	if !info.IsDir() {
		return report, builderr.IO("stat content root", content, errors.New("not a directory"))
	}
	if within(output, content) {
		return report, builderr.Config("output root %s must not contain the content root %s", output, content)
	}
	if b.opts.StaticDir != "" && within(output, b.opts.StaticDir) {
		return report, builderr.Config("output root %s must not contain the static dir %s", output, b.opts.StaticDir)
	}

	entries, err := walk.Files(ctx, content, walk.Options{
		ExcludeDirs: b.opts.ExcludeDirs,
		SkipHidden:  b.opts.SkipHidden,
		SkipPaths:   []string{output},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		return report, builderr.IO("walk content", content, err)
	}
	targets, err := planOutputs(entries)
	if err != nil {
		return report, err
	}

	if err := b.prepareOutputDir(); err != nil {
		return report, err
	}
	if report.Static, err = b.copyStatic(); err != nil {
		return report, err
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		target := targets[i]
		if entry.Type == walk.EntryMarkdown {
			if err := b.buildPage(ctx, entry, target); err != nil {
				return report, err
			}
			report.Pages++
			continue
		}
		if err := assets.CopyFile(entry.AbsPath, filepath.Join(output, filepath.FromSlash(target))); err != nil {
			return report, builderr.IO("copy asset", entry.RelativePath, err)
		}
		b.logger.Debug("copied asset", slog.String("path", entry.RelativePath))
		report.Assets++
	}

	if b.opts.HighlightCSS {
		if err := b.writeHighlightCSS(); err != nil {
			return report, err
		}
	}

	b.logger.Info("build complete",
		slog.Int("pages", report.Pages),
		slog.Int("assets", report.Assets),
		slog.Int("static", report.Static),
		slog.String("output", output),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

// planOutputs maps every entry to its slash-separated output path and fails
// when two sources would write the same file.
func planOutputs(entries []walk.Entry) ([]string, error) {
	targets := make([]string, len(entries))
	owners := make(map[string]string, len(entries))
	for i, entry := range entries {
		target := entry.RelativePath
		if entry.Type == walk.EntryMarkdown {
			target = walk.OutputPath(target)
		}
		if prev, ok := owners[target]; ok {
			return nil, builderr.IO("plan output", target,
				fmt.Errorf("output collision: %s and %s", prev, entry.RelativePath))
		}
		owners[target] = entry.RelativePath
		targets[i] = target
	}
	return targets, nil
}

func (b *Builder) prepareOutputDir() error {
	output := b.opts.OutputDir
	if b.opts.Clean {
		if err := os.RemoveAll(output); err != nil {
			return builderr.IO("clean output root", output, err)
		}
	}
	if err := os.MkdirAll(output, 0o755); err != nil { //nolint:gosec // standard directory permissions
		return builderr.IO("create output root", output, err)
	}
	return nil
}

func (b *Builder) copyStatic() (int, error) {
	dir := b.opts.StaticDir
	if dir == "" {
		return 0, nil
	}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		b.logger.Debug("static dir not found, skipping", slog.String("dir", dir))
		return 0, nil
	case err != nil:
		return 0, builderr.IO("stat static dir", dir, err)
	case !info.IsDir():
		return 0, builderr.IO("stat static dir", dir, errors.New("not a directory"))
	}
	// An output root inside the static dir is skipped by CopyDir.
	n, err := assets.CopyDir(dir, b.opts.OutputDir)
	if err != nil {
		return n, builderr.IO("copy static dir", dir, err)
	}
	b.logger.Debug("copied static dir", slog.String("dir", dir), slog.Int("files", n))
	return n, nil
}

func (b *Builder) buildPage(ctx context.Context, entry walk.Entry, target string) error {
	rel := entry.RelativePath
	raw, err := os.ReadFile(entry.AbsPath)
	if err != nil {
		return builderr.IO("read page", rel, err)
	}
	matter, body, err := frontmatter.Parse(raw)
	if err != nil {
		return builderr.Parse("", rel, err)
	}
	html, err := b.renderer.Render(ctx, rel, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return builderr.Parse("", rel, err)
	}

	name := matter.Template()
	if name == "" {
		name = b.opts.DefaultTemplate
	}
	page, err := b.templates.Render(name, b.pageContext(matter, rel, target, name, html))
	if err != nil {
		return builderr.Template("", rel, err)
	}
	if err := assets.WriteFile(filepath.Join(b.opts.OutputDir, filepath.FromSlash(target)), page, 0); err != nil {
		return builderr.IO("write page", target, err)
	}
	b.logger.Debug("wrote page", slog.String("source", rel), slog.String("path", target), slog.String("template", name))
	return nil
}

// pageContext assembles the values a layout sees. Builder keys replace front
// matter keys of the same name; title is taken from front matter when set.
func (b *Builder) pageContext(matter frontmatter.Matter, rel, target, name, html string) map[string]any {
	data := make(map[string]any, len(matter.Fields)+len(b.opts.Params)+7)
	for k, v := range matter.Fields {
		data[k] = v
	}
	title := matter.Title()
	if title == "" {
		title = titleFromPath(rel)
	}
	data["title"] = title
	data["template"] = name
	data["content"] = template.HTML(html) //nolint:gosec // rendered markdown from trusted content
	data["path_prefix"] = pathPrefix(target)
	data["path"] = target
	data["source"] = rel
	data["site_title"] = b.opts.SiteTitle
	for k, v := range b.opts.Params {
		data["site_"+k] = v
	}
	return data
}

func (b *Builder) writeHighlightCSS() error {
	var buf bytes.Buffer
	if err := renderer.WriteStyleCSS(&buf, b.opts.HighlightStyle); err != nil {
		return builderr.Config("highlight css: %v", err)
	}
	if err := assets.WriteFile(filepath.Join(b.opts.OutputDir, HighlightCSSFile), buf.Bytes(), 0); err != nil {
		return builderr.IO("write highlight css", HighlightCSSFile, err)
	}
	return nil
}

// within reports whether child is parent or lies below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// pathPrefix returns the relative path from a page back to the output root.
func pathPrefix(target string) string {
	return strings.Repeat("../", strings.Count(target, "/"))
}

func titleFromPath(rel string) string {
	base := path.Base(rel)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(strings.Join(strings.Fields(base), " "))
}
