package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/euforicio/mdsite/internal/builderr"
)

func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func siteArgs(root string, extra ...string) []string {
	args := []string{
		"--content", filepath.Join(root, "content"),
		"--out", filepath.Join(root, "public"),
		"--templates", filepath.Join(root, "templates"),
		"--static", filepath.Join(root, "static"),
	}
	return append(args, extra...)
}

func TestRun_BuildsSite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "content/index.md", "---\ntemplate: home\n---\n# Hi\n")
	writeFile(t, root, "templates/home.html", `<div class="home">{{ .content }}</div>`)

	code, _, stderr := runCLI(t, append([]string{"build"}, siteArgs(root)...)...)
	require.Equal(t, builderr.ExitOK, code, stderr)

	out, err := os.ReadFile(filepath.Join(root, "public", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "<div class=\"home\"><h1>Hi</h1>\n</div>", string(out))
	require.Contains(t, stderr, "build complete")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	require.Equal(t, builderr.ExitOK, code)
	require.Contains(t, stdout, "mdsite dev")
}

func TestRun_UsageErrors(t *testing.T) {
	code, _, _ := runCLI(t, "--no-such-flag")
	require.Equal(t, builderr.ExitConfig, code)

	code, _, stderr := runCLI(t, "serve")
	require.Equal(t, builderr.ExitConfig, code)
	require.Contains(t, stderr, `unknown command "serve"`)
}

func TestRun_ExitCodesFollowErrorKind(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "content/a.md", "---\ntitle: open\n")
		code, _, stderr := runCLI(t, siteArgs(root)...)
		require.Equal(t, builderr.ExitParse, code)
		require.Contains(t, stderr, "parse error: a.md")
	})
	t.Run("template", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "content/a.md", "---\ntemplate: missing\n---\nbody")
		code, _, _ := runCLI(t, siteArgs(root)...)
		require.Equal(t, builderr.ExitTemplate, code)
	})
	t.Run("io", func(t *testing.T) {
		root := t.TempDir()
		code, _, _ := runCLI(t, siteArgs(root)...)
		require.Equal(t, builderr.ExitIO, code)
	})
	t.Run("config", func(t *testing.T) {
		root := t.TempDir()
		code, _, _ := runCLI(t, siteArgs(root, "--config", filepath.Join(root, "missing.yaml"))...)
		require.Equal(t, builderr.ExitConfig, code)
	})
}

func TestRun_ConfigFileSuppliesDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/about-us.md", "hello")
	writeFile(t, root, "layouts/default.html", `{{ .title }}|{{ .site_title }}|{{ .site_repo }}`)
	writeFile(t, root, "mdsite.yaml",
		"content: src\noutput: dist\ntemplates: layouts\ntitle: Docs\nparams:\n  repo: example/docs\n")

	code, _, stderr := runCLI(t, "-c", filepath.Join(root, "mdsite.yaml"), "--static=")
	require.Equal(t, builderr.ExitOK, code, stderr)

	out, err := os.ReadFile(filepath.Join(root, "dist", "about-us.html"))
	require.NoError(t, err)
	require.Equal(t, "About Us|Docs|example/docs", string(out))
}

func TestRun_DotEnvNamesConfigFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/index.md", "hello")
	writeFile(t, root, "site.yaml", "content: src\noutput: out\ntitle: From Env File\n")
	writeFile(t, root, ".env", "MDSITE_CONFIG=site.yaml\n")
	t.Chdir(root)
	t.Cleanup(func() { _ = os.Unsetenv("MDSITE_CONFIG") })

	code, _, stderr := runCLI(t, "--static=")
	require.Equal(t, builderr.ExitOK, code, stderr)

	out, err := os.ReadFile(filepath.Join(root, "out", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<title>Index | From Env File</title>")
}
