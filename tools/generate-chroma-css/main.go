// Package main writes the chroma stylesheet matching mdsite's highlighted
// code blocks, for sites that ship their own CSS instead of --highlight-css.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/pflag"

	"github.com/euforicio/mdsite/internal/assets"
	"github.com/euforicio/mdsite/internal/renderer"
)

func main() {
	flags := pflag.NewFlagSet("generate-chroma-css", pflag.ExitOnError)
	style := flags.StringP("style", "s", renderer.DefaultHighlightStyle, "chroma style name")
	out := flags.StringP("out", "o", "", "write to this file instead of stdout")
	list := flags.Bool("list", false, "print the available style names and exit")
	_ = flags.Parse(os.Args[1:])

	if *list {
		printStyles(os.Stdout)
		return
	}

	if *out == "" {
		if err := renderer.WriteStyleCSS(os.Stdout, *style); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating CSS: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var buf bytes.Buffer
	if err := renderer.WriteStyleCSS(&buf, *style); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating CSS: %v\n", err)
		os.Exit(1)
	}
	if err := assets.WriteFile(*out, buf.Bytes(), 0); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSS: %v\n", err)
		os.Exit(1)
	}
}

func printStyles(w io.Writer) {
	names := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}
