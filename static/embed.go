// Package static embeds the built-in page layouts.
package static

import (
	"embed"
	"io/fs"
)

//go:embed layouts/*.html
var layouts embed.FS

// Layouts exposes the built-in layouts rooted at the layouts directory, so
// the default layout is "default.html".
func Layouts() fs.FS {
	sub, err := fs.Sub(layouts, "layouts")
	if err != nil {
		panic(err)
	}
	return sub
}

