// Package web embeds the demo form widget served at "/".
//
// The widget is a single static page that posts the form to /analyze_name
// and shows the returned summary.
//
// Usage in the API server:
//
//	import "github.com/katachat/katareport/web"
//	fs := web.WidgetFS() // io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// WidgetFS returns a filesystem rooted at the embedded static/ directory,
// ready to use with http.FileServerFS.
func WidgetFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// static/ is embedded at compile time, so Sub cannot fail.
		panic(err)
	}
	return sub
}
