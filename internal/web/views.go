package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var viewsFS embed.FS

// NewEngine returns the template engine with the embedded views, so the
// binary ships without a templates directory on disk.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		// embed guarantees views/ exists; this cannot happen at runtime
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
