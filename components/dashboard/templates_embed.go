package dashboard

import (
	"embed"
	"io/fs"
	"os"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/widgets/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded page and widget templates.
// A non-empty dir renders from disk instead, which lets deployments restyle the page.
func NewTemplateRenderer(dir string) (Renderer, error) {
	var source fs.FS = embeddedTemplates
	base := "templates"
	if dir != "" {
		source = os.DirFS(dir)
		base = "."
	}
	return template.NewRenderer(
		template.WithFS(source),
		template.WithBaseDir(base),
		template.WithExtension(".html"),
	)
}
