package dashboard

import "io"

// Renderer describes the template renderer contract needed by the controller.
// Templates receive the page or widget snapshot under `page`/`widget` plus `endpoints`.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
