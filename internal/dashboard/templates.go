package dashboard

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates: "dashboard.html" renders a Page and
// "error.html" renders an ErrorPage.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// ErrorPage is shown in place of the dashboard when it cannot be rendered.
type ErrorPage struct {
	Lang    string
	Title   string
	Message string
}
