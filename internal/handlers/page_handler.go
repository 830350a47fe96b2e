package handlers

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/common"
)

// PageHandler serves the console's HTML pages. Templates are parsed once at
// construction from the pages directory.
type PageHandler struct {
	logger      arbor.ILogger
	templates   *template.Template
	clientDebug bool
}

func NewPageHandler(logger arbor.ILogger, clientDebug bool) *PageHandler {
	pagesDir := findPagesDir()
	return &PageHandler{
		logger:      logger,
		templates:   template.Must(template.ParseGlob(filepath.Join(pagesDir, "*.html"))),
		clientDebug: clientDebug,
	}
}

// findPagesDir probes the locations the pages directory ends up in: the
// project root during development, next to the binary after deployment.
func findPagesDir() string {
	for _, dir := range []string{"./pages", "../pages", "."} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}
	return "."
}

// ServePage returns a handler rendering one named template.
func (h *PageHandler) ServePage(templateName string, pageName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"Page":        pageName,
			"Version":     common.GetVersion(),
			"ClientDebug": h.clientDebug,
		}
		if err := h.templates.ExecuteTemplate(w, templateName, data); err != nil {
			h.logger.Error().Err(err).Str("template", templateName).Msg("Failed to render page")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
