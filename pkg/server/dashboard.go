package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
)

//go:embed dashboard.html
var dashboardFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(dashboardFS, "dashboard.html"))

type dashboardData struct {
	Title string
}

// Dashboard serves the single-page upload UI.
func Dashboard(logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := dashboardTemplate.Execute(w, dashboardData{Title: "Ledger Atlas"}); err != nil {
			logger.Error().Err(err).Msg("failed to render dashboard")
		}
	}
}
