package httpapi

import (
	"net/http"
	"time"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

type sourceJSON struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
}

func sourcesToJSON(sources []ndi.Source) []sourceJSON {
	out := make([]sourceJSON, len(sources))
	for i, s := range sources {
		out[i] = sourceJSON{Name: s.Name, URL: s.URL, Connected: true}
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sourcesToJSON(s.discovery.Sources()))
}

func (s *Server) handleStudioMonitors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sourcesToJSON(s.discovery.StudioMonitors()))
}

func (s *Server) handleStudioMonitorsReset(w http.ResponseWriter, r *http.Request) {
	monitors := s.discovery.StudioMonitors()
	names := make([]string, len(monitors))
	for i, m := range monitors {
		names[i] = m.Name
	}
	writeSuccess(w, "studio monitors refreshed", map[string]any{
		"monitors": names,
		"count":    len(names),
	})
}
