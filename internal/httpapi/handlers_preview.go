package httpapi

import (
	"encoding/base64"
	"net/http"
)

func (s *Server) handlePreviewSetSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceName string `json:"sourceName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.preview.SetSource(req.SourceName); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeSuccess(w, "preview source set", nil)
}

func (s *Server) handlePreviewCurrentSource(w http.ResponseWriter, r *http.Request) {
	src := s.preview.CurrentSource()
	if src == "" {
		writeJSON(w, http.StatusOK, map[string]any{"source": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": src})
}

func (s *Server) handlePreviewImage(w http.ResponseWriter, r *http.Request) {
	buf, err := s.preview.CaptureFrame()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if buf == nil {
		writeJSON(w, http.StatusOK, map[string]any{"image": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"image": base64.StdEncoding.EncodeToString(buf)})
}

func (s *Server) handlePreviewClear(w http.ResponseWriter, r *http.Request) {
	s.preview.Clear()
	writeSuccess(w, "preview cleared", nil)
}
