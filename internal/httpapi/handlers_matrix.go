package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/e7canasta/matrixrouter/internal/matrix"
)

type sourceSlotJSON struct {
	SlotNumber        int    `json:"slotNumber"`
	AssignedNdiSource string `json:"assignedNdiSource"`
	DisplayName       string `json:"displayName"`
	IsAssigned        bool   `json:"isAssigned"`
}

type destinationJSON struct {
	SlotNumber        int    `json:"slotNumber"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Enabled           bool   `json:"enabled"`
	CurrentSourceSlot int    `json:"currentSourceSlot"`
}

type routeJSON struct {
	ID              string `json:"id"`
	SourceSlot      int    `json:"sourceSlot"`
	DestinationSlot int    `json:"destinationSlot"`
	Active          bool   `json:"active"`
}

func slotParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "n")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid slot number", matrix.ErrInvalidRequest, raw)
	}
	return n, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", matrix.ErrInvalidRequest, err)
	}
	return nil
}

func (s *Server) handleGetSourceSlots(w http.ResponseWriter, r *http.Request) {
	slots := s.matrix.SourceSlots()
	out := make([]sourceSlotJSON, len(slots))
	for i, sl := range slots {
		out[i] = sourceSlotJSON{
			SlotNumber:        sl.SlotNumber,
			AssignedNdiSource: sl.AssignedSourceName,
			DisplayName:       sl.DisplayName,
			IsAssigned:        sl.Assigned,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAssignSourceSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SlotNumber    int    `json:"slotNumber"`
		NdiSourceName string `json:"ndiSourceName"`
		DisplayName   string `json:"displayName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.AssignSourceToSlot(req.SlotNumber, req.NdiSourceName, req.DisplayName); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "source slot assigned", nil)
}

func (s *Server) handleUnassignSourceSlot(w http.ResponseWriter, r *http.Request) {
	n, err := slotParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.UnassignSourceSlot(n, s.reconcile); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "source slot unassigned", nil)
}

func (s *Server) handleGetDestinations(w http.ResponseWriter, r *http.Request) {
	dests := s.matrix.Destinations()
	out := make([]destinationJSON, len(dests))
	for i, d := range dests {
		out[i] = destinationJSON{
			SlotNumber:        d.SlotNumber,
			Name:              d.Name,
			Description:       d.Description,
			Enabled:           d.Enabled,
			CurrentSourceSlot: d.CurrentSourceSlot,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDestination(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.matrix.CreateDestination(req.Name, req.Description); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "destination created", nil)
}

func (s *Server) handleRemoveDestination(w http.ResponseWriter, r *http.Request) {
	n, err := slotParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.RemoveDestination(n); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	if s.reconcile != nil {
		s.reconcile()
	}
	writeSuccess(w, "destination removed", nil)
}

func (s *Server) handleUnassignDestination(w http.ResponseWriter, r *http.Request) {
	n, err := slotParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.UnassignDestination(n); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "destination unassigned", nil)
}

func (s *Server) handleGetRoutes(w http.ResponseWriter, r *http.Request) {
	routes := s.matrix.Routes()
	out := make([]routeJSON, len(routes))
	for i, rt := range routes {
		out[i] = routeJSON{ID: rt.ID, SourceSlot: rt.SourceSlot, DestinationSlot: rt.DestinationSlot, Active: rt.Active}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceSlot      int `json:"sourceSlot"`
		DestinationSlot int `json:"destinationSlot"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.CreateRoute(req.SourceSlot, req.DestinationSlot); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "route created", nil)
}

func (s *Server) handleRemoveRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceSlot      int `json:"sourceSlot"`
		DestinationSlot int `json:"destinationSlot"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.RemoveRoute(req.SourceSlot, req.DestinationSlot); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "route removed", nil)
}

func (s *Server) handleCreateMultipleRoutes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceSlot       int   `json:"sourceSlot"`
		DestinationSlots []int `json:"destinationSlots"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	succeeded, err := s.matrix.CreateMultipleRoutes(req.SourceSlot, req.DestinationSlots)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   succeeded == len(req.DestinationSlots),
			"message":   err.Error(),
			"succeeded": succeeded,
			"requested": len(req.DestinationSlots),
		})
		return
	}
	writeSuccess(w, "routes created", map[string]any{
		"succeeded": succeeded,
		"requested": len(req.DestinationSlots),
	})
}

func (s *Server) handleRemoveAllRoutesFromSource(w http.ResponseWriter, r *http.Request) {
	n, err := slotParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.matrix.RemoveAllRoutesFromSource(n); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeSuccess(w, "routes removed", nil)
}

func (s *Server) handleGetDestinationsForSource(w http.ResponseWriter, r *http.Request) {
	n, err := slotParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sourceSlot":   n,
		"destinations": s.matrix.GetDestinationsForSource(n),
	})
}
