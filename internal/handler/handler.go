// Package handler exposes the topology service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"topomon/internal/codec"
	"topomon/internal/service"
	"topomon/internal/topology"
)

// TopologyHandler handles topology API requests
type TopologyHandler struct {
	svc *service.TopologyService
}

// NewTopologyHandler creates a new topology handler
func NewTopologyHandler(svc *service.TopologyService) *TopologyHandler {
	return &TopologyHandler{svc: svc}
}

// Register attaches the API routes to the mux
func (h *TopologyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/topology", h.GetTopology)
	mux.HandleFunc("GET /api/topology/path", h.GetPath)
	mux.HandleFunc("GET /api/topology/redundant-paths", h.GetRedundantPaths)
	mux.HandleFunc("GET /api/topology/critical-links", h.GetCriticalLinks)
	mux.HandleFunc("GET /api/changes", h.GetChanges)
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("POST /api/update", h.TriggerUpdate)
}

// ErrorResponse is the error body for API failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetTopology returns the published snapshot as a node/edge list
func (h *TopologyHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.CurrentTopology()
	h.writeJSON(w, codec.BuildDocument(snap), http.StatusOK)
}

// GetPath returns the minimum-hop path between two devices
func (h *TopologyHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")
	if source == "" || target == "" {
		h.writeError(w, "Missing parameters", "source and target are required", http.StatusBadRequest)
		return
	}

	path, err := h.svc.Path(source, target)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	h.writeJSON(w, map[string]any{
		"path": path,
		"hops": len(path) - 1,
	}, http.StatusOK)
}

// GetRedundantPaths returns all bounded simple paths between two devices
func (h *TopologyHandler) GetRedundantPaths(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")
	if source == "" || target == "" {
		h.writeError(w, "Missing parameters", "source and target are required", http.StatusBadRequest)
		return
	}

	paths, truncated, err := h.svc.RedundantPaths(source, target)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	if paths == nil {
		paths = [][]string{}
	}

	h.writeJSON(w, map[string]any{
		"paths":     paths,
		"truncated": truncated,
	}, http.StatusOK)
}

// GetCriticalLinks returns the links whose loss would split the network
func (h *TopologyHandler) GetCriticalLinks(w http.ResponseWriter, r *http.Request) {
	links := h.svc.CriticalLinks()
	h.writeJSON(w, map[string]any{
		"critical_links": links,
		"count":          len(links),
	}, http.StatusOK)
}

// GetChanges returns change records within an optional time window.
// start and end are RFC 3339 timestamps; end is exclusive.
func (h *TopologyHandler) GetChanges(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	var err error

	if raw := r.URL.Query().Get("start"); raw != "" {
		if start, err = time.Parse(time.RFC3339, raw); err != nil {
			h.writeError(w, "Invalid start time", err.Error(), http.StatusBadRequest)
			return
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			h.writeError(w, "Invalid end time", err.Error(), http.StatusBadRequest)
			return
		}
	}

	changes := h.svc.ChangesSince(start, end)
	h.writeJSON(w, map[string]any{
		"changes": changes,
		"count":   len(changes),
	}, http.StatusOK)
}

// Export serializes the published snapshot in the requested format
func (h *TopologyHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")

	exp, err := codec.ForFormat(format)
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
	case "graphml":
		w.Header().Set("Content-Type", "application/xml")
	}

	if err := exp.Export(h.svc.CurrentTopology(), w); err != nil {
		log.Printf("Export failed: %v", err)
	}
}

// TriggerUpdate requests a discovery cycle. Within the update interval
// this returns the current snapshot; the response says which happened.
func (h *TopologyHandler) TriggerUpdate(w http.ResponseWriter, r *http.Request) {
	before := h.svc.CurrentTopology()
	snap, err := h.svc.Update(r.Context())
	if err != nil {
		h.writeError(w, "Update failed", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"updated": snap != before,
		"taken":   snap.Taken,
		"nodes":   len(snap.Unified.Nodes),
		"links":   len(snap.Unified.Edges),
	}, http.StatusOK)
}

// writeQueryError maps query sentinel errors to HTTP statuses
func (h *TopologyHandler) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, topology.ErrUnknownNode):
		h.writeError(w, "Unknown node", err.Error(), http.StatusNotFound)
	case errors.Is(err, topology.ErrNoPath):
		h.writeError(w, "No path", err.Error(), http.StatusNotFound)
	default:
		log.Printf("Query failed: %v", err)
		h.writeError(w, "Query failed", err.Error(), http.StatusInternalServerError)
	}
}

func (h *TopologyHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *TopologyHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
