package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/whodis/pkg/models"
)

const (
	defaultWindowStepSeconds = 86400
	defaultWindowCount       = 1
	maxWindowCount           = 2048
)

// DeviceRecord is one known device as served by the API.
type DeviceRecord struct {
	MAC     string `json:"mac"`
	Alias   string `json:"alias,omitempty"`
	Ignored bool   `json:"ignored"`
}

type aliasRequest struct {
	Name string `json:"name"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// getHeatmap serves the aggregation window set. With no parameters this is
// the most recent day as a single window.
func (s *Server) getHeatmap(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	step := int64(defaultWindowStepSeconds)
	if raw := query.Get("step"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "step must be a positive number of seconds")
			return
		}

		step = parsed
	}

	count := defaultWindowCount
	if raw := query.Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxWindowCount {
			s.writeError(w, http.StatusBadRequest, "count out of range")
			return
		}

		count = parsed
	}

	cells, err := s.engine.Snapshot(r.Context(), time.Now(), time.Duration(step)*time.Second, count)
	if err != nil {
		s.logger.Error().Err(err).Msg("Heatmap snapshot failed")
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")

		return
	}

	s.writeJSON(w, http.StatusOK, cells)
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	known, err := s.registry.ListKnown(ctx)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	ignored, err := s.registry.ListIgnored(ctx)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	macs := make([]string, 0, len(known))
	for mac := range known {
		macs = append(macs, mac)
	}

	sort.Strings(macs)

	aliases, err := s.registry.GetAliases(ctx, macs)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	devices := make([]DeviceRecord, len(macs))

	for i, mac := range macs {
		_, isIgnored := ignored[mac]
		devices[i] = DeviceRecord{MAC: mac, Alias: aliases[i], Ignored: isIgnored}
	}

	s.writeJSON(w, http.StatusOK, devices)
}

func (s *Server) putAlias(w http.ResponseWriter, r *http.Request) {
	mac, ok := s.pathMAC(w, r)
	if !ok {
		return
	}

	var req aliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "body must be {\"name\": \"...\"}")
		return
	}

	if err := s.registry.SetAlias(r.Context(), mac, req.Name); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) deleteAlias(w http.ResponseWriter, r *http.Request) {
	mac, ok := s.pathMAC(w, r)
	if !ok {
		return
	}

	if err := s.registry.RemoveAlias(r.Context(), mac); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) putIgnore(w http.ResponseWriter, r *http.Request) {
	mac, ok := s.pathMAC(w, r)
	if !ok {
		return
	}

	if err := s.registry.AddIgnored(r.Context(), mac); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) deleteIgnore(w http.ResponseWriter, r *http.Request) {
	mac, ok := s.pathMAC(w, r)
	if !ok {
		return
	}

	if err := s.registry.RemoveIgnored(r.Context(), mac); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "presence store unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) postSnapshotExport(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil || s.snapshotPath == "" {
		s.writeError(w, http.StatusConflict, "snapshot path not configured")
		return
	}

	if err := s.snapshots.Export(r.Context(), s.snapshotPath); err != nil {
		s.logger.Error().Err(err).Msg("Snapshot export failed")
		s.writeError(w, http.StatusInternalServerError, "snapshot export failed")

		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) postSnapshotImport(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil || s.snapshotPath == "" {
		s.writeError(w, http.StatusConflict, "snapshot path not configured")
		return
	}

	if err := s.snapshots.Import(r.Context(), s.snapshotPath); err != nil {
		if errors.Is(err, models.ErrSnapshotInvalid) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		s.logger.Error().Err(err).Msg("Snapshot import failed")
		s.writeError(w, http.StatusInternalServerError, "snapshot import failed")

		return
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, "presence store unreachable")
			return
		}
	}

	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// pathMAC validates the {mac} path variable, writing the error response
// itself when invalid.
func (s *Server) pathMAC(w http.ResponseWriter, r *http.Request) (string, bool) {
	mac, err := models.NormalizeMAC(mux.Vars(r)["mac"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid hardware address")
		return "", false
	}

	return mac, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
