// Package admin serves the perimeter analysis over HTTP.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"perimeterwatch/internal/alarm"
	"perimeterwatch/internal/analysis"
	"perimeterwatch/internal/engine"
	"perimeterwatch/internal/metrics"
	"perimeterwatch/internal/store"
	"perimeterwatch/internal/zone"
)

// maxZoneBody bounds the zone documents accepted by the API.
const maxZoneBody = 1 << 20

// AlarmStore keeps the alarms of the latest classification of each video.
type AlarmStore interface {
	ReplaceForVideo(ctx context.Context, videoID string, events []alarm.Event) error
	List(ctx context.Context, f store.Filter) ([]alarm.Event, int, error)
	Get(ctx context.Context, id string) (alarm.Event, error)
	Count(ctx context.Context) (int, error)
}

// ZoneStore keeps the zones drawn for each video.
type ZoneStore interface {
	Zones(ctx context.Context, videoID string) ([]zone.Zone, error)
	GetZone(ctx context.Context, videoID, zoneID string) (zone.Zone, error)
	CreateZone(ctx context.Context, videoID string, z zone.Zone) (zone.Zone, error)
	UpdateZone(ctx context.Context, videoID string, z zone.Zone) error
	DeleteZone(ctx context.Context, videoID, zoneID string) error
}

// Repository is everything the server persists. *store.Store satisfies it.
type Repository interface {
	AlarmStore
	ZoneStore
}

// Server exposes analysis artifacts, classification runs and stored alarms.
type Server struct {
	ResultsDir string
	Engine     *engine.Engine
	Store      Repository       // nil disables the alarm and zone endpoints
	Metrics    *metrics.Metrics // nil disables /metrics

	now func() time.Time
}

// NewServer returns a server reading and writing artifacts under resultsDir.
func NewServer(resultsDir string, eng *engine.Engine, st Repository, m *metrics.Metrics) *Server {
	return &Server{ResultsDir: resultsDir, Engine: eng, Store: st, Metrics: m, now: time.Now}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /overlays", s.handleOverlays)
	mux.HandleFunc("POST /videos/{id}/classify", s.handleClassify)
	mux.HandleFunc("GET /videos/{id}/zones", s.handleZones)
	mux.HandleFunc("POST /videos/{id}/zones", s.handleCreateZone)
	mux.HandleFunc("PUT /videos/{id}/zones/{zoneId}", s.handleUpdateZone)
	mux.HandleFunc("DELETE /videos/{id}/zones/{zoneId}", s.handleDeleteZone)
	mux.HandleFunc("GET /alarms", s.handleAlarms)
	mux.HandleFunc("GET /alarms/{id}", s.handleAlarm)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return mux
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Admin] shutdown: %v", err)
		}
	}()
	log.Printf("[Admin] listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleOverlays(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video_id is required")
		return
	}
	if !validID(videoID) {
		writeError(w, http.StatusBadRequest, "invalid video_id")
		return
	}
	art, err := analysis.ReadFile(s.analysisPath(videoID))
	if errors.Is(err, analysis.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis result not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	overlays := art.Overlays
	if overlays == nil {
		overlays = []analysis.OverlayFrame{}
	}
	zones := art.Zones
	if zones == nil {
		zones = []zone.Zone{}
	}
	writeOK(w, map[string]any{"overlays": overlays, "zones": zones})
}

type classifyResponse struct {
	SourceID   string `json:"sourceId"`
	SavedAt    string `json:"savedAt"`
	AlarmCount int    `json:"alarmCount"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	if !validID(videoID) {
		writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	zones, err := zone.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// A blank body classifies against the zones stored for the video.
	if len(bytes.TrimSpace(body)) == 0 && s.Store != nil {
		zones, err = s.Store.Zones(r.Context(), videoID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	start := time.Now()
	res, err := s.Engine.Run(r.Context(), engine.Request{
		TracksPath: filepath.Join(s.ResultsDir, videoID+"_raw_tracks.json"),
		Zones:      zones,
		VideoID:    videoID,
		OutPath:    s.analysisPath(videoID),
	})
	if s.Metrics != nil {
		frames := 0
		var events []alarm.Event
		if res != nil {
			frames, events = res.Frames, res.Events
		}
		s.Metrics.ObserveRun(frames, events, time.Since(start), err)
	}
	switch {
	case errors.Is(err, engine.ErrInputNotFound):
		writeError(w, http.StatusNotFound, "raw tracks not found")
		return
	case errors.Is(err, engine.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[Admin] classify %s: %v", videoID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.Store != nil {
		if err := s.Store.ReplaceForVideo(r.Context(), videoID, res.Events); err != nil {
			log.Printf("[Admin] store alarms for %s: %v", videoID, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.refreshStoredGauge(r.Context())
	}

	writeOK(w, classifyResponse{
		SourceID:   videoID,
		SavedAt:    s.now().UTC().Format(time.RFC3339Nano),
		AlarmCount: res.AlarmCount,
	})
}

type alarmItem struct {
	ID       string  `json:"id"`
	Thumb    string  `json:"thumb"`
	Time     float64 `json:"time"`
	Target   string  `json:"target"`
	Severity string  `json:"severity"`
	Status   string  `json:"status"`
}

type alarmDetail struct {
	alarmItem
	VideoID string `json:"videoId"`
	Zone    string `json:"zone"`
	Remark  string `json:"remark"`
}

func toItem(ev alarm.Event) alarmItem {
	thumb := ""
	if ev.SnapshotPath != nil {
		thumb = *ev.SnapshotPath
	}
	return alarmItem{
		ID:       "#" + ev.EventID,
		Thumb:    thumb,
		Time:     ev.VideoTimestamp,
		Target:   ev.ObjectType,
		Severity: strings.ToLower(string(ev.ThreatLevel)),
		Status:   "pending",
	}
}

func (s *Server) handleAlarms(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "alarm store not configured")
		return
	}
	q := r.URL.Query()
	f := store.Filter{
		Page:     1,
		PageSize: store.DefaultPageSize,
		VideoID:  q.Get("video_id"),
		EventID:  q.Get("query"),
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		f.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > store.MaxPageSize {
			writeError(w, http.StatusBadRequest, "pageSize must be between 1 and 100")
			return
		}
		f.PageSize = n
	}
	if v := q.Get("level"); v != "" {
		lvl, ok := alarm.ParseLevel(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "level must be critical or warning")
			return
		}
		f.Level = lvl
	}

	events, total, err := s.Store.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	list := make([]alarmItem, 0, len(events))
	for _, ev := range events {
		list = append(list, toItem(ev))
	}
	writeOK(w, map[string]any{"list": list, "total": total})
}

func (s *Server) handleAlarm(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "alarm store not configured")
		return
	}
	id := strings.TrimPrefix(r.PathValue("id"), "#")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid alarm id")
		return
	}
	ev, err := s.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "alarm not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, alarmDetail{alarmItem: toItem(ev), VideoID: ev.VideoID})
}

func (s *Server) refreshStoredGauge(ctx context.Context) {
	if s.Metrics == nil {
		return
	}
	n, err := s.Store.Count(ctx)
	if err != nil {
		log.Printf("[Admin] count alarms: %v", err)
		return
	}
	s.Metrics.SetStoredAlarms(n)
}

// readBody reads a zone document, answering 413 when it exceeds maxZoneBody.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxZoneBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return body, true
}

func (s *Server) analysisPath(videoID string) string {
	return filepath.Join(s.ResultsDir, videoID+".json")
}

// validID rejects ids that would escape the results directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: 0, Message: "ok", Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Code: status, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Admin] encode response: %v", err)
	}
}
