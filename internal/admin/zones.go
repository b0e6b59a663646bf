package admin

import (
	"errors"
	"log"
	"net/http"

	"perimeterwatch/internal/store"
	"perimeterwatch/internal/zone"
)

// zoneRequest resolves the store and video id shared by the zone routes.
func (s *Server) zoneRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "zone store not configured")
		return "", false
	}
	videoID := r.PathValue("id")
	if !validID(videoID) {
		writeError(w, http.StatusBadRequest, "invalid video id")
		return "", false
	}
	return videoID, true
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	videoID, ok := s.zoneRequest(w, r)
	if !ok {
		return
	}
	zones, err := s.Store.Zones(r.Context(), videoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, zones)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	videoID, ok := s.zoneRequest(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	z, err := zone.ParseOne(body)
	if err != nil {
		writeZoneError(w, err)
		return
	}
	z, err = s.Store.CreateZone(r.Context(), videoID, z)
	if err != nil {
		writeZoneError(w, err)
		return
	}
	log.Printf("[Admin] zone %s created for %s", z.ID, videoID)
	writeOK(w, z)
}

func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	videoID, ok := s.zoneRequest(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	cur, err := s.Store.GetZone(r.Context(), videoID, r.PathValue("zoneId"))
	if err != nil {
		writeZoneError(w, err)
		return
	}
	z, err := zone.Patch(cur, body)
	if err != nil {
		writeZoneError(w, err)
		return
	}
	if err := s.Store.UpdateZone(r.Context(), videoID, z); err != nil {
		writeZoneError(w, err)
		return
	}
	writeOK(w, z)
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	videoID, ok := s.zoneRequest(w, r)
	if !ok {
		return
	}
	if err := s.Store.DeleteZone(r.Context(), videoID, r.PathValue("zoneId")); err != nil {
		writeZoneError(w, err)
		return
	}
	writeOK(w, true)
}

func writeZoneError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, zone.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrZoneNotFound):
		writeError(w, http.StatusNotFound, "zone not found")
	case errors.Is(err, store.ErrZoneExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[Admin] zone: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
