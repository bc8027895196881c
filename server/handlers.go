package server

import (
	"net/http"
	"strconv"

	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/triage"
)

// startTriageRequest is the optional /start_triage body.
type startTriageRequest struct {
	PatientFile string `json:"patient_file,omitempty"`
}

// handleStartTriage launches a background triage run. While a run is in
// flight further starts are rejected with 409; runs are never queued.
func (s *Server) handleStartTriage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req startTriageRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			return
		}
	}

	patientFile := req.PatientFile
	if patientFile == "" {
		patientFile = s.cfg.Data.PatientsFile
	}

	patients, err := triage.LoadPatients(patientFile)
	if err != nil {
		s.logger.Errorw("Failed to load patients", "file", patientFile, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to load patients: "+err.Error())
		return
	}

	runID, err := s.runner.Start(patients)
	if err != nil {
		if errors.Is(err, errors.ErrRunActive) {
			writeError(w, http.StatusConflict, "Triage already running")
			return
		}
		if errors.IsInvalidRequestError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Triage process started",
		"run_id":  runID,
		"total":   len(patients),
	})
}

// handleStopTriage mirrors the original endpoint: in-flight runs are not
// cancellable, they complete on their own.
func (s *Server) handleStopTriage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": false,
		"message": "Stop functionality not implemented - process will complete",
	})
}

// handleStatus returns a snapshot of the run lifecycle.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.runner.Status())
}

// handleResults returns the records of the most recent completed run.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	results := s.runner.Results()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
		"total":   len(results),
	})
}

// handleEvents replays the run's event log from an optional sequence number.
// Polling /events?since=N gives at-least-once delivery without a websocket.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	since := 0
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since parameter")
			return
		}
		since = parsed
	}

	log := s.runner.Events()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"events":   log.Since(since),
		"last_seq": log.LastSeq(),
	})
}

// handlePatients returns the configured patient roster.
func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	patients, err := triage.LoadPatients(s.cfg.Data.PatientsFile)
	if err != nil {
		s.logger.Errorw("Failed to load patients", "file", s.cfg.Data.PatientsFile, "error", err)
		writeError(w, http.StatusInternalServerError, "Error loading patients: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"patients": patients,
		"total":    len(patients),
	})
}

// doctorEntry is one doctor in the /api/doctors listing.
type doctorEntry struct {
	Specialty string  `json:"specialty"`
	Name      string  `json:"name"`
	SubSpec   string  `json:"sub_specialization,omitempty"`
	Rating    float64 `json:"patient_rating"`
	Years     int     `json:"experience_years"`
	Hospital  string  `json:"hospital,omitempty"`
	Email     string  `json:"email,omitempty"`
}

// handleDoctors lists every doctor in the catalog, grouped by specialty order.
func (s *Server) handleDoctors(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	var doctors []doctorEntry
	for _, key := range s.catalog.Specialties() {
		dept, ok := s.catalog.Department(key)
		if !ok {
			continue
		}
		for _, doc := range dept.Doctors {
			doctors = append(doctors, doctorEntry{
				Specialty: dept.Specialty,
				Name:      doc.Name,
				SubSpec:   doc.SubSpecialization,
				Rating:    doc.PatientRating,
				Years:     doc.ExperienceYears,
				Hospital:  doc.Hospital,
				Email:     doc.Email,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"doctors": doctors,
		"total":   len(doctors),
	})
}
