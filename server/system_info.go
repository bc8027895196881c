package server

import (
	"net/http"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ravencare/ravencare/triage"
	"github.com/ravencare/ravencare/version"
)

// specialtyInfo is one row of the specialty listing.
type specialtyInfo struct {
	Name    string `json:"name"`
	Doctors int    `json:"doctors"`
}

// hostInfo is the machine stats section of /api/system-info. Fields that
// cannot be collected are left zero rather than failing the request.
type hostInfo struct {
	OS            string  `json:"os,omitempty"`
	Platform      string  `json:"platform,omitempty"`
	UptimeSeconds uint64  `json:"uptime_seconds,omitempty"`
	CPUCores      int     `json:"cpu_cores,omitempty"`
	MemoryTotal   uint64  `json:"memory_total_bytes,omitempty"`
	MemoryUsedPct float64 `json:"memory_used_percent,omitempty"`
}

// handleSystemInfo reports catalog statistics, run state, version, and host
// metrics.
func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	totalDoctors := 0
	specialties := make([]specialtyInfo, 0, len(s.catalog.Specialties()))
	for _, key := range s.catalog.Specialties() {
		dept, ok := s.catalog.Department(key)
		if !ok {
			continue
		}
		totalDoctors += len(dept.Doctors)
		specialties = append(specialties, specialtyInfo{
			Name:    dept.Specialty,
			Doctors: len(dept.Doctors),
		})
	}

	totalPatients := 0
	if patients, err := triage.LoadPatients(s.cfg.Data.PatientsFile); err == nil {
		totalPatients = len(patients)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"version":        version.Get(),
		"total_patients": totalPatients,
		"total_doctors":  totalDoctors,
		"specialties":    len(specialties),
		"specialty_list": specialties,
		"run":            s.runner.Status(),
		"clients":        s.clientCount(),
		"host":           collectHostInfo(),
	})
}

// collectHostInfo gathers best-effort machine stats.
func collectHostInfo() hostInfo {
	var info hostInfo

	if h, err := host.Info(); err == nil {
		info.OS = h.OS
		info.Platform = h.Platform
		info.UptimeSeconds = h.Uptime
	}
	if cores, err := cpu.Counts(true); err == nil {
		info.CPUCores = cores
	}
	if v, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = v.Total
		info.MemoryUsedPct = v.UsedPercent
	}

	return info
}
