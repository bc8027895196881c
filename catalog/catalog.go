// Package catalog holds the in-memory directory of doctors by specialty.
//
// Each specialty lives in its own JSON file (<dir>/<specialty>.json). Files
// that are missing or unparsable are skipped, so one bad file never takes the
// rest of the directory down. The catalog is read-only after Load.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ravencare/ravencare/logger"
)

// Doctor is one candidate clinician.
type Doctor struct {
	Name              string   `json:"name"`
	SubSpecialization string   `json:"sub_specialization,omitempty"`
	Slots             []string `json:"slots,omitempty"`
	LanguagesSpoken   []string `json:"languages_spoken,omitempty"`
	PatientRating     float64  `json:"patient_rating,omitempty"`
	ExperienceYears   int      `json:"experience_years,omitempty"`
	Awards            []string `json:"awards,omitempty"`

	// Contact metadata, carried through for reporting.
	Hospital string `json:"hospital,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Department is one specialty's roster.
type Department struct {
	Specialty string   `json:"specialty"`
	Doctors   []Doctor `json:"doctors"`
}

// specialtyFile is the on-disk layout of one specialty file.
type specialtyFile struct {
	Departments []Department `json:"departments"`
}

// Catalog maps Title-cased specialty names to departments. Key order is the
// configured load order, which makes fuzzy resolution deterministic.
type Catalog struct {
	departments map[string]*Department
	keys        []string
}

// Load reads the specialty files under dir in the given order.
// A missing or unparsable file leaves its specialty absent; an absent key is
// not the same as a present department with no doctors.
func Load(dir string, specialties []string) *Catalog {
	c := &Catalog{departments: make(map[string]*Department)}

	for _, specialty := range specialties {
		path := filepath.Join(dir, specialty+".json")

		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warnw("Skipping specialty file",
				"specialty", specialty,
				"path", path,
				"error", err)
			continue
		}

		var file specialtyFile
		if err := json.Unmarshal(raw, &file); err != nil {
			logger.Warnw("Skipping unparsable specialty file",
				"specialty", specialty,
				"path", path,
				"error", err)
			continue
		}
		if len(file.Departments) == 0 {
			logger.Warnw("Specialty file has no departments",
				"specialty", specialty,
				"path", path)
			continue
		}

		// First department carries the roster.
		dept := file.Departments[0]
		key := Normalize(specialty)
		c.departments[key] = &dept
		c.keys = append(c.keys, key)
	}

	logger.Infow("Doctor catalog loaded",
		"specialties", len(c.keys),
		"dir", dir)
	return c
}

// New creates an empty catalog. Use Add to populate it; Load is the usual
// path for production data.
func New() *Catalog {
	return &Catalog{departments: make(map[string]*Department)}
}

// Add inserts a department under the Normalized specialty name. Re-adding a
// key replaces the department but keeps its original position.
func (c *Catalog) Add(specialty string, dept *Department) {
	key := Normalize(specialty)
	if _, exists := c.departments[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.departments[key] = dept
}

// Normalize Title-cases a specialty name for catalog lookup.
func Normalize(specialty string) string {
	return cases.Title(language.English).String(specialty)
}

// Specialties returns the loaded specialty keys in load order.
func (c *Catalog) Specialties() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Department returns the department for an exact Title-cased key.
func (c *Catalog) Department(key string) (*Department, bool) {
	dept, ok := c.departments[key]
	return dept, ok
}

// Resolve finds the department for a requested specialty.
// Exact Title-cased match wins; otherwise the first key (in load order) where
// either name contains the other. The matched key is returned alongside.
func (c *Catalog) Resolve(specialty string) (*Department, string, bool) {
	if strings.TrimSpace(specialty) == "" {
		return nil, "", false
	}

	normalized := Normalize(specialty)
	if dept, ok := c.departments[normalized]; ok {
		return dept, normalized, true
	}

	specialtyLower := strings.ToLower(specialty)
	for _, key := range c.keys {
		keyLower := strings.ToLower(key)
		if strings.Contains(keyLower, specialtyLower) || strings.Contains(specialtyLower, keyLower) {
			return c.departments[key], key, true
		}
	}

	return nil, "", false
}

// DoctorsBySpecialty returns the roster for a specialty, or nil when the
// specialty is not loaded.
func (c *Catalog) DoctorsBySpecialty(specialty string) []Doctor {
	if dept, ok := c.departments[Normalize(specialty)]; ok {
		return dept.Doctors
	}
	return nil
}

// Len returns the number of loaded specialties.
func (c *Catalog) Len() int {
	return len(c.keys)
}
