package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSpecialties = []string{"cardiology", "neurology", "pediatrics", "hepatology"}

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	return Load("testdata/doctors", testSpecialties)
}

func TestLoadSkipsBadAndMissingFiles(t *testing.T) {
	c := loadTestCatalog(t)

	// neurology.json is unparsable, hepatology.json is missing; both are
	// simply absent rather than failing the load.
	assert.Equal(t, []string{"Cardiology", "Pediatrics"}, c.Specialties())

	_, ok := c.Department("Neurology")
	assert.False(t, ok)
	_, ok = c.Department("Hepatology")
	assert.False(t, ok)
}

func TestAbsentVersusEmpty(t *testing.T) {
	c := loadTestCatalog(t)

	// Pediatrics is present with zero doctors; that is different from absent.
	dept, ok := c.Department("Pediatrics")
	require.True(t, ok)
	assert.Empty(t, dept.Doctors)

	assert.Nil(t, c.DoctorsBySpecialty("Neurology"))
	assert.NotNil(t, c.DoctorsBySpecialty("Cardiology"))
}

func TestResolveExact(t *testing.T) {
	c := loadTestCatalog(t)

	dept, key, ok := c.Resolve("cardiology")
	require.True(t, ok)
	assert.Equal(t, "Cardiology", key)
	assert.Len(t, dept.Doctors, 2)
}

func TestResolveFuzzyContainment(t *testing.T) {
	c := loadTestCatalog(t)

	// Request contains the key.
	_, key, ok := c.Resolve("Pediatric Cardiology Cardiology Unit")
	require.True(t, ok)
	assert.Equal(t, "Cardiology", key)

	// Key contains the request.
	_, key, ok = c.Resolve("cardio")
	require.True(t, ok)
	assert.Equal(t, "Cardiology", key)
}

func TestResolveUnknownSpecialty(t *testing.T) {
	c := loadTestCatalog(t)

	_, _, ok := c.Resolve("Rheumatology")
	assert.False(t, ok)

	// An empty request must not fuzzy-match everything.
	_, _, ok = c.Resolve("")
	assert.False(t, ok)
	_, _, ok = c.Resolve("   ")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Cardiology", Normalize("cardiology"))
	assert.Equal(t, "Internal Medicine", Normalize("internal medicine"))
	assert.Equal(t, "Ent", Normalize("ENT"))
}
