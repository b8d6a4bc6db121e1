package programs

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 14, c.Len())
	assert.Equal(t, "Master's in Computer Science", c.Names()[0])
}

func TestResolveKnownPrograms(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		name        string
		duration    string
		avgCost     string
		kind        InstitutionKind
		firstInst   string
		requirement string
	}{
		{
			name:        "Master's in Computer Science",
			duration:    "2 years",
			avgCost:     "$20k-$50k",
			kind:        KindUniversities,
			firstInst:   "Stanford",
			requirement: "Bachelor's in CS, GRE scores (310+), 3.0+ GPA, LORs",
		},
		{
			name:        "Cloud Computing Certification (AWS/Azure)",
			duration:    "3-6 months",
			avgCost:     "$300-$2k",
			kind:        KindPlatforms,
			firstInst:   "AWS Training",
			requirement: "Basic programming, Networking knowledge, Linux basics",
		},
		{
			name:        "CFA/FRM Certification",
			duration:    "2-4 years",
			avgCost:     "$3k-$5k",
			kind:        KindPlatforms,
			firstInst:   "CFA Institute",
			requirement: "Bachelor's degree, 4 years work experience, Pass 3 levels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := c.Resolve(tt.name)
			assert.Equal(t, tt.duration, md.Duration)
			assert.Equal(t, tt.avgCost, md.AvgCost)
			assert.Equal(t, tt.kind, md.Kind)
			require.NotEmpty(t, md.Institutions)
			assert.Equal(t, tt.firstInst, md.Institutions[0])
			assert.Equal(t, tt.requirement, md.Requirements)
		})
	}
}

func TestResolveEveryNameReturnsItsEntry(t *testing.T) {
	c := MustDefault()
	for _, name := range c.Names() {
		want, ok := c.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, c.Resolve(name), name)
	}
}

func TestResolveFallback(t *testing.T) {
	c := MustDefault()
	for _, name := range []string{"", "Underwater Basket Weaving", "master's in computer science", "MBA"} {
		t.Run(name, func(t *testing.T) {
			md := c.Resolve(name)
			assert.Equal(t, Fallback(), md)
			assert.Equal(t, "1-2 years", md.Duration)
			assert.Equal(t, "Varies", md.AvgCost)
			assert.Equal(t, []string{"Research programs online"}, md.Institutions)
			assert.Equal(t, "Top Universities", md.InstitutionsHeading())
		})
	}
}

func TestResolveReturnsIndependentCopies(t *testing.T) {
	c := MustDefault()
	md := c.Resolve("MBA (Marketing/Finance/Strategy)")
	md.Careers[0] = "mutated"
	assert.Equal(t, "Product Manager", c.Resolve("MBA (Marketing/Finance/Strategy)").Careers[0])
}

func TestLoadRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "both institution lists",
			yaml: `programs:
  - name: X
    topUniversities: [A]
    topPlatforms: [B]
`,
		},
		{
			name: "no institution list",
			yaml: `programs:
  - name: X
    duration: 1 year
`,
		},
		{
			name: "duplicate",
			yaml: `programs:
  - name: X
    topPlatforms: [A]
  - name: X
    topPlatforms: [B]
`,
		},
		{
			name: "unknown key",
			yaml: `programs:
  - name: X
    topPlatforms: [A]
    price: 3
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTable))
		})
	}
}

func TestSearchURLs(t *testing.T) {
	tests := []struct {
		name  string
		build func(string) string
		want  string
	}{
		{name: "programs", build: ProgramSearchURL, want: "MBA & Co programs universities"},
		{name: "scholarships", build: ScholarshipSearchURL, want: "MBA & Co scholarships international students"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.build("MBA & Co"))
			require.NoError(t, err)
			assert.Equal(t, "www.google.com", u.Host)
			assert.Equal(t, "/search", u.Path)
			assert.Equal(t, tt.want, u.Query().Get("q"))
		})
	}
}
