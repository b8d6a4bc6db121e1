package mentor

import (
	"net/url"
	"strings"

	"career-mentor/internal/analysis"
	"career-mentor/internal/profile"
	"career-mentor/internal/programs"
	"career-mentor/internal/resumefile"
	"career-mentor/internal/session"
)

const (
	viewInput   = "input"
	viewPending = "pending"
	viewResults = "results"
)

type pageView struct {
	View           string
	Form           profile.Form
	Error          string
	PendingKind    string
	ResumeName     string
	RefreshSeconds int
	Accept         string
	MaxUploadMB    int64

	Insights       []string
	Jobs           []jobView
	SkillGaps      []analysis.SkillGap
	Studies        []studyView
	SavedStudies   []string
	Roadmap        []analysis.Phase
	Resources      []resourceView
	LikedResources []string
}

type jobView struct {
	Title       string
	Match       string
	Description string
	Salary      string
	Skills      []string
}

type studyView struct {
	Index          int
	Name           string
	Details        programs.Metadata
	Heading        string
	Expanded       bool
	Saved          bool
	ProgramURL     string
	ScholarshipURL string
}

type resourceView struct {
	Name   string
	Type   string
	Rating string
	URL    string
	Liked  bool
}

// buildView projects a session snapshot onto the template data.
func buildView(st session.State, catalog *programs.Catalog, refreshSeconds int, maxUploadBytes int64) pageView {
	v := pageView{
		View:           viewInput,
		Form:           st.Form,
		Error:          st.Error,
		ResumeName:     st.ResumeName,
		RefreshSeconds: refreshSeconds,
		Accept:         resumefile.Accept,
		MaxUploadMB:    maxUploadBytes >> 20,
	}
	if st.Request.Pending() {
		v.View = viewPending
		v.PendingKind = string(st.Request.Kind)
		return v
	}
	if st.Step != session.StepResults || st.Recommendation == nil {
		return v
	}

	rec := st.Recommendation
	v.View = viewResults
	v.Insights = rec.Insights
	v.SkillGaps = nonEmptyGaps(rec.SkillGaps)
	v.Roadmap = rec.Roadmap
	v.SavedStudies = st.SavedStudies.Items()
	v.LikedResources = st.LikedResources.Items()

	for _, job := range rec.JobRoles {
		v.Jobs = append(v.Jobs, jobView{
			Title:       job.Title,
			Match:       strings.TrimSuffix(job.Match.String(), "%"),
			Description: job.Description,
			Salary:      job.Salary,
			Skills:      job.Skills,
		})
	}
	for i, option := range rec.StudyOptions {
		details := catalog.Resolve(option)
		v.Studies = append(v.Studies, studyView{
			Index:          i,
			Name:           option,
			Details:        details,
			Heading:        details.InstitutionsHeading(),
			Expanded:       st.Expanded.IsExpanded(i),
			Saved:          st.SavedStudies.Contains(option),
			ProgramURL:     programs.ProgramSearchURL(option),
			ScholarshipURL: programs.ScholarshipSearchURL(option),
		})
	}
	for _, r := range rec.Resources {
		v.Resources = append(v.Resources, resourceView{
			Name:   r.Name,
			Type:   r.Type,
			Rating: r.Rating.String(),
			URL:    externalURL(r.URL),
			Liked:  st.LikedResources.Contains(r.Name),
		})
	}
	return v
}

func nonEmptyGaps(gaps analysis.SkillGaps) []analysis.SkillGap {
	out := make([]analysis.SkillGap, 0, len(gaps))
	for _, g := range gaps {
		if len(g.Skills) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// externalURL keeps only absolute http(s) links from service data.
func externalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
