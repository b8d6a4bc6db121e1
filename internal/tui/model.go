// Package tui renders a career recommendation in the terminal with the same
// save, like and expand behavior as the web pages.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bubble_tea "github.com/charmbracelet/bubbletea"
	lipgloss "github.com/charmbracelet/lipgloss"

	"career-mentor/internal/analysis"
	"career-mentor/internal/export"
	"career-mentor/internal/programs"
	"career-mentor/internal/selection"
)

var (
	colorBorder = lipgloss.Color("#30363d")
	colorMuted  = lipgloss.Color("#484f58")
	colorText   = lipgloss.Color("#e6edf3")
	colorSubtle = lipgloss.Color("#8b949e")
	colorAccent = lipgloss.Color("#a371f7")
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
)

type section int

const (
	sectionStudies section = iota
	sectionResources
	sectionJobs
	sectionRoadmap
	sectionCount
)

func (s section) title() string {
	switch s {
	case sectionResources:
		return "Free Learning Resources"
	case sectionJobs:
		return "Best Suited Job Roles"
	case sectionRoadmap:
		return "Roadmap"
	default:
		return "Higher Studies Options"
	}
}

// LoadFunc performs the remote analysis.
type LoadFunc func(ctx context.Context) (analysis.Recommendation, error)

type analysisDoneMsg struct {
	rec analysis.Recommendation
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model.
type Model struct {
	ctx       context.Context
	load      LoadFunc
	catalog   *programs.Catalog
	exportDir string

	loading bool
	err     error
	rec     analysis.Recommendation

	section  section
	cursor   int
	saved    selection.Set
	liked    selection.Set
	expanded selection.Expansion

	status        string
	printClipping bool
	width         int
}

// New returns a model that runs load on start. Exports are written to dir.
func New(ctx context.Context, load LoadFunc, catalog *programs.Catalog, dir string) Model {
	if catalog == nil {
		catalog = programs.MustDefault()
	}
	return Model{ctx: ctx, load: load, catalog: catalog, exportDir: dir, loading: true}
}

// Saved returns the saved study options.
func (m Model) Saved() selection.Set { return m.saved }

// ClipboardRequested reports whether the saved list should be printed on exit.
func (m Model) ClipboardRequested() bool { return m.printClipping }

func (m Model) Init() bubble_tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() bubble_tea.Msg {
		rec, err := load(ctx)
		return analysisDoneMsg{rec: rec, err: err}
	}
}

func (m Model) Update(msg bubble_tea.Msg) (bubble_tea.Model, bubble_tea.Cmd) {
	switch msg := msg.(type) {
	case bubble_tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case analysisDoneMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.rec = msg.rec
			m.expanded = selection.Expansion{}
			m.cursor = 0
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Saved to " + msg.path
		}
		return m, nil

	case bubble_tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg bubble_tea.KeyMsg) (bubble_tea.Model, bubble_tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, bubble_tea.Quit
	}
	if m.loading || m.err != nil {
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.section = (m.section + 1) % sectionCount
		m.cursor = 0
	case "shift+tab":
		m.section = (m.section + sectionCount - 1) % sectionCount
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.section == sectionStudies && m.rows() > 0 {
			m.expanded = m.expanded.Toggle(m.cursor)
		}
	case "s":
		if m.section == sectionStudies && m.rows() > 0 {
			m.saved = m.saved.Toggle(m.rec.StudyOptions[m.cursor])
			m.status = ""
		}
	case "l":
		if m.section == sectionResources && m.rows() > 0 {
			m.liked = m.liked.Toggle(m.rec.Resources[m.cursor].Name)
		}
	case "e":
		return m, m.exportCmd()
	case "c":
		m.printClipping = !m.printClipping
		if m.printClipping {
			m.status = "The saved list will be printed on exit."
		} else {
			m.status = ""
		}
	}
	return m, nil
}

func (m Model) rows() int {
	switch m.section {
	case sectionResources:
		return len(m.rec.Resources)
	case sectionJobs:
		return len(m.rec.JobRoles)
	case sectionRoadmap:
		return len(m.rec.Roadmap)
	default:
		return len(m.rec.StudyOptions)
	}
}

func (m Model) exportCmd() bubble_tea.Cmd {
	body := export.DownloadText(m.saved)
	path := filepath.Join(m.exportDir, export.DownloadFileName)
	return func() bubble_tea.Msg {
		err := os.WriteFile(path, []byte(body), 0o644)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(colorSubtle)
	b.WriteString(title.Render("AI Career Mentor"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(muted.Render("Analyzing..."))
		b.WriteString("\n")
		return b.String()
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(colorRed).Render(analysis.UserMessage(m.err)))
		b.WriteString("\n\n")
		b.WriteString(muted.Render("q quit"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.tabs())
	b.WriteString("\n\n")
	switch m.section {
	case sectionResources:
		b.WriteString(m.resourcesView())
	case sectionJobs:
		b.WriteString(m.jobsView())
	case sectionRoadmap:
		b.WriteString(m.roadmapView())
	default:
		b.WriteString(m.studiesView())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorGreen).Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(muted.Render("↑/↓ move · enter details · s save · l like · tab section · e export · c copy on exit · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) tabs() string {
	active := lipgloss.NewStyle().Foreground(colorText).Background(colorBorder).Bold(true).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	parts := make([]string, 0, sectionCount)
	for s := section(0); s < sectionCount; s++ {
		label := s.title()
		if s == sectionStudies && m.saved.Len() > 0 {
			label += fmt.Sprintf(" (%d Saved)", m.saved.Len())
		}
		if s == sectionResources && m.liked.Len() > 0 {
			label += fmt.Sprintf(" (%d Saved)", m.liked.Len())
		}
		if s == m.section {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) pointer(i int) string {
	if i == m.cursor {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("›") + " "
	}
	return "  "
}

func (m Model) studiesView() string {
	if len(m.rec.StudyOptions) == 0 {
		return "No study options were suggested.\n"
	}
	name := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	savedStyle := lipgloss.NewStyle().Foreground(colorBlue)
	info := lipgloss.NewStyle().Foreground(colorSubtle)
	detail := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginLeft(4)

	var b strings.Builder
	for i, option := range m.rec.StudyOptions {
		meta := m.catalog.Resolve(option)
		b.WriteString(m.pointer(i))
		b.WriteString(name.Render(option))
		if m.saved.Contains(option) {
			b.WriteString(" " + savedStyle.Render("[Saved]"))
		}
		b.WriteString("\n    ")
		b.WriteString(info.Render(fmt.Sprintf("%s · %s", meta.Duration, meta.AvgCost)))
		b.WriteString("\n")
		if m.expanded.IsExpanded(i) {
			lines := []string{
				meta.InstitutionsHeading() + ": " + strings.Join(meta.Institutions, ", "),
				"Career Outcomes: " + strings.Join(meta.Careers, ", "),
				"Requirements: " + meta.Requirements,
				"Search Programs: " + programs.ProgramSearchURL(option),
				"Find Scholarships: " + programs.ScholarshipSearchURL(option),
			}
			b.WriteString(detail.Render(strings.Join(lines, "\n")))
			b.WriteString("\n")
		}
	}
	if m.saved.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(savedStyle.Render(fmt.Sprintf("Your Saved Study Options (%d)", m.saved.Len())))
		b.WriteString("\n")
		for _, item := range m.saved.Items() {
			b.WriteString("  • " + item + "\n")
		}
	}
	return b.String()
}

func (m Model) resourcesView() string {
	if len(m.rec.Resources) == 0 {
		return "No resources were suggested.\n"
	}
	heart := lipgloss.NewStyle().Foreground(colorRed)
	free := lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	rating := lipgloss.NewStyle().Foreground(colorYellow)
	var b strings.Builder
	for i, r := range m.rec.Resources {
		b.WriteString(m.pointer(i))
		if m.liked.Contains(r.Name) {
			b.WriteString(heart.Render("♥") + " ")
		} else {
			b.WriteString("♡ ")
		}
		b.WriteString(r.Name)
		if r.Type != "" {
			b.WriteString(" (" + r.Type + ")")
		}
		if r.Rating != "" {
			b.WriteString(" " + rating.Render("★ "+r.Rating.String()+"/5"))
		}
		b.WriteString(" " + free.Render("FREE"))
		b.WriteString("\n")
		if r.URL != "" {
			b.WriteString("    " + lipgloss.NewStyle().Foreground(colorSubtle).Render(r.URL) + "\n")
		}
	}
	return b.String()
}

func (m Model) jobsView() string {
	if len(m.rec.JobRoles) == 0 {
		return "No job roles were suggested.\n"
	}
	var b strings.Builder
	for i, job := range m.rec.JobRoles {
		b.WriteString(m.pointer(i))
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(job.Title))
		if job.Match != "" {
			b.WriteString(" " + lipgloss.NewStyle().Foreground(colorGreen).Render(strings.TrimSuffix(job.Match.String(), "%")+"% Match"))
		}
		b.WriteString("\n")
		if job.Description != "" {
			b.WriteString("    " + job.Description + "\n")
		}
		if job.Salary != "" {
			b.WriteString("    " + job.Salary + "\n")
		}
		if len(job.Skills) > 0 {
			b.WriteString("    " + lipgloss.NewStyle().Foreground(colorAccent).Render(strings.Join(job.Skills, " · ")) + "\n")
		}
	}
	for _, gap := range m.rec.SkillGaps {
		if len(gap.Skills) == 0 {
			continue
		}
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(colorYellow).Render("Skills to Develop for "+gap.Role+": ") +
			strings.Join(gap.Skills, ", ") + "\n")
	}
	return b.String()
}

func (m Model) roadmapView() string {
	if len(m.rec.Roadmap) == 0 {
		return "No roadmap was suggested.\n"
	}
	month := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	var b strings.Builder
	for i, phase := range m.rec.Roadmap {
		b.WriteString(m.pointer(i))
		b.WriteString(month.Render(phase.Month))
		if phase.Hours != "" {
			b.WriteString(" · " + phase.Hours.String())
		}
		b.WriteString("\n    " + phase.Focus + "\n")
		for _, task := range phase.Tasks {
			b.WriteString("      • " + task + "\n")
		}
	}
	return b.String()
}
