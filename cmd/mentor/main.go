package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	bubble_tea "github.com/charmbracelet/bubbletea"

	"career-mentor/internal/analysis"
	"career-mentor/internal/export"
	"career-mentor/internal/profile"
	"career-mentor/internal/resumefile"
	"career-mentor/internal/shared/config"
	"career-mentor/internal/shared/telemetry"
	"career-mentor/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		exitErr(fmt.Sprintf("config: %v", err))
	}
	// The terminal belongs to the UI; only errors are logged.
	telemetry.Configure("error", os.Stderr)

	var form profile.Form
	flag.StringVar(&form.Field, "field", "", "Field of study / career interest")
	flag.StringVar(&form.Skills, "skills", "", "Your skills")
	flag.StringVar(&form.Interests, "interests", "", "Interests and passions")
	flag.StringVar(&form.Experience, "experience", "", "Experience and projects")
	flag.StringVar(&form.Education, "education", "", "Current education level")
	flag.StringVar(&form.Goals, "goals", "", "Career goals")
	resumePath := flag.String("resume", "", "Path to a resume (pdf, doc or docx) instead of the profile flags")
	baseURL := flag.String("base-url", cfg.AnalysisBaseURL, "Analysis service base URL")
	outDir := flag.String("out", ".", "Directory for "+export.DownloadFileName)
	flag.Parse()

	client, err := analysis.NewHTTPClient(*baseURL, analysis.WithTimeout(cfg.AnalysisTimeout))
	if err != nil {
		exitErr(err.Error())
	}

	load, err := loader(client, form, *resumePath, cfg.MaxUploadBytes)
	if err != nil {
		exitErr(err.Error())
	}

	ctx := context.Background()
	final, err := bubble_tea.NewProgram(tui.New(ctx, load, nil, *outDir), bubble_tea.WithAltScreen()).Run()
	if err != nil {
		exitErr(fmt.Sprintf("ui: %v", err))
	}
	if m, ok := final.(tui.Model); ok && m.ClipboardRequested() {
		printList(os.Stdout, m)
	}
}

// loader validates the input up front so bad flags fail before the UI starts.
func loader(client analysis.Client, form profile.Form, resumePath string, maxBytes int64) (tui.LoadFunc, error) {
	if strings.TrimSpace(resumePath) == "" {
		if err := profile.Validate(form); err != nil {
			return nil, err
		}
		form = form.Trimmed()
		return func(ctx context.Context) (analysis.Recommendation, error) {
			return client.AnalyzeProfile(ctx, form)
		}, nil
	}

	data, err := os.ReadFile(resumePath)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	name := filepath.Base(resumePath)
	info, err := resumefile.Check(name, data, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	resume := analysis.Resume{FileName: name, ContentType: info.MimeType, Data: data}
	return func(ctx context.Context) (analysis.Recommendation, error) {
		res, err := client.UploadResume(ctx, resume)
		return res.Analysis, err
	}, nil
}

func printList(w io.Writer, m tui.Model) {
	if m.Saved().Len() == 0 {
		fmt.Fprintln(w, "No study options saved.")
		return
	}
	fmt.Fprintln(w, export.ClipboardText(m.Saved()))
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
