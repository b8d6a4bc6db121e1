package mentor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-mentor/internal/analysis"
	"career-mentor/internal/profile"
	"career-mentor/internal/session"
	"career-mentor/internal/shared/metrics"
)

const testSession = "7d3c1f7e-1c7a-4a43-9a55-2f1f8c0b6a11"

type fakeClient struct {
	mu      sync.Mutex
	rec     analysis.Recommendation
	resume  analysis.ResumeResult
	err     error
	forms   []profile.Form
	uploads []analysis.Resume
}

func (f *fakeClient) AnalyzeProfile(_ context.Context, form profile.Form) (analysis.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
	return f.rec, f.err
}

func (f *fakeClient) UploadResume(_ context.Context, r analysis.Resume) (analysis.ResumeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, r)
	return f.resume, f.err
}

func sampleRecommendation() analysis.Recommendation {
	return analysis.Recommendation{
		JobRoles: []analysis.JobRole{{
			Title: "Backend Engineer", Match: "85", Description: "Builds services",
			Salary: "$90k-$120k", Skills: []string{"Go", "SQL"},
		}},
		StudyOptions: []string{"Master's in Computer Science", "MBA"},
		Roadmap: []analysis.Phase{{
			Month: "Month 1-2", Hours: "10 hrs/week", Focus: "Foundations", Tasks: []string{"Learn Go"},
		}},
		Resources: []analysis.Resource{
			{Name: "CS50", Type: "Course", Rating: "4.9", URL: "https://cs50.harvard.edu"},
			{Name: "Go by Example", Type: "Tutorial", Rating: "4.7", URL: "https://gobyexample.com"},
		},
		Confidence: "80",
		SkillGaps:  analysis.SkillGaps{{Role: "Backend Engineer", Skills: []string{"Kubernetes"}}},
		Insights:   []string{"Strong programming base"},
	}
}

func newTestService(client analysis.Client) (*Service, *session.MemoryStore) {
	store := session.NewMemoryStore(0)
	return NewService(store, client, nil, nil, 1<<20), store
}

func validForm() profile.Form {
	return profile.Form{Field: "Computer Science", Skills: "Python"}
}

// analyzed runs a profile analysis to completion and returns the session.
func analyzed(t *testing.T, svc *Service) session.State {
	t.Helper()
	ctx := context.Background()
	ticket, err := svc.BeginProfile(ctx, testSession, validForm())
	require.NoError(t, err)
	st, err := svc.Complete(ctx, ticket)
	require.NoError(t, err)
	return st
}

func TestBeginProfileValidation(t *testing.T) {
	svc, _ := newTestService(&fakeClient{})
	ctx := context.Background()

	_, err := svc.BeginProfile(ctx, testSession, profile.Form{Field: "  ", Skills: "Go"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, profile.ErrInvalid)

	st, err := svc.Snapshot(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, "Field of Study / Career Interest is required", st.Error)
	assert.Equal(t, "Go", st.Form.Skills, "form is kept for correction")
	assert.False(t, st.Request.Pending())
}

func TestProfileAnalysisSuccess(t *testing.T) {
	client := &fakeClient{rec: sampleRecommendation()}
	svc, _ := newTestService(client)

	st := analyzed(t, svc)
	assert.Equal(t, session.StepResults, st.Step)
	require.NotNil(t, st.Recommendation)
	assert.Equal(t, []string{"Master's in Computer Science", "MBA"}, st.StudyOptions())
	assert.Equal(t, session.PhaseSettled, st.Request.Phase)
	assert.False(t, st.Request.Failed())
	assert.Empty(t, st.Error)
	require.Len(t, client.forms, 1)
	assert.Equal(t, "Computer Science", client.forms[0].Field)
}

func TestBeginProfileSendsTrimmedForm(t *testing.T) {
	client := &fakeClient{rec: sampleRecommendation()}
	svc, _ := newTestService(client)
	ctx := context.Background()

	ticket, err := svc.BeginProfile(ctx, testSession, profile.Form{Field: "  Computer Science \n", Skills: "\tPython ", Goals: "  "})
	require.NoError(t, err)
	want := profile.Form{Field: "Computer Science", Skills: "Python"}
	assert.Equal(t, want, ticket.Form)

	st, err := svc.Complete(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, want, st.Form)
	require.Len(t, client.forms, 1)
	assert.Equal(t, want, client.forms[0])
}

func TestBeginWhilePending(t *testing.T) {
	svc, _ := newTestService(&fakeClient{})
	ctx := context.Background()

	_, err := svc.BeginProfile(ctx, testSession, validForm())
	require.NoError(t, err)
	_, err = svc.BeginProfile(ctx, testSession, validForm())
	assert.ErrorIs(t, err, session.ErrRequestPending)
	_, err = svc.UpdateForm(ctx, testSession, validForm())
	assert.ErrorIs(t, err, session.ErrRequestPending)
}

func TestFailedAnalysisKeepsPreviousResults(t *testing.T) {
	client := &fakeClient{rec: sampleRecommendation()}
	svc, _ := newTestService(client)
	ctx := context.Background()
	analyzed(t, svc)

	_, err := svc.ToggleSaveStudy(ctx, testSession, "MBA")
	require.NoError(t, err)
	_, err = svc.ToggleExpand(ctx, testSession, 1)
	require.NoError(t, err)

	client.err = &analysis.ServiceError{Op: "analyze", Message: "bad input"}
	ticket, err := svc.BeginProfile(ctx, testSession, validForm())
	require.NoError(t, err)
	st, err := svc.Complete(ctx, ticket)
	require.NoError(t, err)

	assert.Equal(t, "bad input", st.Error)
	assert.True(t, st.Request.Failed())
	assert.Equal(t, session.StepResults, st.Step)
	require.NotNil(t, st.Recommendation)
	assert.True(t, st.SavedStudies.Contains("MBA"))
	idx, ok := st.Expanded.Index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestUnreachableServiceMessage(t *testing.T) {
	client := &fakeClient{err: &analysis.ConnectivityError{
		Op:      "analyze",
		Message: "Cannot connect to backend. Make sure the analysis service is running!",
		Err:     errors.New("connection refused"),
	}}
	svc, _ := newTestService(client)
	ctx := context.Background()

	ticket, err := svc.BeginProfile(ctx, testSession, validForm())
	require.NoError(t, err)
	st, err := svc.Complete(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, session.StepInput, st.Step)
	assert.Contains(t, st.Error, "Cannot connect to backend")
}

func TestSuccessfulAnalysisResetsExpansion(t *testing.T) {
	svc, _ := newTestService(&fakeClient{rec: sampleRecommendation()})
	ctx := context.Background()
	analyzed(t, svc)
	_, err := svc.ToggleExpand(ctx, testSession, 0)
	require.NoError(t, err)

	st := analyzed(t, svc)
	_, ok := st.Expanded.Index()
	assert.False(t, ok)
}

func TestResetSupersedesRunningRequest(t *testing.T) {
	svc, _ := newTestService(&fakeClient{rec: sampleRecommendation()})
	ctx := context.Background()

	ticket, err := svc.BeginProfile(ctx, testSession, validForm())
	require.NoError(t, err)
	_, err = svc.Reset(ctx, testSession)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, ticket)
	assert.ErrorIs(t, err, ErrSuperseded)

	st, err := svc.Snapshot(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, session.StepInput, st.Step)
	assert.Nil(t, st.Recommendation)
	assert.Equal(t, session.PhaseIdle, st.Request.Phase)
}

func TestResetClearsEverything(t *testing.T) {
	svc, _ := newTestService(&fakeClient{rec: sampleRecommendation()})
	ctx := context.Background()
	analyzed(t, svc)
	_, err := svc.ToggleSaveStudy(ctx, testSession, "MBA")
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, testSession, "CS50")
	require.NoError(t, err)

	st, err := svc.Reset(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, session.StepInput, st.Step)
	assert.True(t, st.Form.IsZero())
	assert.Nil(t, st.Recommendation)
	assert.Zero(t, st.SavedStudies.Len())
	assert.Zero(t, st.LikedResources.Len())
	assert.Empty(t, st.Error)
}

func TestToggles(t *testing.T) {
	svc, _ := newTestService(&fakeClient{rec: sampleRecommendation()})
	ctx := context.Background()
	analyzed(t, svc)

	st, err := svc.ToggleSaveStudy(ctx, testSession, "MBA")
	require.NoError(t, err)
	st, err = svc.ToggleSaveStudy(ctx, testSession, "Master's in Computer Science")
	require.NoError(t, err)
	assert.Equal(t, []string{"MBA", "Master's in Computer Science"}, st.SavedStudies.Items())

	st, err = svc.ToggleSaveStudy(ctx, testSession, "MBA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Master's in Computer Science"}, st.SavedStudies.Items())

	_, err = svc.ToggleSaveStudy(ctx, testSession, "Underwater Basket Weaving")
	assert.ErrorIs(t, err, ErrUnknownItem)

	st, err = svc.ToggleExpand(ctx, testSession, 0)
	require.NoError(t, err)
	assert.True(t, st.Expanded.IsExpanded(0))
	st, err = svc.ToggleExpand(ctx, testSession, 1)
	require.NoError(t, err)
	assert.False(t, st.Expanded.IsExpanded(0))
	assert.True(t, st.Expanded.IsExpanded(1))
	st, err = svc.ToggleExpand(ctx, testSession, 1)
	require.NoError(t, err)
	assert.False(t, st.Expanded.IsExpanded(1))

	_, err = svc.ToggleExpand(ctx, testSession, 2)
	assert.ErrorIs(t, err, ErrUnknownItem)
	_, err = svc.ToggleExpand(ctx, testSession, -1)
	assert.ErrorIs(t, err, ErrUnknownItem)

	st, err = svc.ToggleLike(ctx, testSession, "CS50")
	require.NoError(t, err)
	assert.True(t, st.LikedResources.Contains("CS50"))
	_, err = svc.ToggleLike(ctx, testSession, "")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestExports(t *testing.T) {
	svc, _ := newTestService(&fakeClient{rec: sampleRecommendation()})
	ctx := context.Background()
	analyzed(t, svc)
	_, err := svc.ToggleSaveStudy(ctx, testSession, "MBA")
	require.NoError(t, err)
	_, err = svc.ToggleSaveStudy(ctx, testSession, "Master's in Computer Science")
	require.NoError(t, err)

	clip, err := svc.ExportClipboard(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, "MBA\nMaster's in Computer Science", clip)

	text, err := svc.ExportDownload(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, "My Saved Study Options\n==============================\n\nMBA\n\nMaster's in Computer Science", text)
}

func TestResumeFlow(t *testing.T) {
	client := &fakeClient{resume: analysis.ResumeResult{
		Extracted: profile.Form{Field: "Data Science", Skills: "Python, SQL"},
		Analysis:  sampleRecommendation(),
	}}
	svc, _ := newTestService(client)
	ctx := context.Background()

	ticket, err := svc.BeginResume(ctx, testSession, analysis.Resume{FileName: "cv.pdf", Data: buildPDF()})
	require.NoError(t, err)
	assert.Equal(t, session.KindResume, ticket.Kind)
	assert.Equal(t, "application/pdf", ticket.Resume.ContentType)

	st, err := svc.Snapshot(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, st.Request.Pending())
	assert.Equal(t, "cv.pdf", st.ResumeName)

	st, err = svc.Complete(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, session.StepResults, st.Step)
	assert.Equal(t, "Data Science", st.Form.Field)
	require.Len(t, client.uploads, 1)
}

func TestResumeRejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := &fakeClient{}
	svc := NewService(session.NewMemoryStore(0), client, nil, m, 1<<20)
	ctx := context.Background()

	cases := []struct {
		name   string
		file   string
		data   []byte
		reason string
		msg    string
	}{
		{"unsupported", "notes.txt", []byte("hello there"), "unsupported", "Please upload a PDF, DOC or DOCX file."},
		{"empty", "cv.pdf", nil, "empty", "The selected file is empty."},
		{"too large", "cv.pdf", bytes.Repeat([]byte("a"), 2<<20), "too_large", "Resume is too large. The limit is 1 MB."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.BeginResume(ctx, testSession, analysis.Resume{FileName: tc.file, Data: tc.data})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, tc.msg, err.Error())
			assert.Equal(t, float64(1), testutil.ToFloat64(m.ResumeRejected.WithLabelValues(tc.reason)))

			st, err := svc.Snapshot(ctx, testSession)
			require.NoError(t, err)
			assert.Equal(t, tc.msg, st.Error)
			assert.False(t, st.Request.Pending())
		})
	}
	assert.Empty(t, client.uploads)
}

func TestAnalysisMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := &fakeClient{rec: sampleRecommendation()}
	svc := NewService(session.NewMemoryStore(0), client, nil, m, 1<<20)

	analyzed(t, svc)
	client.err = &analysis.ServiceError{Message: "bad input"}
	analyzed(t, svc)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AnalysisStarted.WithLabelValues("profile")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalysisCompleted.WithLabelValues("profile")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnalysisFailed.WithLabelValues("profile", metrics.ReasonService)))
}

func buildPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
