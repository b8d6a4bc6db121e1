// Package mentor drives a career analysis session: it validates submissions,
// calls the analysis service and applies the result to the stored session
// state. handler.go renders that state as HTML.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"career-mentor/internal/analysis"
	"career-mentor/internal/export"
	"career-mentor/internal/profile"
	"career-mentor/internal/programs"
	"career-mentor/internal/resumefile"
	"career-mentor/internal/selection"
	"career-mentor/internal/session"
	"career-mentor/internal/shared/metrics"
	"career-mentor/internal/shared/telemetry"
	"career-mentor/internal/shared/util"
)

// Ticket identifies a started request. It is handed to Complete once the
// caller is ready to perform the remote call.
type Ticket struct {
	SessionID string
	Attempt   string
	Kind      session.RequestKind
	Form      profile.Form
	Resume    analysis.Resume
}

// Service contains the session business logic.
type Service struct {
	Store          session.Store
	Client         analysis.Client
	Catalog        *programs.Catalog
	Metrics        *metrics.Metrics
	MaxUploadBytes int64

	now func() time.Time
}

// NewService constructs a Service. A nil catalog means the embedded table.
func NewService(store session.Store, client analysis.Client, catalog *programs.Catalog, m *metrics.Metrics, maxUploadBytes int64) *Service {
	if catalog == nil {
		catalog = programs.MustDefault()
	}
	return &Service{
		Store:          store,
		Client:         client,
		Catalog:        catalog,
		Metrics:        m,
		MaxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(ctx context.Context, sid string) (session.State, error) {
	return s.Store.Get(ctx, sid)
}

// UpdateForm stores an edited form without submitting it.
func (s *Service) UpdateForm(ctx context.Context, sid string, form profile.Form) (session.State, error) {
	return s.Store.Update(ctx, sid, func(st *session.State) error {
		if st.Request.Pending() {
			return session.ErrRequestPending
		}
		st.Form = form
		st.Error = ""
		return nil
	})
}

// BeginProfile validates form and marks the session pending. Validation
// failures are stored as the inline error and returned as *InputError.
func (s *Service) BeginProfile(ctx context.Context, sid string, form profile.Form) (Ticket, error) {
	if err := profile.Validate(form); err != nil {
		var verr *profile.ValidationError
		msg := err.Error()
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		if _, serr := s.Store.Update(ctx, sid, func(st *session.State) error {
			if st.Request.Pending() {
				return session.ErrRequestPending
			}
			st.Form = form
			st.Error = msg
			return nil
		}); serr != nil {
			return Ticket{}, serr
		}
		return Ticket{}, invalid(msg, err)
	}
	form = form.Trimmed()

	var ticket Ticket
	_, err := s.Store.Update(ctx, sid, func(st *session.State) error {
		next, err := st.Request.Begin(session.KindProfile, s.clock())
		if err != nil {
			return err
		}
		st.Request = next
		st.Form = form
		st.ResumeName = ""
		st.Error = ""
		ticket = Ticket{SessionID: sid, Attempt: next.Attempt, Kind: session.KindProfile, Form: form}
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	s.Metrics.IncAnalysisStarted(string(session.KindProfile))
	return ticket, nil
}

// BeginResume runs the upload gate and marks the session pending.
func (s *Service) BeginResume(ctx context.Context, sid string, resume analysis.Resume) (Ticket, error) {
	info, err := resumefile.Check(resume.FileName, resume.Data, s.MaxUploadBytes)
	if err != nil {
		return Ticket{}, s.RejectUpload(ctx, sid, err)
	}
	resume.ContentType = info.MimeType

	var ticket Ticket
	_, err = s.Store.Update(ctx, sid, func(st *session.State) error {
		next, err := st.Request.Begin(session.KindResume, s.clock())
		if err != nil {
			return err
		}
		st.Request = next
		st.ResumeName = resume.FileName
		st.Error = ""
		ticket = Ticket{SessionID: sid, Attempt: next.Attempt, Kind: session.KindResume, Resume: resume}
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	s.Metrics.IncAnalysisStarted(string(session.KindResume))
	return ticket, nil
}

// RejectUpload records why an upload never reached the analysis service and
// returns the matching *InputError.
func (s *Service) RejectUpload(ctx context.Context, sid string, cause error) error {
	msg, reason := uploadMessage(cause, s.MaxUploadBytes)
	s.Metrics.IncResumeRejected(reason)
	if _, err := s.Store.Update(ctx, sid, func(st *session.State) error {
		if st.Request.Pending() {
			return session.ErrRequestPending
		}
		st.Error = msg
		return nil
	}); err != nil {
		return err
	}
	return invalid(msg, cause)
}

func uploadMessage(err error, maxBytes int64) (msg, reason string) {
	if maxBytes <= 0 {
		maxBytes = resumefile.DefaultMaxBytes
	}
	switch {
	case errors.Is(err, resumefile.ErrUnsupported):
		return "Please upload a PDF, DOC or DOCX file.", "unsupported"
	case errors.Is(err, resumefile.ErrTooLarge):
		return fmt.Sprintf("Resume is too large. The limit is %d MB.", maxBytes>>20), "too_large"
	case errors.Is(err, resumefile.ErrEmpty):
		return "The selected file is empty.", "empty"
	case errors.Is(err, resumefile.ErrCorrupt):
		return "We could not read that file. Please check it opens correctly and try again.", "corrupt"
	default:
		return "Please choose a resume file to upload.", "missing"
	}
}

// Complete performs the remote call for t and settles the session. It is
// meant to run off the request goroutine.
func (s *Service) Complete(ctx context.Context, t Ticket) (session.State, error) {
	switch t.Kind {
	case session.KindResume:
		return s.CompleteResume(ctx, t)
	default:
		return s.CompleteProfile(ctx, t)
	}
}

// CompleteProfile calls the analysis service with the ticket's form.
func (s *Service) CompleteProfile(ctx context.Context, t Ticket) (session.State, error) {
	start := s.clock()
	rec, err := s.Client.AnalyzeProfile(ctx, t.Form)
	s.observe(ctx, t, start, err)
	return s.settle(ctx, t, err, func(st *session.State) {
		st.Recommendation = &rec
	})
}

// CompleteResume uploads the ticket's resume. On success the form is
// pre-filled from the extracted profile.
func (s *Service) CompleteResume(ctx context.Context, t Ticket) (session.State, error) {
	start := s.clock()
	res, err := s.Client.UploadResume(ctx, t.Resume)
	s.observe(ctx, t, start, err)
	return s.settle(ctx, t, err, func(st *session.State) {
		st.Form = res.Extracted
		st.Recommendation = &res.Analysis
	})
}

// settle applies the outcome. Failures leave the step, recommendation,
// selections and expansion as they were.
func (s *Service) settle(ctx context.Context, t Ticket, callErr error, onSuccess func(*session.State)) (session.State, error) {
	st, err := s.Store.Update(context.WithoutCancel(ctx), t.SessionID, func(st *session.State) error {
		next, ok := st.Request.Settle(t.Attempt, callErr, s.clock())
		if !ok {
			return ErrSuperseded
		}
		st.Request = next
		if callErr != nil {
			st.Error = analysis.UserMessage(callErr)
			return nil
		}
		onSuccess(st)
		st.Step = session.StepResults
		st.Expanded = selection.Expansion{}
		st.Error = ""
		return nil
	})
	if errors.Is(err, ErrSuperseded) {
		telemetry.Debug("analysis.superseded", map[string]any{
			"session": util.ShortHash(t.SessionID),
			"kind":    string(t.Kind),
		})
	}
	return st, err
}

func (s *Service) observe(ctx context.Context, t Ticket, start time.Time, err error) {
	reason := ""
	fields := map[string]any{
		"session":     util.ShortHash(t.SessionID),
		"kind":        string(t.Kind),
		"duration_ms": s.clock().Sub(start).Milliseconds(),
	}
	switch {
	case err == nil:
		telemetry.Info("analysis.completed", fields)
	case errors.Is(err, context.Canceled):
		reason = metrics.ReasonCancelled
		telemetry.Warn("analysis.cancelled", fields)
	case errors.Is(err, analysis.ErrUnreachable):
		reason = metrics.ReasonUnreachable
		var conn *analysis.ConnectivityError
		if errors.As(err, &conn) {
			fields["detail"] = conn.Detail()
		}
		telemetry.CaptureError(ctx, "analysis.unreachable", err, fields)
	default:
		reason = metrics.ReasonService
		fields["error"] = err.Error()
		telemetry.Warn("analysis.failed", fields)
	}
	s.Metrics.ObserveAnalysis(string(t.Kind), reason, s.clock().Sub(start))
}

// ToggleSaveStudy saves or un-saves a recommended study option.
func (s *Service) ToggleSaveStudy(ctx context.Context, sid, option string) (session.State, error) {
	var added bool
	st, err := s.Store.Update(ctx, sid, func(st *session.State) error {
		if option == "" || (!slices.Contains(st.StudyOptions(), option) && !st.SavedStudies.Contains(option)) {
			return fmt.Errorf("%w: study option %q", ErrUnknownItem, option)
		}
		st.SavedStudies = st.SavedStudies.Toggle(option)
		added = st.SavedStudies.Contains(option)
		return nil
	})
	if err == nil {
		s.Metrics.IncSelectionToggle("studies", added)
	}
	return st, err
}

// ToggleExpand opens the details panel at index, closing any other, or
// closes it if it is already open.
func (s *Service) ToggleExpand(ctx context.Context, sid string, index int) (session.State, error) {
	return s.Store.Update(ctx, sid, func(st *session.State) error {
		if index < 0 || index >= len(st.StudyOptions()) {
			return fmt.Errorf("%w: study option #%d", ErrUnknownItem, index)
		}
		st.Expanded = st.Expanded.Toggle(index)
		return nil
	})
}

// ToggleLike likes or un-likes a recommended resource by name.
func (s *Service) ToggleLike(ctx context.Context, sid, resource string) (session.State, error) {
	var added bool
	st, err := s.Store.Update(ctx, sid, func(st *session.State) error {
		if resource == "" || (!hasResource(st.Recommendation, resource) && !st.LikedResources.Contains(resource)) {
			return fmt.Errorf("%w: resource %q", ErrUnknownItem, resource)
		}
		st.LikedResources = st.LikedResources.Toggle(resource)
		added = st.LikedResources.Contains(resource)
		return nil
	})
	if err == nil {
		s.Metrics.IncSelectionToggle("resources", added)
	}
	return st, err
}

func hasResource(rec *analysis.Recommendation, name string) bool {
	if rec == nil {
		return false
	}
	for _, r := range rec.Resources {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Reset starts a new analysis: the form, recommendation, error, expansion
// and both selection lists are cleared. A request still running is
// abandoned and its result discarded.
func (s *Service) Reset(ctx context.Context, sid string) (session.State, error) {
	return s.Store.Update(ctx, sid, func(st *session.State) error {
		*st = session.New(st.ID, st.CreatedAt)
		return nil
	})
}

// ExportClipboard returns the saved study options as copyable text.
func (s *Service) ExportClipboard(ctx context.Context, sid string) (string, error) {
	st, err := s.Store.Get(ctx, sid)
	if err != nil {
		return "", err
	}
	s.Metrics.IncExport("clipboard")
	return export.ClipboardText(st.SavedStudies), nil
}

// ExportDownload returns the saved study options as the downloadable file body.
func (s *Service) ExportDownload(ctx context.Context, sid string) (string, error) {
	st, err := s.Store.Get(ctx, sid)
	if err != nil {
		return "", err
	}
	s.Metrics.IncExport("download")
	return export.DownloadText(st.SavedStudies), nil
}
