// Package analysis is the client for the external career analysis service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"career-mentor/internal/profile"
	"career-mentor/internal/shared/util"
)

const (
	// DefaultBaseURL is where the analysis service listens in development.
	DefaultBaseURL = "http://localhost:5000/api"
	// DefaultTimeout bounds a single analysis request.
	DefaultTimeout = 60 * time.Second

	resumeField     = "resume"
	maxResponseSize = 8 << 20
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client abstracts the analysis service.
type Client interface {
	AnalyzeProfile(ctx context.Context, form profile.Form) (Recommendation, error)
	UploadResume(ctx context.Context, resume Resume) (ResumeResult, error)
}

// Resume is an uploaded resume file.
type Resume struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ResumeResult holds the profile extracted from a resume and its analysis.
type ResumeResult struct {
	Extracted profile.Form
	Analysis  Recommendation
}

// HTTPClient implements Client over the service's JSON/multipart HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewHTTPClient constructs a client for baseURL, e.g. "http://localhost:5000/api".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("analysis base URL must be http(s): %q", baseURL)
	}
	c := &HTTPClient{
		baseURL:    base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type analyzeResponse struct {
	Success bool            `json:"success"`
	Data    *Recommendation `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type uploadResponse struct {
	Success       bool             `json:"success"`
	ExtractedData *profile.Partial `json:"extractedData,omitempty"`
	Analysis      *Recommendation  `json:"analysis,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// AnalyzeProfile posts the profile as JSON to /analyze.
func (c *HTTPClient) AnalyzeProfile(ctx context.Context, form profile.Form) (Recommendation, error) {
	const op = "analyze"
	payload, err := json.Marshal(form)
	if err != nil {
		return Recommendation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return Recommendation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var parsed analyzeResponse
	status, err := c.do(req, op, unreachableAnalyzeMessage, &parsed)
	if err != nil {
		return Recommendation{}, c.serviceErr(op, status, err, fallbackAnalyzeMessage)
	}
	if !parsed.Success || parsed.Data == nil {
		return Recommendation{}, &ServiceError{Op: op, StatusCode: status, Message: messageOr(parsed.Error, fallbackAnalyzeMessage)}
	}
	return *parsed.Data, nil
}

// UploadResume posts the file as multipart form data to /upload-resume.
func (c *HTTPClient) UploadResume(ctx context.Context, resume Resume) (ResumeResult, error) {
	const op = "upload-resume"
	body, contentType, err := encodeResume(resume)
	if err != nil {
		return ResumeResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-resume", body)
	if err != nil {
		return ResumeResult{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var parsed uploadResponse
	status, err := c.do(req, op, unreachableResumeMessage, &parsed)
	if err != nil {
		return ResumeResult{}, c.serviceErr(op, status, err, fallbackResumeMessage)
	}
	if !parsed.Success || parsed.Analysis == nil {
		return ResumeResult{}, &ServiceError{Op: op, StatusCode: status, Message: messageOr(parsed.Error, fallbackResumeMessage)}
	}

	result := ResumeResult{Analysis: *parsed.Analysis}
	if parsed.ExtractedData != nil {
		result.Extracted = parsed.ExtractedData.Form()
	}
	return result, nil
}

// Ping reports whether the service answers HTTP at all. Any status counts
// as reachable; only transport failures are errors.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/analyze", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Op: "ping", Message: unreachableAnalyzeMessage, Err: err}
	}
	_ = resp.Body.Close()
	return nil
}

// errUndecodable signals a response body that is not the expected JSON.
var errUndecodable = errors.New("undecodable response body")

func (c *HTTPClient) do(req *http.Request, op, unreachableMsg string, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &ConnectivityError{Op: op, Message: unreachableMsg, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, &ConnectivityError{Op: op, Message: unreachableMsg, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", errUndecodable, err)
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) serviceErr(op string, status int, err error, fallback string) error {
	if errors.Is(err, errUndecodable) {
		return &ServiceError{Op: op, StatusCode: status, Message: fallback}
	}
	return err
}

func encodeResume(resume Resume) (io.Reader, string, error) {
	name, err := util.SanitizeFileName(resume.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("resume file name: %w", err)
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	contentType := strings.TrimSpace(resume.ContentType)
	if _, _, err := mime.ParseMediaType(contentType); err != nil {
		contentType = "application/octet-stream"
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(resumeField), quoteEscaper.Replace(name)))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(resume.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

var _ Client = (*HTTPClient)(nil)
