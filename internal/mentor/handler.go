package mentor

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"career-mentor/internal/analysis"
	"career-mentor/internal/export"
	"career-mentor/internal/profile"
	"career-mentor/internal/resumefile"
	"career-mentor/internal/session"
	"career-mentor/internal/shared/server/middleware"
	"career-mentor/internal/shared/server/respond"
	"career-mentor/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFS embed.FS

// multipart framing allowance on top of the file size limit
const uploadOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	RefreshSeconds int

	tmpl *template.Template
	// dispatch runs a remote analysis call. Tests replace it to run inline.
	dispatch func(func())
}

// NewHandler constructs a Handler that runs analysis calls on new goroutines.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		Svc:            svc,
		RefreshSeconds: 2,
		tmpl:           template.Must(template.New("pages").ParseFS(templateFS, "templates/*.html")),
		dispatch:       func(fn func()) { go fn() },
	}
}

// RegisterRoutes attaches the page routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.page)
	rg.POST("/analyze", h.analyze)
	rg.POST("/upload-resume", h.uploadResume)
	rg.POST("/studies/save", h.toggleSave)
	rg.POST("/studies/expand", h.toggleExpand)
	rg.POST("/resources/like", h.toggleLike)
	rg.POST("/reset", h.reset)
	rg.GET("/studies/export.txt", h.download)
	rg.GET("/studies/clipboard", h.clipboard)
}

// RegisterAPIRoutes attaches the JSON routes to the router group.
func (h *Handler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.GET("/programs", h.listPrograms)
	rg.GET("/programs/resolve", h.resolveProgram)
	rg.GET("/session", h.sessionState)
	rg.PUT("/session/form", h.saveForm)
}

func (h *Handler) page(c *gin.Context) {
	st, err := h.Svc.Snapshot(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	v := buildView(st, h.Svc.Catalog, h.RefreshSeconds, h.Svc.MaxUploadBytes)

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, v.View, v); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) analyze(c *gin.Context) {
	var form profile.Form
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form submission")
		return
	}
	ticket, err := h.Svc.BeginProfile(c.Request.Context(), middleware.SessionIDFromContext(c), form)
	if err != nil {
		h.backToPage(c, err, "")
		return
	}
	h.start(c, ticket)
}

func (h *Handler) uploadResume(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.SessionIDFromContext(c)
	limit := h.Svc.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadOverhead)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			err = resumefile.ErrTooLarge
		}
		h.backToPage(c, h.Svc.RejectUpload(ctx, sid, err), "")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.backToPage(c, h.Svc.RejectUpload(ctx, sid, err), "")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.backToPage(c, h.Svc.RejectUpload(ctx, sid, err), "")
		return
	}

	ticket, err := h.Svc.BeginResume(ctx, sid, analysis.Resume{FileName: fileHeader.Filename, Data: data})
	if err != nil {
		h.backToPage(c, err, "")
		return
	}
	h.start(c, ticket)
}

// start hands the ticket to the dispatcher and sends the browser to the
// pending page. The call outlives the request but keeps its values.
func (h *Handler) start(c *gin.Context, ticket Ticket) {
	bg := context.WithoutCancel(c.Request.Context())
	h.dispatch(func() {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("analysis.panic", map[string]any{"panic": rec, "kind": string(ticket.Kind)})
			}
		}()
		_, _ = h.Svc.Complete(bg, ticket)
	})
	c.Set("stepTransition", "input->pending")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) toggleSave(c *gin.Context) {
	_, err := h.Svc.ToggleSaveStudy(c.Request.Context(), middleware.SessionIDFromContext(c), c.PostForm("option"))
	h.backToPage(c, err, "#studies")
}

func (h *Handler) toggleExpand(c *gin.Context) {
	index, err := strconv.Atoi(c.PostForm("index"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid index")
		return
	}
	_, err = h.Svc.ToggleExpand(c.Request.Context(), middleware.SessionIDFromContext(c), index)
	h.backToPage(c, err, "#study-"+strconv.Itoa(index))
}

func (h *Handler) toggleLike(c *gin.Context) {
	_, err := h.Svc.ToggleLike(c.Request.Context(), middleware.SessionIDFromContext(c), c.PostForm("resource"))
	h.backToPage(c, err, "#resources")
}

func (h *Handler) reset(c *gin.Context) {
	_, err := h.Svc.Reset(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err == nil {
		c.Set("stepTransition", "results->input")
	}
	h.backToPage(c, err, "")
}

func (h *Handler) download(c *gin.Context) {
	body, err := h.Svc.ExportDownload(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Attachment(c, export.DownloadFileName, export.DownloadContentType, body)
}

func (h *Handler) clipboard(c *gin.Context) {
	body, err := h.Svc.ExportClipboard(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.DownloadContentType, []byte(body))
}

// backToPage redirects to the page after a form post. Input errors are
// already stored on the session and shown there; an unknown item is a 400.
func (h *Handler) backToPage(c *gin.Context, err error, anchor string) {
	switch {
	case err == nil, errors.Is(err, session.ErrRequestPending), errors.Is(err, ErrInvalidInput):
	case errors.Is(err, ErrUnknownItem):
		c.String(http.StatusBadRequest, err.Error())
		return
	default:
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/"+anchor)
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	telemetry.CaptureError(c.Request.Context(), "page.error", err, map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"path":       c.Request.URL.Path,
	})
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}

type programResponse struct {
	Name         string   `json:"name"`
	Duration     string   `json:"duration"`
	AvgCost      string   `json:"avgCost"`
	Heading      string   `json:"institutionsHeading"`
	Institutions []string `json:"institutions"`
	Careers      []string `json:"careers"`
	Requirements string   `json:"requirements"`
	Known        bool     `json:"known"`
}

func (h *Handler) programResponse(name string) programResponse {
	meta, known := h.Svc.Catalog.Lookup(name)
	if !known {
		meta = h.Svc.Catalog.Resolve(name)
	}
	return programResponse{
		Name:         name,
		Duration:     meta.Duration,
		AvgCost:      meta.AvgCost,
		Heading:      meta.InstitutionsHeading(),
		Institutions: meta.Institutions,
		Careers:      meta.Careers,
		Requirements: meta.Requirements,
		Known:        known,
	}
}

func (h *Handler) listPrograms(c *gin.Context) {
	names := h.Svc.Catalog.Names()
	out := make([]programResponse, 0, len(names))
	for _, name := range names {
		out = append(out, h.programResponse(name))
	}
	respond.OK(c, gin.H{"programs": out})
}

func (h *Handler) resolveProgram(c *gin.Context) {
	name, ok := c.GetQuery("name")
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}
	respond.OK(c, h.programResponse(name))
}

func (h *Handler) sessionState(c *gin.Context) {
	st, err := h.Svc.Snapshot(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load session", nil)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) saveForm(c *gin.Context) {
	var form profile.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	st, err := h.Svc.UpdateForm(c.Request.Context(), middleware.SessionIDFromContext(c), form)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRequestPending):
			respond.Error(c, http.StatusConflict, "request_pending", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to save form", nil)
		}
		return
	}
	respond.OK(c, st)
}
