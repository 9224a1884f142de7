// Package web is the browser surface of the estimator: an upload page, the
// session history table and a small JSON/CSV API over the same state.
package web

import (
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/raine/produce-shelf-life/internal/imaging"
	"github.com/raine/produce-shelf-life/internal/llm"
	"github.com/raine/produce-shelf-life/internal/produce"
	"github.com/raine/produce-shelf-life/internal/session"
)

const (
	pageTitle     = "Fruit and Vegetable Shelf Life Estimator"
	sessionCookie = "produce_session"
	uploadField   = "image"
)

// Messages shown to the user.
const (
	msgAnalysisFailed = "Unable to analyze the image. Please try again with a different image."
	msgUnsupported    = "Please upload a JPG or PNG image."
	msgMissingImage   = "Choose an image of a fruit or vegetable first."
	msgTooLarge       = "The image is too large."
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options tunes the handler.
type Options struct {
	InferenceTimeout time.Duration
	MaxUploadBytes   int64
	SecureCookie     bool
}

// Handler serves the page and API on top of the session registry.
type Handler struct {
	registry  *session.Registry
	predictor llm.Predictor
	opts      Options
}

func NewHandler(registry *session.Registry, predictor llm.Predictor, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		registry:  registry,
		predictor: predictor,
		opts:      opts,
	}
}

// NewRouter builds the gin engine with templates, logging and routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	r.MaxMultipartMemory = h.opts.MaxUploadBytes
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Index)
	r.POST("/analyze", h.AnalyzeForm)

	api := r.Group("/api")
	{
		api.POST("/analyze", h.AnalyzeJSON)
		api.GET("/history", h.History)
		api.GET("/history.csv", h.ExportCSV)
	}

	r.GET("/health", h.HealthCheck)
}

// session resolves the caller's session, issuing a cookie for new ones.
func (h *Handler) session(c *gin.Context) *session.Session {
	id, _ := c.Cookie(sessionCookie)
	s, created := h.registry.Get(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, s.ID, 0, "/", "", h.opts.SecureCookie, true)
	}
	return s
}

type pageData struct {
	Title       string
	Flash       string
	Preview     template.URL
	Details     []produce.Field
	Columns     []string
	Rows        [][]string
	MaxUploadMB int64
}

// Index renders the upload form, the last analysis and the history table.
func (h *Handler) Index(c *gin.Context) {
	s := h.session(c)
	view := s.Snapshot()

	data := pageData{
		Title:       pageTitle,
		Flash:       s.TakeFlash(),
		Preview:     template.URL(view.Preview),
		Columns:     produce.Columns(),
		Rows:        rows(view.History),
		MaxUploadMB: h.opts.MaxUploadBytes >> 20,
	}
	if view.Current != nil {
		data.Details = view.Current.Fields()
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// AnalyzeForm handles the HTML form post and redirects back to the page.
func (h *Handler) AnalyzeForm(c *gin.Context) {
	s := h.session(c)
	if _, err := h.analyze(c, s); err != nil {
		_, msg := errorResponse(err)
		s.SetFlash(msg)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// AnalyzeJSON handles an API upload and returns the record and history.
func (h *Handler) AnalyzeJSON(c *gin.Context) {
	s := h.session(c)
	record, err := h.analyze(c, s)
	if err != nil {
		status, msg := errorResponse(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	view := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"record":  record,
		"columns": produce.Columns(),
		"history": view.History,
	})
}

func (h *Handler) analyze(c *gin.Context, s *session.Session) (produce.Record, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	data, err := readUpload(c)
	if err != nil {
		return produce.Record{}, err
	}

	upload, err := imaging.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("sessionId", s.ID).Int("imageBytes", len(data)).Msg("rejected upload")
		return produce.Record{}, err
	}

	ctx := c.Request.Context()
	if h.opts.InferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.InferenceTimeout)
		defer cancel()
	}

	return s.Analyze(ctx, h.predictor, upload)
}

var (
	errMissingImage = errors.New("missing image upload")
	errTooLarge     = errors.New("image upload too large")
)

func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("%w: %w", errMissingImage, err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errMissingImage
	}
	return data, nil
}

// errorResponse maps analysis errors to a status code and a user message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, errMissingImage):
		return http.StatusBadRequest, msgMissingImage
	case errors.Is(err, errTooLarge), errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, msgUnsupported
	case errors.Is(err, llm.ErrNoAnnotations):
		return http.StatusUnprocessableEntity, msgAnalysisFailed
	case errors.Is(err, session.ErrAnalysisFailed):
		return http.StatusBadGateway, msgAnalysisFailed
	default:
		return http.StatusBadRequest, msgAnalysisFailed
	}
}

// History returns the session ledger in table form.
func (h *Handler) History(c *gin.Context) {
	view := h.session(c).Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"columns": produce.Columns(),
		"rows":    rows(view.History),
		"records": view.History,
		"total":   len(view.History),
	})
}

// ExportCSV writes the session ledger as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	view := h.session(c).Snapshot()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=produce_history.csv")

	table := append([][]string{produce.Columns()}, rows(view.History)...)
	for _, row := range table[1:] {
		for i, cell := range row {
			row[i] = escapeFormula(cell)
		}
	}

	if err := csv.NewWriter(c.Writer).WriteAll(table); err != nil {
		log.Error().Err(err).Msg("failed to write csv export")
	}
}

// escapeFormula prefixes cells that spreadsheets would evaluate as formulas.
func escapeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

// HealthCheck returns service health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"predictor": h.predictor.Name(),
		"sessions":  h.registry.Len(),
	})
}

func rows(records []produce.Record) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		out[i] = r.Row()
	}
	return out
}
