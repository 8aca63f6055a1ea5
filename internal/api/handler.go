package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-quake-impact/internal/events"
	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
	"github.com/mr1hm/go-quake-impact/internal/models"
	"github.com/mr1hm/go-quake-impact/internal/report"
	"github.com/mr1hm/go-quake-impact/internal/repository"
)

type Handler struct {
	repo   repository.AssessmentRepository
	params impact.Params
	events *events.Broadcaster
}

// NewHandler returns the API handler. b may be nil, which disables the
// assessment stream.
func NewHandler(repo repository.AssessmentRepository, params impact.Params, b *events.Broadcaster) *Handler {
	return &Handler{
		repo:   repo,
		params: params,
		events: b,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/assessments", h.createAssessment)
	r.GET("/api/assessments", h.listAssessments)
	r.GET("/api/assessments/:id", h.getAssessment)
	r.GET("/api/assessments/:id/geojson", h.getAssessmentGeoJSON)
	r.GET("/api/stream", h.streamAssessments)
	r.GET("/health", h.health)
}

type assessmentResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	*impact.Result
	Grid [][]*float64 `json:"grid"`
}

type assessmentDetail struct {
	*models.Assessment
	Grid [][]*float64 `json:"grid,omitempty"`
}

func (h *Handler) createAssessment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := req.input()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	params, err := req.Model.apply(h.params)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := impact.Run(in, params)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	label := req.Label
	if label == "" {
		label = res.Question
	}
	a := models.NewAssessment(uuid.NewString(), label, "api", in, res, params.IncludeDisplaced)
	if err := h.repo.Add(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store assessment",
		})
		return
	}
	if h.events != nil {
		h.events.Broadcast(a)
	}

	c.JSON(http.StatusCreated, assessmentResponse{
		ID:        a.ID,
		Label:     a.Label,
		CreatedAt: a.CreatedAt,
		Result:    res,
		Grid:      gridRows(res.Grid),
	})
}

func (h *Handler) listAssessments(c *gin.Context) {
	filter := repository.Filter{
		Limit: 20, // Default to 20 assessments if limit param not supplied
	}

	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if m := c.Query("min_fatalities"); m != "" {
		if n, err := strconv.ParseInt(m, 10, 64); err == nil {
			filter.MinFatalities = &n
		}
	}
	if s := c.Query("status"); s != "" {
		status := models.Status(strings.ToUpper(s))
		if status == models.StatusComplete || status == models.StatusFailed {
			filter.Status = &status
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if o := c.Query("offset"); o != "" {
		if off, err := strconv.Atoi(o); err == nil && off > 0 {
			filter.Offset = off
		}
	}

	assessments, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch assessments",
		})
		return
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"count":       len(assessments),
	})
}

func (h *Handler) getAssessment(c *gin.Context) {
	a, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, assessmentDetail{Assessment: a, Grid: gridRows(a.Grid)})
}

func (h *Handler) getAssessmentGeoJSON(c *gin.Context) {
	a, ok := h.lookup(c)
	if !ok {
		return
	}
	if a.Grid == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment has no output grid"})
		return
	}

	f, err := report.NewFormatter(h.params.Locale)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	class, err := impact.Classify(a.Grid, true, f.Int)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(a, class))
}

// streamAssessments sends every finished assessment as a server-sent event
// until the client disconnects or the broadcaster is closed.
func (h *Handler) streamAssessments(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assessment stream disabled"})
		return
	}

	id, ch := h.events.Subscribe()
	defer h.events.Unsubscribe(id)
	slog.Debug("stream subscriber connected", "subscriber", id, "client", c.ClientIP())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("stream subscriber disconnected", "subscriber", id)
			return
		case a, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("assessment", a)
			c.Writer.Flush()
		}
	}
}

func (h *Handler) lookup(c *gin.Context) (*models.Assessment, bool) {
	a, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return nil, false
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch assessment"})
		return nil, false
	}
	return a, true
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, impact.ErrInvalidParams),
		errors.Is(err, impact.ErrMissingRate),
		errors.Is(err, impact.ErrShapeMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
