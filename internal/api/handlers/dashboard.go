package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/irfndi/prediction-dashboard/internal/dashboard"
	"github.com/irfndi/prediction-dashboard/internal/logging"
	"github.com/irfndi/prediction-dashboard/internal/middleware"
	"github.com/irfndi/prediction-dashboard/internal/models"
)

// ErrorResponse is the body of a failed JSON request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Path   string `json:"path,omitempty"`
}

// DashboardHandler serves the dashboard page and its widgets.
type DashboardHandler struct {
	renderer  *dashboard.Renderer
	localizer *dashboard.Localizer
	logger    logging.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(renderer *dashboard.Renderer, localizer *dashboard.Localizer, logger logging.Logger) *DashboardHandler {
	return &DashboardHandler{
		renderer:  renderer,
		localizer: localizer,
		logger:    logger,
	}
}

// resolveLanguage picks the catalog language from ?lang, then Accept-Language.
func (h *DashboardHandler) resolveLanguage(c *gin.Context) language.Tag {
	return h.localizer.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// GetDashboard renders the full page. When the data cannot be loaded the
// error page is shown instead and no widget is drawn.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	tag := h.resolveLanguage(c)

	page, err := h.renderer.Render(c.Request.Context(), tag)
	if err != nil {
		h.renderErrorPage(c, tag, err)
		return
	}

	middleware.AddSpanAttribute(c, "dashboard.rows", len(page.Table.Rows))
	c.HTML(http.StatusOK, "dashboard.html", page)
}

// GetChartSVG renders the chart widget on its own.
func (h *DashboardHandler) GetChartSVG(c *gin.Context) {
	tag := h.resolveLanguage(c)
	ctx := c.Request.Context()

	series, err := h.renderer.Load(ctx)
	if err != nil {
		h.renderErrorJSON(c, err)
		return
	}

	var buf bytes.Buffer
	chart := h.renderer.RenderChart(series, h.renderer.Labels(tag))
	if err := dashboard.RenderChartSVG(&buf, chart); err != nil {
		h.renderErrorJSON(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", buf.Bytes())
}

// GetPredictions returns the table widget contents.
func (h *DashboardHandler) GetPredictions(c *gin.Context) {
	tag := h.resolveLanguage(c)

	series, err := h.renderer.Load(c.Request.Context())
	if err != nil {
		h.renderErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, h.renderer.RenderTable(series, h.renderer.Labels(tag)))
}

// GetChart returns the chart figure.
func (h *DashboardHandler) GetChart(c *gin.Context) {
	tag := h.resolveLanguage(c)

	series, err := h.renderer.Load(c.Request.Context())
	if err != nil {
		h.renderErrorJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, h.renderer.RenderChart(series, h.renderer.Labels(tag)))
}

func (h *DashboardHandler) renderErrorPage(c *gin.Context, tag language.Tag, err error) {
	labels := h.localizer.Labels(tag)
	middleware.RecordError(c, err, "dashboard render failed")

	var unavailable *models.DataUnavailableError
	if errors.As(err, &unavailable) {
		c.HTML(http.StatusServiceUnavailable, "error.html", dashboard.ErrorPage{
			Lang:    labels.Lang,
			Title:   labels.Unavailable,
			Message: unavailable.Error(),
		})
		return
	}

	h.logger.WithError(err).ErrorContext(c.Request.Context(), "Failed to render dashboard",
		"component", "dashboard_handler",
		"request_id", middleware.GetRequestID(c))
	c.HTML(http.StatusInternalServerError, "error.html", dashboard.ErrorPage{
		Lang:    labels.Lang,
		Title:   http.StatusText(http.StatusInternalServerError),
		Message: err.Error(),
	})
}

func (h *DashboardHandler) renderErrorJSON(c *gin.Context, err error) {
	middleware.RecordError(c, err, "dashboard request failed")

	var unavailable *models.DataUnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:  unavailable.Error(),
			Reason: unavailable.Reason,
			Path:   unavailable.Path,
		})
		return
	}

	h.logger.WithError(err).ErrorContext(c.Request.Context(), "Failed to render widget",
		"component", "dashboard_handler",
		"request_id", middleware.GetRequestID(c))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
