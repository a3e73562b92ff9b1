package explore

import (
	"errors"
	"net/http"
	"strings"

	httperr "github.com/crossview-lab/project-crossview/internal/core/errors"
	"github.com/crossview-lab/project-crossview/internal/core/metric"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the exploration API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/dataset", s.HandleDatasetSummary)
	r.GET("/v1/views", s.HandleViews)
}

// HandleDatasetSummary handles GET /v1/dataset.
func (s *Service) HandleDatasetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.Summary())
}

// viewQuery is the query-string shape of GET /v1/views. Every parameter is
// optional; unset sizes fall back to configured defaults and an unset year
// range means the full range of the data.
type viewQuery struct {
	YearMin    int      `form:"year_min"`
	YearMax    int      `form:"year_max"`
	States     []string `form:"states"`
	Metric     string   `form:"metric"`
	TopN       int      `form:"top_n"`
	SampleRows int      `form:"sample_rows"`
}

// HandleViews handles GET /v1/views: one user interaction in, all four
// aggregates plus the sample out.
func (s *Service) HandleViews(c *gin.Context) {
	var q viewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParamsError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	m := metric.Incidents
	if q.Metric != "" {
		parsed, err := metric.Parse(q.Metric)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnknownMetricError,
				Message:   "Unknown metric",
				Details:   err.Error(),
			})
			return
		}
		m = parsed
	}

	req := ViewRequest{
		Filter: FilterConfig{
			YearMin: q.YearMin,
			YearMax: q.YearMax,
			States:  splitStates(q.States),
		},
		Metric:     m,
		TopN:       q.TopN,
		SampleRows: q.SampleRows,
	}

	res, err := s.ComputeViews(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidFilter):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidParamsError,
				Message:   "Invalid view request",
				Details:   err.Error(),
			})
		case errors.Is(err, metric.ErrUnknownMetric):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnknownMetricError,
				Message:   "Unknown metric",
				Details:   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to compute views",
				Details:   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// splitStates accepts both repeated ?states= parameters and comma-separated
// lists within one parameter.
func splitStates(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, code := range strings.Split(item, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				out = append(out, code)
			}
		}
	}
	return out
}
