package apiv1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/involex/involex/pkg/repository"
)

const defaultAnalysesLimit = 20

type AnalysesGroup struct {
	routerGroup *echo.Group
	history     repository.HistoryRepository
}

func NewAnalysesGroup(g *echo.Group, history repository.HistoryRepository) *AnalysesGroup {
	group := &AnalysesGroup{routerGroup: g, history: history}

	g.GET("", group.ListAnalyses)
	g.DELETE("", group.ClearAnalyses)

	return group
}

// ListAnalyses returns recent analyses, newest first.
func (g *AnalysesGroup) ListAnalyses(c echo.Context) error {
	limit := defaultAnalysesLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	records, err := g.history.Recent(c.Request().Context(), limit)
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}

	total, err := g.history.Count(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}

	return SuccessResponse(c, map[string]interface{}{
		"analyses": records,
		"total":    total,
	})
}

// ClearAnalyses deletes the entire history.
func (g *AnalysesGroup) ClearAnalyses(c echo.Context) error {
	removed, err := g.history.Clear(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}

	return SuccessResponse(c, map[string]interface{}{
		"removed": removed,
	})
}
