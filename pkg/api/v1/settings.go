package apiv1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/repository"
	"github.com/involex/involex/pkg/types"
)

type SettingsGroup struct {
	routerGroup *echo.Group
	settings    repository.SettingsRepository
	eventBus    *common.EventBus
	httpClient  *http.Client
}

func NewSettingsGroup(g *echo.Group, settings repository.SettingsRepository, eventBus *common.EventBus) *SettingsGroup {
	group := &SettingsGroup{
		routerGroup: g,
		settings:    settings,
		eventBus:    eventBus,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	g.GET("", group.GetSettings)
	g.PUT("", group.UpdateSettings)
	g.POST("/test-connection", group.TestConnection)

	return group
}

func (g *SettingsGroup) GetSettings(c echo.Context) error {
	settings, err := g.settings.Get(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return SuccessResponse(c, settings)
}

func (g *SettingsGroup) UpdateSettings(c echo.Context) error {
	var settings types.Settings
	if err := c.Bind(&settings); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if err := g.settings.Update(c.Request().Context(), &settings); err != nil {
		return ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	}

	if g.eventBus != nil {
		g.eventBus.Emit(common.Event{Type: common.EventSettingsUpdated})
	}
	return SuccessResponse(c, settings)
}

type TestConnectionRequest struct {
	APIURL string `json:"api_url"`
}

// TestConnection checks whether a summarization endpoint is reachable. The
// body may carry a candidate URL; otherwise the stored one is probed.
func (g *SettingsGroup) TestConnection(c echo.Context) error {
	var req TestConnectionRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	target := req.APIURL
	if target == "" {
		settings, err := g.settings.Get(c.Request().Context())
		if err != nil {
			return ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
		target = settings.APIURL
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(c.Request().Context(), "GET", target, nil)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid url")
	}
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return SuccessResponse(c, map[string]interface{}{
			"reachable": false,
			"error":     err.Error(),
		})
	}
	resp.Body.Close()

	return SuccessResponse(c, map[string]interface{}{
		"reachable":  true,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}
