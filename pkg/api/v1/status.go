package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/involex/involex/pkg/repository"
	"github.com/involex/involex/pkg/session"
	"github.com/involex/involex/pkg/types"
)

type StatusGroup struct {
	routerGroup *echo.Group
	config      types.AppConfig
	history     repository.HistoryRepository
	manager     *session.Manager
}

func NewStatusGroup(g *echo.Group, config types.AppConfig, history repository.HistoryRepository, manager *session.Manager) *StatusGroup {
	group := &StatusGroup{routerGroup: g, config: config, history: history, manager: manager}

	g.GET("", group.GetStatus)

	return group
}

type StatusResponse struct {
	StorageMode    string `json:"storage_mode"`
	GmailEnabled   bool   `json:"gmail_enabled"`
	OutlookEnabled bool   `json:"outlook_enabled"`
	SessionState   string `json:"session_state"`
	UserIdentity   string `json:"user_identity,omitempty"`
	StoredAnalyses int    `json:"stored_analyses"`
}

// GetStatus returns a one-shot snapshot of the agent for the popup and CLI.
func (g *StatusGroup) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status := StatusResponse{
		StorageMode:    g.config.Storage.Mode,
		GmailEnabled:   g.config.Platforms.Gmail.Enabled,
		OutlookEnabled: g.config.Platforms.Outlook.Enabled,
		SessionState:   string(g.manager.State()),
	}
	if status.StorageMode == "" {
		status.StorageMode = types.StorageModeMemory
	}

	if current, err := g.manager.Current(ctx); err == nil {
		status.SessionState = string(types.SessionAuthenticated)
		status.UserIdentity = current.UserIdentity
	}

	count, err := g.history.Count(ctx)
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
	status.StoredAnalyses = count

	return SuccessResponse(c, status)
}
