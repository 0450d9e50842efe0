package apiv1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/involex/involex/pkg/session"
	"github.com/involex/involex/pkg/types"
)

type SessionGroup struct {
	routerGroup *echo.Group
	manager     *session.Manager
}

func NewSessionGroup(g *echo.Group, manager *session.Manager) *SessionGroup {
	group := &SessionGroup{routerGroup: g, manager: manager}

	g.GET("", group.GetSession)
	g.POST("/login", group.Login)
	g.POST("/logout", group.Logout)
	g.GET("/matters", group.ListMatters)
	g.PUT("/matter", group.SelectMatter)

	return group
}

type SessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	State         string         `json:"state"`
	Session       *types.Session `json:"session,omitempty"`
}

func (g *SessionGroup) GetSession(c echo.Context) error {
	current, err := g.manager.Current(c.Request().Context())
	if err != nil {
		if errors.Is(err, types.ErrNotAuthenticated) || errors.Is(err, types.ErrSessionExpired) {
			return SuccessResponse(c, SessionResponse{
				Authenticated: false,
				State:         string(g.manager.State()),
			})
		}
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}

	return SuccessResponse(c, SessionResponse{
		Authenticated: true,
		State:         string(types.SessionAuthenticated),
		Session:       current,
	})
}

func (g *SessionGroup) Login(c echo.Context) error {
	if err := g.manager.Login(c.Request().Context()); err != nil {
		return ErrorResponse(c, http.StatusBadGateway, err.Error())
	}
	return SuccessResponse(c, map[string]string{
		"state": string(g.manager.State()),
	})
}

func (g *SessionGroup) Logout(c echo.Context) error {
	if err := g.manager.Logout(c.Request().Context()); err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return SuccessResponse(c, map[string]string{
		"state": string(g.manager.State()),
	})
}

func (g *SessionGroup) ListMatters(c echo.Context) error {
	matters, err := g.manager.Matters(c.Request().Context())
	if err != nil {
		if errors.Is(err, types.ErrNotAuthenticated) || errors.Is(err, types.ErrSessionExpired) {
			return ErrorResponse(c, http.StatusUnauthorized, err.Error())
		}
		return ErrorResponse(c, http.StatusBadGateway, err.Error())
	}
	return SuccessResponse(c, map[string]interface{}{
		"matters": matters,
	})
}

type SelectMatterRequest struct {
	MatterID string `json:"matter_id"`
}

func (g *SessionGroup) SelectMatter(c echo.Context) error {
	var req SelectMatterRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if err := g.manager.SelectMatter(c.Request().Context(), req.MatterID); err != nil {
		switch {
		case errors.Is(err, types.ErrUnknownMatter):
			return ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, types.ErrNotAuthenticated), errors.Is(err, types.ErrSessionExpired):
			return ErrorResponse(c, http.StatusUnauthorized, err.Error())
		default:
			return ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
	}
	return SuccessResponse(c, map[string]string{
		"selected_matter_id": req.MatterID,
	})
}
