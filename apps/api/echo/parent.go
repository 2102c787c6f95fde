package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/parent"
)

type parentApi struct {
	conf     *core.Config
	svc      *parent.Service
	validate *validator.Validate
}

func registerParentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	svc *parent.Service,
	validate *validator.Validate,
) {
	api := parentApi{
		conf:     conf,
		svc:      svc,
		validate: validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.POST("/logout", api.logout)
	ag.GET("/guardians", api.queryGuardians)
	ag.GET("/profile", api.profile)
	ag.POST("/profile/change-password", api.changePassword)

	// guardian mutations: staff portal only
	ag.PATCH("/guardians/:id", api.updateGuardian, staffMiddleware())
	ag.DELETE("/guardians/:id", api.destroyGuardian, staffMiddleware())
}

// Handlers

func (api *parentApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Login(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return err
	}

	token, err := generateToken(api.conf, newSessionClaims(api.conf, s))
	if err != nil {
		return err
	}

	resp := LoginResponse{Token: token, IsTeacher: s.IsStaff()}
	if s.Parent != nil {
		resp.MustChangeCredentials = s.Parent.MustChangeCredentials
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *parentApi) logout(ctx echo.Context) error {
	if err := api.svc.Logout(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *parentApi) queryGuardians(ctx echo.Context) error {
	s, err := contextSession(ctx, api.svc)
	if err != nil {
		return err
	}

	var guardians []parent.Guardian
	switch status := ctx.QueryParam("status"); status {
	case "", parent.StatusPending:
		guardians, err = api.svc.PendingGuardians(ctx.Request().Context(), s)
	case parent.StatusAllowed:
		guardians, err = api.svc.AuthorizedGuardians(ctx.Request().Context(), s)
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "must be pending or allowed"})
	}
	if err != nil {
		if errors.Cause(err) == parent.ErrUnavailable {
			return err
		}
		ctx.Logger().Warnf("loading guardians: %v", err)
		return ctx.JSON(http.StatusOK, ListResponse{Results: []GuardianView{}, Detail: "could not load guardians"})
	}

	views := make([]GuardianView, 0, len(guardians))
	for _, g := range guardians {
		views = append(views, newGuardianView(g))
	}
	return ctx.JSON(http.StatusOK, ListResponse{Results: views})
}

func (api *parentApi) updateGuardian(ctx echo.Context) error {
	s, err := contextSession(ctx, api.svc)
	if err != nil {
		return err
	}

	var data UpdateGuardianRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGuardianRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.SetGuardianStatus(ctx.Request().Context(), s, ctx.Param("id"), data.Status); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *parentApi) destroyGuardian(ctx echo.Context) error {
	s, err := contextSession(ctx, api.svc)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteGuardian(ctx.Request().Context(), s, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *parentApi) profile(ctx echo.Context) error {
	s, err := contextSession(ctx, api.svc)
	if err != nil {
		return err
	}

	p, err := api.svc.Profile(ctx.Request().Context(), s)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newProfileView(p))
}

func (api *parentApi) changePassword(ctx echo.Context) error {
	s, err := contextSession(ctx, api.svc)
	if err != nil {
		return err
	}

	var data parent.ChangeCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangeCredentials")
	}

	if err := api.svc.ChangePassword(ctx.Request().Context(), s, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}
