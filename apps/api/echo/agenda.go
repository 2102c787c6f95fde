package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/agenda"
	"github.com/JCBT04/Capstone/core/attendance"
	"github.com/JCBT04/Capstone/core/parent"
)

type agendaApi struct {
	log       core.Logger
	svc       *agenda.Service
	attSvc    *attendance.Service
	parentSvc *parent.Service
}

func registerAgendaAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := agendaApi{
		log:       deps.Logger,
		svc:       deps.AgendaSvc,
		attSvc:    deps.AttendanceSvc,
		parentSvc: deps.ParentSvc,
	}

	ag := g.Group("", jwt)
	ag.GET("/home", api.home)
	ag.GET("/calendar/:year/:month", api.calendar)
	ag.GET("/events", api.events)
	ag.GET("/schedules", api.schedules)
	ag.GET("/notifications", api.notifications)
}

// HomeChild is one row of the home dashboard.
type HomeChild struct {
	parent.Child
	TodayStatus string `json:"today_status,omitempty"`
}

// Handlers

func (api *agendaApi) home(ctx echo.Context) error {
	s, err := contextSession(ctx, api.parentSvc)
	if err != nil {
		return err
	}

	kids, err := api.parentSvc.Children(ctx.Request().Context(), s)
	if err != nil {
		return api.degrade(ctx, "children", err, []HomeChild{})
	}

	now := time.Now()
	rows := make([]HomeChild, 0, len(kids))
	for _, kid := range kids {
		row := HomeChild{Child: kid}
		if status, err := api.attSvc.TodayStatus(ctx.Request().Context(), kid.ID, now); err != nil {
			api.log.Warn("today status unavailable", err)
		} else {
			row.TodayStatus = status
		}
		rows = append(rows, row)
	}
	return ctx.JSON(http.StatusOK, ListResponse{Results: rows})
}

func (api *agendaApi) calendar(ctx echo.Context) error {
	s, err := contextSession(ctx, api.parentSvc)
	if err != nil {
		return err
	}

	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "must be a number"})
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be a number between 1 and 12"})
	}

	studentID, err := api.studentID(ctx, s)
	if err != nil {
		return err
	}
	if studentID == 0 {
		return ctx.JSON(http.StatusOK, ListResponse{
			Results: map[string]attendance.DayCell{},
			Detail:  "could not determine student",
		})
	}

	view, err := api.attSvc.MonthView(ctx.Request().Context(), studentID, year, time.Month(month), time.Now())
	if err != nil {
		return api.degrade(ctx, "attendance", err, map[string]attendance.DayCell{})
	}
	return ctx.JSON(http.StatusOK, ListResponse{Results: view})
}

func (api *agendaApi) events(ctx echo.Context) error {
	s, err := contextSession(ctx, api.parentSvc)
	if err != nil {
		return err
	}
	pctx, err := api.resolve(ctx, s)
	if err != nil {
		return err
	}

	events, err := api.svc.Events(ctx.Request().Context(), s.Token, pctx)
	if err != nil {
		return api.degrade(ctx, "events", err, []agenda.Event{})
	}
	return ctx.JSON(http.StatusOK, ListResponse{Results: events})
}

func (api *agendaApi) schedules(ctx echo.Context) error {
	s, err := contextSession(ctx, api.parentSvc)
	if err != nil {
		return err
	}
	pctx, err := api.resolve(ctx, s)
	if err != nil {
		return err
	}

	entries, err := api.svc.Schedules(ctx.Request().Context(), pctx)
	if err != nil {
		return api.degrade(ctx, "schedules", err, []agenda.ScheduleEntry{})
	}
	return ctx.JSON(http.StatusOK, ListResponse{Results: entries})
}

func (api *agendaApi) notifications(ctx echo.Context) error {
	s, err := contextSession(ctx, api.parentSvc)
	if err != nil {
		return err
	}
	pctx, err := api.resolve(ctx, s)
	if err != nil {
		return err
	}

	notifs, err := api.svc.Notifications(ctx.Request().Context(), pctx)
	if err != nil {
		return api.degrade(ctx, "notifications", err, []agenda.Notification{})
	}
	return ctx.JSON(http.StatusOK, ListResponse{Results: notifs})
}

// resolve locates the parent identity behind the session. Staff sessions are
// never scoped.
func (api *agendaApi) resolve(ctx echo.Context, s parent.Session) (*parent.Context, error) {
	if s.IsStaff() {
		return nil, nil
	}
	return api.parentSvc.ResolveContext(ctx.Request().Context(), s)
}

// studentID picks the student the caller asked about, defaulting to the
// session's first resolved child.
func (api *agendaApi) studentID(ctx echo.Context, s parent.Session) (int, error) {
	if raw := ctx.QueryParam("student"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return 0, core.NewValidationError(nil, core.FieldError{Field: "student", Error: "must be a positive number"})
		}
		return id, nil
	}

	pctx, err := api.resolve(ctx, s)
	if err != nil {
		return 0, err
	}
	if pctx != nil {
		for _, st := range pctx.Students {
			if st.ID != 0 {
				return st.ID, nil
			}
		}
	}

	kids, err := api.parentSvc.Children(ctx.Request().Context(), s)
	if err != nil || len(kids) == 0 {
		return 0, nil
	}
	return kids[0].ID, nil
}

// degrade maps upstream data failures to an empty payload with a status
// message; only transport exhaustion surfaces as an error response.
func (api *agendaApi) degrade(ctx echo.Context, what string, err error, empty interface{}) error {
	if errors.Cause(err) == parent.ErrUnavailable {
		return err
	}
	api.log.Warn("could not load "+what, err)
	return ctx.JSON(http.StatusOK, ListResponse{Results: empty, Detail: "could not load " + what})
}
