package attendance

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
)

// Source is the school-backend collaborator consumed by this package.
// Implementations live in services/backend.
type Source interface {
	// Records lists a student's attendance records, unbounded by date.
	Records(ctx context.Context, studentID int) ([]Record, error)
}

// Service fetches a student's records and derives calendar views from them.
type Service struct {
	src Source
	cal Calendar
}

func NewService(src Source, conf *core.Config) *Service {
	return &Service{src: src, cal: NewCalendar(conf)}
}

// MonthView returns the render-ready day-cell map for one month.
func (svc *Service) MonthView(ctx context.Context, studentID, year int, month time.Month, now time.Time) (map[string]DayCell, error) {
	records, err := svc.src.Records(ctx, studentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing attendance")
	}
	return svc.cal.MonthView(records, year, month, now), nil
}

// TodayStatus classifies the student's current day.
func (svc *Service) TodayStatus(ctx context.Context, studentID int, now time.Time) (string, error) {
	// weekends need no network round-trip
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return StatusWeekend, nil
	}
	records, err := svc.src.Records(ctx, studentID)
	if err != nil {
		return "", pkgerrors.Wrap(err, "listing attendance")
	}
	return svc.cal.TodayStatus(records, now), nil
}
