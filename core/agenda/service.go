package agenda

import (
	"context"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/colors"
	"github.com/JCBT04/Capstone/core/parent"
)

// Service derives the render-ready agenda lists: fetch, scope to the resolved
// parent context, decorate with deterministic colors.
type Service struct {
	src         Source
	log         core.Logger
	picker      colors.Picker
	notifPicker colors.Picker
}

func NewService(src Source, log core.Logger) *Service {
	return &Service{
		src:         src,
		log:         log,
		picker:      colors.NewPicker(colors.DefaultPalette),
		notifPicker: colors.NewPicker(colors.NotifPalette),
	}
}

// Events lists events scoped to pctx: a record stays when it points at the
// parent or at one of the context's students. A nil context means unscoped.
func (svc *Service) Events(ctx context.Context, token string, pctx *parent.Context) ([]Event, error) {
	q := EventQuery{}
	if pctx != nil {
		q.ParentID = pctx.ParentID
		q.LRN = pctx.LRN()
	}
	events, err := svc.src.Events(ctx, token, q)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing events")
	}

	out := make([]Event, 0, len(events))
	for _, e := range events {
		if pctx.MatchesParentRef(e.Parent) || pctx.Matches("", e.Student, "", "") {
			out = append(out, e)
		}
	}

	for i := range out {
		e := &out[i]
		// the color key prefers the raw backend fields so a record keeps its
		// color even when display fallbacks kick in
		var key interface{}
		switch {
		case e.ID != "":
			key = e.ID
		case e.rawTitle != "":
			key = e.rawTitle
		default:
			key = i
		}
		e.Color = svc.picker.Pick(colors.DomainEvent, key)
		if e.ID == "" {
			e.ID = strconv.Itoa(i + 1)
		}
	}
	return out, nil
}

// Schedules lists schedule rows, narrowed to the context's students when
// their numeric ids are known; without ids there is nothing safe to filter
// on, so the full list comes back.
func (svc *Service) Schedules(ctx context.Context, pctx *parent.Context) ([]ScheduleEntry, error) {
	entries, err := svc.src.Schedules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing schedules")
	}

	var ids []int
	if pctx != nil {
		for _, s := range pctx.Students {
			if s.ID != 0 {
				ids = append(ids, s.ID)
			}
		}
	}
	if len(ids) > 0 {
		filtered := entries[:0]
		for _, entry := range entries {
			for _, id := range ids {
				if entry.Student.MatchesID(id) {
					filtered = append(filtered, entry)
					break
				}
			}
		}
		entries = filtered
	}

	for i := range entries {
		entry := &entries[i]
		var key interface{}
		switch {
		case entry.ID != "":
			key = entry.ID
		case entry.rawSubject != "":
			key = entry.rawSubject
		default:
			key = entry.Time
		}
		entry.Color = svc.picker.Pick(colors.DomainSchedule, key)
	}
	return entries, nil
}

// Notifications lists notifications for the context's parent; without a
// numeric parent id the list is unscoped.
func (svc *Service) Notifications(ctx context.Context, pctx *parent.Context) ([]Notification, error) {
	var parentID int
	if pctx != nil {
		parentID = pctx.ParentID
	}
	notifs, err := svc.src.Notifications(ctx, parentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing notifications")
	}

	out := make([]Notification, 0, len(notifs))
	for _, n := range notifs {
		if parentID != 0 && !n.Parent.IsZero() && !pctx.MatchesParentRef(n.Parent) {
			continue
		}
		var key interface{} = n.ID
		if n.ID == "" {
			key = n.Type
		}
		n.Color = svc.notifPicker.Pick(colors.DomainNotif, key)
		out = append(out, n)
	}
	return out, nil
}
