package agenda

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/JCBT04/Capstone/core"
)

// Event is a school event, render-ready: normalized fields plus the derived
// icon and color.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Parent      core.Ref `json:"-"`
	Student     core.Ref `json:"-"`

	rawTitle string
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID          core.FlexString `json:"id"`
		Title       string          `json:"title"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Icon        string          `json:"icon"`
		Parent      core.Ref        `json:"parent"`
		Student     core.Ref        `json:"student"`
		// the date field has been renamed twice
		Date        core.FlexString `json:"date"`
		StartDate   core.FlexString `json:"start_date"`
		ScheduledAt core.FlexString `json:"scheduled_at"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	e.ID = core.CleanString(string(wire.ID))
	e.rawTitle = core.CleanString(wire.Title)
	e.Title = e.rawTitle
	if e.Title == "" {
		e.Title = core.CleanString(wire.Name)
	}
	if e.Title == "" {
		e.Title = "Event"
	}
	e.Date = firstNonEmpty(string(wire.Date), string(wire.StartDate), string(wire.ScheduledAt))
	e.Description = core.CleanString(wire.Description)
	e.Icon = core.CleanString(wire.Icon)
	if e.Icon == "" {
		e.Icon = "calendar"
	}
	e.Parent = wire.Parent
	e.Student = wire.Student
	return nil
}

// ScheduleEntry is one class-schedule row.
type ScheduleEntry struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	Time    string   `json:"time"`
	Room    string   `json:"room"`
	Icon    string   `json:"icon"`
	Color   string   `json:"color"`
	Student core.Ref `json:"-"`

	rawSubject string
}

func (s *ScheduleEntry) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID      core.FlexString `json:"id"`
		Subject string          `json:"subject"`
		Title   string          `json:"title"`
		Time    core.FlexString `json:"time"`
		Room    core.FlexString `json:"room"`
		Icon    string          `json:"icon"`
		Student core.Ref        `json:"student"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.ID = core.CleanString(string(wire.ID))
	s.rawSubject = core.CleanString(wire.Subject)
	s.Subject = s.rawSubject
	if s.Subject == "" {
		s.Subject = core.CleanString(wire.Title)
	}
	if s.Subject == "" {
		s.Subject = "Subject"
	}
	s.Time = core.CleanString(string(wire.Time))
	s.Room = core.CleanString(string(wire.Room))
	s.Icon = core.CleanString(wire.Icon)
	if s.Icon == "" {
		s.Icon = "book-outline"
	}
	s.Student = wire.Student
	return nil
}

// Notification types and their display labels.
var typeLabels = map[string]string{
	"attendance": "Attendance",
	"pickup":     "Pickup",
	"event":      "Event",
	"other":      "Other",
}

// Notification is one notification row. Icon, label and color are derived
// here; a persisted color on the record is deliberately ignored.
type Notification struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	TypeLabel string   `json:"type_label"`
	Message   string   `json:"message"`
	Time      string   `json:"time"`
	Icon      string   `json:"icon"`
	Color     string   `json:"color"`
	Parent    core.Ref `json:"-"`
}

func (n *Notification) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID        core.FlexString `json:"id"`
		Type      string          `json:"type"`
		Message   string          `json:"message"`
		CreatedAt string          `json:"created_at"`
		Parent    core.Ref        `json:"parent"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	n.ID = core.CleanString(string(wire.ID))
	n.Type = core.CleanString(wire.Type, true /* lower */)
	n.TypeLabel = labelForType(n.Type)
	n.Message = core.CleanString(wire.Message)
	n.Time = formatCreatedAt(wire.CreatedAt)
	n.Icon = iconForType(n.Type)
	n.Parent = wire.Parent
	return nil
}

func labelForType(typ string) string {
	if label, ok := typeLabels[typ]; ok {
		return label
	}
	if typ == "" {
		return "Other"
	}
	return strings.ToUpper(typ[:1]) + typ[1:]
}

func iconForType(typ string) string {
	switch typ {
	case "attendance":
		return "alert-circle-outline"
	case "pickup":
		return "person-circle-outline"
	default:
		return "calendar-outline"
	}
}

func formatCreatedAt(raw string) string {
	raw = core.CleanString(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006 3:04 PM")
		}
	}
	return raw
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := core.CleanString(v); s != "" {
			return s
		}
	}
	return ""
}

// EventQuery narrows the upstream event listing; zero values mean unfiltered.
type EventQuery struct {
	ParentID int
	LRN      string
}

// Source is the school-backend collaborator consumed by this package.
// Implementations live in services/backend.
type Source interface {
	Events(ctx context.Context, token string, q EventQuery) ([]Event, error)
	Schedules(ctx context.Context) ([]ScheduleEntry, error)
	// Notifications lists notifications, optionally narrowed to a parent id
	// upstream; 0 means unfiltered.
	Notifications(ctx context.Context, parentID int) ([]Notification, error)
}
