package attendance

import (
	"encoding/json"

	"github.com/JCBT04/Capstone/core"
)

// Day statuses as reported by (or defaulted from) the backend.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusWeekend = "weekend" // derived, never stored
)

// Record is one attendance entry for a student on a date. Read-only here;
// records are created by teachers on the backend.
type Record struct {
	ID      int
	Student core.Ref
	Date    string // YYYY-MM-DD
	Status  string // present, absent, or free text
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID      core.FlexInt `json:"id"`
		Date    string       `json:"date"`
		Status  string       `json:"status"`
		Student core.Ref     `json:"student"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	r.ID = int(wire.ID)
	r.Date = core.CleanString(wire.Date)
	r.Status = core.CleanString(wire.Status, true /* lower */)
	r.Student = wire.Student
	return nil
}

// TextStyle is the text half of a DayCell.
type TextStyle struct {
	Color string `json:"color"`
	Bold  bool   `json:"bold"`
}

// DayCell is the presentation tuple the calendar renders for one day.
// Ephemeral: rebuilt wholesale on every month navigation.
type DayCell struct {
	FillColor string    `json:"fill_color"`
	TextStyle TextStyle `json:"text_style"`
}

var (
	presentCell = DayCell{FillColor: "green", TextStyle: TextStyle{Color: "white", Bold: true}}
	absentCell  = DayCell{FillColor: "red", TextStyle: TextStyle{Color: "white", Bold: true}}
	otherCell   = DayCell{FillColor: "orange", TextStyle: TextStyle{Color: "white", Bold: true}}
)

// CellFor maps a record status to its cell. Empty status means the teacher
// marked the day without detail: treated as present.
func CellFor(status string) DayCell {
	switch status {
	case StatusPresent, "":
		return presentCell
	case StatusAbsent:
		return absentCell
	default:
		return otherCell
	}
}
