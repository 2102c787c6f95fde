// Package dummybackend serves canned school data for DEV runs and API tests,
// so the app works without the remote backend.
package dummybackend

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/agenda"
	"github.com/JCBT04/Capstone/core/attendance"
	"github.com/JCBT04/Capstone/core/parent"
)

var errInvalidCredentials = errors.New("invalid credentials")

// Service holds a small fixed school in memory. Mutations apply to the
// in-memory state so list-refresh flows behave like the real thing.
type Service struct {
	mu sync.Mutex

	StaffToken          string
	ParentList          []parent.Parent
	StudentList         []parent.Student
	TeacherList         []parent.Teacher
	GuardianList        []parent.Guardian
	EventList           []agenda.Event
	ScheduleList        []agenda.ScheduleEntry
	NotifList           []agenda.Notification
	AttendanceByStudent map[int][]attendance.Record
}

var (
	_ parent.Directory  = (*Service)(nil)
	_ agenda.Source     = (*Service)(nil)
	_ attendance.Source = (*Service)(nil)
)

// NewService returns a Service seeded with one teacher, one parent account
// (jdoe / parent) and a pending guardian.
func NewService() *Service {
	return &Service{
		StaffToken: "dev-staff-token",
		ParentList: []parent.Parent{
			{ID: 2, Username: "jdoe", Name: "J. Doe", Role: "parent", Password: "parent",
				Student: core.Ref{ID: 10}, StudentLRN: "12345", StudentName: "Jane Doe", Contact: "0917"},
			{ID: 4, Username: "gran", Name: "Grandma", Role: parent.RoleGuardian, Password: "guardian",
				Student: core.Ref{ID: 10}, StudentLRN: "12345", StudentName: "Jane Doe"},
		},
		StudentList: []parent.Student{
			{ID: 10, LRN: "12345", Name: "Jane Doe", Parent: core.Ref{ID: 2}},
		},
		TeacherList: []parent.Teacher{
			{ID: 1, Name: "Ms. Cruz", Phone: "0917", Student: core.Ref{ID: 10}},
		},
		GuardianList: []parent.Guardian{
			{ID: "g1", Name: "Uncle Bob", Relationship: "Uncle", StudentName: "Jane Doe", Status: parent.StatusPending},
		},
		EventList: []agenda.Event{
			{ID: "1", Title: "Field Trip", Date: "2025-09-20", Icon: "calendar", Parent: core.Ref{ID: 2}},
		},
		ScheduleList: []agenda.ScheduleEntry{
			{ID: "1", Subject: "Math", Time: "08:00", Room: "101", Icon: "book-outline", Student: core.Ref{ID: 10}},
		},
		NotifList: []agenda.Notification{
			{ID: "1", Type: "attendance", TypeLabel: "Attendance", Message: "Jane was marked present",
				Icon: "alert-circle-outline", Parent: core.Ref{ID: 2}},
		},
		AttendanceByStudent: map[int][]attendance.Record{
			10: {{ID: 1, Student: core.Ref{ID: 10}, Date: "2025-09-22", Status: attendance.StatusPresent}},
		},
	}
}

func (svc *Service) StaffLogin(_ context.Context, username, password string) (string, error) {
	if username == "teacher" && password == "teacher" {
		return svc.StaffToken, nil
	}
	return "", errInvalidCredentials
}

func (svc *Service) ParentLogin(_ context.Context, username, password string) (parent.Parent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, p := range svc.ParentList {
		if p.Username == username && p.Password == password {
			return p, nil
		}
	}
	return parent.Parent{}, errInvalidCredentials
}

func (svc *Service) Parents(_ context.Context, _ string) ([]parent.Parent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]parent.Parent(nil), svc.ParentList...), nil
}

func (svc *Service) PublicParents(_ context.Context, lrn string) ([]parent.Parent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	var out []parent.Parent
	for _, p := range svc.ParentList {
		if lrn == "" || p.StudentLRN == lrn {
			out = append(out, p)
		}
	}
	return out, nil
}

func (svc *Service) ParentDetail(_ context.Context, id int) (parent.Parent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, p := range svc.ParentList {
		if p.ID == id {
			return p, nil
		}
	}
	return parent.Parent{}, parent.ErrNotFound
}

func (svc *Service) AllTeachersStudents(_ context.Context, _ string) ([]parent.TeacherClass, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	classes := make([]parent.TeacherClass, 0, len(svc.TeacherList))
	for _, t := range svc.TeacherList {
		class := parent.TeacherClass{ID: t.ID, Name: t.Name}
		for _, s := range svc.StudentList {
			if !t.Student.MatchesID(s.ID) {
				continue
			}
			cs := parent.ClassStudent{ID: s.ID, LRN: s.LRN, Name: s.Name}
			for _, p := range svc.ParentList {
				if p.Student.MatchesID(s.ID) {
					cs.ParentsGuardians = append(cs.ParentsGuardians, p)
				}
			}
			class.Students = append(class.Students, cs)
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func (svc *Service) Students(_ context.Context) ([]parent.Student, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]parent.Student(nil), svc.StudentList...), nil
}

func (svc *Service) Teachers(_ context.Context) ([]parent.Teacher, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]parent.Teacher(nil), svc.TeacherList...), nil
}

func (svc *Service) Guardians(_ context.Context, _ string) ([]parent.Guardian, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]parent.Guardian(nil), svc.GuardianList...), nil
}

func (svc *Service) UpdateGuardianStatus(_ context.Context, _, id, status string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for i := range svc.GuardianList {
		if svc.GuardianList[i].ID == id {
			svc.GuardianList[i].Status = status
			return nil
		}
	}
	return parent.ErrNotFound
}

func (svc *Service) DeleteGuardian(_ context.Context, _, id string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for i := range svc.GuardianList {
		if svc.GuardianList[i].ID == id {
			svc.GuardianList = append(svc.GuardianList[:i], svc.GuardianList[i+1:]...)
			return nil
		}
	}
	return parent.ErrNotFound
}

func (svc *Service) UpdateParent(_ context.Context, _ string, id int, fields map[string]interface{}) (parent.Parent, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for i := range svc.ParentList {
		if svc.ParentList[i].ID != id {
			continue
		}
		if pwd, ok := fields["password"].(string); ok {
			svc.ParentList[i].Password = pwd
		}
		if mcc, ok := fields["must_change_credentials"].(bool); ok {
			svc.ParentList[i].MustChangeCredentials = mcc
		}
		return svc.ParentList[i], nil
	}
	return parent.Parent{}, parent.ErrNotFound
}

func (svc *Service) Events(_ context.Context, _ string, q agenda.EventQuery) ([]agenda.Event, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	var out []agenda.Event
	for _, e := range svc.EventList {
		if q.ParentID != 0 && !e.Parent.IsZero() && !e.Parent.MatchesID(q.ParentID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (svc *Service) Schedules(_ context.Context) ([]agenda.ScheduleEntry, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]agenda.ScheduleEntry(nil), svc.ScheduleList...), nil
}

func (svc *Service) Notifications(_ context.Context, parentID int) ([]agenda.Notification, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	var out []agenda.Notification
	for _, n := range svc.NotifList {
		if parentID != 0 && !n.Parent.IsZero() && !n.Parent.MatchesID(parentID) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (svc *Service) Records(_ context.Context, studentID int) ([]attendance.Record, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]attendance.Record(nil), svc.AttendanceByStudent[studentID]...), nil
}
