package parent

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/JCBT04/Capstone/core"
)

// Guardian authorization statuses.
const (
	StatusPending  = "pending"
	StatusAllowed  = "allowed"
	StatusDeclined = "declined"
)

const RoleGuardian = "guardian"

// Parent is the canonical parent/guardian account record. The backend has
// served this concept under at least three shapes (flat fields, embedded
// student object, bare student scalar); UnmarshalJSON folds them all into
// this one.
type Parent struct {
	ID          int
	Username    string
	Name        string
	Role        string
	Password    string // the backend stores it in the clear; needed for the change-credentials flow
	Contact     string
	Student     core.Ref
	StudentLRN  string
	StudentName string

	MustChangeCredentials bool
}

func (p *Parent) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID                    core.FlexInt    `json:"id"`
		Username              string          `json:"username"`
		Name                  string          `json:"name"`
		Role                  string          `json:"role"`
		Password              string          `json:"password"`
		Contact               string          `json:"contact_number"`
		Student               core.Ref        `json:"student"`
		StudentLRN            core.FlexString `json:"student_lrn"`
		StudentName           string          `json:"student_name"`
		MustChangeCredentials bool            `json:"must_change_credentials"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	p.ID = int(wire.ID)
	p.Username = core.CleanString(wire.Username)
	p.Name = core.CleanString(wire.Name)
	p.Role = core.CleanString(wire.Role, true /* lower */)
	p.Password = wire.Password
	p.Contact = core.CleanString(wire.Contact)
	p.Student = wire.Student

	// flattened fields win over the embedded object, the bare scalar comes last
	p.StudentLRN = core.CleanString(string(wire.StudentLRN))
	if p.StudentLRN == "" {
		p.StudentLRN = wire.Student.LRNCandidate()
	}
	p.StudentName = core.CleanString(wire.StudentName)
	if p.StudentName == "" {
		p.StudentName = wire.Student.NameCandidate()
	}
	p.MustChangeCredentials = wire.MustChangeCredentials
	return nil
}

// HasIdentity reports whether the record carries enough to identify a parent
// without a fresh lookup: an id, or some student reference.
func (p Parent) HasIdentity() bool {
	return p.ID != 0 || p.StudentLRN != "" || p.StudentName != ""
}

// Student is a canonical student record from the student list endpoint.
type Student struct {
	ID           int
	LRN          string
	Name         string
	Parent       core.Ref
	TeacherName  string
	TeacherPhone string
}

func (s *Student) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID           core.FlexInt    `json:"id"`
		LRN          core.FlexString `json:"lrn"`
		Name         string          `json:"name"`
		Parent       core.Ref        `json:"parent"`
		TeacherName  string          `json:"teacher_name"`
		TeacherPhone core.FlexString `json:"teacher_phone"`
		// older revisions
		Teacher           string          `json:"teacher"`
		TeacherPhoneOld   core.FlexString `json:"teacher_phone_number"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.ID = int(wire.ID)
	s.LRN = core.CleanString(string(wire.LRN))
	s.Name = core.CleanString(wire.Name)
	s.Parent = wire.Parent
	s.TeacherName = core.CleanString(wire.TeacherName)
	if s.TeacherName == "" {
		s.TeacherName = core.CleanString(wire.Teacher)
	}
	s.TeacherPhone = core.CleanString(string(wire.TeacherPhone))
	if s.TeacherPhone == "" {
		s.TeacherPhone = core.CleanString(string(wire.TeacherPhoneOld))
	}
	return nil
}

// Teacher is one row of the per-student teacher list.
type Teacher struct {
	ID      int
	Name    string
	Phone   string
	Student core.Ref
}

func (t *Teacher) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID      core.FlexInt    `json:"id"`
		Name    string          `json:"name"`
		Phone   core.FlexString `json:"phone"`
		Student core.Ref        `json:"student"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	t.ID = int(wire.ID)
	t.Name = core.CleanString(wire.Name)
	t.Phone = core.CleanString(string(wire.Phone))
	t.Student = wire.Student
	return nil
}

// TeacherClass is one teacher of the aggregate teachers->students->guardians
// endpoint, the denormalized fallback used when the parent list is down.
type TeacherClass struct {
	ID       int
	Name     string
	Students []ClassStudent
}

type ClassStudent struct {
	ID               int
	LRN              string
	Name             string
	ParentsGuardians []Parent
}

func (t *TeacherClass) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID       core.FlexInt   `json:"id"`
		Name     string         `json:"name"`
		Students []ClassStudent `json:"students"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	t.ID = int(wire.ID)
	t.Name = core.CleanString(wire.Name)
	t.Students = wire.Students
	return nil
}

func (s *ClassStudent) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID               core.FlexInt    `json:"id"`
		LRN              core.FlexString `json:"lrn"`
		Name             string          `json:"name"`
		ParentsGuardians []Parent        `json:"parents_guardians"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.ID = int(wire.ID)
	s.LRN = core.CleanString(string(wire.LRN))
	s.Name = core.CleanString(wire.Name)
	s.ParentsGuardians = wire.ParentsGuardians
	return nil
}

// Flatten denormalizes the aggregate payload into plain parent records,
// stamping each with its enclosing student's identity when the record itself
// does not carry one.
func Flatten(teachers []TeacherClass) []Parent {
	var out []Parent
	for _, t := range teachers {
		for _, s := range t.Students {
			for _, p := range s.ParentsGuardians {
				if p.StudentLRN == "" {
					p.StudentLRN = s.LRN
				}
				if p.StudentName == "" {
					p.StudentName = s.Name
				}
				out = append(out, p)
			}
		}
	}
	return out
}

// Guardian is a canonical guardian record: someone other than the primary
// parent account pending or holding authorization to interact with a
// student. Sourced either from the guardian endpoint or from guardian-role
// parent records.
type Guardian struct {
	ID           string // backend id when present, else a generated fallback
	Name         string
	Relationship string
	Student      core.Ref
	StudentName  string
	Contact      string
	Status       string // pending | allowed | declined
	PhotoURL     string
}

func (g *Guardian) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID           core.FlexString `json:"id"`
		Name         string          `json:"name"`
		Relationship string          `json:"relationship"`
		Relation     string          `json:"relation"`
		Student      core.Ref        `json:"student"`
		StudentName  string          `json:"student_name"`
		Contact      core.FlexString `json:"contact"`
		Status       string          `json:"status"`
		Authorized   bool            `json:"authorized"`
		Photo        string          `json:"photo"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	g.ID = core.CleanString(string(wire.ID))
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	g.Name = core.CleanString(wire.Name)
	g.Relationship = core.CleanString(wire.Relationship)
	if g.Relationship == "" {
		g.Relationship = core.CleanString(wire.Relation)
	}
	g.Student = wire.Student
	g.StudentName = core.CleanString(wire.StudentName)
	if g.StudentName == "" {
		g.StudentName = wire.Student.NameCandidate()
	}
	g.Contact = core.CleanString(string(wire.Contact))
	g.PhotoURL = core.CleanString(wire.Photo)

	// older records only had an `authorized` flag
	g.Status = core.CleanString(wire.Status, true /* lower */)
	if g.Status == "" {
		if wire.Authorized {
			g.Status = StatusAllowed
		} else {
			g.Status = StatusPending
		}
	}
	return nil
}

// GuardianFromParent adapts a guardian-role parent record to the guardian
// display shape used by the authorized list.
func GuardianFromParent(p Parent) Guardian {
	id := ""
	if p.ID != 0 {
		id = strconv.Itoa(p.ID)
	} else if p.Username != "" {
		id = p.Username
	} else {
		id = uuid.New().String()
	}
	name := p.Name
	if name == "" {
		name = "Unnamed Guardian"
	}
	rel := p.Role
	if rel == "" {
		rel = "Guardian"
	}
	return Guardian{
		ID:           id,
		Name:         name,
		Relationship: rel,
		Student:      p.Student,
		StudentName:  p.StudentName,
		Contact:      p.Contact,
		Status:       StatusAllowed,
	}
}

// Directory is the school-backend collaborator consumed by this package.
// Implementations live in services/backend.
type Directory interface {
	// Parents lists parent/guardian accounts; token may be empty for the
	// legacy unauthenticated list.
	Parents(ctx context.Context, token string) ([]Parent, error)
	// PublicParents queries the public lookup endpoint, optionally filtered
	// by lrn.
	PublicParents(ctx context.Context, lrn string) ([]Parent, error)
	// ParentDetail fetches a single parent record by id.
	ParentDetail(ctx context.Context, id int) (Parent, error)
	// AllTeachersStudents fetches the denormalized aggregate used as the
	// authenticated fallback.
	AllTeachersStudents(ctx context.Context, token string) ([]TeacherClass, error)
	Students(ctx context.Context) ([]Student, error)
	Teachers(ctx context.Context) ([]Teacher, error)
	Guardians(ctx context.Context, token string) ([]Guardian, error)
	UpdateGuardianStatus(ctx context.Context, token, id, status string) error
	DeleteGuardian(ctx context.Context, token, id string) error
	UpdateParent(ctx context.Context, token string, id int, fields map[string]interface{}) (Parent, error)
	StaffLogin(ctx context.Context, username, password string) (token string, err error)
	ParentLogin(ctx context.Context, username, password string) (Parent, error)
}
