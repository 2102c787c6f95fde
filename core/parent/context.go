package parent

import (
	"github.com/JCBT04/Capstone/core"
)

// StudentRef is the slice of student identity a resolved context carries.
type StudentRef struct {
	ID   int    `json:"id,omitempty"`
	LRN  string `json:"lrn,omitempty"`
	Name string `json:"name,omitempty"`
}

// Context is the resolved parent identity all scoped derivations hang off.
// One parent identity maps to all of its matching student records; consumers
// that only care about one child take the first.
type Context struct {
	ParentID int          `json:"parent_id,omitempty"`
	Username string       `json:"username,omitempty"`
	Students []StudentRef `json:"students,omitempty"`
}

// LRN returns the first student's LRN, if any.
func (c *Context) LRN() string {
	if c == nil || len(c.Students) == 0 {
		return ""
	}
	return c.Students[0].LRN
}

// StudentName returns the first student's name, if any.
func (c *Context) StudentName() string {
	if c == nil || len(c.Students) == 0 {
		return ""
	}
	return c.Students[0].Name
}

func (c *Context) hasStudentScope() bool {
	if c == nil {
		return false
	}
	for _, s := range c.Students {
		if s.LRN != "" || s.Name != "" {
			return true
		}
	}
	return false
}

// Matches decides whether a record belongs to this parent. A record matches
// on username (case-insensitive), or on any of the context's students by LRN
// or by trimmed case-insensitive name. A context with no parent id and no
// student identity filters nothing: when identity is ambiguous we show
// everything rather than hide data. A nil context never filters.
func (c *Context) Matches(username string, student core.Ref, studentLRN, studentName string) bool {
	if c == nil {
		return true
	}
	if c.ParentID == 0 && c.Username == "" && !c.hasStudentScope() {
		return true
	}

	if c.Username != "" && username != "" &&
		core.CleanString(username, true) == core.CleanString(c.Username, true) {
		return true
	}

	lrn := core.CleanString(studentLRN, true)
	if lrn == "" {
		lrn = core.CleanString(student.LRNCandidate(), true)
	}
	name := core.CleanString(studentName, true)
	if name == "" {
		name = core.CleanString(student.NameCandidate(), true)
	}

	for _, s := range c.Students {
		if s.LRN != "" && lrn != "" && core.CleanString(s.LRN, true) == lrn {
			return true
		}
		if s.Name != "" && name != "" && core.CleanString(s.Name, true) == name {
			return true
		}
		if s.ID != 0 && student.MatchesID(s.ID) {
			return true
		}
	}
	return false
}

// MatchesParentRef is the parent-keyed variant used by records that point at
// the parent rather than the student (events, notifications).
func (c *Context) MatchesParentRef(ref core.Ref) bool {
	if c == nil || c.ParentID == 0 {
		return false
	}
	return ref.MatchesID(c.ParentID)
}

// contextFromRecords builds a context from every parent record that matched
// during resolution, merging their student references.
func contextFromRecords(username string, records []Parent) *Context {
	if len(records) == 0 {
		return nil
	}
	ctx := &Context{Username: username}
	seen := make(map[StudentRef]bool)
	for _, p := range records {
		if ctx.ParentID == 0 {
			ctx.ParentID = p.ID
		}
		if ctx.Username == "" {
			ctx.Username = p.Username
		}
		ref := StudentRef{ID: p.Student.ID, LRN: p.StudentLRN, Name: p.StudentName}
		if (ref == StudentRef{}) || seen[ref] {
			continue
		}
		seen[ref] = true
		ctx.Students = append(ctx.Students, ref)
	}
	return ctx
}
