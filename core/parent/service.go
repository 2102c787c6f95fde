package parent

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
)

var (
	// errors
	ErrNotFound           = errors.New("parent not found")
	ErrLoginFailed        = errors.New("invalid username or password")
	ErrStaffTokenRequired = errors.New("a staff session is required for this action")
)

// Service ties the resolver, the backend directory and the local session
// store together for the API layer.
type Service struct {
	dir      Directory
	kv       core.KV
	log      core.Logger
	validate *validator.Validate
	resolver *Resolver
}

func NewService(dir Directory, kv core.KV, log core.Logger, validate *validator.Validate) *Service {
	return &Service{
		dir:      dir,
		kv:       kv,
		log:      log,
		validate: validate,
		resolver: NewResolver(dir, log),
	}
}

func (svc *Service) Session(ctx context.Context) (Session, error) {
	return LoadSession(ctx, svc.kv)
}

// ResolveContext locates the parent identity behind the session; see
// Resolver.Resolve for the tier semantics.
func (svc *Service) ResolveContext(ctx context.Context, s Session) (*Context, error) {
	return svc.resolver.Resolve(ctx, s)
}

// Login authenticates against the backend: the staff endpoint first, then
// the parent endpoint. The surviving session is persisted in the KV store.
func (svc *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = core.CleanString(username)
	if username == "" || password == "" {
		return Session{}, core.NewValidationError(errors.New("please enter your username and password"))
	}

	if token, err := svc.dir.StaffLogin(ctx, username, password); err == nil {
		s := Session{Username: username, Token: token}
		if err := SaveSession(ctx, svc.kv, s); err != nil {
			return Session{}, err
		}
		return s, nil
	}

	p, err := svc.dir.ParentLogin(ctx, username, password)
	if err != nil {
		svc.log.Warn("login failed", err)
		return Session{}, ErrLoginFailed
	}
	s := Session{Username: username, Parent: &p}
	if err := SaveSession(ctx, svc.kv, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (svc *Service) Logout(ctx context.Context) error {
	return ClearSession(ctx, svc.kv)
}

// PendingGuardians lists guardians still awaiting authorization, scoped to
// the session's student unless the session is staff.
func (svc *Service) PendingGuardians(ctx context.Context, s Session) ([]Guardian, error) {
	records, err := svc.dir.Guardians(ctx, s.Token)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing guardians")
	}

	var pctx *Context
	if !s.IsStaff() {
		if pctx, err = svc.resolver.Resolve(ctx, s); err != nil {
			return nil, err
		}
	}

	out := make([]Guardian, 0, len(records))
	for _, g := range records {
		if g.Status != StatusPending {
			continue
		}
		if s.IsStaff() || pctx.Matches("", g.Student, "", g.StudentName) {
			out = append(out, g)
		}
	}
	return out, nil
}

// AuthorizedGuardians lists guardian-role accounts already allowed to
// interact with the student. Staff sessions read the authoritative parent
// list (with the aggregate fallback); parent sessions read their own record,
// refreshed from the detail endpoint when reachable.
func (svc *Service) AuthorizedGuardians(ctx context.Context, s Session) ([]Guardian, error) {
	var records []Parent

	switch {
	case s.IsStaff():
		var err error
		if records, err = svc.dir.Parents(ctx, s.Token); err != nil {
			svc.log.Warn("parent list unavailable, trying aggregate fallback", err)
			teachers, aggErr := svc.dir.AllTeachersStudents(ctx, s.Token)
			if aggErr != nil {
				return nil, pkgerrors.Wrap(aggErr, "aggregate fallback")
			}
			records = Flatten(teachers)
		}
	case s.Parent != nil && s.Parent.ID != 0:
		detail, err := svc.dir.ParentDetail(ctx, s.Parent.ID)
		if err != nil {
			svc.log.Warn("parent detail unavailable, using cached snapshot", err)
			detail = *s.Parent
		}
		records = []Parent{detail}
	case s.Parent != nil:
		records = []Parent{*s.Parent}
	}

	out := make([]Guardian, 0, len(records))
	for _, p := range records {
		if p.Role != RoleGuardian {
			continue
		}
		out = append(out, GuardianFromParent(p))
	}
	return out, nil
}

// SetGuardianStatus transitions a guardian to allowed or declined. Requires
// a staff session; the precondition is checked before any request goes out
// and is never downgraded to an anonymous retry.
func (svc *Service) SetGuardianStatus(ctx context.Context, s Session, id, status string) error {
	if status != StatusAllowed && status != StatusDeclined {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "must be allowed or declined"})
	}
	if !s.IsStaff() {
		return ErrStaffTokenRequired
	}
	return pkgerrors.Wrap(svc.dir.UpdateGuardianStatus(ctx, s.Token, id, status), "updating guardian")
}

// DeleteGuardian hard-deletes a guardian record. Staff only, same
// precondition rules as SetGuardianStatus.
func (svc *Service) DeleteGuardian(ctx context.Context, s Session, id string) error {
	if !s.IsStaff() {
		return ErrStaffTokenRequired
	}
	return pkgerrors.Wrap(svc.dir.DeleteGuardian(ctx, s.Token, id), "deleting guardian")
}

// Child is one row of the home dashboard.
type Child struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	LRN          string `json:"lrn,omitempty"`
	TeacherName  string `json:"teacher_name,omitempty"`
	TeacherPhone string `json:"teacher_phone,omitempty"`
}

// Children returns the session parent's students with their teacher info.
func (svc *Service) Children(ctx context.Context, s Session) ([]Child, error) {
	parentID, err := svc.parentID(ctx, s)
	if err != nil {
		return nil, err
	}
	if parentID == 0 {
		return nil, nil
	}

	students, err := svc.dir.Students(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing students")
	}

	// teacher list failures degrade to whatever the student rows carry
	teachers, err := svc.dir.Teachers(ctx)
	if err != nil {
		svc.log.Warn("failed to load teachers", err)
		teachers = nil
	}
	teacherByStudent := make(map[int]Teacher)
	for _, t := range teachers {
		sid := t.Student.ID
		if sid == 0 {
			continue
		}
		if _, ok := teacherByStudent[sid]; !ok {
			teacherByStudent[sid] = t
		}
	}

	var kids []Child
	for _, st := range students {
		if !st.Parent.MatchesID(parentID) {
			continue
		}
		name := st.Name
		if name == "" {
			name = "Unknown"
		}
		kid := Child{
			ID:           st.ID,
			Name:         name,
			LRN:          st.LRN,
			TeacherName:  st.TeacherName,
			TeacherPhone: st.TeacherPhone,
		}
		if t, ok := teacherByStudent[st.ID]; ok {
			kid.TeacherName = t.Name
			kid.TeacherPhone = t.Phone
		}
		kids = append(kids, kid)
	}
	return kids, nil
}

// Profile returns the session parent's own record, preferring a fresh fetch
// over the cached snapshot.
func (svc *Service) Profile(ctx context.Context, s Session) (Parent, error) {
	if s.Username != "" {
		records, err := svc.dir.Parents(ctx, s.Token)
		if err == nil {
			if matched := matchByUsername(records, s.Username); len(matched) > 0 {
				return matched[0], nil
			}
		} else {
			svc.log.Warn("parent list unavailable for profile", err)
		}
	}
	if s.Parent != nil {
		return *s.Parent, nil
	}
	return Parent{}, ErrNotFound
}

// ChangePassword verifies the current password against the backend record
// and PATCHes the new one, then refreshes the cached snapshot.
func (svc *Service) ChangePassword(ctx context.Context, s Session, data ChangeCredentials) error {
	if err := data.Validate(svc.validate, s); err != nil {
		return err
	}

	p, err := svc.Profile(ctx, s)
	if err != nil {
		return err
	}
	if p.ID == 0 {
		return ErrNotFound
	}
	if p.Password != data.Current {
		return core.NewValidationError(nil, core.FieldError{Field: "current_password", Error: "current password is incorrect"})
	}

	updated, err := svc.dir.UpdateParent(ctx, s.Token, p.ID, map[string]interface{}{
		"password":                data.New,
		"must_change_credentials": false,
	})
	if err != nil {
		return pkgerrors.Wrap(err, "updating password")
	}

	if s.Parent != nil {
		s.Parent = &updated
		if err := SaveSession(ctx, svc.kv, s); err != nil {
			svc.log.Warn("failed to refresh cached snapshot", err)
		}
	}
	return nil
}

// parentID resolves the numeric parent id, falling back to a username match
// on the parent list when the resolved context has no id (e.g. a cached
// snapshot that predates the id field).
func (svc *Service) parentID(ctx context.Context, s Session) (int, error) {
	pctx, err := svc.resolver.Resolve(ctx, s)
	if err != nil {
		return 0, err
	}
	if pctx != nil && pctx.ParentID != 0 {
		return pctx.ParentID, nil
	}
	if s.Username == "" {
		return 0, nil
	}
	records, err := svc.dir.Parents(ctx, s.Token)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "listing parents")
	}
	if matched := matchByUsername(records, s.Username); len(matched) > 0 {
		return matched[0].ID, nil
	}
	return 0, nil
}
