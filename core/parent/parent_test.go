package parent

import (
	"context"
	"errors"

	"github.com/JCBT04/Capstone/core"
)

// fakeDirectory implements Directory with per-call hooks; unset calls fail
// loudly and every call is recorded so tests can assert on network usage.
type fakeDirectory struct {
	parentsFn        func(ctx context.Context, token string) ([]Parent, error)
	publicParentsFn  func(ctx context.Context, lrn string) ([]Parent, error)
	parentDetailFn   func(ctx context.Context, id int) (Parent, error)
	allTeachersFn    func(ctx context.Context, token string) ([]TeacherClass, error)
	studentsFn       func(ctx context.Context) ([]Student, error)
	teachersFn       func(ctx context.Context) ([]Teacher, error)
	guardiansFn      func(ctx context.Context, token string) ([]Guardian, error)
	updateGuardianFn func(ctx context.Context, token, id, status string) error
	deleteGuardianFn func(ctx context.Context, token, id string) error
	updateParentFn   func(ctx context.Context, token string, id int, fields map[string]interface{}) (Parent, error)
	staffLoginFn     func(ctx context.Context, username, password string) (string, error)
	parentLoginFn    func(ctx context.Context, username, password string) (Parent, error)

	calls []string
}

var errUnexpectedCall = errors.New("unexpected backend call")

func (d *fakeDirectory) record(name string) { d.calls = append(d.calls, name) }

func (d *fakeDirectory) Parents(ctx context.Context, token string) ([]Parent, error) {
	d.record("Parents")
	if d.parentsFn == nil {
		return nil, errUnexpectedCall
	}
	return d.parentsFn(ctx, token)
}

func (d *fakeDirectory) PublicParents(ctx context.Context, lrn string) ([]Parent, error) {
	d.record("PublicParents")
	if d.publicParentsFn == nil {
		return nil, errUnexpectedCall
	}
	return d.publicParentsFn(ctx, lrn)
}

func (d *fakeDirectory) ParentDetail(ctx context.Context, id int) (Parent, error) {
	d.record("ParentDetail")
	if d.parentDetailFn == nil {
		return Parent{}, errUnexpectedCall
	}
	return d.parentDetailFn(ctx, id)
}

func (d *fakeDirectory) AllTeachersStudents(ctx context.Context, token string) ([]TeacherClass, error) {
	d.record("AllTeachersStudents")
	if d.allTeachersFn == nil {
		return nil, errUnexpectedCall
	}
	return d.allTeachersFn(ctx, token)
}

func (d *fakeDirectory) Students(ctx context.Context) ([]Student, error) {
	d.record("Students")
	if d.studentsFn == nil {
		return nil, errUnexpectedCall
	}
	return d.studentsFn(ctx)
}

func (d *fakeDirectory) Teachers(ctx context.Context) ([]Teacher, error) {
	d.record("Teachers")
	if d.teachersFn == nil {
		return nil, errUnexpectedCall
	}
	return d.teachersFn(ctx)
}

func (d *fakeDirectory) Guardians(ctx context.Context, token string) ([]Guardian, error) {
	d.record("Guardians")
	if d.guardiansFn == nil {
		return nil, errUnexpectedCall
	}
	return d.guardiansFn(ctx, token)
}

func (d *fakeDirectory) UpdateGuardianStatus(ctx context.Context, token, id, status string) error {
	d.record("UpdateGuardianStatus")
	if d.updateGuardianFn == nil {
		return errUnexpectedCall
	}
	return d.updateGuardianFn(ctx, token, id, status)
}

func (d *fakeDirectory) DeleteGuardian(ctx context.Context, token, id string) error {
	d.record("DeleteGuardian")
	if d.deleteGuardianFn == nil {
		return errUnexpectedCall
	}
	return d.deleteGuardianFn(ctx, token, id)
}

func (d *fakeDirectory) UpdateParent(ctx context.Context, token string, id int, fields map[string]interface{}) (Parent, error) {
	d.record("UpdateParent")
	if d.updateParentFn == nil {
		return Parent{}, errUnexpectedCall
	}
	return d.updateParentFn(ctx, token, id, fields)
}

func (d *fakeDirectory) StaffLogin(ctx context.Context, username, password string) (string, error) {
	d.record("StaffLogin")
	if d.staffLoginFn == nil {
		return "", errUnexpectedCall
	}
	return d.staffLoginFn(ctx, username, password)
}

func (d *fakeDirectory) ParentLogin(ctx context.Context, username, password string) (Parent, error) {
	d.record("ParentLogin")
	if d.parentLoginFn == nil {
		return Parent{}, errUnexpectedCall
	}
	return d.parentLoginFn(ctx, username, password)
}

// memKV is an in-memory core.KV for tests.
type memKV struct {
	m map[string]string
}

func newMemKV() *memKV { return &memKV{m: make(map[string]string)} }

func (kv *memKV) GetItem(_ context.Context, key string) (string, error) {
	v, ok := kv.m[key]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	return v, nil
}

func (kv *memKV) SetItem(_ context.Context, key, value string) error {
	kv.m[key] = value
	return nil
}

func (kv *memKV) RemoveItem(_ context.Context, key string) error {
	delete(kv.m, key)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
