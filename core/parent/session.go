package parent

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
)

// Session is the device-local view of who is logged in: a username, a staff
// token when the staff login succeeded, and the cached parent snapshot when
// the parent login did. Loaded from the KV store on every call; exactly one
// session is current at a time.
type Session struct {
	Username string
	Token    string
	Parent   *Parent
}

// IsStaff reports whether a staff/teacher token is held. Staff sessions see
// unfiltered lists and may mutate guardian records.
func (s Session) IsStaff() bool {
	return s.Token != ""
}

// Authenticated mirrors the splash-screen restore rule: a stored parent
// snapshot with an id or username counts, as does a staff token.
func (s Session) Authenticated() bool {
	if s.Token != "" {
		return true
	}
	return s.Parent != nil && (s.Parent.ID != 0 || s.Parent.Username != "")
}

// LoadSession reads the current session from the KV store. A corrupt cached
// snapshot is treated as no snapshot, never as a failure.
func LoadSession(ctx context.Context, kv core.KV) (Session, error) {
	var s Session

	username, err := kv.GetItem(ctx, core.KeyUsername)
	if err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		return s, errors.Wrap(err, "reading username")
	}
	s.Username = username

	token, err := kv.GetItem(ctx, core.KeyToken)
	if err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		return s, errors.Wrap(err, "reading token")
	}
	s.Token = token

	raw, err := kv.GetItem(ctx, core.KeyParent)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return s, nil
		}
		return s, errors.Wrap(err, "reading parent snapshot")
	}
	var p Parent
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		s.Parent = &p
	}
	return s, nil
}

// SaveSession persists the session. Missing pieces clear their keys so a
// parent login cannot inherit a stale staff token.
func SaveSession(ctx context.Context, kv core.KV, s Session) error {
	if err := kv.SetItem(ctx, core.KeyUsername, s.Username); err != nil {
		return errors.Wrap(err, "storing username")
	}
	if s.Token != "" {
		if err := kv.SetItem(ctx, core.KeyToken, s.Token); err != nil {
			return errors.Wrap(err, "storing token")
		}
	} else if err := kv.RemoveItem(ctx, core.KeyToken); err != nil {
		return errors.Wrap(err, "clearing token")
	}
	if s.Parent != nil {
		raw, err := json.Marshal(marshalParent(*s.Parent))
		if err != nil {
			return errors.Wrap(err, "encoding parent snapshot")
		}
		if err := kv.SetItem(ctx, core.KeyParent, string(raw)); err != nil {
			return errors.Wrap(err, "storing parent snapshot")
		}
	} else if err := kv.RemoveItem(ctx, core.KeyParent); err != nil {
		return errors.Wrap(err, "clearing parent snapshot")
	}
	return nil
}

// ClearSession removes everything a logout should remove.
func ClearSession(ctx context.Context, kv core.KV) error {
	for _, key := range []string{core.KeyUsername, core.KeyToken, core.KeyParent, core.KeyLastRoute} {
		if err := kv.RemoveItem(ctx, key); err != nil {
			return errors.Wrapf(err, "removing %s", key)
		}
	}
	return nil
}

// marshalParent renders a Parent back into the canonical stored shape, so a
// snapshot written by us re-parses under the same normalization rules.
func marshalParent(p Parent) map[string]interface{} {
	m := map[string]interface{}{
		"id":       p.ID,
		"username": p.Username,
		"name":     p.Name,
		"role":     p.Role,
	}
	if p.Contact != "" {
		m["contact_number"] = p.Contact
	}
	if p.StudentLRN != "" {
		m["student_lrn"] = p.StudentLRN
	}
	if p.StudentName != "" {
		m["student_name"] = p.StudentName
	}
	if p.MustChangeCredentials {
		m["must_change_credentials"] = true
	}
	return m
}
