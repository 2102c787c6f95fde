package backendsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core/parent"
)

var _ parent.Directory = (*Client)(nil)

// Endpoint generations: the parents app endpoints are current; /api/parent/,
// /api/guardian/ etc. are the legacy flat routes still serving some data.
const (
	loginPath        = "/api/login/"
	parentLoginPath  = "/api/parents/login/"
	parentsPath      = "/api/parents/parents/"
	publicPath       = "/api/parents/parents/public/"
	allTeachersPath  = "/api/parents/all-teachers-students/"
	legacyParentPath = "/api/parent/"
	studentsPath     = "/api/student/"
	teachersPath     = "/api/teachers/"
	guardiansPath    = "/api/guardian/"
)

func (c *Client) Parents(ctx context.Context, token string) ([]parent.Parent, error) {
	var out []parent.Parent
	err := c.getList(ctx, parentsPath, token, nil, func(raw json.RawMessage) {
		var p parent.Parent
		if err := json.Unmarshal(raw, &p); err != nil {
			c.log.Debug("skipping malformed parent record", err)
			return
		}
		out = append(out, p)
	})
	return out, err
}

func (c *Client) PublicParents(ctx context.Context, lrn string) ([]parent.Parent, error) {
	var query url.Values
	if lrn != "" {
		query = url.Values{"lrn": []string{lrn}}
	}

	var out []parent.Parent
	collect := func(raw json.RawMessage) {
		var p parent.Parent
		if err := json.Unmarshal(raw, &p); err != nil {
			c.log.Debug("skipping malformed parent record", err)
			return
		}
		out = append(out, p)
	}

	// current public endpoint first, legacy unauthenticated list second
	if err := c.getList(ctx, publicPath, "", query, collect); err != nil {
		c.log.Debug("public parent endpoint unavailable, trying legacy", err)
		out = out[:0]
		if err := c.getList(ctx, legacyParentPath, "", nil, collect); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Client) ParentDetail(ctx context.Context, id int) (parent.Parent, error) {
	var p parent.Parent
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s%d/", parentsPath, id), "", nil, nil, &p)
	return p, err
}

func (c *Client) AllTeachersStudents(ctx context.Context, token string) ([]parent.TeacherClass, error) {
	var out []parent.TeacherClass
	err := c.getList(ctx, allTeachersPath, token, nil, func(raw json.RawMessage) {
		var t parent.TeacherClass
		if err := json.Unmarshal(raw, &t); err != nil {
			c.log.Debug("skipping malformed teacher record", err)
			return
		}
		out = append(out, t)
	})
	return out, err
}

func (c *Client) Students(ctx context.Context) ([]parent.Student, error) {
	var out []parent.Student
	err := c.getList(ctx, studentsPath, "", nil, func(raw json.RawMessage) {
		var s parent.Student
		if err := json.Unmarshal(raw, &s); err != nil {
			c.log.Debug("skipping malformed student record", err)
			return
		}
		out = append(out, s)
	})
	return out, err
}

func (c *Client) Teachers(ctx context.Context) ([]parent.Teacher, error) {
	var out []parent.Teacher
	err := c.getList(ctx, teachersPath, "", nil, func(raw json.RawMessage) {
		var t parent.Teacher
		if err := json.Unmarshal(raw, &t); err != nil {
			c.log.Debug("skipping malformed teacher record", err)
			return
		}
		out = append(out, t)
	})
	return out, err
}

func (c *Client) Guardians(ctx context.Context, token string) ([]parent.Guardian, error) {
	var out []parent.Guardian
	err := c.getList(ctx, guardiansPath, token, nil, func(raw json.RawMessage) {
		var g parent.Guardian
		if err := json.Unmarshal(raw, &g); err != nil {
			c.log.Debug("skipping malformed guardian record", err)
			return
		}
		out = append(out, g)
	})
	return out, err
}

func (c *Client) UpdateGuardianStatus(ctx context.Context, token, id, status string) error {
	// the legacy records only know the boolean flag, the current ones the status
	body := map[string]interface{}{
		"status":     status,
		"authorized": status == parent.StatusAllowed,
	}
	return c.do(ctx, http.MethodPatch, guardiansPath+id+"/", token, nil, body, nil)
}

func (c *Client) DeleteGuardian(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, guardiansPath+id+"/", token, nil, nil, nil)
}

func (c *Client) UpdateParent(ctx context.Context, token string, id int, fields map[string]interface{}) (parent.Parent, error) {
	var p parent.Parent
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", parentsPath, id), token, nil, fields, &p)
	return p, err
}

func (c *Client) StaffLogin(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, loginPath, "", nil, body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return out.Token, nil
}

func (c *Client) ParentLogin(ctx context.Context, username, password string) (parent.Parent, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		Parent *parent.Parent `json:"parent"`
	}
	if err := c.do(ctx, http.MethodPost, parentLoginPath, "", nil, body, &out); err != nil {
		return parent.Parent{}, err
	}
	if out.Parent == nil {
		return parent.Parent{}, errors.New("login response carried no parent")
	}
	return *out.Parent, nil
}
