package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/agenda"
	"github.com/JCBT04/Capstone/core/attendance"
	"github.com/JCBT04/Capstone/core/parent"
	dummybackend "github.com/JCBT04/Capstone/services/backend/dummy"
	"github.com/JCBT04/Capstone/storage/kvstore"
	testutil "github.com/JCBT04/Capstone/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

func newTestServer(t *testing.T) (*Server, *dummybackend.Service) {
	t.Helper()

	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Capstone",
		SecretKey: "secret",
	}
	conf.SchoolYear.StartYear = 2025
	conf.Server.JWTExpirationDelta = time.Hour

	validate, translator := testutil.Validators(t)

	back := dummybackend.NewService()
	logger := testutil.NopLogger{}
	parentSvc := parent.NewService(back, kvstore.NewInMem(), logger, validate)

	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		ParentSvc:     parentSvc,
		AgendaSvc:     agenda.NewService(back, logger),
		AttendanceSvc: attendance.NewService(back, conf),
		Validate:      validate,
		Translator:    translator,
	})
	return srv, back
}

func doRequest(srv *Server, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(echo.Map{"username": username, "password": password})
	rec := doRequest(srv, http.MethodPost, "/v1/login", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func Test_parentApi_login(t *testing.T) {
	t.Run("parent account", func(t *testing.T) {
		srv, _ := newTestServer(t)
		body, _ := json.Marshal(echo.Map{"username": "jdoe", "password": "parent"})
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", body)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.False(t, resp.IsTeacher)
	})

	t.Run("staff account", func(t *testing.T) {
		srv, _ := newTestServer(t)
		body, _ := json.Marshal(echo.Map{"username": "teacher", "password": "teacher"})
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", body)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.IsTeacher)
	})

	t.Run("bad credentials", func(t *testing.T) {
		srv, _ := newTestServer(t)
		body, _ := json.Marshal(echo.Map{"username": "jdoe", "password": "nope"})
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp httpErr
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid username or password", resp.Error)
	})

	t.Run("bad username characters", func(t *testing.T) {
		srv, _ := newTestServer(t)
		body, _ := json.Marshal(echo.Map{"username": "j doe!", "password": "parent"})
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "only letters, digits and @/./+/-/_ are allowed", resp["username"])
	})

	t.Run("missing fields", func(t *testing.T) {
		srv, _ := newTestServer(t)
		body, _ := json.Marshal(echo.Map{"username": "jdoe"})
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "this field is required", resp["password"])
	})
}

func Test_parentApi_logout(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "jdoe", "parent")

	rec := doRequest(srv, http.MethodPost, "/v1/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// the stored session is gone; the still-valid JWT no longer suffices
	rec = doRequest(srv, http.MethodGet, "/v1/profile", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp httpErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user not authenticated", resp.Error)
}

func Test_missingToken(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/v1/home", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp httpErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing or malformed jwt", resp.Error)
}

func Test_parentApi_guardians(t *testing.T) {
	t.Run("staff sees and mutates pending guardians", func(t *testing.T) {
		srv, back := newTestServer(t)
		token := login(t, srv, "teacher", "teacher")

		rec := doRequest(srv, http.MethodGet, "/v1/guardians?status=pending", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Results []GuardianView `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Uncle Bob", resp.Results[0].Name)

		body, _ := json.Marshal(echo.Map{"status": "allowed"})
		rec = doRequest(srv, http.MethodPatch, "/v1/guardians/g1", token, body)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		assert.Equal(t, parent.StatusAllowed, back.GuardianList[0].Status)

		rec = doRequest(srv, http.MethodGet, "/v1/guardians", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp.Results = nil
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Results)
	})

	t.Run("staff deletes a guardian", func(t *testing.T) {
		srv, back := newTestServer(t)
		token := login(t, srv, "teacher", "teacher")

		rec := doRequest(srv, http.MethodDelete, "/v1/guardians/g1", token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		assert.Empty(t, back.GuardianList)
	})

	t.Run("parent sees own pending and authorized guardians", func(t *testing.T) {
		srv, _ := newTestServer(t)
		token := login(t, srv, "jdoe", "parent")

		rec := doRequest(srv, http.MethodGet, "/v1/guardians?status=pending", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Results []GuardianView `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Uncle Bob", resp.Results[0].Name)

		rec = doRequest(srv, http.MethodGet, "/v1/guardians?status=allowed", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp.Results = nil
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Grandma", resp.Results[0].Name)
		assert.Equal(t, parent.StatusAllowed, resp.Results[0].Status)
	})

	t.Run("mutations are staff only", func(t *testing.T) {
		srv, back := newTestServer(t)
		token := login(t, srv, "jdoe", "parent")

		body, _ := json.Marshal(echo.Map{"status": "allowed"})
		rec := doRequest(srv, http.MethodPatch, "/v1/guardians/g1", token, body)
		require.Equal(t, http.StatusForbidden, rec.Code)
		var resp httpErr
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "permission denied", resp.Error)
		assert.Equal(t, parent.StatusPending, back.GuardianList[0].Status)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		srv, _ := newTestServer(t)
		token := login(t, srv, "jdoe", "parent")

		rec := doRequest(srv, http.MethodGet, "/v1/guardians?status=declined", token, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "must be pending or allowed", resp["status"])
	})
}

func Test_parentApi_profile(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "jdoe", "parent")

	rec := doRequest(srv, http.MethodGet, "/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "jdoe", raw["username"])
	assert.Equal(t, "J. Doe", raw["name"])
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "Password")
}

func Test_parentApi_changePassword(t *testing.T) {
	srv, back := newTestServer(t)
	token := login(t, srv, "jdoe", "parent")

	t.Run("wrong current password", func(t *testing.T) {
		body, _ := json.Marshal(echo.Map{
			"current_password":     "nope",
			"new_password":         "Str0ng!pass",
			"new_password_confirm": "Str0ng!pass",
		})
		rec := doRequest(srv, http.MethodPost, "/v1/profile/change-password", token, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "current password is incorrect", resp["current_password"])
	})

	t.Run("policy violation", func(t *testing.T) {
		body, _ := json.Marshal(echo.Map{
			"current_password":     "parent",
			"new_password":         "12345678",
			"new_password_confirm": "12345678",
		})
		rec := doRequest(srv, http.MethodPost, "/v1/profile/change-password", token, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["new_password"])
	})

	t.Run("success", func(t *testing.T) {
		body, _ := json.Marshal(echo.Map{
			"current_password":     "parent",
			"new_password":         "Str0ng!pass",
			"new_password_confirm": "Str0ng!pass",
		})
		rec := doRequest(srv, http.MethodPost, "/v1/profile/change-password", token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Str0ng!pass", back.ParentList[0].Password)

		// the new password logs in
		login(t, srv, "jdoe", "Str0ng!pass")
	})
}

func Test_agendaApi_lists(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "jdoe", "parent")

	// the domain structs re-normalize on unmarshal; decode into plain rows
	type row struct {
		Title   string `json:"title"`
		Subject string `json:"subject"`
		Type    string `json:"type"`
		Color   string `json:"color"`
	}

	t.Run("events", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/v1/events", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Results []row  `json:"results"`
			Detail  string `json:"detail"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Field Trip", resp.Results[0].Title)
		assert.NotEmpty(t, resp.Results[0].Color)
		assert.Empty(t, resp.Detail)
	})

	t.Run("schedules", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/v1/schedules", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Results []row `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Math", resp.Results[0].Subject)
		assert.NotEmpty(t, resp.Results[0].Color)
	})

	t.Run("notifications", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/v1/notifications", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Results []row `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "attendance", resp.Results[0].Type)
	})
}

func Test_agendaApi_calendar(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "jdoe", "parent")

	rec := doRequest(srv, http.MethodGet, "/v1/calendar/2025/9", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results map[string]attendance.DayCell `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	cell, ok := resp.Results["2025-09-22"]
	require.True(t, ok)
	assert.Equal(t, "green", cell.FillColor)
	assert.True(t, cell.TextStyle.Bold)

	t.Run("bad month", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/v1/calendar/2025/13", token, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_agendaApi_home(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "jdoe", "parent")

	rec := doRequest(srv, http.MethodGet, "/v1/home", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []HomeChild `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Jane Doe", resp.Results[0].Name)
	assert.Equal(t, "Ms. Cruz", resp.Results[0].TeacherName)
	assert.NotEmpty(t, resp.Results[0].TodayStatus)
}
