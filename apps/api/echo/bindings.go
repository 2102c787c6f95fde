package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/JCBT04/Capstone/core"
	"github.com/JCBT04/Capstone/core/parent"
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required,username"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token                 string `json:"token"`
		IsTeacher             bool   `json:"is_teacher"`
		MustChangeCredentials bool   `json:"must_change_credentials,omitempty"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	UpdateGuardianRequest struct {
		Status string `json:"status" validate:"required"`
	}

	// ListResponse wraps every derivation list. Detail carries the "could not
	// load" status message when the payload degraded to empty.
	ListResponse struct {
		Results interface{} `json:"results"`
		Detail  string      `json:"detail,omitempty"`
	}

	// ProfileView is the caller-facing parent record. The canonical struct
	// carries the backend password; it never leaves this service.
	ProfileView struct {
		ID                    int    `json:"id"`
		Username              string `json:"username"`
		Name                  string `json:"name"`
		Role                  string `json:"role,omitempty"`
		Contact               string `json:"contact_number,omitempty"`
		StudentLRN            string `json:"student_lrn,omitempty"`
		StudentName           string `json:"student_name,omitempty"`
		MustChangeCredentials bool   `json:"must_change_credentials"`
	}

	GuardianView struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Relationship string `json:"relationship,omitempty"`
		StudentName  string `json:"student_name,omitempty"`
		Contact      string `json:"contact,omitempty"`
		Status       string `json:"status"`
		PhotoURL     string `json:"photo,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}

func newProfileView(p parent.Parent) ProfileView {
	return ProfileView{
		ID:                    p.ID,
		Username:              p.Username,
		Name:                  p.Name,
		Role:                  p.Role,
		Contact:               p.Contact,
		StudentLRN:            p.StudentLRN,
		StudentName:           p.StudentName,
		MustChangeCredentials: p.MustChangeCredentials,
	}
}

func newGuardianView(g parent.Guardian) GuardianView {
	return GuardianView{
		ID:           g.ID,
		Name:         g.Name,
		Relationship: g.Relationship,
		StudentName:  g.StudentName,
		Contact:      g.Contact,
		Status:       g.Status,
		PhotoURL:     g.PhotoURL,
	}
}
