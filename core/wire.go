package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The backend has gone through several schema revisions and its list
// endpoints are not consistent about foreign keys: the same field may arrive
// as a bare numeric id, a bare string (id or LRN), or an embedded object.
// The types below absorb those known variants at the decode boundary so the
// rest of the app only ever sees one canonical shape. They never fail the
// whole payload over a single odd value.

// FlexInt decodes from a JSON number or a numeric string. Anything else
// decodes to zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*n = 0
			return nil
		}
		*n = FlexInt(i)
		return nil
	}
	var i int
	if err := json.Unmarshal(b, &i); err != nil {
		*n = 0
		return nil
	}
	*n = FlexInt(i)
	return nil
}

// FlexString decodes from a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(string(b))
	return nil
}

// Ref is a foreign-key reference that may arrive as a bare scalar or as an
// embedded object carrying id/lrn/name.
type Ref struct {
	ID     int
	LRN    string
	Name   string
	Scalar string // set when the reference arrived as a bare scalar
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '{' {
		var obj struct {
			ID   FlexInt    `json:"id"`
			PK   FlexInt    `json:"pk"`
			LRN  FlexString `json:"lrn"`
			Name string     `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		r.ID = int(obj.ID)
		if r.ID == 0 {
			r.ID = int(obj.PK)
		}
		r.LRN = string(obj.LRN)
		r.Name = obj.Name
		return nil
	}
	var s FlexString
	_ = s.UnmarshalJSON(b)
	r.Scalar = CleanString(string(s))
	if id, err := strconv.Atoi(r.Scalar); err == nil {
		r.ID = id
	}
	return nil
}

func (r Ref) IsZero() bool {
	return r.ID == 0 && r.LRN == "" && r.Name == "" && r.Scalar == ""
}

// MatchesID reports whether the reference points at the given numeric id,
// whether it arrived embedded or as a scalar.
func (r Ref) MatchesID(id int) bool {
	if id == 0 {
		return false
	}
	return r.ID == id
}

// LRNCandidate returns the best-effort LRN for matching: the embedded lrn
// first, then the embedded id, then the raw scalar.
func (r Ref) LRNCandidate() string {
	if r.LRN != "" {
		return r.LRN
	}
	if r.ID != 0 && r.Scalar == "" {
		return strconv.Itoa(r.ID)
	}
	return r.Scalar
}

// NameCandidate returns the embedded student name, if any.
func (r Ref) NameCandidate() string {
	return r.Name
}
