package parent

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
)

var (
	// ErrUnavailable is the caller-visible "could not load" flag: every
	// applicable resolution tier hit a transport failure.
	ErrUnavailable = errors.New("identity could not be loaded")
)

// Tier is one resolution strategy: a pure function from session to an
// optional context. nil context + nil error means "not applicable / no
// match, try the next tier"; an error means the tier was applicable but its
// transport failed.
type Tier func(ctx context.Context, s Session) (*Context, error)

// Resolver locates the parent identity behind a session by walking an
// explicit ordered list of tiers; the first context wins.
type Resolver struct {
	dir   Directory
	log   core.Logger
	tiers []Tier
}

func NewResolver(dir Directory, log core.Logger) *Resolver {
	r := &Resolver{dir: dir, log: log}
	r.tiers = []Tier{r.cachedTier, r.authenticatedTier, r.publicTier}
	return r
}

// Resolve runs the tiers in order. Transport failures fall through to the
// next tier; when no tier produced a context and at least one failed, the
// caller gets nil and ErrUnavailable. A clean run that simply matched
// nothing yields (nil, nil): per call-site policy that means unscoped, not
// an error.
func (r *Resolver) Resolve(ctx context.Context, s Session) (*Context, error) {
	var failed bool
	for _, tier := range r.tiers {
		c, err := tier(ctx, s)
		if err != nil {
			failed = true
			r.log.Warn("identity tier failed", err)
			continue
		}
		if c != nil {
			return c, nil
		}
	}
	if failed {
		return nil, ErrUnavailable
	}
	return nil, nil
}

// cachedTier answers from the stored parent snapshot when it carries enough
// identity. No network.
func (r *Resolver) cachedTier(_ context.Context, s Session) (*Context, error) {
	if s.Parent == nil || !s.Parent.HasIdentity() {
		return nil, nil
	}
	return contextFromRecords(s.Username, []Parent{*s.Parent}), nil
}

// authenticatedTier queries the authoritative parent list with the staff
// token and matches by username; every matching record contributes a
// student. When the list endpoint errors it falls back to the aggregate
// teachers->students->guardians endpoint, flattened one level.
func (r *Resolver) authenticatedTier(ctx context.Context, s Session) (*Context, error) {
	if s.Token == "" || s.Username == "" {
		return nil, nil
	}

	records, err := r.dir.Parents(ctx, s.Token)
	if err != nil {
		r.log.Warn("parent list unavailable, trying aggregate fallback", err)
		teachers, aggErr := r.dir.AllTeachersStudents(ctx, s.Token)
		if aggErr != nil {
			return nil, pkgerrors.Wrap(aggErr, "aggregate fallback")
		}
		records = Flatten(teachers)
	}

	return contextFromRecords(s.Username, matchByUsername(records, s.Username)), nil
}

// publicTier is the unauthenticated path: the public lookup endpoint
// filtered by whatever identity the session still knows. LRN is exact and
// preferred; name matching is trimmed and case-insensitive.
func (r *Resolver) publicTier(ctx context.Context, s Session) (*Context, error) {
	if s.Token != "" {
		return nil, nil
	}

	var lrn, name string
	if s.Parent != nil {
		lrn = s.Parent.StudentLRN
		name = s.Parent.StudentName
	}
	if lrn == "" && name == "" && s.Username == "" {
		return nil, nil
	}

	records, err := r.dir.PublicParents(ctx, lrn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "public lookup")
	}

	var matched []Parent
	switch {
	case s.Username != "":
		matched = matchByUsername(records, s.Username)
	case lrn != "":
		for _, p := range records {
			if core.CleanString(p.StudentLRN, true) == core.CleanString(lrn, true) {
				matched = append(matched, p)
			}
		}
	default:
		want := core.CleanString(name, true)
		for _, p := range records {
			if core.CleanString(p.StudentName, true) == want {
				matched = append(matched, p)
			}
		}
	}
	return contextFromRecords(s.Username, matched), nil
}

func matchByUsername(records []Parent, username string) []Parent {
	want := core.CleanString(username, true)
	var out []Parent
	for _, p := range records {
		if p.Username != "" && core.CleanString(p.Username, true) == want {
			out = append(out, p)
		}
	}
	return out
}
