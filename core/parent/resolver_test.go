package parent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCBT04/Capstone/core"
)

func TestResolver_cachedSnapshotWinsWithoutNetwork(t *testing.T) {
	dir := &fakeDirectory{} // every call would fail
	r := NewResolver(dir, nopLogger{})

	s := Session{
		Username: "jdoe",
		Parent:   &Parent{ID: 7, Username: "jdoe", StudentLRN: "12345", StudentName: "Jane Doe"},
	}
	c, err := r.Resolve(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 7, c.ParentID)
	assert.Equal(t, "12345", c.LRN())
	assert.Equal(t, "Jane Doe", c.StudentName())
	assert.Empty(t, dir.calls, "cached tier must not touch the backend")
}

func TestResolver_authenticatedTier(t *testing.T) {
	dir := &fakeDirectory{
		parentsFn: func(_ context.Context, token string) ([]Parent, error) {
			assert.Equal(t, "tok", token)
			return []Parent{
				{ID: 1, Username: "other", StudentLRN: "99999"},
				{ID: 2, Username: "JDoe", StudentLRN: "12345", StudentName: "Jane Doe"},
				{ID: 2, Username: "jdoe", StudentLRN: "54321", StudentName: "John Doe"},
			}, nil
		},
	}
	r := NewResolver(dir, nopLogger{})

	c, err := r.Resolve(context.Background(), Session{Username: "jdoe", Token: "tok"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.ParentID)
	// every matching record contributes a student
	require.Len(t, c.Students, 2)
	assert.Equal(t, "12345", c.Students[0].LRN)
	assert.Equal(t, "54321", c.Students[1].LRN)
}

func TestResolver_aggregateFallback(t *testing.T) {
	boom := errors.New("boom")
	dir := &fakeDirectory{
		parentsFn: func(context.Context, string) ([]Parent, error) { return nil, boom },
		allTeachersFn: func(context.Context, string) ([]TeacherClass, error) {
			return []TeacherClass{{
				ID:   1,
				Name: "Ms. Cruz",
				Students: []ClassStudent{{
					ID:   10,
					LRN:  "12345",
					Name: "Jane Doe",
					ParentsGuardians: []Parent{
						{ID: 4, Username: "jdoe", Name: "J. Doe"},
					},
				}},
			}}, nil
		},
	}
	r := NewResolver(dir, nopLogger{})

	c, err := r.Resolve(context.Background(), Session{Username: "jdoe", Token: "tok"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 4, c.ParentID)
	// identity stamped from the enclosing student
	assert.Equal(t, "12345", c.LRN())
	assert.Equal(t, "Jane Doe", c.StudentName())
}

func TestResolver_publicTier(t *testing.T) {
	t.Run("by lrn", func(t *testing.T) {
		dir := &fakeDirectory{
			publicParentsFn: func(_ context.Context, lrn string) ([]Parent, error) {
				assert.Equal(t, "12345", lrn)
				return []Parent{
					{ID: 3, StudentLRN: "12345", StudentName: "Jane Doe"},
					{ID: 9, StudentLRN: "99999"},
				}, nil
			},
		}
		r := NewResolver(dir, nopLogger{})

		s := Session{Parent: &Parent{StudentLRN: "12345"}}
		// a snapshot with an LRN is already identity, so drop the cached tier
		// to exercise the public path
		r.tiers = []Tier{r.publicTier}
		c, err := r.Resolve(context.Background(), s)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, 3, c.ParentID)
		assert.Equal(t, "Jane Doe", c.StudentName())
	})

	t.Run("by name when no lrn", func(t *testing.T) {
		dir := &fakeDirectory{
			publicParentsFn: func(_ context.Context, lrn string) ([]Parent, error) {
				assert.Empty(t, lrn)
				return []Parent{
					{ID: 5, StudentName: "Jane Doe"},
					{ID: 6, StudentName: "Someone Else"},
				}, nil
			},
		}
		r := NewResolver(dir, nopLogger{})
		r.tiers = []Tier{r.publicTier}

		c, err := r.Resolve(context.Background(), Session{Parent: &Parent{StudentName: "jane doe"}})
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, 5, c.ParentID)
	})

	t.Run("skipped for staff sessions", func(t *testing.T) {
		dir := &fakeDirectory{}
		r := NewResolver(dir, nopLogger{})
		r.tiers = []Tier{r.publicTier}

		c, err := r.Resolve(context.Background(), Session{Username: "staff", Token: "tok"})
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.Empty(t, dir.calls)
	})
}

func TestResolver_unavailableOnlyWhenATierFailed(t *testing.T) {
	boom := errors.New("boom")

	t.Run("all transports down", func(t *testing.T) {
		dir := &fakeDirectory{
			parentsFn:       func(context.Context, string) ([]Parent, error) { return nil, boom },
			allTeachersFn:   func(context.Context, string) ([]TeacherClass, error) { return nil, boom },
			publicParentsFn: func(context.Context, string) ([]Parent, error) { return nil, boom },
		}
		r := NewResolver(dir, nopLogger{})

		c, err := r.Resolve(context.Background(), Session{Username: "jdoe", Token: "tok"})
		assert.Nil(t, c)
		assert.Equal(t, ErrUnavailable, err)
	})

	t.Run("clean run with no match is unscoped, not an error", func(t *testing.T) {
		dir := &fakeDirectory{
			parentsFn:       func(context.Context, string) ([]Parent, error) { return nil, nil },
			publicParentsFn: func(context.Context, string) ([]Parent, error) { return nil, nil },
		}
		r := NewResolver(dir, nopLogger{})

		c, err := r.Resolve(context.Background(), Session{Username: "jdoe", Token: "tok"})
		assert.Nil(t, c)
		assert.NoError(t, err)
	})

	t.Run("empty session has nothing to resolve", func(t *testing.T) {
		dir := &fakeDirectory{}
		r := NewResolver(dir, nopLogger{})

		c, err := r.Resolve(context.Background(), Session{})
		assert.Nil(t, c)
		assert.NoError(t, err)
		assert.Empty(t, dir.calls)
	})
}

func TestContext_Matches(t *testing.T) {
	ctx := &Context{
		ParentID: 2,
		Username: "jdoe",
		Students: []StudentRef{{ID: 10, LRN: "12345", Name: "Jane Doe"}},
	}

	tests := []struct {
		name     string
		ctx      *Context
		username string
		lrn      string
		stName   string
		want     bool
	}{
		{name: "nil context filters nothing", ctx: nil, want: true},
		{name: "no identity filters nothing", ctx: &Context{}, stName: "Whoever", want: true},
		{name: "username match is case-insensitive", ctx: ctx, username: "JDOE", want: true},
		{name: "lrn match", ctx: ctx, lrn: "12345", want: true},
		{name: "name match is trimmed and case-insensitive", ctx: ctx, stName: "  jane doe ", want: true},
		{name: "no overlap", ctx: ctx, username: "other", lrn: "99999", stName: "Someone Else", want: false},
		{name: "empty record fields", ctx: ctx, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ctx.Matches(tt.username, core.Ref{}, tt.lrn, tt.stName)
			assert.Equal(t, tt.want, got)
		})
	}
}
