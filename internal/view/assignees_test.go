package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/issuehub/internal/api"
)

type pagedUsers struct {
	total int
	pages []api.Page
	err   error
}

func (p *pagedUsers) ListUsers(_ context.Context, page api.Page) ([]api.User, error) {
	p.pages = append(p.pages, page)
	if p.err != nil {
		return nil, p.err
	}
	var users []api.User
	for i := page.Skip; i < page.Skip+page.Limit && i < p.total; i++ {
		users = append(users, api.User{ID: int64(i + 1), Email: "user@example.com"})
	}
	return users, nil
}

func TestAssigneeOptionsLoadMore(t *testing.T) {
	src := &pagedUsers{total: 23}
	opts := NewAssigneeOptions()
	ctx := context.Background()

	for opts.HasMore() {
		require.NoError(t, opts.LoadMore(ctx, src))
	}

	assert.Len(t, opts.Users, 23)
	assert.Equal(t, []api.Page{
		{Skip: 0, Limit: 10},
		{Skip: 10, Limit: 10},
		{Skip: 20, Limit: 10},
	}, src.pages)

	require.NoError(t, opts.LoadMore(ctx, src))
	assert.Len(t, src.pages, 3, "no fetch after a short page")
}

func TestAssigneeOptionsExactMultiple(t *testing.T) {
	src := &pagedUsers{total: 10}
	opts := NewAssigneeOptions()

	require.NoError(t, opts.LoadMore(context.Background(), src))
	assert.True(t, opts.HasMore(), "a full page may have a successor")

	require.NoError(t, opts.LoadMore(context.Background(), src))
	assert.False(t, opts.HasMore())
	assert.Len(t, opts.Users, 10)
}

func TestAssigneeOptionsFailureKeepsList(t *testing.T) {
	src := &pagedUsers{total: 15}
	opts := NewAssigneeOptions()
	require.NoError(t, opts.LoadMore(context.Background(), src))

	src.err = errors.New("boom")
	assert.Error(t, opts.LoadMore(context.Background(), src))
	assert.Len(t, opts.Users, 10)
	assert.True(t, opts.HasMore())
}

func TestAssigneeOptionsLabel(t *testing.T) {
	opts := NewAssigneeOptions()
	opts.Users = []api.User{{ID: 1, Email: "ada@example.com", Name: api.Ptr("Ada")}}

	assert.Equal(t, "Unassigned", opts.Label(nil))
	assert.Equal(t, "Ada", opts.Label(api.Ptr(int64(1))))
	assert.Equal(t, "User #9", opts.Label(api.Ptr(int64(9))))
}
