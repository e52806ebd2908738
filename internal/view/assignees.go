package view

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/issuehub/internal/api"
)

// AssigneePageSize is how many users each LoadMore fetches
const AssigneePageSize = 10

// UserLister pages through users
type UserLister interface {
	ListUsers(ctx context.Context, page api.Page) ([]api.User, error)
}

// AssigneeOptions is the state of the assignee picker
type AssigneeOptions struct {
	Users []api.User

	next api.Page
	more bool
}

// NewAssigneeOptions returns an empty picker positioned on the first page
func NewAssigneeOptions() *AssigneeOptions {
	return &AssigneeOptions{
		next: api.PageNumber(1, AssigneePageSize),
		more: true,
	}
}

// HasMore reports whether LoadMore may return more users
func (o *AssigneeOptions) HasMore() bool {
	return o.more
}

// LoadMore fetches the next page and appends it. It does nothing once a
// short page was seen. A failed fetch keeps the current list.
func (o *AssigneeOptions) LoadMore(ctx context.Context, l UserLister) error {
	if !o.more {
		return nil
	}
	users, err := l.ListUsers(ctx, o.next)
	if err != nil {
		return err
	}
	o.Users = append(o.Users, users...)
	o.more = api.HasMore(len(users), o.next.Limit)
	o.next = o.next.Next()
	return nil
}

// Find returns the loaded user with id
func (o *AssigneeOptions) Find(id int64) (api.User, bool) {
	for _, u := range o.Users {
		if u.ID == id {
			return u, true
		}
	}
	return api.User{}, false
}

// Label names an assignee for display
func (o *AssigneeOptions) Label(id *int64) string {
	if id == nil {
		return "Unassigned"
	}
	if u, ok := o.Find(*id); ok {
		return u.DisplayName()
	}
	return fmt.Sprintf("User #%d", *id)
}
