package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/felixgeelhaar/issuehub/internal/errors"
)

// User is an account as returned by /users endpoints
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Name      *string   `json:"name,omitempty" yaml:"name,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// DisplayName returns the name when set and the email otherwise
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// Token is the result of a credential exchange
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupRequest creates an account
type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// Project groups issues under a short key
type Project struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Key         string    `json:"key" yaml:"key"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// ProjectCreate is the body of POST /projects/
type ProjectCreate struct {
	Name        string  `json:"name"`
	Key         string  `json:"key"`
	Description *string `json:"description,omitempty"`
}

// Role is a project membership role
type Role string

const (
	RoleMember     Role = "member"
	RoleMaintainer Role = "maintainer"
)

// Membership is the caller's role in a project
type Membership struct {
	ID        int64 `json:"id,omitempty" yaml:"id,omitempty"`
	ProjectID int64 `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	UserID    int64 `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Role      Role  `json:"role" yaml:"role"`
}

// IssueStatus is the workflow state of an issue
type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
)

// IssueStatuses lists the valid statuses in workflow order
var IssueStatuses = []IssueStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is a known status
func (s IssueStatus) Valid() bool {
	for _, v := range IssueStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseIssueStatus accepts a status name, case-insensitively, with either
// "-" or "_" as separator
func ParseIssueStatus(s string) (IssueStatus, error) {
	st := IssueStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.Valid() {
		return "", errors.NewInvalidInputError("status", s, "open, in_progress, resolved, closed")
	}
	return st, nil
}

// IssuePriority is the urgency of an issue
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

// IssuePriorities lists the valid priorities in ascending order
var IssuePriorities = []IssuePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority
func (p IssuePriority) Valid() bool {
	for _, v := range IssuePriorities {
		if p == v {
			return true
		}
	}
	return false
}

// ParseIssuePriority accepts a priority name, case-insensitively
func ParseIssuePriority(s string) (IssuePriority, error) {
	p := IssuePriority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.NewInvalidInputError("priority", s, "low, medium, high, critical")
	}
	return p, nil
}

// Issue is a tracked work item
type Issue struct {
	ID          int64         `json:"id" yaml:"id"`
	ProjectID   int64         `json:"project_id" yaml:"project_id"`
	Title       string        `json:"title" yaml:"title"`
	Description *string       `json:"description,omitempty" yaml:"description,omitempty"`
	Status      IssueStatus   `json:"status" yaml:"status"`
	Priority    IssuePriority `json:"priority" yaml:"priority"`
	ReporterID  int64         `json:"reporter_id" yaml:"reporter_id"`
	AssigneeID  *int64        `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// IssueList is one page of issues
type IssueList struct {
	Items []Issue `json:"items" yaml:"items"`
	Total int     `json:"total" yaml:"total"`
	Skip  int     `json:"skip" yaml:"skip"`
	Limit int     `json:"limit" yaml:"limit"`
}

// IssueCreate is the body of POST /issues/
type IssueCreate struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	ProjectID   int64         `json:"project_id"`
	Status      IssueStatus   `json:"status,omitempty"`
	Priority    IssuePriority `json:"priority,omitempty"`
	AssigneeID  *int64        `json:"assignee_id,omitempty"`
}

// Assignee is the assignee part of an IssueUpdate. The zero value leaves
// the assignee untouched.
type Assignee struct {
	set    bool
	userID *int64
}

// Unassign clears the assignee
var Unassign = Assignee{set: true}

// AssignTo sets the assignee to userID
func AssignTo(userID int64) Assignee {
	return Assignee{set: true, userID: &userID}
}

// IsSet reports whether the update changes the assignee
func (a Assignee) IsSet() bool {
	return a.set
}

// UserID returns the new assignee; ok is false when unassigning or unset
func (a Assignee) UserID() (id int64, ok bool) {
	if a.userID == nil {
		return 0, false
	}
	return *a.userID, true
}

// IssueUpdate is a partial update; only set fields are sent
type IssueUpdate struct {
	Title       *string
	Description *string
	Status      *IssueStatus
	Priority    *IssuePriority
	AssigneeID  Assignee
}

// IsEmpty reports whether the update changes nothing
func (u IssueUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil && !u.AssigneeID.IsSet()
}

// MarshalJSON emits only set fields; an Unassign assignee becomes null.
func (u IssueUpdate) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{})
	if u.Title != nil {
		m["title"] = *u.Title
	}
	if u.Description != nil {
		m["description"] = *u.Description
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	if u.Priority != nil {
		m["priority"] = *u.Priority
	}
	if u.AssigneeID.IsSet() {
		if id, ok := u.AssigneeID.UserID(); ok {
			m["assignee_id"] = id
		} else {
			m["assignee_id"] = nil
		}
	}
	return json.Marshal(m)
}

// Comment is a note on an issue
type Comment struct {
	ID        int64     `json:"id" yaml:"id"`
	IssueID   int64     `json:"issue_id" yaml:"issue_id"`
	AuthorID  int64     `json:"author_id" yaml:"author_id"`
	Body      string    `json:"body" yaml:"body"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
