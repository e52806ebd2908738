package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueUpdateMarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		update IssueUpdate
		want   string
	}{
		{name: "empty", update: IssueUpdate{}, want: `{}`},
		{name: "status only", update: IssueUpdate{Status: Ptr(StatusClosed)}, want: `{"status":"closed"}`},
		{name: "clear description", update: IssueUpdate{Description: Ptr("")}, want: `{"description":""}`},
		{name: "assign", update: IssueUpdate{AssigneeID: AssignTo(7)}, want: `{"assignee_id":7}`},
		{name: "unassign", update: IssueUpdate{AssigneeID: Unassign}, want: `{"assignee_id":null}`},
		{
			name:   "several fields",
			update: IssueUpdate{Title: Ptr("t"), Priority: Ptr(PriorityCritical)},
			want:   `{"priority":"critical","title":"t"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.update)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestIssueUpdateIsEmpty(t *testing.T) {
	assert.True(t, IssueUpdate{}.IsEmpty())
	assert.False(t, IssueUpdate{AssigneeID: Unassign}.IsEmpty())
	assert.False(t, IssueUpdate{Status: Ptr(StatusOpen)}.IsEmpty())
}

func TestAssignee(t *testing.T) {
	var zero Assignee
	assert.False(t, zero.IsSet())

	_, ok := Unassign.UserID()
	assert.True(t, Unassign.IsSet())
	assert.False(t, ok)

	id, ok := AssignTo(3).UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)
}

func TestParseIssueStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    IssueStatus
		wantErr bool
	}{
		{in: "open", want: StatusOpen},
		{in: "In-Progress", want: StatusInProgress},
		{in: " resolved ", want: StatusResolved},
		{in: "CLOSED", want: StatusClosed},
		{in: "done", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIssueStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIssuePriority(t *testing.T) {
	p, err := ParseIssuePriority("High")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParseIssuePriority("urgent")
	assert.Error(t, err)
}

func TestIssueDecodesNullableFields(t *testing.T) {
	data := `{"id":4,"project_id":1,"title":"Crash","description":null,"status":"open","priority":"medium",
		"reporter_id":2,"assignee_id":null,"created_at":"2024-01-02T03:04:05Z","updated_at":null}`

	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(data), &issue))
	assert.Nil(t, issue.Description)
	assert.Nil(t, issue.AssigneeID)
	assert.Nil(t, issue.UpdatedAt)
	assert.Equal(t, StatusOpen, issue.Status)
	assert.Equal(t, 2024, issue.CreatedAt.Year())
}
