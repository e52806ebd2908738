package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/issuehub/internal/contract"
	"github.com/felixgeelhaar/issuehub/internal/log"
)

func newTestClient(t *testing.T, api *fakeAPI, token string) *Client {
	t.Helper()
	v, err := contract.Load()
	require.NoError(t, err)
	return New(api.baseURL(),
		WithCredentials(&fakeCredentials{token: token}),
		WithValidator(v),
		WithLogger(log.Discard()),
	)
}

func TestLoginSendsForm(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("POST", "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "ada@example.com" || r.PostForm.Get("password") != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, Token{AccessToken: "jwt", TokenType: "bearer"})
	})

	client := newTestClient(t, api, "")
	token, err := client.Login(context.Background(), "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	req, _ := api.last()
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSignupAndMe(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("POST", "/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, User{ID: 9, Email: req.Email, Name: req.Name})
	})
	api.handle("GET", "/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, User{ID: 9, Email: "ada@example.com"})
	})

	client := newTestClient(t, api, "jwt")
	user, err := client.Signup(context.Background(), SignupRequest{Email: "ada@example.com", Password: "pw", Name: Ptr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.DisplayName())

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), me.ID)
	assert.Equal(t, "ada@example.com", me.DisplayName())
}

func TestListUsersSendsPage(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET", "/users/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("skip"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []User{{ID: 11}, {ID: 12}})
	})

	client := newTestClient(t, api, "jwt")
	users, err := client.ListUsers(context.Background(), PageNumber(2, 10))
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestProjects(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET", "/projects/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Project{{ID: 1, Name: "Core", Key: "CORE"}})
	})
	api.handle("POST", "/projects/", func(w http.ResponseWriter, r *http.Request) {
		var req ProjectCreate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, Project{ID: 2, Name: req.Name, Key: req.Key, Description: req.Description})
	})
	api.handle("GET", "/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Project{ID: 2, Name: "Web", Key: "WEB"})
	})
	api.handle("GET", "/projects/{id}/my-membership", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"role": "maintainer"})
	})

	ctx := context.Background()
	client := newTestClient(t, api, "jwt")

	projects, err := client.ListProjects(ctx, Page{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "CORE", projects[0].Key)

	created, err := client.CreateProject(ctx, ProjectCreate{Name: "Web", Key: "WEB", Description: Ptr("site")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	require.NotNil(t, created.Description)
	assert.Equal(t, "site", *created.Description)

	project, err := client.GetProject(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "WEB", project.Key)

	m, err := client.MyMembership(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, RoleMaintainer, m.Role)
}

func TestListIssuesSendsFilter(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET", "/issues/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "20", q.Get("skip"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "3", q.Get("project_id"))
		assert.Equal(t, "in_progress", q.Get("status"))
		assert.False(t, q.Has("assignee_id"))
		assert.False(t, q.Has("priority"))
		writeJSON(w, http.StatusOK, IssueList{Items: []Issue{{ID: 21}}, Total: 21, Skip: 20, Limit: 10})
	})

	client := newTestClient(t, api, "jwt")
	list, err := client.ListIssues(context.Background(), IssueFilter{
		Page:      PageNumber(3, 10),
		ProjectID: 3,
		Status:    StatusInProgress,
	})
	require.NoError(t, err)

	from, to := list.Range()
	assert.Equal(t, 21, from)
	assert.Equal(t, 21, to)
	assert.Equal(t, 3, list.Pages())
}

func TestCreateAndGetIssue(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("POST", "/issues/", func(w http.ResponseWriter, r *http.Request) {
		var req IssueCreate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, Issue{ID: 5, ProjectID: req.ProjectID, Title: req.Title, Status: StatusOpen, Priority: req.Priority})
	})
	api.handle("GET", "/issues/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", mux.Vars(r)["id"])
		writeJSON(w, http.StatusOK, Issue{ID: 5, Title: "Crash", Status: StatusOpen})
	})

	ctx := context.Background()
	client := newTestClient(t, api, "jwt")

	created, err := client.CreateIssue(ctx, IssueCreate{Title: "Crash", ProjectID: 1, Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, created.Priority)

	issue, err := client.GetIssue(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Crash", issue.Title)
}

func TestUpdateIssueUnassign(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("PATCH", "/issues/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		v, present := body["assignee_id"]
		assert.True(t, present)
		assert.Nil(t, v)
		writeJSON(w, http.StatusOK, Issue{ID: 4, Status: StatusOpen})
	})

	client := newTestClient(t, api, "jwt")
	issue, err := client.UpdateIssue(context.Background(), 4, IssueUpdate{AssigneeID: Unassign})
	require.NoError(t, err)
	assert.Nil(t, issue.AssigneeID)
}

func TestUpdateIssueForbidden(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("PATCH", "/issues/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not enough permissions"})
	})

	client := newTestClient(t, api, "jwt")
	issue, err := client.UpdateIssue(context.Background(), 4, IssueUpdate{Status: Ptr(StatusClosed)})
	assert.Nil(t, issue)
	assert.True(t, IsForbidden(err))
}

func TestComments(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("GET", "/comments/issue/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Comment{{ID: 1, IssueID: 4, Body: "first"}})
	})
	api.handle("POST", "/comments/issue/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, Comment{ID: 2, IssueID: 4, Body: req["body"]})
	})

	ctx := context.Background()
	client := newTestClient(t, api, "jwt")

	comments, err := client.ListComments(ctx, 4, Page{})
	require.NoError(t, err)
	require.Len(t, comments, 1)

	comment, err := client.AddComment(ctx, 4, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", comment.Body)
}
