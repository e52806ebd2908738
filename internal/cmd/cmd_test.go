package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/session"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "correct horse"
	testToken    = "tok-ada"
)

// fakeServer is an in-memory IssueHub API routed under /api/v1
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	me       api.User
	issues   map[int64]api.Issue
	comments map[int64][]api.Comment
	projects []api.Project
	role     api.Role
	forbid   bool
	revoked  bool
	calls    []string
	bodies   map[string][]byte
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	f := &fakeServer{
		me:       api.User{ID: 7, Email: testEmail, Name: api.Ptr("Ada Lovelace"), CreatedAt: created},
		issues:   map[int64]api.Issue{},
		comments: map[int64][]api.Comment{},
		bodies:   map[string][]byte{},
	}

	root := mux.NewRouter()
	r := root.PathPrefix("/api/v1").Subrouter()
	r.HandleFunc("/auth/login", f.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/signup", f.signup).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(f.requireToken)
	authed.HandleFunc("/users/me", f.usersMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/", f.listUsers).Methods(http.MethodGet)
	authed.HandleFunc("/issues/", f.listIssues).Methods(http.MethodGet)
	authed.HandleFunc("/issues/{id:[0-9]+}", f.getIssue).Methods(http.MethodGet)
	authed.HandleFunc("/issues/{id:[0-9]+}", f.patchIssue).Methods(http.MethodPatch)
	authed.HandleFunc("/comments/issue/{id:[0-9]+}", f.listComments).Methods(http.MethodGet)
	authed.HandleFunc("/comments/issue/{id:[0-9]+}", f.addComment).Methods(http.MethodPost)
	authed.HandleFunc("/projects/", f.listProjects).Methods(http.MethodGet)
	authed.HandleFunc("/projects/", f.createProject).Methods(http.MethodPost)
	authed.HandleFunc("/projects/{id:[0-9]+}/my-membership", f.membership).Methods(http.MethodGet)

	f.Server = httptest.NewServer(f.record(root))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) apiURL() string {
	return f.URL + "/api/v1"
}

func (f *fakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		call := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/v1")
		f.mu.Lock()
		f.calls = append(f.calls, call)
		f.bodies[call] = body
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		revoked := f.revoked && r.URL.Path != "/api/v1/users/me"
		f.mu.Unlock()

		if revoked || r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// seedIssues adds n issues to project 1 reported by someone else
func (f *fakeServer) seedIssues(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 1; i <= n; i++ {
		id := int64(i)
		f.issues[id] = api.Issue{
			ID:         id,
			ProjectID:  1,
			Title:      "Issue " + strconv.Itoa(i),
			Status:     api.StatusOpen,
			Priority:   api.PriorityMedium,
			ReporterID: 99,
			CreatedAt:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		}
	}
}

// update changes server state under the lock
func (f *fakeServer) update(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

func (f *fakeServer) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeServer) body(call string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[call]
}

func (f *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad form"})
		return
	}
	f.mu.Lock()
	known := r.PostForm.Get("username") == f.me.Email
	f.mu.Unlock()
	if !known || r.PostForm.Get("password") != testPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	writeJSON(w, http.StatusOK, api.Token{AccessToken: testToken, TokenType: "bearer"})
}

func (f *fakeServer) signup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	if req.Email == testEmail {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	f.mu.Lock()
	f.me = api.User{ID: 8, Email: req.Email, Name: req.Name}
	user := f.me
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, user)
}

func (f *fakeServer) usersMe(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.me)
}

func (f *fakeServer) listUsers(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, []api.User{f.me, {ID: 9, Email: "grace@example.com"}})
}

func (f *fakeServer) listIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int64, 0, len(f.issues))
	for id := range f.issues {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list := api.IssueList{Items: []api.Issue{}, Total: len(ids), Skip: skip, Limit: limit}
	for i := skip; i < len(ids) && (limit == 0 || i < skip+limit); i++ {
		list.Items = append(list.Items, f.issues[ids[i]])
	}
	writeJSON(w, http.StatusOK, list)
}

func (f *fakeServer) issue(w http.ResponseWriter, r *http.Request) (api.Issue, bool) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	is, ok := f.issues[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Issue not found"})
	}
	return is, ok
}

func (f *fakeServer) getIssue(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if is, ok := f.issue(w, r); ok {
		writeJSON(w, http.StatusOK, is)
	}
}

func (f *fakeServer) patchIssue(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	is, ok := f.issue(w, r)
	if !ok {
		return
	}
	if f.forbid {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not enough permissions"})
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}
	if raw, ok := patch["status"]; ok {
		_ = json.Unmarshal(raw, &is.Status)
	}
	if raw, ok := patch["description"]; ok {
		is.Description = nil
		_ = json.Unmarshal(raw, &is.Description)
	}
	if raw, ok := patch["assignee_id"]; ok {
		is.AssigneeID = nil
		_ = json.Unmarshal(raw, &is.AssigneeID)
	}
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	is.UpdatedAt = &now
	f.issues[is.ID] = is
	writeJSON(w, http.StatusOK, is)
}

func (f *fakeServer) listComments(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	f.mu.Lock()
	defer f.mu.Unlock()
	comments := f.comments[id]
	if comments == nil {
		comments = []api.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (f *fakeServer) addComment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var in struct {
		Body string `json:"body"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()
	c := api.Comment{
		ID:        int64(len(f.comments[id]) + 1),
		IssueID:   id,
		AuthorID:  f.me.ID,
		Body:      in.Body,
		CreatedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	f.comments[id] = append(f.comments[id], c)
	writeJSON(w, http.StatusCreated, c)
}

func (f *fakeServer) listProjects(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	f.mu.Lock()
	defer f.mu.Unlock()
	page := []api.Project{}
	for i := skip; i < len(f.projects) && (limit == 0 || i < skip+limit); i++ {
		page = append(page, f.projects[i])
	}
	writeJSON(w, http.StatusOK, page)
}

func (f *fakeServer) createProject(w http.ResponseWriter, r *http.Request) {
	var req api.ProjectCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p := api.Project{ID: int64(len(f.projects) + 1), Name: req.Name, Key: req.Key, Description: req.Description}
	f.projects = append(f.projects, p)
	writeJSON(w, http.StatusCreated, p)
}

func (f *fakeServer) membership(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.role == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not a member"})
		return
	}
	writeJSON(w, http.StatusOK, api.Membership{Role: f.role})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cli runs rootCmd against a fake server with its own home directory
type cli struct {
	t      *testing.T
	server *fakeServer
	home   string
	stdin  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()

	// never prompt, never pick up the developer's environment
	t.Setenv("CI", "true")
	for _, key := range []string{"ISSUEHUB_API_URL", "ISSUEHUB_HOME", "ISSUEHUB_FORMAT", "ISSUEHUB_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	return &cli{t: t, server: newFakeServer(t), home: t.TempDir()}
}

// run executes one command line and returns stdout, stderr and the error
func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	return c.runContext(c.t.Context(), args...)
}

// runContext is run with the context handed to ExecuteContext
func (c *cli) runContext(ctx context.Context, args ...string) (string, string, error) {
	c.t.Helper()

	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(append([]string{"--api-url", c.server.apiURL(), "--home", c.home}, args...))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(c.stdin))
	c.stdin = ""

	err := ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// signIn stores a valid token as a previous login would have
func (c *cli) signIn() {
	c.t.Helper()
	require.NoError(c.t, session.NewFileTokenStore(c.home).Save(session.Record{Token: testToken, Email: testEmail}))
}

func (c *cli) credentials() session.Record {
	c.t.Helper()
	rec, err := session.NewFileTokenStore(c.home).Load()
	require.NoError(c.t, err)
	return rec
}

func (c *cli) credentialsExist() bool {
	_, err := os.Stat(filepath.Join(c.home, session.CredentialsFile))
	return err == nil
}

// resetFlags restores every flag to its default between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
