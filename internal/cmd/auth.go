package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	ierrors "github.com/felixgeelhaar/issuehub/internal/errors"
	"github.com/felixgeelhaar/issuehub/internal/session"
	"github.com/felixgeelhaar/issuehub/internal/tui"
	"github.com/felixgeelhaar/issuehub/internal/ux"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your IssueHub session",
	Long: `Sign in, create an account, sign out and inspect the current session.

The token is stored in <home>/credentials.json with mode 0600.

Examples:
  issuehub auth login --email ada@example.com
  issuehub auth signup --email ada@example.com --name "Ada Lovelace"
  issuehub auth status
  issuehub auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Exchange email and password for a token and store it.

Missing values are prompted for when the terminal is interactive. Use
--password-stdin in scripts to keep the password out of the process list.

Examples:
  issuehub auth login --email ada@example.com
  cat pw.txt | issuehub auth login --email ada@example.com --password-stdin`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRestore: "true"},
	RunE:        runAuthLogin,
}

var authSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	Annotations: map[string]string{
		annotationNoRestore: "true",
	},
	RunE: runAuthSignup,
}

var authLogoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Sign out and remove the stored token",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRestore: "true"},
	RunE:        runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authOpts struct {
	email         string
	name          string
	password      string
	passwordStdin bool
}

func init() {
	for _, c := range []*cobra.Command{authLoginCmd, authSignupCmd} {
		c.Flags().StringVar(&authOpts.email, "email", "", "account email")
		c.Flags().StringVar(&authOpts.password, "password", "", "account password (prefer --password-stdin)")
		c.Flags().BoolVar(&authOpts.passwordStdin, "password-stdin", false, "read the password from stdin")
	}
	authSignupCmd.Flags().StringVar(&authOpts.name, "name", "", "display name")

	authCmd.AddCommand(authLoginCmd, authSignupCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// readCredentials collects email and password from flags, stdin or prompts
func readCredentials(cmd *cobra.Command) (tui.Credentials, error) {
	c := tui.Credentials{Email: authOpts.email, Password: authOpts.password}

	if authOpts.passwordStdin {
		secret, err := ux.ReadSecret(cmd.InOrStdin())
		if err != nil {
			return c, err
		}
		c.Password = secret
	}

	if c.Email != "" && c.Password != "" {
		return c, nil
	}
	if !tui.ShouldPrompt() {
		return c, ierrors.New(ierrors.ErrCodeCredentialsMissing, "email and password are required").
			WithSuggestion("Pass --email and --password-stdin when not running in a terminal")
	}
	return tui.PromptForCredentials(c)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	creds, err := readCredentials(cmd)
	if err != nil {
		return err
	}
	return login(cmd, creds.Email, creds.Password)
}

// login exchanges credentials for a token and hands it to the session store
func login(cmd *cobra.Command, email, password string) error {
	ctx := cmd.Context()

	token, err := app.Client.Login(ctx, email, password)
	if err != nil {
		if api.IsNetworkError(err) {
			return app.Fail(err, "log in")
		}
		return app.Fail(ierrors.NewLoginFailedError(email, err), "log in")
	}

	if err := app.Session.Login(ctx, token.AccessToken); err != nil {
		return app.Fail(ierrors.NewIdentityError(err), "log in")
	}

	user := app.Session.User()
	return app.Render(lines("Logged in as "+user.DisplayName()+" ("+user.Email+")"), user)
}

func runAuthSignup(cmd *cobra.Command, _ []string) error {
	d := tui.SignupDetails{Email: authOpts.email, Name: authOpts.name, Password: authOpts.password}

	if authOpts.passwordStdin {
		secret, err := ux.ReadSecret(cmd.InOrStdin())
		if err != nil {
			return err
		}
		d.Password = secret
	}

	if d.Email == "" || d.Password == "" {
		if !tui.ShouldPrompt() {
			return ierrors.New(ierrors.ErrCodeCredentialsMissing, "email and password are required").
				WithSuggestion("Pass --email and --password-stdin when not running in a terminal")
		}
		var err error
		if d, err = tui.PromptForSignup(d); err != nil {
			return err
		}
	}

	req := api.SignupRequest{Email: d.Email, Password: d.Password}
	if d.Name != "" {
		req.Name = api.Ptr(d.Name)
	}
	if _, err := app.Client.Signup(cmd.Context(), req); err != nil {
		if api.IsNetworkError(err) {
			return app.Fail(err, "sign up")
		}
		return app.Fail(ierrors.Wrap(ierrors.ErrCodeSignupFailed, "signup failed for "+d.Email, err).
			WithSuggestion("If the account exists, run 'issuehub auth login'"), "sign up")
	}

	app.Printf("Account created for %s\n", d.Email)
	return login(cmd, d.Email, d.Password)
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	rec, err := app.Tokens.Load()
	if err != nil {
		app.Logger.Debug("credentials unreadable before logout", "error", err)
	}

	app.Session.Logout(cmd.Context())

	if rec.Token == "" {
		app.Printf("Not logged in.\n")
		return nil
	}
	app.Printf("Logged out.\n\nUse 'issuehub auth login' to sign in again.\n")
	return nil
}

// authStatus is the machine-readable form of 'auth status'
type authStatus struct {
	Status      session.Status `json:"status" yaml:"status"`
	User        *api.User      `json:"user,omitempty" yaml:"user,omitempty"`
	LastEmail   string         `json:"last_email,omitempty" yaml:"last_email,omitempty"`
	APIURL      string         `json:"api_url" yaml:"api_url"`
	Credentials string         `json:"credentials" yaml:"credentials"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func runAuthStatus(_ *cobra.Command, _ []string) error {
	snap := app.Session.Snapshot()
	rec, _ := app.Tokens.Load()

	st := authStatus{
		Status:      snap.Status,
		User:        snap.User,
		LastEmail:   rec.Email,
		APIURL:      app.Client.BaseURL(),
		Credentials: app.Tokens.Path(),
	}
	if exp, ok := session.TokenExpiry(snap.Token); ok {
		st.ExpiresAt = &exp
	}

	return app.Render(st.text(), st)
}

func (s authStatus) text() textFunc {
	if s.User == nil {
		out := []string{"Not logged in."}
		if s.LastEmail != "" {
			out = append(out, "Last signed in as "+s.LastEmail+".")
		}
		out = append(out, "Run 'issuehub auth login' to sign in.")
		return lines(out...)
	}

	pairs := []string{
		"User", s.User.DisplayName(),
		"Email", s.User.Email,
		"ID", formatID(s.User.ID),
		"API", s.APIURL,
		"Credentials", s.Credentials,
	}
	if s.ExpiresAt != nil {
		left := time.Until(*s.ExpiresAt).Round(time.Minute)
		exp := formatTime(*s.ExpiresAt)
		if left <= 0 {
			exp += " (expired)"
		} else {
			exp += " (in " + left.String() + ")"
		}
		pairs = append(pairs, "Expires", exp)
	}
	return fields(pairs...)
}
