package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/crucial707/school-issues/cmd/cli/config"
	"github.com/crucial707/school-issues/cmd/cli/output"
	"github.com/crucial707/school-issues/cmd/cli/root"
	"github.com/crucial707/school-issues/internal/issues"
	"github.com/crucial707/school-issues/internal/router"
	"github.com/crucial707/school-issues/internal/session"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users",
		Long:  "List registered users or register a new one in the credential store.",
	}

	usersCmd.AddCommand(listUsersCmd(), registerCmd())
	root.GetRoot().AddCommand(usersCmd)
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			repo, closeDB, err := config.OpenUserRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			users, err := repo.List(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users registered.")
				return nil
			}

			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{u.Username, u.Email, u.Gender, u.Birthday, u.Age})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Username", "Email", "Gender", "Birthday", "Age"}, rows)
			return nil
		},
	}
}

// ==========================
// Register User
// ==========================

// registerCmd runs the same validation and duplicate handling as the signup page.
func registerCmd() *cobra.Command {
	var form router.SignupForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user. The password is prompted for when --password is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if form.Password == "" {
				prompt := newPasswordPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())
				pw, err := prompt.read("Password: ")
				if err != nil {
					return err
				}
				confirm, err := prompt.read("Confirm password: ")
				if err != nil {
					return err
				}
				form.Password, form.Confirm = pw, confirm
			} else {
				form.Confirm = form.Password
			}

			repo, closeDB, err := config.OpenUserRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			r := router.New(repo, issues.NewMemoryStore(), log)
			s := session.New(time.Now())
			r.Signup(ctx, s, form)

			var failed error
			for _, m := range s.Drain() {
				fmt.Fprintln(cmd.OutOrStdout(), m.Text)
				if m.Level == session.LevelError {
					failed = errors.New("registration failed")
				}
			}
			return failed
		},
	}

	cmd.Flags().StringVar(&form.Username, "username", "", "username (required)")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Gender, "gender", "", "Male, Female, Other or empty")
	cmd.Flags().StringVar(&form.Birthday, "birthday", "", "birthday as YYYY-MM-DD")
	cmd.Flags().StringVar(&form.Age, "age", "", "age between 0 and 150")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// passwordPrompt reads passwords without echo from a terminal, or one line
// at a time from any other input.
type passwordPrompt struct {
	out io.Writer
	fd  int
	tty bool
	in  *bufio.Reader
}

func newPasswordPrompt(in io.Reader, out io.Writer) *passwordPrompt {
	p := &passwordPrompt{out: out, in: bufio.NewReader(in)}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd, p.tty = int(f.Fd()), true
	}
	return p
}

func (p *passwordPrompt) read(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if p.tty {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		return string(b), err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
