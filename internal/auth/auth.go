// Package auth gates the pipeline behind an interactive login.
package auth

import (
	"bufio"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/guttosm/margintrend/config"
	"github.com/guttosm/margintrend/internal/logger"
)

var (
	// ErrAccessDenied is returned when the username or password does not match.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotConfigured is returned when no credentials are configured to compare against.
	ErrNotConfigured = errors.New("login credentials are not configured")
)

// Authenticator decides whether the caller may run the pipeline.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context) error

func (f AuthenticatorFunc) Authenticate(ctx context.Context) error { return f(ctx) }

// AllowAll lets every caller through. Used when the login gate is disabled.
var AllowAll Authenticator = AuthenticatorFunc(func(context.Context) error { return nil })

// PromptAuthenticator asks for a username on In and a masked password via
// ReadPassword, writing prompts and outcomes to Out.
type PromptAuthenticator struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt; takes precedence over Password

	In           io.Reader
	Out          io.Writer
	ReadPassword func() ([]byte, error)
}

// NewPromptAuthenticator reads from the process terminal.
func NewPromptAuthenticator(cfg config.AuthConfig) *PromptAuthenticator {
	return &PromptAuthenticator{
		Username:     cfg.Username,
		Password:     cfg.Password,
		PasswordHash: cfg.PasswordHash,
		In:           os.Stdin,
		Out:          os.Stdout,
		ReadPassword: func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) },
	}
}

// Authenticate runs the two-step prompt. The password is never echoed and
// never logged.
func (p *PromptAuthenticator) Authenticate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Username == "" || (p.Password == "" && p.PasswordHash == "") {
		return ErrNotConfigured
	}

	reader := bufio.NewReader(p.In)

	fmt.Fprint(p.Out, "Enter Username: ")
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return fmt.Errorf("read username: %w", err)
	}
	username := strings.TrimRight(line, "\r\n")

	if subtle.ConstantTimeCompare([]byte(username), []byte(p.Username)) != 1 {
		fmt.Fprintln(p.Out, "Incorrect username, access denied")
		logger.L().Warn().Msg("login rejected: unknown username")
		return ErrAccessDenied
	}
	fmt.Fprintf(p.Out, "Welcome, %s\n", username)

	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprint(p.Out, "Enter Your Password: ")
	password, err := p.ReadPassword()
	fmt.Fprintln(p.Out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	if !p.passwordMatches(password) {
		fmt.Fprintln(p.Out, "Password incorrect, access denied")
		logger.L().Warn().Str("user", username).Msg("login rejected: wrong password")
		return ErrAccessDenied
	}

	fmt.Fprintln(p.Out, "Login successful...")
	logger.L().Info().Str("user", username).Msg("login successful")
	return nil
}

func (p *PromptAuthenticator) passwordMatches(password []byte) bool {
	if p.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), password) == nil
	}
	return subtle.ConstantTimeCompare(password, []byte(p.Password)) == 1
}
