package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.record("register", nil)
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.record("login", nil)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Me(ctx context.Context) error     { f.record("me", nil); return nil }
func (f *fakeExec) Claims(ctx context.Context) error { f.record("claims", nil); return nil }
func (f *fakeExec) Claim(ctx context.Context, args []string) error {
	f.record("claim", args)
	return nil
}
func (f *fakeExec) Images(ctx context.Context, args []string) error {
	f.record("images", args)
	return nil
}
func (f *fakeExec) NewClaim(ctx context.Context) error { f.record("newclaim", nil); return nil }
func (f *fakeExec) SetStatus(ctx context.Context, args []string) error {
	f.record("status", args)
	return nil
}
func (f *fakeExec) DeleteClaim(ctx context.Context, args []string) error {
	f.record("delete", args)
	return errors.New("boom")
}
func (f *fakeExec) Stats(ctx context.Context) error { f.record("stats", nil); return nil }
func (f *fakeExec) Upload(ctx context.Context, args []string) error {
	f.record("upload", args)
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"claims",
		"help",
		"login",
		"help",
		"claims",
		"claim 7",
		"images 7",
		"status 7 verified",
		"delete 7",
		"upload 7 photo.jpg",
		"stats",
		"me",
		"foobar",
		"logout",
		"exit",
		"claims",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"login", "claims", "claim", "images", "status", "delete", "upload", "stats", "me", "logout"}, exec.calls)
	assert.Equal(t, []string{"7", "verified"}, exec.args[4])
	assert.Equal(t, []string{"7", "photo.jpg"}, exec.args[6])

	assert.Contains(t, *out, "Please login first")
	assert.Contains(t, *out, helpAnonymous)
	assert.Contains(t, *out, helpOperator)
	assert.Contains(t, *out, "Error: boom")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_EOFStops(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("\n\nl")))

	assert.Equal(t, []string{"claims"}, exec.calls)
}
