package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"testing"

	"github.com/JCBT04/Capstone/core/parent"
	dummybackend "github.com/JCBT04/Capstone/services/backend/dummy"
	"github.com/JCBT04/Capstone/storage/kvstore"
	testutil "github.com/JCBT04/Capstone/tests"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	validate, _ := testutil.Validators(t)
	return &commandLine{
		svc: parent.NewService(dummybackend.NewService(), kvstore.NewInMem(), testutil.NopLogger{}, validate),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCliTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() expected an error, got nil")
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s needs a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to needs a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	runCliTests(t, cli, tests)
}

func Test_commandLine_session(t *testing.T) {
	cli := setup(t)

	pwd := "parent"
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login: no username", args: []string{"login"}, wantErr: errHelp},
		{name: "whoami before login", args: []string{"whoami"}},
		{name: "login", args: []string{"login", "-username", "jdoe"}},
		{name: "whoami", args: []string{"whoami"}},
		{name: "logout", args: []string{"logout"}},
	}
	runCliTests(t, cli, tests)

	t.Run("login: bad credentials", func(t *testing.T) {
		pwd = "nope"
		err := cli.run([]string{"admin", "login", "-username", "jdoe"})
		if err != parent.ErrLoginFailed {
			t.Errorf("cli.run() error = %v, want %v", err, parent.ErrLoginFailed)
		}
	})

	t.Run("login: empty password", func(t *testing.T) {
		pwd = ""
		err := cli.run([]string{"admin", "login", "-username", "jdoe"})
		if err != errHelp {
			t.Errorf("cli.run() error = %v, want %v", err, errHelp)
		}
	})
}
