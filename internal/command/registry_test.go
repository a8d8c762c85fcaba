package command

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialup/internal/content"
	"dialup/internal/errors"
	"dialup/internal/pacing"
	"dialup/internal/state"
)

func shellEnv(identity string) *Env {
	return &Env{
		Identity: identity,
		Now:      content.Epoch.Add(5 * time.Minute),
		LoginAt:  content.Epoch,
		PID:      812,
	}
}

func run(t *testing.T, r *Registry, env *Env, line string) (string, Result) {
	t.Helper()
	res, err := r.Dispatch(state.Shell, env, line)
	require.NoError(t, err)
	return pacing.Render(res.Lines), res
}

func TestRegister_Rejects(t *testing.T) {
	r := NewRegistry()
	h := func(*Env, Args) Result { return Result{} }

	require.NoError(t, r.Register(Entry{Name: "ok", Handler: h}))
	assert.Error(t, r.Register(Entry{Name: "ok", Handler: h}), "duplicate")
	assert.Error(t, r.Register(Entry{Name: "", Handler: h}), "empty")
	assert.Error(t, r.Register(Entry{Name: "two words", Handler: h}), "whitespace")
	assert.Error(t, r.Register(Entry{Name: "nil"}), "nil handler")
	assert.Panics(t, func() { r.MustRegister(Entry{Name: "ok", Handler: h}) })
}

func TestDispatch_Unknown(t *testing.T) {
	r := Builtins()
	res, err := r.Dispatch(state.Shell, shellEnv("root"), "vi /etc/passwd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownCommand))
	assert.Equal(t, "vi: not found\n", pacing.Render(res.Lines))
}

func TestDispatch_CaseSensitive(t *testing.T) {
	_, err := Builtins().Dispatch(state.Shell, shellEnv("root"), "LS")
	assert.True(t, errors.Is(err, errors.ErrUnknownCommand))
}

func TestDispatch_WrongStateIsUnknown(t *testing.T) {
	called := false
	r := NewRegistry()
	r.MustRegister(Entry{Name: "ls", Required: state.Shell, Handler: func(*Env, Args) Result {
		called = true
		return Result{}
	}})

	for _, st := range []state.State{state.AwaitingUsername, state.AwaitingPassword, state.Dialing} {
		_, err := r.Dispatch(st, shellEnv("root"), "ls -l")
		assert.True(t, errors.Is(err, errors.ErrUnknownCommand), st.String())
	}
	_, err := r.Dispatch(state.Shell, shellEnv(""), "ls")
	assert.True(t, errors.Is(err, errors.ErrUnknownCommand), "no identity")
	assert.False(t, called)
}

func TestDispatch_Blank(t *testing.T) {
	res, err := Builtins().Dispatch(state.Shell, shellEnv("root"), "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	assert.False(t, res.Hangup)
}

func TestBuiltins_Output(t *testing.T) {
	r := Builtins()
	tests := []struct {
		line     string
		contains []string
		excludes []string
	}{
		{"uname", []string{"SCO_SV\n"}, []string{"i386"}},
		{"uname -a", []string{"SCO_SV scohost 3.2 2 i386"}, nil},
		{"uname -z", []string{"SCO_SV\n"}, nil},
		{"whoami", []string{"guest\n"}, nil},
		{"pwd", []string{"/\n"}, nil},
		{"ls", []string{"bin  dev  etc"}, []string{".profile", "total"}},
		{"ls -a", []string{".profile"}, nil},
		{"ls -l", []string{"total ", "drwxr-xr-x", " usr"}, []string{".profile"}},
		{"ls -la", []string{".profile", "-rw-r--r--"}, nil},
		{"ls /nowhere", []string{"ls: cannot access /nowhere: No such file or directory"}, nil},
		{"ls -l unix", []string{"-r--r--r--", "unix"}, []string{"total"}},
		{"ls /etc /nowhere", []string{"motd  passwd\n", "ls: cannot access /nowhere"}, nil},
		{"cat", []string{"Usage: cat"}, nil},
		{"cat /etc/motd", []string{"maintenance"}, nil},
		{"cat /etc/shadow", []string{"cat: cannot open /etc/shadow: No such file or directory\n"}, nil},
		{"cat /etc", []string{"cat: cannot open /etc: Is a directory"}, nil},
		{"ls /home/dxmail/lib", []string{"queue\n"}, nil},
		{"ls -l /etc/passwd", []string{"-r--r--r--", "/etc/passwd"}, nil},
		{"tar", []string{"Usage: tar"}, nil},
		{"date", []string{"Mon Dec 11 01:50:00 PST 1995"}, nil},
		{"uptime", []string{"01:50:00  up 23 days", "load average"}, nil},
		{"who", []string{"guest        tty1a        Dec 11 01:45", "operator"}, nil},
		{"w", []string{"guest    tty1a     01:45", "/usr/bin/vi"}, nil},
		{"df", []string{"/dev/root", "Mounted on"}, nil},
		{"echo hello   world", []string{"hello world\n"}, nil},
		{"ps", []string{"  PID TTY", "  812 tty1a    0:00 -sh", "  912 tty1a    0:00 ps"}, []string{"sendmail"}},
		{"ps -ef", []string{"  UID   PID", "/usr/lib/sendmail", "ps -ef", "-sh"}, nil},
		{"ps -aux", []string{"/usr/sbin/inetd"}, nil},
		{"ps -e", []string{"  PID TTY"}, []string{"inetd"}},
		{"ps --sort=cmd", []string{"-sh", "0:00 ps"}, []string{"sendmail"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			text, res := run(t, r, shellEnv("guest"), tt.line)
			assert.False(t, res.Hangup)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, text, bad)
			}
		})
	}
}

func TestBuiltins_PSSortByCommand(t *testing.T) {
	text, _ := run(t, Builtins(), shellEnv("guest"), "ps -ef --sort=cmd")
	sh, initd := strings.Index(text, "-sh"), strings.Index(text, "/etc/init")
	require.True(t, sh >= 0 && initd >= 0, text)
	assert.Less(t, sh, initd)

	text, _ = run(t, Builtins(), shellEnv("guest"), "ps -ef")
	assert.Less(t, strings.Index(text, "/etc/init"), strings.Index(text, "-sh"))
}

func TestBuiltins_Clear(t *testing.T) {
	_, res := run(t, Builtins(), shellEnv("root"), "clear")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, pacing.Clear, res.Lines[0].Style)
}

func TestBuiltins_Logout(t *testing.T) {
	for _, name := range []string{"exit", "logout", "quit"} {
		_, res := run(t, Builtins(), shellEnv("root"), name)
		assert.True(t, res.Hangup, name)
	}
}

func TestBuiltins_History(t *testing.T) {
	env := shellEnv("root")
	env.History = []string{"ls", "ps -ef", "date"}

	text, _ := run(t, Builtins(), env, "history")
	assert.Equal(t, "    1  ls\n    2  ps -ef\n    3  date\n", text)

	text, _ = run(t, Builtins(), env, "history 1")
	assert.Equal(t, "    3  date\n", text)

	text, _ = run(t, Builtins(), env, "history bogus")
	assert.Equal(t, 3, strings.Count(text, "\n"))
}

func TestBuiltins_Navigation(t *testing.T) {
	r, env := Builtins(), shellEnv("guest")
	steps := []struct {
		line string
		want string
	}{
		{"cd /home/dxmail", ""},
		{"pwd", "/home/dxmail\n"},
		{"cd lib/queue", ""},
		{"pwd", "/home/dxmail/lib/queue\n"},
		{"ls", "README  trash\n"},
		{"cd ghost", "cd: ghost: No such file or directory\n"},
		{"cd README", "cd: README: Not a directory\n"},
		{"pwd", "/home/dxmail/lib/queue\n"},
		{"cd ../..", ""},
		{"pwd", "/home/dxmail\n"},
		{"cd", ""},
		{"pwd", "/\n"},
	}
	for _, step := range steps {
		text, _ := run(t, r, env, step.line)
		assert.Equal(t, step.want, text, step.line)
	}
}

func TestBuiltins_Mkdir(t *testing.T) {
	r, env := Builtins(), shellEnv("guest")

	text, _ := run(t, r, env, "mkdir")
	assert.Equal(t, "Usage: mkdir directory ...\n", text)

	text, _ = run(t, r, env, "mkdir /tmp/work /tmp/work/old")
	assert.Empty(t, text)
	text, _ = run(t, r, env, "ls /tmp/work")
	assert.Equal(t, "old\n", text)
	text, _ = run(t, r, env, "ls -l /tmp/work/old")
	assert.Equal(t, "total 0\n", text)

	text, _ = run(t, r, env, "mkdir /tmp/work /a/b")
	assert.Equal(t, "mkdir: cannot create directory '/tmp/work': File exists\n"+
		"mkdir: cannot create directory '/a/b': No such file or directory\n", text)

	text, _ = run(t, r, shellEnv("guest"), "ls /tmp")
	assert.Empty(t, text, "each environment gets its own tree")
}

func TestBuiltins_Tar(t *testing.T) {
	r, env := Builtins(), shellEnv("guest")

	text, _ := run(t, r, env, "cd /tmp")
	require.Empty(t, text)
	text, _ = run(t, r, env, "tar cvf lib.tar /home/dxmail/lib")
	assert.Equal(t, "a lib\na lib/queue\na lib/queue/README\na lib/queue/trash\n", text)

	text, _ = run(t, r, env, "ls -l lib.tar")
	assert.Contains(t, text, "-rw-r--r--")

	text, _ = run(t, r, env, "cd /u")
	require.Empty(t, text)
	text, _ = run(t, r, env, "tar -xvf /tmp/lib.tar")
	assert.Equal(t, "x lib\nx lib/queue\nx lib/queue/README\nx lib/queue/trash\n", text)

	want, _ := run(t, r, env, "cat /home/dxmail/lib/queue/README")
	got, _ := run(t, r, env, "cat lib/queue/README")
	assert.Equal(t, want, got)

	tests := []struct {
		line string
		want string
	}{
		{"tar cvf a.tar", "tar: missing directory argument\n"},
		{"tar cvf a.tar /unix", "tar: /unix: Not a directory\n"},
		{"tar xvf ghost.tar", "tar: ghost.tar: No such file or directory\n"},
		{"tar xvf /etc/motd", "tar: Error extracting archive"},
		{"tar zvf a.tar", "tar: invalid option -- 'zvf'\nUsage: tar"},
	}
	for _, tt := range tests {
		text, _ := run(t, r, env, tt.line)
		assert.True(t, strings.HasPrefix(text, tt.want), "%s: %q", tt.line, text)
	}
}

func TestBuiltins_Alias(t *testing.T) {
	r, env := Builtins(), shellEnv("guest")

	text, _ := run(t, r, env, "alias")
	assert.Empty(t, text)

	text, _ = run(t, r, env, "alias ll='ls -l'")
	assert.Empty(t, text)
	text, _ = run(t, r, env, "alias h=history")
	assert.Empty(t, text)

	text, _ = run(t, r, env, "alias")
	assert.Equal(t, "h='history'\nll='ls -l'\n", text)
	text, _ = run(t, r, env, "alias ll")
	assert.Equal(t, "ll='ls -l'\n", text)
	text, _ = run(t, r, env, "alias nope")
	assert.Equal(t, "alias: nope: not found\n", text)
	text, _ = run(t, r, env, "alias =x")
	assert.Equal(t, "alias: : invalid alias name\n", text)

	text, _ = run(t, r, env, "ll /etc")
	assert.True(t, strings.HasPrefix(text, "total 8\n"), text)
	assert.Contains(t, text, " motd\n")

	text, _ = run(t, r, env, "alias gone=vi")
	assert.Empty(t, text)
	res, err := r.Dispatch(state.Shell, env, "gone x")
	assert.True(t, errors.Is(err, errors.ErrUnknownCommand))
	assert.Equal(t, "vi: not found\n", pacing.Render(res.Lines))
}

func TestBuiltins_HelpListsRegistry(t *testing.T) {
	r := Builtins()
	text, _ := run(t, r, shellEnv("root"), "help")
	for _, e := range r.Entries() {
		assert.Contains(t, text, e.Usage)
	}
	assert.Less(t, strings.Index(text, "cat <file>"), strings.Index(text, "whoami"))
	for _, name := range []string{"cd [dir]", "mkdir dir", "tar cvf|xvf", "alias [name"} {
		assert.Contains(t, text, name)
	}
}

func TestEntries_Sorted(t *testing.T) {
	entries := Builtins().Entries()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Name, entries[i].Name)
	}
	for _, e := range entries {
		assert.Equal(t, state.Shell, e.Required, e.Name)
	}
}
