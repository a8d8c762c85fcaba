package vfs

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialup/internal/content"
)

var now = content.Epoch.Add(10 * time.Minute)

func TestNew_StockTree(t *testing.T) {
	v := New()
	assert.Equal(t, "/", v.Cwd())

	for _, e := range content.Tree {
		n, err := v.Resolve(e.Path)
		require.NoError(t, err, e.Path)
		assert.Equal(t, e.Dir, n.Dir, e.Path)
		assert.Equal(t, e.Path, n.Path())
	}

	unix, err := v.Resolve("/unix")
	require.NoError(t, err)
	assert.Equal(t, 786432, unix.Size())

	motd, err := v.ReadFile("/etc/motd")
	require.NoError(t, err)
	assert.Contains(t, motd, "maintenance")
}

func TestNew_TreesAreIndependent(t *testing.T) {
	a, b := New(), New()
	require.NoError(t, a.Mkdir("/tmp/mine", now))
	_, err := b.Resolve("/tmp/mine")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestResolve(t *testing.T) {
	v := New()
	require.NoError(t, v.Chdir("/home/dxmail/lib"))

	tests := []struct {
		path string
		want string
		err  error
	}{
		{"", "/home/dxmail/lib", nil},
		{".", "/home/dxmail/lib", nil},
		{"queue/trash", "/home/dxmail/lib/queue/trash", nil},
		{"..", "/home/dxmail", nil},
		{"../../..", "/", nil},
		{"/../..", "/", nil},
		{"/etc//motd", "/etc/motd", nil},
		{"nowhere", "", fs.ErrNotExist},
		{"/etc/motd/x", "", ErrNotDir},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, err := v.Resolve(tt.path)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Path())
		})
	}
}

func TestChdir(t *testing.T) {
	v := New()
	require.NoError(t, v.Chdir("home"))
	require.NoError(t, v.Chdir("dxmail"))
	assert.Equal(t, "/home/dxmail", v.Cwd())

	assert.ErrorIs(t, v.Chdir("/unix"), ErrNotDir)
	assert.ErrorIs(t, v.Chdir("ghost"), fs.ErrNotExist)
	assert.Equal(t, "/home/dxmail", v.Cwd(), "failed cd keeps the directory")

	require.NoError(t, v.Chdir(""))
	assert.Equal(t, "/", v.Cwd())
}

func TestMkdir(t *testing.T) {
	v := New()
	v.Owner, v.Group = "guest", "other"
	require.NoError(t, v.Mkdir("projects", now))
	require.NoError(t, v.Mkdir("projects/old/", now))

	n, err := v.Resolve("/projects/old")
	require.NoError(t, err)
	assert.True(t, n.Dir)
	assert.Equal(t, "guest", n.Owner)
	assert.Equal(t, now, n.MTime)

	assert.ErrorIs(t, v.Mkdir("projects", now), fs.ErrExist)
	assert.ErrorIs(t, v.Mkdir("a/b", now), fs.ErrNotExist)
	assert.ErrorIs(t, v.Mkdir("unix/b", now), ErrNotDir)
	assert.Equal(t, "No such file or directory", Reason(v.Mkdir("/", now)))
}

func TestReadWriteFile(t *testing.T) {
	v := New()
	require.NoError(t, v.WriteFile("/tmp/note", "hello", now))
	body, err := v.ReadFile("/tmp/note")
	require.NoError(t, err)
	assert.Equal(t, "hello", body)

	require.NoError(t, v.WriteFile("/tmp/note", "bye", now))
	n, _ := v.Resolve("/tmp/note")
	assert.Equal(t, 3, n.Size())

	_, err = v.ReadFile("/etc")
	assert.ErrorIs(t, err, ErrIsDir)
	assert.ErrorIs(t, v.WriteFile("/etc", "x", now), ErrIsDir)
}

func TestLongEntry(t *testing.T) {
	v := New()
	bin, err := v.Resolve("/bin")
	require.NoError(t, err)
	entry := LongEntry(bin, bin.Name)
	assert.True(t, strings.HasPrefix(entry, "drwxr-xr-x  2 bin      bin"), entry)
	assert.True(t, strings.HasSuffix(entry, "Nov 01 09:12 bin"), entry)

	home, _ := v.Resolve("/home")
	assert.Equal(t, 3, home.Links())
}

func TestReason(t *testing.T) {
	v := New()
	_, err := v.ReadFile("ghost")
	assert.Equal(t, "No such file or directory", Reason(err))
	assert.Equal(t, "File exists", Reason(v.Mkdir("/etc", now)))
	assert.Equal(t, "Not a directory", Reason(v.Chdir("/unix")))
	_, err = v.ReadFile("/usr")
	assert.Equal(t, "Is a directory", Reason(err))
}
