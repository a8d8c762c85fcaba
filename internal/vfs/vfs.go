// Package vfs is the in-memory directory tree a dial-in session browses.
// Each session gets its own tree seeded from the stock install; nothing
// here touches the host's file system and nothing outlives the session.
//
// An FS is not safe for concurrent use.  The owning session serializes
// access.
package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"dialup/internal/content"
)

var (
	// ErrNotDir: a path component, or the target, is not a directory.
	ErrNotDir = errors.New("not a directory")
	// ErrIsDir: a file operation was aimed at a directory.
	ErrIsDir = errors.New("is a directory")
)

const (
	dirMode  = "rwxr-xr-x"
	fileMode = "rw-r--r--"
	dirSize  = 512
)

// Node is a file or directory.
type Node struct {
	Name  string
	Dir   bool
	Mode  string // permission bits as ls prints them, without the type
	Owner string
	Group string
	Body  string
	MTime time.Time

	size     int
	parent   *Node
	children map[string]*Node
}

// Size is the byte count ls reports.
func (n *Node) Size() int { return n.size }

// Path returns the absolute path of n.
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	var parts []string
	for p := n; p.parent != nil; p = p.parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Children returns the entries of a directory sorted by name.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Links is the link count ls -l shows.
func (n *Node) Links() int {
	if n.Dir {
		return len(n.children) + 2
	}
	return 1
}

// Parent returns the enclosing directory; the root is its own parent.
func (n *Node) Parent() *Node {
	if n.parent == nil {
		return n
	}
	return n.parent
}

// FS is one session's tree plus its working directory.
type FS struct {
	// Owner and Group stamp nodes created during the session.
	Owner string
	Group string

	root *Node
	cwd  *Node
}

// New returns a tree holding the stock install, with the working
// directory at "/".
func New() *FS {
	root := &Node{Name: "/", Dir: true, Mode: dirMode, Owner: "root", Group: "sys",
		MTime: content.InstallTime, size: dirSize, children: map[string]*Node{}}
	v := &FS{Owner: "root", Group: "sys", root: root, cwd: root}
	for _, e := range content.Tree {
		dir, name := path.Split(e.Path)
		parent, err := v.mkdirFrom(root, dir, content.InstallTime)
		if err != nil {
			panic(fmt.Sprintf("vfs: stock tree: %v", err))
		}
		n := &Node{Name: name, Dir: e.Dir, Mode: e.Mode, Owner: e.Owner, Group: e.Group,
			Body: e.Body, MTime: content.InstallTime, size: e.Size}
		if !e.Dir && e.Body != "" {
			n.size = len(e.Body)
		}
		parent.add(n)
	}
	return v
}

func (n *Node) add(c *Node) {
	if c.Dir && c.children == nil {
		c.children = map[string]*Node{}
	}
	c.parent = n
	n.children[c.Name] = c
}

// Root returns the top of the tree.
func (v *FS) Root() *Node { return v.root }

// Cwd returns the absolute path of the working directory.
func (v *FS) Cwd() string { return v.cwd.Path() }

// Resolve looks p up relative to the working directory.  "." and ".."
// work as usual; ".." at the root stays at the root.
func (v *FS) Resolve(p string) (*Node, error) {
	n := v.cwd
	if strings.HasPrefix(p, "/") {
		n = v.root
	}
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			n = n.Parent()
			continue
		}
		if !n.Dir {
			return nil, &fs.PathError{Op: "resolve", Path: p, Err: ErrNotDir}
		}
		c, ok := n.children[part]
		if !ok {
			return nil, &fs.PathError{Op: "resolve", Path: p, Err: fs.ErrNotExist}
		}
		n = c
	}
	return n, nil
}

// Chdir changes the working directory.  An empty path means "/".
func (v *FS) Chdir(p string) error {
	if p == "" {
		v.cwd = v.root
		return nil
	}
	n, err := v.Resolve(p)
	if err != nil {
		return err
	}
	if !n.Dir {
		return &fs.PathError{Op: "chdir", Path: p, Err: ErrNotDir}
	}
	v.cwd = n
	return nil
}

// Mkdir creates one directory; its parent must exist.
func (v *FS) Mkdir(p string, now time.Time) error {
	parent, name, err := v.split(p)
	if err != nil {
		return &fs.PathError{Op: "mkdir", Path: p, Err: err}
	}
	if _, dup := parent.children[name]; dup {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
	}
	parent.add(v.newNode(name, true, now))
	return nil
}

// ReadFile returns the body of the file at p.
func (v *FS) ReadFile(p string) (string, error) {
	n, err := v.Resolve(p)
	if err != nil {
		return "", err
	}
	if n.Dir {
		return "", &fs.PathError{Op: "read", Path: p, Err: ErrIsDir}
	}
	return n.Body, nil
}

// WriteFile creates or replaces the file at p.
func (v *FS) WriteFile(p, body string, now time.Time) error {
	parent, name, err := v.split(p)
	if err != nil {
		return &fs.PathError{Op: "write", Path: p, Err: err}
	}
	n, ok := parent.children[name]
	if ok && n.Dir {
		return &fs.PathError{Op: "write", Path: p, Err: ErrIsDir}
	}
	if !ok {
		n = v.newNode(name, false, now)
		parent.add(n)
	}
	n.Body, n.size, n.MTime = body, len(body), now
	return nil
}

// split resolves the parent directory of p and returns the final name.
func (v *FS) split(p string) (*Node, string, error) {
	dir, name := path.Split(strings.TrimSuffix(p, "/"))
	if name == "" || name == "." || name == ".." {
		return nil, "", fs.ErrInvalid
	}
	parent := v.cwd
	if dir != "" {
		n, err := v.Resolve(dir)
		if err != nil {
			return nil, "", errors.Unwrap(err)
		}
		parent = n
	}
	if !parent.Dir {
		return nil, "", ErrNotDir
	}
	return parent, name, nil
}

// mkdirFrom walks dir below n, creating missing directories.
func (v *FS) mkdirFrom(n *Node, dir string, now time.Time) (*Node, error) {
	for _, part := range strings.Split(dir, "/") {
		if part == "" {
			continue
		}
		c, ok := n.children[part]
		if !ok {
			c = v.newNode(part, true, now)
			n.add(c)
		}
		if !c.Dir {
			return nil, ErrNotDir
		}
		n = c
	}
	return n, nil
}

func (v *FS) newNode(name string, dir bool, now time.Time) *Node {
	n := &Node{Name: name, Dir: dir, Mode: fileMode, Owner: v.Owner, Group: v.Group, MTime: now}
	if dir {
		n.Mode, n.size = dirMode, dirSize
	}
	return n
}

// LongEntry formats n as one line of ls -l.
func LongEntry(n *Node, name string) string {
	kind := "-"
	if n.Dir {
		kind = "d"
	}
	return fmt.Sprintf("%s%s %2d %-8s %-8s %8d %s %s",
		kind, n.Mode, n.Links(), n.Owner, n.Group, n.Size(), n.MTime.Format("Jan 02 15:04"), name)
}

// Reason renders err the way a Unix utility ends its complaint.
func Reason(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
		return "No such file or directory"
	case errors.Is(err, fs.ErrExist):
		return "File exists"
	case errors.Is(err, ErrNotDir):
		return "Not a directory"
	case errors.Is(err, ErrIsDir):
		return "Is a directory"
	}
	return err.Error()
}
