package vfs

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

// Tar archives the directory at dir.  Members are named relative to
// dir's parent, so "tar cvf a.tar usr" stores usr/...; archiving "/"
// stores its children at the top level.  The returned names are in
// archive order.
func (v *FS) Tar(dir string) ([]byte, []string, error) {
	n, err := v.Resolve(dir)
	if err != nil {
		return nil, nil, err
	}
	if !n.Dir {
		return nil, nil, &fs.PathError{Op: "tar", Path: dir, Err: ErrNotDir}
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	var names []string
	add := func(node *Node, name string) error {
		hdr := &tar.Header{
			Name:    name,
			ModTime: node.MTime,
			Uname:   node.Owner,
			Gname:   node.Group,
		}
		if node.Dir {
			hdr.Typeflag, hdr.Mode, hdr.Name = tar.TypeDir, 0o755, name+"/"
		} else {
			hdr.Typeflag, hdr.Mode, hdr.Size = tar.TypeReg, 0o644, int64(len(node.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !node.Dir {
			if _, err := io.WriteString(tw, node.Body); err != nil {
				return err
			}
		}
		names = append(names, name)
		return nil
	}

	var walk func(node *Node, name string) error
	walk = func(node *Node, name string) error {
		if name != "" {
			if err := add(node, name); err != nil {
				return err
			}
		}
		for _, c := range node.Children() {
			if err := walk(c, path.Join(name, c.Name)); err != nil {
				return err
			}
		}
		return nil
	}
	base := n.Name
	if n.parent == nil {
		base = ""
	}
	if err := walk(n, base); err != nil {
		return nil, nil, fmt.Errorf("tar %s: %w", dir, err)
	}
	if err := tw.Close(); err != nil {
		return nil, nil, fmt.Errorf("tar %s: %w", dir, err)
	}
	return buf.Bytes(), names, nil
}

// Extract unpacks a tar archive into the working directory, creating
// intermediate directories as needed and replacing files that already
// exist.  Members that would land outside the working directory are
// skipped.  It returns the names extracted before any error.
func (v *FS) Extract(data []byte, now time.Time) ([]string, error) {
	tr := tar.NewReader(bytes.NewReader(data))
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return names, err
		}

		name := path.Clean(strings.TrimSuffix(hdr.Name, "/"))
		if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			continue
		}
		names = append(names, name)

		mtime := hdr.ModTime
		if mtime.IsZero() {
			mtime = now
		}
		dir, base := path.Split(name)
		parent, err := v.mkdirFrom(v.cwd, dir, now)
		if err != nil {
			return names, &fs.PathError{Op: "extract", Path: name, Err: err}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if c, ok := parent.children[base]; ok {
				if !c.Dir {
					return names, &fs.PathError{Op: "extract", Path: name, Err: ErrNotDir}
				}
				continue
			}
			d := v.newNode(base, true, mtime)
			parent.add(d)
		case tar.TypeReg:
			body, err := io.ReadAll(tr)
			if err != nil {
				return names, err
			}
			c, ok := parent.children[base]
			if ok && c.Dir {
				return names, &fs.PathError{Op: "extract", Path: name, Err: ErrIsDir}
			}
			if !ok {
				c = v.newNode(base, false, mtime)
				parent.add(c)
			}
			c.Body, c.size, c.MTime = string(body), len(body), mtime
		}
	}
}
