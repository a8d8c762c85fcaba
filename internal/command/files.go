package command

import (
	"fmt"
	"strings"

	"dialup/internal/vfs"
)

func ls(env *Env, args Args) Result {
	long, all := args.Has("l"), args.Has("a")
	targets := args.Positionals
	if len(targets) == 0 {
		targets = []string{""}
	}

	var out []string
	for _, target := range targets {
		n, err := env.FS.Resolve(target)
		if err != nil {
			out = append(out, fmt.Sprintf("ls: cannot access %s: %s", target, vfs.Reason(err)))
			continue
		}
		out = append(out, listing(n, target, long, all)...)
	}
	return lines(out...)
}

// listing renders one ls operand: a file is shown under the name it was
// given, a directory lists its entries (dot files only with -a).
func listing(n *vfs.Node, operand string, long, all bool) []string {
	if !n.Dir {
		if long {
			return []string{vfs.LongEntry(n, operand)}
		}
		return []string{operand}
	}

	type entry struct {
		node *vfs.Node
		name string
	}
	var entries []entry
	if all {
		entries = append(entries, entry{n, "."}, entry{n.Parent(), ".."})
	}
	for _, c := range n.Children() {
		if all || !strings.HasPrefix(c.Name, ".") {
			entries = append(entries, entry{c, c.Name})
		}
	}

	if !long {
		if len(entries) == 0 {
			return nil
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.name
		}
		return []string{strings.Join(names, "  ")}
	}
	out := []string{fmt.Sprintf("total %d", len(entries)*4)}
	for _, e := range entries {
		out = append(out, vfs.LongEntry(e.node, e.name))
	}
	return out
}

func cd(env *Env, args Args) Result {
	target := ""
	if len(args.Positionals) > 0 {
		target = args.Positionals[0]
	}
	if err := env.FS.Chdir(target); err != nil {
		return lines(fmt.Sprintf("cd: %s: %s", target, vfs.Reason(err)))
	}
	return Result{}
}

func pwd(env *Env, _ Args) Result { return lines(env.FS.Cwd()) }

func mkdir(env *Env, args Args) Result {
	if len(args.Positionals) == 0 {
		return lines("Usage: mkdir directory ...")
	}
	var out []string
	for _, dir := range args.Positionals {
		if err := env.FS.Mkdir(dir, env.Now); err != nil {
			out = append(out, fmt.Sprintf("mkdir: cannot create directory '%s': %s", dir, vfs.Reason(err)))
		}
	}
	return lines(out...)
}

func cat(env *Env, args Args) Result {
	if len(args.Positionals) == 0 {
		return lines("Usage: cat file ...")
	}
	var out []string
	for _, name := range args.Positionals {
		body, err := env.FS.ReadFile(name)
		if err != nil {
			out = append(out, fmt.Sprintf("cat: cannot open %s: %s", name, vfs.Reason(err)))
			continue
		}
		if body != "" {
			out = append(out, strings.Split(strings.TrimSuffix(body, "\n"), "\n")...)
		}
	}
	return lines(out...)
}

const tarUsage = "Usage: tar [cvf|xvf] file [directory]"

// tarArchive handles the two verbose forms: "tar cvf file dir" writes
// an archive of dir into file, "tar xvf file" unpacks file into the
// working directory.  A leading dash on the key is accepted.
func tarArchive(env *Env, args Args) Result {
	if len(args.Raw) < 2 {
		return lines(tarUsage)
	}
	key, file := strings.TrimPrefix(args.Raw[0], "-"), args.Raw[1]

	switch key {
	case "cvf":
		if len(args.Raw) < 3 {
			return lines("tar: missing directory argument")
		}
		dir := args.Raw[2]
		data, names, err := env.FS.Tar(dir)
		if err != nil {
			return lines(fmt.Sprintf("tar: %s: %s", dir, vfs.Reason(err)))
		}
		if err := env.FS.WriteFile(file, string(data), env.Now); err != nil {
			return lines(fmt.Sprintf("tar: %s: %s", file, vfs.Reason(err)))
		}
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = "a " + name
		}
		return lines(out...)

	case "xvf":
		body, err := env.FS.ReadFile(file)
		if err != nil {
			return lines(fmt.Sprintf("tar: %s: %s", file, vfs.Reason(err)))
		}
		if body == "" {
			return lines(fmt.Sprintf("tar: %s: Empty archive", file))
		}
		names, err := env.FS.Extract([]byte(body), env.Now)
		out := make([]string, 0, len(names)+1)
		for _, name := range names {
			out = append(out, "x "+name)
		}
		if err != nil {
			out = append(out, fmt.Sprintf("tar: Error extracting archive: %v", err))
		}
		return lines(out...)
	}
	return lines(fmt.Sprintf("tar: invalid option -- '%s'", key), tarUsage)
}
