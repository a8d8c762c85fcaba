package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dialup/internal/content"
	"dialup/internal/pacing"
	"dialup/internal/state"
)

// Builtins returns a Registry holding the stock shell commands.
func Builtins() *Registry {
	r := NewRegistry()
	for _, e := range []Entry{
		{Name: "ls", Usage: "ls [-la] [path ...]", Summary: "list directory contents", Handler: ls},
		{Name: "cd", Usage: "cd [dir]", Summary: "change directory", Handler: cd},
		{Name: "pwd", Usage: "pwd", Summary: "print working directory", Handler: pwd},
		{Name: "mkdir", Usage: "mkdir dir ...", Summary: "make directories", Handler: mkdir},
		{Name: "cat", Usage: "cat <file>", Summary: "concatenate and print files", Handler: cat},
		{Name: "tar", Usage: "tar cvf|xvf file [dir]", Summary: "create or extract tar archives", Handler: tarArchive},
		{Name: "ps", Usage: "ps [-ef] [--sort=pid|cmd]", Summary: "report process status", Handler: ps},
		{Name: "uname", Usage: "uname [-a]", Summary: "print system information", Handler: uname},
		{Name: "whoami", Usage: "whoami", Summary: "print effective user name", Handler: whoami},
		{Name: "who", Usage: "who", Summary: "display logged in users", Handler: who},
		{Name: "w", Usage: "w", Summary: "display users and their activities", Handler: w},
		{Name: "uptime", Usage: "uptime", Summary: "display system uptime", Handler: uptime},
		{Name: "date", Usage: "date", Summary: "print system date and time", Handler: date},
		{Name: "df", Usage: "df", Summary: "report filesystem disk space usage", Handler: df},
		{Name: "echo", Usage: "echo [text]", Summary: "write arguments", Handler: echo},
		{Name: "clear", Usage: "clear", Summary: "clear the terminal screen", Handler: clearScreen},
		{Name: "history", Usage: "history [n]", Summary: "show command history", Handler: history},
		{Name: "alias", Usage: "alias [name[=value]]", Summary: "define or display aliases", Handler: alias},
		{Name: "help", Usage: "help", Summary: "show available commands", Handler: help},
		{Name: "exit", Usage: "exit", Summary: "log out of the system", Handler: logout},
		{Name: "logout", Usage: "logout", Summary: "log out of the system", Handler: logout},
		{Name: "quit", Usage: "quit", Summary: "log out of the system", Handler: logout},
	} {
		e.Required = state.Shell
		r.MustRegister(e)
	}
	return r
}

func lines(ss ...string) Result {
	out := make([]pacing.Line, len(ss))
	for i, s := range ss {
		out[i] = pacing.Print(s)
	}
	return Result{Lines: out}
}

func ps(env *Env, args Args) Result {
	full := args.All("e", "f") || args.All("a", "u", "x")
	procs := processTable(env, args.Raw)
	if args.Option("sort", "pid") == "cmd" {
		sort.SliceStable(procs, func(i, j int) bool { return procs[i].Command < procs[j].Command })
	}
	return lines(formatPS(procs, full, env.Identity)...)
}

func uname(_ *Env, args Args) Result {
	if args.Has("a") {
		return lines(fmt.Sprintf("SCO_SV %s 3.2 2 i386", content.Hostname))
	}
	if args.Has("n") {
		return lines(content.Hostname)
	}
	return lines("SCO_SV")
}

func whoami(env *Env, _ Args) Result { return lines(env.Identity) }

func who(env *Env, _ Args) Result {
	return lines(
		fmt.Sprintf("%-12s %-12s %s", env.Identity, content.Tty, env.LoginAt.Format("Jan 02 15:04")),
		"operator     tty2         Dec 10 23:15",
		"admin        tty3         Dec 11 00:22",
	)
}

func w(env *Env, _ Args) Result {
	return lines(
		fmt.Sprintf(" %s  up 23 days,  4:32,  3 users", env.Now.Format("15:04:05")),
		"User     tty       login@  idle   what",
		fmt.Sprintf("%-8s %-9s %s    0     -sh", env.Identity, content.Tty, env.LoginAt.Format("15:04")),
		"operator tty2      23:15    2:30  /usr/bin/vi",
		"admin    tty3      00:22    1:23  /bin/sh",
	)
}

func uptime(env *Env, _ Args) Result {
	return lines(fmt.Sprintf(" %s  up 23 days,  4:32,  3 users,  load average: 0.15, 0.21, 0.18",
		env.Now.Format("15:04:05")))
}

func date(env *Env, _ Args) Result {
	return lines(env.Now.Format("Mon Jan 02 15:04:05 MST 2006"))
}

func df(*Env, Args) Result {
	return lines(
		"Filesystem            kbytes    used   avail capacity  Mounted on",
		"/dev/root              51200   28672   22528    56%    /",
		"/dev/u                256000  189440   66560    74%    /u",
		"tmpfs                  16384    1024   15360     7%    /tmp",
		"/dev/swap              65536   12288   53248    19%    swap",
	)
}

func echo(_ *Env, args Args) Result { return lines(strings.Join(args.Raw, " ")) }

func clearScreen(*Env, Args) Result {
	return Result{Lines: []pacing.Line{pacing.ClearScreen()}}
}

func history(env *Env, args Args) Result {
	start := 0
	if len(args.Positionals) > 0 {
		if n, err := strconv.Atoi(args.Positionals[0]); err == nil && n >= 0 && n < len(env.History) {
			start = len(env.History) - n
		}
	}
	var out []string
	for i := start; i < len(env.History); i++ {
		out = append(out, fmt.Sprintf("%5d  %s", i+1, env.History[i]))
	}
	return lines(out...)
}

func help(env *Env, _ Args) Result {
	out := []string{"", "Available UNIX commands:", strings.Repeat("-", 60)}
	if env.Registry != nil {
		for _, e := range env.Registry.Entries() {
			out = append(out, fmt.Sprintf("  %-16s - %s", e.Usage, e.Summary))
		}
	}
	return lines(append(out, strings.Repeat("-", 60))...)
}

func alias(env *Env, args Args) Result {
	if len(args.Raw) == 0 {
		names := make([]string, 0, len(env.Aliases))
		for name := range env.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]string, len(names))
		for i, name := range names {
			out[i] = fmt.Sprintf("%s='%s'", name, env.Aliases[name])
		}
		return lines(out...)
	}

	def := strings.Join(args.Raw, " ")
	if name, value, ok := strings.Cut(def, "="); ok {
		if name == "" || strings.ContainsAny(name, " \t") {
			return lines(fmt.Sprintf("alias: %s: invalid alias name", name))
		}
		env.Aliases[name] = strings.Trim(value, `'"`)
		return Result{}
	}
	if value, ok := env.Aliases[def]; ok {
		return lines(fmt.Sprintf("%s='%s'", def, value))
	}
	return lines(fmt.Sprintf("alias: %s: not found", def))
}

func logout(*Env, Args) Result { return Result{Hangup: true} }
