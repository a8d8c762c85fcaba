package command

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Process is one row of the simulated process table.
type Process struct {
	PID     int
	PPID    int
	UID     string
	Command string
	TTY     string
	STime   string
	Time    string
}

// daemons is the part of the table every session shares.
var daemons = []Process{ //nolint:gochecknoglobals
	{PID: 1, PPID: 0, UID: "root", Command: "/etc/init", TTY: "?", STime: "Nov 01", Time: "0:03"},
	{PID: 23, PPID: 1, UID: "root", Command: "/etc/cron", TTY: "?", STime: "Nov 01", Time: "0:00"},
	{PID: 45, PPID: 1, UID: "root", Command: "/etc/syslogd", TTY: "?", STime: "Nov 01", Time: "0:12"},
	{PID: 156, PPID: 1, UID: "root", Command: "/usr/lib/sendmail", TTY: "?", STime: "Nov 02", Time: "1:23"},
	{PID: 234, PPID: 1, UID: "root", Command: "/usr/sbin/inetd", TTY: "?", STime: "Nov 03", Time: "0:45"},
}

// processTable returns the daemons plus the participant's shell and the
// running ps itself, sorted by pid.
func processTable(env *Env, psArgs []string) []Process {
	tty := "tty1a"
	stime := env.Now.Format("15:04")
	psCmd := strings.TrimSpace("ps " + strings.Join(psArgs, " "))

	procs := make([]Process, 0, len(daemons)+2)
	procs = append(procs, daemons...)
	procs = append(procs,
		Process{PID: env.PID, PPID: 1, UID: env.Identity, Command: "-sh", TTY: tty, STime: stime, Time: "0:00"},
		Process{PID: env.PID + 100, PPID: env.PID, UID: env.Identity, Command: psCmd, TTY: tty, STime: stime, Time: "0:00"},
	)
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs
}

// formatPS renders procs as ps does: the full listing for -ef/-aux, or
// only the caller's processes otherwise.
func formatPS(procs []Process, full bool, user string) []string {
	if full {
		out := []string{"  UID   PID  PPID  C    STIME TTY      TIME COMMAND"}
		for _, p := range procs {
			out = append(out, fmt.Sprintf("  %-8s%5d%6d%3d %8s %-8s %4s %s",
				p.UID, p.PID, p.PPID, 0, p.STime, p.TTY, p.Time, p.Command))
		}
		return out
	}
	out := []string{"  PID TTY      TIME COMMAND"}
	for _, p := range procs {
		if p.UID != user {
			continue
		}
		name := strings.Fields(p.Command)[0]
		out = append(out, fmt.Sprintf(" %4d %-8s %4s %s", p.PID, p.TTY, p.Time, path.Base(name)))
	}
	return out
}
