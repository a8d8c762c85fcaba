package content

import "time"

// Entry is one node of the directory tree every session starts with.
type Entry struct {
	Path  string // absolute
	Mode  string // permission bits as ls prints them, without the type
	Owner string
	Group string
	Size  int    // reported size for directories; files report len(Body)
	Body  string // file contents
	Dir   bool
}

// InstallTime stamps every node of the stock tree.
var InstallTime = time.Date(1995, time.November, 1, 9, 12, 0, 0, Zone) //nolint:gochecknoglobals

const profile = `# .profile for root
PATH=/bin:/usr/bin:/etc:/usr/sbin
export PATH
PS1='# '
TERM=vt100
export TERM`

const motd = `SCO UNIX System V/386 Release 3.2
Copyright (C) 1976-1995 The Santa Cruz Operation, Inc.

Welcome to SCO UNIX!
Scheduled maintenance: Sunday 02:00-04:00. Please log off by 01:45.
Report problems to sysadmin.`

const passwd = `root:x:0:3:0000-Admin(0000):/:
daemon:x:1:12:0000-Admin(0000):/:
sysadmin:x:0:0:System V Administration:/usr/admin:
user:x:200:50:General User:/usr/user:/bin/sh
guest:x:201:50:Guest Account:/usr/guest:/bin/sh`

const queueNote = `dxmail spool: 0 messages queued
last run: Dec 11 01:30`

// Tree is the stock install.  Parents come before their children.
var Tree = []Entry{ //nolint:gochecknoglobals
	{Path: "/.profile", Mode: "rw-r--r--", Owner: "root", Group: "sys", Body: profile},
	{Path: "/bin", Mode: "rwxr-xr-x", Owner: "bin", Group: "bin", Size: 1536, Dir: true},
	{Path: "/dev", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 3072, Dir: true},
	{Path: "/etc", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 2048, Dir: true},
	{Path: "/etc/motd", Mode: "rw-r--r--", Owner: "root", Group: "sys", Body: motd},
	{Path: "/etc/passwd", Mode: "r--r--r--", Owner: "root", Group: "sys", Body: passwd},
	{Path: "/home", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/home/dxmail", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/home/dxmail/bin", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/home/dxmail/etc", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/home/dxmail/lib", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/home/dxmail/lib/queue", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/home/dxmail/lib/queue/README", Mode: "rw-r--r--", Owner: "root", Group: "sys", Body: queueNote},
	{Path: "/home/dxmail/lib/queue/trash", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/lib", Mode: "rwxr-xr-x", Owner: "bin", Group: "bin", Size: 1024, Dir: true},
	{Path: "/tmp", Mode: "rwxrwxrwt", Owner: "sys", Group: "sys", Size: 512, Dir: true},
	{Path: "/u", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
	{Path: "/unix", Mode: "r--r--r--", Owner: "bin", Group: "bin", Size: 786432},
	{Path: "/usr", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 1024, Dir: true},
	{Path: "/var", Mode: "rwxr-xr-x", Owner: "root", Group: "sys", Size: 512, Dir: true},
}
