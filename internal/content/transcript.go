// Package content holds the fixed text a dial-in session prints: the
// modem transcript, the host banner, login chatter, and the farewell.
// Everything here is static data plus the simulated clock that stamps
// it; no function in this package keeps state between calls.
package content

import (
	"fmt"
	"strings"
	"time"

	"dialup/internal/pacing"
)

const (
	// Hostname of the simulated machine.
	Hostname = "scohost"
	// Tty every dial-in lands on.
	Tty = "tty1a"
	// ConnectRate is the negotiated carrier rate.
	ConnectRate = "14400/V.32bis"
	// DialNumber is the number the modem dials.
	DialNumber = "555-1234"
	// LoginPrompt and PasswordPrompt are printed without a newline.
	LoginPrompt    = "login: "
	PasswordPrompt = "Password: "
	// LoginIncorrect is the only failure text; it never says which half was wrong.
	LoginIncorrect = "Login incorrect"
	// NoCarrier is the final modem response once the line drops.
	NoCarrier = "NO CARRIER"
)

const (
	fastType = 20 * time.Millisecond
	slowType = 30 * time.Millisecond
	dialType = 40 * time.Millisecond
)

var rule = strings.Repeat("=", 60) //nolint:gochecknoglobals
var thin = strings.Repeat("-", 60) //nolint:gochecknoglobals

// atCommands is the modem initialization script.  An empty response
// means the modem answers with a carrier rather than OK.
var atCommands = []struct{ cmd, resp string }{ //nolint:gochecknoglobals
	{"AT", "OK"},
	{"ATZ", "OK"},
	{"ATE1", "OK"},
	{"ATM1", "OK"},
	{"ATX4", "OK"},
	{"ATDT " + DialNumber, ""},
}

var handshake = []string{ //nolint:gochecknoglobals
	"RRRRR.....",
	"KSSSSSHHHHhhhh....",
	"BEEEEeeeeee....",
	"WRRRRrrrrrr....",
	"CHHHhhhhh....",
}

var logo = []string{ //nolint:gochecknoglobals
	"     ███████╗ ██████╗ ██████╗     ██╗   ██╗███╗   ██╗██╗██╗  ██╗",
	"     ██╔════╝██╔════╝██╔═══██╗    ██║   ██║████╗  ██║██║╚██╗██╔╝",
	"     ███████╗██║     ██║   ██║    ██║   ██║██╔██╗ ██║██║ ╚███╔╝ ",
	"     ╚════██║██║     ██║   ██║    ██║   ██║██║╚██╗██║██║ ██╔██╗ ",
	"     ███████║╚██████╗╚██████╔╝    ╚██████╔╝██║ ╚████║██║██╔╝ ██╗",
	"     ╚══════╝ ╚═════╝ ╚═════╝      ╚═════╝ ╚═╝  ╚═══╝╚═╝╚═╝  ╚═╝",
}

// Init is the modem initialization transcript: the AT command script
// up to and including the dial command.
func Init() []pacing.Line {
	lines := []pacing.Line{
		pacing.Print(""),
		pacing.Print(rule),
		pacing.Print("     MODEM COMMUNICATIONS SIMULATOR v2.4"),
		pacing.Print("     Copyright (C) 1995-1998"),
		pacing.Print(rule),
		pacing.Print(""),
		pacing.Wait(500 * time.Millisecond),
		pacing.TypeAt("Initializing modem...", slowType),
		pacing.Wait(300 * time.Millisecond),
	}
	for _, at := range atCommands {
		lines = append(lines, pacing.TypeAt(at.cmd, fastType), pacing.Wait(200*time.Millisecond))
		if at.resp != "" {
			lines = append(lines, pacing.TypeAt(at.resp, fastType))
		}
		lines = append(lines, pacing.Wait(300*time.Millisecond))
	}
	return lines
}

// Dial is the dial tone and carrier negotiation, ending in CONNECT.
func Dial() []pacing.Line {
	lines := []pacing.Line{
		pacing.Print(""),
		pacing.TypeAt("Dialing...", dialType),
		pacing.Wait(500 * time.Millisecond),
		pacing.TypeAt(strings.Repeat("BEEP ", 7), 30*time.Millisecond),
		pacing.Print(""),
		pacing.Wait(500 * time.Millisecond),
		pacing.TypeAt("Connecting...", dialType),
		pacing.Wait(800 * time.Millisecond),
	}
	for _, s := range handshake {
		lines = append(lines, pacing.TypeAt(s, fastType), pacing.Wait(300*time.Millisecond))
	}
	return append(lines,
		pacing.Wait(500*time.Millisecond),
		pacing.Print(""),
		pacing.TypeAt("CONNECT "+ConnectRate, slowType),
		pacing.Wait(500*time.Millisecond),
	)
}

// Banner is the host login screen.
func Banner(now time.Time) []pacing.Line {
	lines := []pacing.Line{
		pacing.Print(""),
		pacing.Print(rule),
		pacing.Print(""),
	}
	for _, l := range logo {
		lines = append(lines, pacing.Print(l))
	}
	return append(lines,
		pacing.Print(""),
		pacing.Print("     SCO UNIX System V/386 Release 3.2"),
		pacing.Print("     Copyright (C) 1976-1995 The Santa Cruz Operation, Inc."),
		pacing.Print(rule),
		pacing.Print(""),
		pacing.Printf("System time: %s", now.Format("Jan 02 15:04:05 2006")),
		pacing.Print("Last successful connection: Dec 08 23:15:42 1995"),
		pacing.Print(""),
		pacing.Print(thin),
		pacing.Print(""),
	)
}

// Authenticating is printed between the password and the verdict.
func Authenticating() []pacing.Line {
	return []pacing.Line{
		pacing.TypeAt("Authenticating...", 100*time.Millisecond),
		pacing.Wait(500 * time.Millisecond),
	}
}

// Rejected follows a failed login.
func Rejected() []pacing.Line {
	return []pacing.Line{
		pacing.Print(""),
		pacing.TypeAt(LoginIncorrect, slowType),
		pacing.Wait(500 * time.Millisecond),
		pacing.Print(""),
	}
}

// Welcome follows a successful login.
func Welcome(identity string, now time.Time) []pacing.Line {
	return []pacing.Line{
		pacing.Print(""),
		pacing.TypeAt(fmt.Sprintf("*** Login successful for %s ***", identity), slowType),
		pacing.Wait(500 * time.Millisecond),
		pacing.Print(""),
		pacing.Print(rule),
		pacing.Print("  SCO UNIX System V/386 Release 3.2"),
		pacing.Print(rule),
		pacing.Print(""),
		pacing.Printf("Last login: %s on %s", now.Format("Mon Jan 02 15:04:05"), Tty),
		pacing.Print("Terminal: vt100"),
		pacing.Print(""),
		pacing.Print("You have mail."),
		pacing.Print(""),
		pacing.Print(thin),
		pacing.Printf("SCO UNIX System V/386 Release 3.2 (%s)", Hostname),
		pacing.Print(thin),
		pacing.Print(""),
	}
}

// Farewell is printed when an authenticated participant logs out.
// Connect time is reported in whole minutes, never less than one.
func Farewell(identity string, connected time.Duration) []pacing.Line {
	minutes := int(connected / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return []pacing.Line{
		pacing.Print(""),
		pacing.Print(rule),
		pacing.TypeAt("Closing session...", slowType),
		pacing.Wait(500 * time.Millisecond),
		pacing.TypeAt(fmt.Sprintf("Goodbye, %s!", identity), slowType),
		pacing.TypeAt(fmt.Sprintf("Connect time: %d minutes", minutes), slowType),
		pacing.Wait(500 * time.Millisecond),
	}
}

// Hangup closes the connection and drops the carrier.  NO CARRIER is
// always the last line a session prints.
func Hangup() []pacing.Line {
	return []pacing.Line{
		pacing.Print(""),
		pacing.TypeAt("Disconnecting...", slowType),
		pacing.Wait(500 * time.Millisecond),
		pacing.Print(rule),
		pacing.Print("  Connection closed"),
		pacing.Print(rule),
		pacing.Wait(300 * time.Millisecond),
		pacing.TypeAt("+++ATH0", slowType),
		pacing.Wait(300 * time.Millisecond),
		pacing.TypeAt(NoCarrier, slowType),
	}
}

// ShellPrompt returns the prompt for identity.
func ShellPrompt(identity string) string {
	if identity == "root" {
		return "# "
	}
	return "$ "
}
