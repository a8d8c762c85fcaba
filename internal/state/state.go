// Package state defines the lifecycle of a dial-in session.
//
// A session moves strictly forward through the states below.  The only
// backward edge is a failed login, which loops from Authenticating back
// to AwaitingUsername.
package state

// State is a position in the session lifecycle.
type State int

const (
	Disconnected State = iota
	Dialing
	Handshake
	AwaitingUsername
	AwaitingPassword
	Authenticating
	Shell
	Disconnecting
)

var names = [...]string{
	Disconnected:     "DISCONNECTED",
	Dialing:          "DIALING",
	Handshake:        "HANDSHAKE",
	AwaitingUsername: "AWAITING_USERNAME",
	AwaitingPassword: "AWAITING_PASSWORD",
	Authenticating:   "AUTHENTICATING",
	Shell:            "SHELL",
	Disconnecting:    "DISCONNECTING",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

// AcceptsInput reports whether a line typed by the participant has a
// defined transition in this state.
func (s State) AcceptsInput() bool {
	return s == AwaitingUsername || s == AwaitingPassword || s == Shell
}

// Automatic reports whether the state advances on its own once its
// output has been delivered.
func (s State) Automatic() bool {
	return s == Dialing || s == Handshake || s == Authenticating
}

// Authenticated reports whether an identity must be set in this state.
// A session that reaches Disconnecting keeps whatever identity it had.
func (s State) Authenticated() bool {
	return s == Shell
}
