// Package core is the orchestration layer.  It composes the session
// engine with a front end into a complete operational mode and provides
// a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	pacing, auth, command  →  session  →  transport, web  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of dialup: one dial-in on
// the local terminal, or a server answering calls on the network.  Each
// mode owns its full lifecycle from startup to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
