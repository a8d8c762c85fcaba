// Package pacing separates what a session says from how fast it says
// it.  The session engine produces Lines; a Sink delivers them, and
// the Writer implementation applies the typewriter timing that makes a
// 14.4k modem feel like one.  The engine never sleeps.
package pacing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Style selects how a Line is rendered.
type Style int

const (
	// Instant prints the text at once followed by a newline.
	Instant Style = iota
	// Typed prints the text one character at a time, then a newline.
	Typed
	// Prompt prints the text at once without a newline and marks the
	// point where the participant is expected to type.
	Prompt
	// Pause emits nothing and waits for Delay.
	Pause
	// Clear wipes the screen.
	Clear
)

// Line is one unit of session output.
type Line struct {
	Text  string
	Style Style

	// Delay is the per-character delay for Typed lines and the wait for
	// Pause lines.  Zero means "use the sink's default".
	Delay time.Duration

	// Secret marks a Prompt whose answer must not be echoed.
	Secret bool
}

// Print returns an Instant line.
func Print(text string) Line { return Line{Text: text} }

// Printf returns an Instant line built with fmt.Sprintf.
func Printf(format string, args ...interface{}) Line {
	return Line{Text: fmt.Sprintf(format, args...)}
}

// Type returns a Typed line using the sink's default character delay.
func Type(text string) Line { return Line{Text: text, Style: Typed} }

// TypeAt returns a Typed line with an explicit per-character delay.
func TypeAt(text string, perChar time.Duration) Line {
	return Line{Text: text, Style: Typed, Delay: perChar}
}

// Ask returns a Prompt line whose answer is echoed.
func Ask(text string) Line { return Line{Text: text, Style: Prompt} }

// AskSecret returns a Prompt line whose answer must not be echoed.
func AskSecret(text string) Line { return Line{Text: text, Style: Prompt, Secret: true} }

// Wait returns a Pause line.
func Wait(d time.Duration) Line { return Line{Style: Pause, Delay: d} }

// ClearScreen returns a Clear line.
func ClearScreen() Line { return Line{Style: Clear} }

// Sink delivers lines to a participant.  Implementations must return
// promptly once ctx is cancelled.
type Sink interface {
	Write(ctx context.Context, lines []Line) error
}

// Render flattens lines into the text a participant would see, without
// any timing.  Prompts are not followed by a newline.
func Render(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		switch l.Style {
		case Pause:
		case Clear:
			b.WriteString(clearSequence)
		case Prompt:
			b.WriteString(l.Text)
		default:
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// LastPrompt returns the final Prompt line in lines, if any.
func LastPrompt(lines []Line) (Line, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Style == Prompt {
			return lines[i], true
		}
	}
	return Line{}, false
}
