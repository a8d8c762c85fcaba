package pacing

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Styles(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0, 0)

	err := w.Write(context.Background(), []Line{
		Print("AT"),
		Type("OK"),
		Wait(0),
		Ask("login: "),
	})
	require.NoError(t, err)
	assert.Equal(t, "AT\nOK\nlogin: ", buf.String())
}

func TestWriter_CRLF(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0, 0)
	w.CRLF = true

	require.NoError(t, w.Write(context.Background(), []Line{Print("NO CARRIER"), ClearScreen()}))
	assert.Equal(t, "NO CARRIER\r\n"+clearSequence, buf.String())
}

func TestWriter_TypedCharByChar(t *testing.T) {
	var chunks []string
	w := NewWriter(writerFunc(func(p []byte) (int, error) {
		chunks = append(chunks, string(p))
		return len(p), nil
	}), time.Microsecond, 0)

	require.NoError(t, w.Write(context.Background(), []Line{Type("BEEP")}))
	assert.Equal(t, []string{"B", "E", "E", "P", "\n"}, chunks)
}

func TestWriter_ScaleZeroDisablesPacing(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, time.Second, time.Second)
	w.Scale = 0

	start := time.Now()
	require.NoError(t, w.Write(context.Background(), []Line{Type("CONNECT 14400/V.32bis"), Wait(time.Second)}))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "CONNECT 14400/V.32bis\n", buf.String())
}

func TestWriter_CancelAbortsPacing(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 50*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := w.Write(ctx, []Line{Type("KSSSSSHHHHhhhh...."), Print("never")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
	assert.NotContains(t, buf.String(), "never")
}

func TestWriter_WriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	w := NewWriter(writerFunc(func(p []byte) (int, error) { return 0, boom }), 0, 0)
	err := w.Write(context.Background(), []Line{Print("x")})
	assert.ErrorIs(t, err, boom)
}

func TestRenderAndLastPrompt(t *testing.T) {
	lines := []Line{Print("a"), Ask("login: "), Print("b"), AskSecret("Password: ")}
	assert.Equal(t, "a\nlogin: b\nPassword: ", Render(lines))

	p, ok := LastPrompt(lines)
	require.True(t, ok)
	assert.True(t, p.Secret)

	_, ok = LastPrompt([]Line{Print("x")})
	assert.False(t, ok)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Write(context.Background(), []Line{Print("one")}))
	require.NoError(t, r.Write(context.Background(), []Line{Printf("%d", 2)}))
	assert.Equal(t, "one\n2\n", r.Text())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, r.Write(ctx, []Line{Print("late")}))
	assert.Len(t, r.Lines(), 2)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestWriter_EchoBypassesTranslation(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 0, 0)
	w.CRLF = true

	n, err := w.Echo().Write([]byte("ls\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "ls\n", buf.String())
}
