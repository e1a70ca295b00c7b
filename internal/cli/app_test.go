package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCommands struct {
	calls []string
	err   error
}

func (s *stubCommands) createUser(ctx context.Context) error {
	s.calls = append(s.calls, "createuser")
	return s.err
}

func (s *stubCommands) login(ctx context.Context) error {
	s.calls = append(s.calls, "login")
	return s.err
}

func (s *stubCommands) whoami(ctx context.Context) error {
	s.calls = append(s.calls, "whoami")
	return s.err
}

func (s *stubCommands) addEntry(ctx context.Context) error {
	s.calls = append(s.calls, "addentry")
	return s.err
}

func (s *stubCommands) listEntries(ctx context.Context) error {
	s.calls = append(s.calls, "entries")
	return s.err
}

func (s *stubCommands) cleanup(ctx context.Context) error {
	s.calls = append(s.calls, "cleanup")
	return s.err
}

func (s *stubCommands) stats(ctx context.Context) error {
	s.calls = append(s.calls, "stats")
	return s.err
}

func TestDispatch_RoutesCommands(t *testing.T) {
	commands := []string{"createuser", "login", "whoami", "addentry", "entries", "cleanup", "stats"}

	for _, cmd := range commands {
		t.Run(cmd, func(t *testing.T) {
			stub := &stubCommands{}
			var out bytes.Buffer

			if err := dispatch(context.Background(), stub, cmd, &out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(stub.calls) != 1 || stub.calls[0] != cmd {
				t.Errorf("expected call to %q, got %v", cmd, stub.calls)
			}
		})
	}
}

func TestDispatch_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	stub := &stubCommands{err: want}
	var out bytes.Buffer

	if err := dispatch(context.Background(), stub, "cleanup", &out); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestDispatch_Help(t *testing.T) {
	stub := &stubCommands{}
	var out bytes.Buffer

	if err := dispatch(context.Background(), stub, "help", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Errorf("help should not invoke commands, got %v", stub.calls)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("expected usage output, got %q", out.String())
	}
}

func TestDispatch_Unknown(t *testing.T) {
	stub := &stubCommands{}
	var out bytes.Buffer

	err := dispatch(context.Background(), stub, "frobnicate", &out)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected unknown command error, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("expected usage output, got %q", out.String())
	}
}

func TestRun_NoCommand(t *testing.T) {
	var out bytes.Buffer
	app := &App{out: &out}

	if err := app.Run(context.Background(), nil); err == nil {
		t.Error("expected error for missing command")
	}

	out.Reset()
	if err := app.Run(context.Background(), []string{"-d"}); err == nil {
		t.Error("expected error when only flags are given")
	}
}
