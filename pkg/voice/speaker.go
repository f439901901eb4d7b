// Package voice speaks fusion announcements and scene descriptions.
//
// Speakers are the output boundary: LogSpeaker writes spoken text to the
// log, CommandSpeaker hands it to a text-to-speech program such as espeak,
// and Mock records calls for tests. Announcer feeds a Speaker from the
// event channel.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// Speaker renders text as speech. Speak blocks until the utterance ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Close() error
}

// Speaker names accepted by Open.
const (
	SpeakerLog  = "log"
	SpeakerNone = "none"
)

// Open returns the speaker named by name. Names other than "log" and
// "none" are taken as a text-to-speech command line.
func Open(name string, logger *slog.Logger) (Speaker, error) {
	switch strings.TrimSpace(name) {
	case SpeakerLog, "":
		return NewLogSpeaker(logger), nil
	case SpeakerNone:
		return Silent{}, nil
	default:
		s, err := NewCommandSpeaker(name)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// LogSpeaker logs each utterance.
type LogSpeaker struct {
	log    *slog.Logger
	mu     sync.Mutex
	closed bool
}

// NewLogSpeaker creates a LogSpeaker writing to logger.
func NewLogSpeaker(logger *slog.Logger) *LogSpeaker {
	return &LogSpeaker{log: logger}
}

// Speak implements Speaker.
func (s *LogSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSpeakerClosed
	}
	s.log.Info("speaking", "text", text)
	return nil
}

// Close implements Speaker.
func (s *LogSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Silent discards everything.
type Silent struct{}

// Speak implements Speaker.
func (Silent) Speak(context.Context, string) error { return nil }

// Close implements Speaker.
func (Silent) Close() error { return nil }

// CommandSpeaker runs an external program once per utterance with the
// text as its final argument.
type CommandSpeaker struct {
	name string
	args []string

	mu     sync.Mutex
	closed bool
}

// NewCommandSpeaker parses cmdline ("espeak -s 175") and checks that the
// program is on PATH.
func NewCommandSpeaker(cmdline string) (*CommandSpeaker, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("voice: empty speaker command")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("voice: speaker command %q: %w", fields[0], err)
	}
	return &CommandSpeaker{name: fields[0], args: fields[1:]}, nil
}

// Speak implements Speaker.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSpeakerClosed
	}

	args := append(append([]string(nil), s.args...), text)
	out, err := exec.CommandContext(ctx, s.name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("voice: %s: %w: %s", s.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Close implements Speaker.
func (s *CommandSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
