package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FilePlaceholder in a player command is replaced by a temp file path; other
// commands receive the audio on stdin.
const FilePlaceholder = "{file}"

// PlayerCommand is an external audio player. PCM, when set, reads raw
// FormatPCM audio from stdin; players without it are sent WAV instead.
type PlayerCommand struct {
	Args []string
	PCM  []string
}

// KnownPlayers are tried in order by DetectPlayer.
var KnownPlayers = []PlayerCommand{
	{
		Args: []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"},
		PCM:  []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-f", "s16le", "-ar", strconv.Itoa(PCMSampleRate), "-"},
	},
	{
		Args: []string{"mpv", "--no-video", "--really-quiet", "-"},
		PCM: []string{"mpv", "--no-video", "--really-quiet",
			"--demuxer=rawaudio",
			"--demuxer-rawaudio-format=s16le",
			"--demuxer-rawaudio-rate=" + strconv.Itoa(PCMSampleRate),
			"--demuxer-rawaudio-channels=1",
			"-"},
	},
	{Args: []string{"afplay", FilePlaceholder}},
}

// DetectPlayer returns the first known player found on PATH.
func DetectPlayer() (PlayerCommand, bool) {
	for _, cmd := range KnownPlayers {
		if _, err := exec.LookPath(cmd.Args[0]); err == nil {
			return cmd, true
		}
	}
	return PlayerCommand{}, false
}

// ParseCommand splits a configured player command on whitespace.
func ParseCommand(s string) []string {
	return strings.Fields(s)
}

// ExecSink plays audio through an external command.
type ExecSink struct {
	Command []string
	// PCMCommand plays raw FormatPCM audio. When empty, PCM is wrapped as
	// WAV and sent to Command.
	PCMCommand []string
}

// NewExecSink returns a sink for the given command, or the detected player
// when command is empty.
func NewExecSink(command string) (*ExecSink, error) {
	if args := ParseCommand(command); len(args) > 0 {
		return &ExecSink{Command: args}, nil
	}
	detected, ok := DetectPlayer()
	if !ok {
		return nil, fmt.Errorf("no audio player found (install ffplay or mpv, or set speech.player)")
	}
	return &ExecSink{Command: detected.Args, PCMCommand: detected.PCM}, nil
}

// commandFor picks the command and payload for one playback.
func (s *ExecSink) commandFor(audio []byte, format string) ([]string, []byte, string) {
	if format == FormatPCM && len(s.PCMCommand) > 0 {
		return s.PCMCommand, audio, format
	}
	audio, format = Container(audio, format)
	return s.Command, audio, format
}

// Play runs the command and waits for it to exit. Cancelling ctx kills it.
func (s *ExecSink) Play(ctx context.Context, audio []byte, format string) error {
	if len(s.Command) == 0 {
		return fmt.Errorf("no player command configured")
	}

	args, audio, format := s.commandFor(audio, format)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if containsPlaceholder(args) {
		path, err := writeTemp(audio, format)
		if err != nil {
			return err
		}
		defer func() {
			_ = os.Remove(path)
		}()
		for i, a := range cmd.Args {
			if a == FilePlaceholder {
				cmd.Args[i] = path
			}
		}
	} else {
		cmd.Stdin = bytes.NewReader(audio)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

func writeTemp(audio []byte, format string) (string, error) {
	f, err := os.CreateTemp("", "edumind-speech-*."+format)
	if err != nil {
		return "", fmt.Errorf("create temp audio: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close temp audio: %w", err)
	}
	return f.Name(), nil
}

func containsPlaceholder(args []string) bool {
	for _, a := range args {
		if a == FilePlaceholder {
			return true
		}
	}
	return false
}
