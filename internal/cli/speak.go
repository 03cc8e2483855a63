package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/edumind/internal/audio"
)

var speakCmd = &cobra.Command{
	Use:   "speak <text|->",
	Short: "Read text aloud",
	Long: `Read text aloud with the provider's text-to-speech.

Markdown markers are stripped and long text is cut at 4000 characters. Pass
"-" to read from stdin. Audio plays through speech.player, or the first of
ffplay, mpv or afplay found on PATH. Use --out to save the audio instead;
raw speech from Gemini is saved as WAV.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().StringP("out", "o", "", "write audio to this file instead of playing it")
}

// readTextArgs returns the joined args, or stdin when the only arg is "-".
func readTextArgs(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return joinArgs(args), nil
}

func runSpeak(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	text, err := readTextArgs(cmd, args)
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.service(cmd.Context())
	if err != nil {
		return err
	}
	if !svc.CanSpeak() {
		return fmt.Errorf("provider %s has no text-to-speech; use --provider gemini or openai", svc.Provider().ID())
	}

	if out != "" {
		resp, err := svc.Speak(cmd.Context(), text)
		if err != nil {
			return err
		}
		data, format := audio.Container(resp.Audio, resp.Format)
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d bytes of %s audio to %s\n", len(data), format, out)
		return nil
	}

	sink, err := audio.NewExecSink(rt.settings.Speech.Player)
	if err != nil {
		return err
	}

	player := audio.NewPlayer(svc.Speak, sink, rt.logger)
	player.OnChange(func(state audio.State, err error) {
		if err == nil && state != audio.Idle {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s...\n", state)
		}
	})
	if err := player.Play(cmd.Context(), text); err != nil {
		return err
	}
	return player.Wait()
}
