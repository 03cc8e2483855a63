// Package config loads edumind settings from ~/.edumind/config.yaml and
// EDUMIND_* environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. EDUMIND_RENDER_WIDTH.
const EnvPrefix = "EDUMIND"

// Render styles.
const (
	StylePlain = "plain"
	StyleRich  = "rich"
)

// Settings is a typed snapshot of the configuration.
type Settings struct {
	Provider string
	Model    string
	DataDir  string
	LogLevel string
	Render   RenderSettings
	Speech   SpeechSettings
	Server   ServerSettings
}

// RenderSettings controls terminal output.
type RenderSettings struct {
	Width int
	Style string
}

// SpeechSettings controls read-aloud.
type SpeechSettings struct {
	// Player is an external command; empty means auto-detect.
	Player string
	Voice  string
}

// ServerSettings controls `edumind serve`.
type ServerSettings struct {
	Addr   string
	APIKey string
}

// DataDir returns ~/.edumind, or $EDUMIND_HOME when set.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".edumind"), nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	// Empty defers to auth.json's default provider, which starts as gemini.
	v.SetDefault("provider", "")
	v.SetDefault("model", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("render.width", 80)
	v.SetDefault("render.style", StylePlain)
	v.SetDefault("speech.player", "")
	// Empty selects the provider's voice: Kore on Gemini, alloy on OpenAI.
	v.SetDefault("speech.voice", "")
	v.SetDefault("server.addr", ":8088")
	v.SetDefault("server.api_key", "")
}

// Init wires defaults, env overrides and the config file into v. A missing
// file is not an error; an explicitly named one that cannot be read is.
func Init(v *viper.Viper, cfgFile, dataDir string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dataDir != "" {
			v.AddConfigPath(dataDir)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if cfgFile == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load reads a Settings snapshot from v.
func Load(v *viper.Viper, dataDir string) Settings {
	width := v.GetInt("render.width")
	if width <= 0 {
		width = 80
	}

	style := strings.ToLower(v.GetString("render.style"))
	if style != StyleRich {
		style = StylePlain
	}

	return Settings{
		Provider: v.GetString("provider"),
		Model:    v.GetString("model"),
		DataDir:  dataDir,
		LogLevel: v.GetString("log.level"),
		Render: RenderSettings{
			Width: width,
			Style: style,
		},
		Speech: SpeechSettings{
			Player: v.GetString("speech.player"),
			Voice:  v.GetString("speech.voice"),
		},
		Server: ServerSettings{
			Addr:   v.GetString("server.addr"),
			APIKey: v.GetString("server.api_key"),
		},
	}
}

// Redacted returns every setting with secrets masked, for display.
func Redacted(v *viper.Viper) map[string]any {
	out, _ := logging.RedactValue(v.AllSettings()).(map[string]any)
	return out
}
