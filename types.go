package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"scene-studio/entities/scene"
)

// StudioConfig holds configuration for the studio.
type StudioConfig struct {
	Addr           string `toml:"addr"`
	AnthropicKey   string `toml:"anthropic_key"`
	Model          string `toml:"model"`
	LocalURL       string `toml:"local_url"` // OpenAI-compatible endpoint; overrides Anthropic when set
	MaxTokens      int    `toml:"max_tokens"`
	SnapshotSize   int    `toml:"snapshot_size"`
	Supersample    int    `toml:"supersample"`
	VerboseLogging bool   `toml:"verbose"`
}

// LoadConfig reads a TOML config file. A missing file yields a zero config
// so flags and env can fill everything in.
func LoadConfig(path string) (StudioConfig, error) {
	var cfg StudioConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ChatInbound is a client-to-server websocket message.
type ChatInbound struct {
	Type string `json:"type"` // "chat"
	Text string `json:"text"`
}

// ChatOutbound is a server-to-client websocket message. Exactly one of the
// payload fields is set depending on Type.
type ChatOutbound struct {
	Type     string          `json:"type"` // "fragment", "commands", "scene", "done", "error"
	Text     string          `json:"text,omitempty"`
	Commands []scene.Command `json:"commands,omitempty"`
	Scene    *scene.Document `json:"scene,omitempty"`
	Error    string          `json:"error,omitempty"`

	InputTokens  int `json:"inputTokens,omitempty"`
	OutputTokens int `json:"outputTokens,omitempty"`
}

// ChatCallbacks receives pipeline events during a streamed chat turn.
type ChatCallbacks struct {
	OnFragment func(text string)
	OnCommands func(cmds []scene.Command)
	OnScene    func(doc scene.Document)
}
