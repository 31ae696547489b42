package types

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Config data
type ConfigPanels struct {
	ChannelIDs []string `yaml:"channel_ids"`
}

type ConfigSupportRoles struct {
	// Names or IDs of the roles that get staff access to every ticket
	Roles []string `yaml:"roles"`
}

type ConfigDatabase struct {
	Postgres string `yaml:"postgres"`
	Redis    string `yaml:"redis"`
}

type ConfigChannels struct {
	TranscriptChannel string `yaml:"transcript_channel"`
	ModLogChannel     string `yaml:"mod_log_channel"`
	ModPanelChannel   string `yaml:"mod_panel_channel"`
}

type ConfigTickets struct {
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

type ConfigTranscripts struct {
	PageBudget int  `yaml:"page_budget"`
	AttachFile bool `yaml:"attach_file"`
}

type ConfigLogging struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type Config struct {
	Panels       ConfigPanels       `yaml:"panels"`
	SupportRoles ConfigSupportRoles `yaml:"support_roles"`
	Channels     ConfigChannels     `yaml:"channels"`
	Tickets      ConfigTickets      `yaml:"tickets"`
	Transcripts  ConfigTranscripts  `yaml:"transcripts"`
	Database     ConfigDatabase     `yaml:"database"`
	Logging      ConfigLogging      `yaml:"logging"`
	Proxy        string             `yaml:"proxy"`
}

type Secrets struct {
	Token string `yaml:"token"`
}

func DefaultConfig() Config {
	return Config{
		Tickets:     ConfigTickets{CooldownSeconds: 10},
		Transcripts: ConfigTranscripts{PageBudget: 3900, AttachFile: true},
		Logging:     ConfigLogging{Level: "info", MaxSizeMB: 50, MaxBackups: 5},
	}
}

// IsPanel reports whether ticket-open requests are accepted from the given channel
func (c *Config) IsPanel(channelID string) bool {
	return slices.Contains(c.Panels.ChannelIDs, channelID)
}

// ModLogChannelID falls back to the transcript channel when no dedicated mod log is set
func (c *Config) ModLogChannelID() string {
	if c.Channels.ModLogChannel != "" {
		return c.Channels.ModLogChannel
	}
	return c.Channels.TranscriptChannel
}

// ModPanelChannelID falls back to the transcript channel when no dedicated mod panel is set
func (c *Config) ModPanelChannelID() string {
	if c.Channels.ModPanelChannel != "" {
		return c.Channels.ModPanelChannel
	}
	return c.Channels.TranscriptChannel
}

func (c *Config) Validate() error {
	if len(c.Panels.ChannelIDs) == 0 {
		return errors.New("panels.channel_ids must contain at least one channel")
	}

	if c.Transcripts.PageBudget <= 0 {
		return fmt.Errorf("transcripts.page_budget must be positive, got %d", c.Transcripts.PageBudget)
	}

	if c.Tickets.CooldownSeconds < 0 {
		return fmt.Errorf("tickets.cooldown_seconds must not be negative, got %d", c.Tickets.CooldownSeconds)
	}

	return nil
}

// LoadConfig decodes path over DefaultConfig and validates the result
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening config: %w", err)
	}

	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&cfg)

	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	err = cfg.Validate()

	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadSecrets decodes path, a missing file is allowed so the token can come from the environment
func LoadSecrets(path string) (*Secrets, error) {
	var secrets Secrets

	f, err := os.Open(path)

	if errors.Is(err, os.ErrNotExist) {
		return &secrets, nil
	}

	if err != nil {
		return nil, fmt.Errorf("error opening secrets: %w", err)
	}

	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&secrets)

	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error decoding secrets: %w", err)
	}

	return &secrets, nil
}
