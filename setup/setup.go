// Package setup is the interactive first-run wizard that writes config.yaml.
package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"panel-tickets/types"

	"gopkg.in/yaml.v3"
)

// MaxAttempts bounds how often a single question is asked again
const MaxAttempts = 3

var ErrTooManyAttempts = errors.New("too many invalid answers")

type Wizard struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{in: bufio.NewScanner(in), out: out}
}

// ask repeats question until validate accepts the answer or MaxAttempts is reached
func (w *Wizard) ask(question string, validate func(string) error) (string, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		fmt.Fprintf(w.out, "%s: ", question)

		if !w.in.Scan() {
			if err := w.in.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}

		answer := strings.TrimSpace(w.in.Text())

		err := validate(answer)

		if err == nil {
			return answer, nil
		}

		fmt.Fprintf(w.out, "Invalid answer: %v (%d/%d)\n", err, attempt, MaxAttempts)
	}

	return "", fmt.Errorf("%w: %s", ErrTooManyAttempts, question)
}

func snowflake(s string) error {
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("%q is not a channel id", s)
	}
	return nil
}

func snowflakeList(s string) error {
	ids := splitList(s)

	if len(ids) == 0 {
		return errors.New("at least one id is required")
	}

	for _, id := range ids {
		if err := snowflake(id); err != nil {
			return err
		}
	}

	return nil
}

func optionalSnowflake(s string) error {
	if s == "" {
		return nil
	}
	return snowflake(s)
}

func anything(string) error { return nil }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Run asks for the settings the bot cannot work without
func (w *Wizard) Run() (*types.Config, error) {
	cfg := types.DefaultConfig()

	panels, err := w.ask("Panel channel IDs (comma separated)", snowflakeList)

	if err != nil {
		return nil, err
	}

	cfg.Panels.ChannelIDs = splitList(panels)

	cfg.Channels.TranscriptChannel, err = w.ask("Transcript channel ID", snowflake)

	if err != nil {
		return nil, err
	}

	cfg.Channels.ModLogChannel, err = w.ask("Moderation log channel ID (empty to use the transcript channel)", optionalSnowflake)

	if err != nil {
		return nil, err
	}

	roles, err := w.ask("Support role names or IDs (comma separated, may be empty)", anything)

	if err != nil {
		return nil, err
	}

	cfg.SupportRoles.Roles = splitList(roles)

	return &cfg, cfg.Validate()
}

// Write stores cfg as YAML at path
func Write(path string, cfg *types.Config) error {
	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating config: %w", err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)

	err = enc.Encode(cfg)

	if err != nil {
		f.Close()
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err = enc.Close(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
