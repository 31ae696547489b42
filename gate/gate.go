// Package gate reveals an archived ticket transcript exactly once.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"panel-tickets/directory"
	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	CustomID = "transcript_open"

	Color = 0x00C2A8

	NoMessagesNotice = "No messages recorded in this ticket."

	maxThreadName = 90

	// Discord rejects embed descriptions longer than this many characters
	MaxDescription = 4096

	TruncatedNotice = "\n*(line truncated)*"
)

// Description renders page for an embed, cutting an oversized single line
// down to MaxDescription. The stored page keeps the full text.
func Description(page types.TranscriptPage) string {
	text := page.Text()

	if utf8.RuneCountInString(text) <= MaxDescription {
		return text
	}

	keep := MaxDescription - utf8.RuneCountInString(TruncatedNotice)
	return string([]rune(text)[:keep]) + TruncatedNotice
}

// Components is the control attached to an archive post
func Components(disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "View transcript",
					Style:    discordgo.SecondaryButton,
					CustomID: CustomID,
					Disabled: disabled,
				},
			},
		},
	}
}

// ThreadName is "transcript-<channel>" lowercased and cut to 90 characters
func ThreadName(channelName string) string {
	name := []rune(strings.ToLower("transcript-" + channelName))

	if len(name) > maxThreadName {
		name = name[:maxThreadName]
	}

	return string(name)
}

type Result struct {
	Thread *discordgo.Channel
	Pages  int
}

type Discloser struct {
	dir    directory.Directory
	store  Store
	logger *zap.Logger
}

func NewDiscloser(dir directory.Directory, store Store, logger *zap.Logger) *Discloser {
	return &Discloser{dir: dir, store: store, logger: logger}
}

// Store exposes the backing store so the lifecycle controller can register new gates
func (d *Discloser) Store() Store {
	return d.store
}

// Reveal posts the transcript behind messageID into a new thread. Only the
// first caller to claim the gate posts anything, later callers get
// types.ErrAlreadyRevealed without side effects.
func (d *Discloser) Reveal(ctx context.Context, channelID, messageID string) (*Result, error) {
	c, err := d.dir.Channel(channelID)

	if err != nil || c.Type != discordgo.ChannelTypeGuildText {
		return nil, types.ErrInvalidChannel
	}

	g, err := d.store.Get(ctx, messageID)

	if err != nil {
		return nil, err
	}

	won, err := d.store.Claim(ctx, messageID)

	if err != nil {
		return nil, fmt.Errorf("error claiming transcript gate: %w", err)
	}

	if !won {
		return nil, types.ErrAlreadyRevealed
	}

	thread, err := d.dir.CreateThread(channelID, messageID, ThreadName(g.ChannelName))

	if err != nil {
		// Nothing was disclosed yet, so hand the gate back
		if rerr := d.store.Release(ctx, messageID); rerr != nil {
			d.logger.Error("Error releasing transcript gate", zap.Error(rerr), zap.String("messageId", messageID))
		}
		return nil, err
	}

	res := &Result{Thread: thread, Pages: len(g.Pages)}

	err = d.post(thread.ID, g.Pages)

	d.disable(channelID, messageID)

	if err != nil {
		return res, err
	}

	d.logger.Info("Transcript revealed", zap.String("messageId", messageID), zap.String("threadId", thread.ID), zap.Int("pages", len(g.Pages)))

	return res, nil
}

// post sends pages one at a time so the thread reads in order. A rejected
// page is logged and skipped so the pages after it still get posted.
func (d *Discloser) post(threadID string, pages []types.TranscriptPage) error {
	if len(pages) == 0 {
		_, err := d.dir.SendMessage(threadID, &discordgo.MessageSend{
			Content: NoMessagesNotice,
		})
		return err
	}

	total := strconv.Itoa(len(pages))

	var errs []error

	for i, page := range pages {
		_, err := d.dir.SendMessage(threadID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Messages (" + strconv.Itoa(i+1) + "/" + total + ")",
					Type:        discordgo.EmbedTypeRich,
					Description: Description(page),
					Color:       Color,
				},
			},
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{},
			},
		})

		if err != nil {
			d.logger.Error("Error posting transcript page", zap.Error(err), zap.String("threadId", threadID), zap.Int("page", i+1))
			errs = append(errs, fmt.Errorf("error posting transcript page %d/%s: %w", i+1, total, err))
		}
	}

	return errors.Join(errs...)
}

func (d *Discloser) disable(channelID, messageID string) {
	components := Components(true)

	_, err := d.dir.EditMessage(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Components: &components,
	})

	if err != nil {
		d.logger.Error("Error disabling transcript button", zap.Error(err), zap.String("messageId", messageID))
	}
}

// IsNotice reports errors that should be shown to the user as a plain notice
func IsNotice(err error) bool {
	return errors.Is(err, types.ErrAlreadyRevealed) || errors.Is(err, types.ErrUnknownTranscript) || errors.Is(err, types.ErrInvalidChannel)
}
