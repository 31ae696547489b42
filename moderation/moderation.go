// Package moderation holds the channel actions shared by slash commands and the moderator panel.
package moderation

import (
	"fmt"
	"time"

	"panel-tickets/directory"

	"github.com/bwmarrin/discordgo"
)

// bulkDeleteMaxAge is how old a message may be for the bulk delete endpoint
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// Purge deletes up to limit of the most recent messages and returns how many went away
func Purge(s *discordgo.Session, dir directory.Directory, channelID string, limit int) (int, error) {
	msgs, err := dir.Messages(channelID, limit)

	if err != nil {
		return 0, err
	}

	ids, old := PurgeTargets(msgs, time.Now())

	deleted := 0

	if len(ids) == 1 {
		old = append(old, ids[0])
	} else if len(ids) > 1 {
		err = s.ChannelMessagesBulkDelete(channelID, ids)

		if err != nil {
			return 0, fmt.Errorf("error bulk deleting messages: %w", err)
		}

		deleted += len(ids)
	}

	for _, id := range old {
		if err := s.ChannelMessageDelete(channelID, id); err != nil {
			return deleted, fmt.Errorf("error deleting message: %w", err)
		}
		deleted++
	}

	return deleted, nil
}

// PurgeTargets splits messages into those eligible for bulk delete and those that need a single delete
func PurgeTargets(msgs []*discordgo.Message, now time.Time) (bulk []string, single []string) {
	for _, m := range msgs {
		if now.Sub(m.Timestamp) < bulkDeleteMaxAge {
			bulk = append(bulk, m.ID)
		} else {
			single = append(single, m.ID)
		}
	}
	return bulk, single
}

// LockOverwrite flips only the send messages bit of the @everyone overwrite
func LockOverwrite(existing *discordgo.PermissionOverwrite, locked bool) (allow, deny int64) {
	if existing != nil {
		allow, deny = existing.Allow, existing.Deny
	}

	if locked {
		allow &^= discordgo.PermissionSendMessages
		deny |= discordgo.PermissionSendMessages
	} else {
		deny &^= discordgo.PermissionSendMessages
	}

	return allow, deny
}

// SetLocked denies or restores @everyone's ability to talk in channelID
func SetLocked(s *discordgo.Session, dir directory.Directory, guildID, channelID string, locked bool) error {
	c, err := dir.Channel(channelID)

	if err != nil {
		return err
	}

	var existing *discordgo.PermissionOverwrite
	for _, o := range c.PermissionOverwrites {
		if o.ID == guildID && o.Type == discordgo.PermissionOverwriteTypeRole {
			existing = o
			break
		}
	}

	allow, deny := LockOverwrite(existing, locked)

	return s.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny)
}

func SetSlowmode(s *discordgo.Session, channelID string, seconds int) error {
	_, err := s.ChannelEdit(channelID, &discordgo.ChannelEdit{
		RateLimitPerUser: &seconds,
	})

	return err
}
