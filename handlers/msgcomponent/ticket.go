package msgcomponent

import (
	"errors"
	"time"

	"panel-tickets/state"
	"panel-tickets/tickets"
	"panel-tickets/types"
	"panel-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const unauthorizedPanel = "Tickets can't be opened from this channel."

func ticketOpen(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return utils.Ephemeral(s, i, "Tickets can only be opened from a server.")
	}

	// Rejected clicks must not start a cooldown
	if !st.Config.IsPanel(i.ChannelID) {
		return utils.Ephemeral(s, i, unauthorizedPanel)
	}

	err := utils.Defer(s, i)

	if err != nil {
		return err
	}

	userID := i.Member.User.ID

	ok, wait, err := st.Cooldown.Acquire(st.Context, userID)

	if err != nil {
		st.Logger.Error("Error checking cooldown", zap.Error(err), zap.String("userId", userID))
		return err
	}

	if !ok {
		st.Logger.Info("User is on cooldown", zap.String("userId", userID), zap.Duration("cooldown", wait))
		return utils.Edit(s, i, "You are on cooldown. Please wait ``"+wait.Round(time.Second).String()+"`` before creating another ticket.")
	}

	st.Logger.Info("Creating ticket", zap.String("panelId", i.ChannelID), zap.String("userId", userID))

	t, err := st.Tickets.Open(st.Context, tickets.OpenRequest{
		GuildID:        i.GuildID,
		PanelChannelID: i.ChannelID,
		User:           i.Member.User,
		Member:         i.Member,
	})

	if err != nil {
		if rerr := st.Cooldown.Release(st.Context, userID); rerr != nil {
			st.Logger.Error("Error clearing cooldown", zap.Error(rerr), zap.String("userId", userID))
		}

		if errors.Is(err, types.ErrUnauthorizedPanel) {
			return utils.Edit(s, i, unauthorizedPanel)
		}

		return err
	}

	return utils.Edit(s, i, "Ticket created: <#"+t.ChannelID+">")
}

func ticketClose(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error {
	err := utils.Defer(s, i)

	if err != nil {
		return err
	}

	res, err := st.Tickets.Close(st.Context, tickets.CloseRequest{
		ChannelID:   i.ChannelID,
		CloseUserID: utils.UserID(i),
	})

	var perr *types.PlatformError

	switch {
	case errors.Is(err, types.ErrInvalidChannel):
		return utils.Edit(s, i, "This channel is not a ticket.")
	case errors.Is(err, types.ErrTicketClosing):
		return utils.Edit(s, i, "This ticket is already being closed.")
	case errors.As(err, &perr):
		st.Logger.Error("Error closing ticket", zap.Error(err), zap.String("channelId", i.ChannelID))
		return utils.Edit(s, i, "The ticket channel couldn't be deleted. Please try again later.")
	case err != nil:
		return err
	}

	if res.ArchiveMessage == nil {
		st.ModLog("Ticket <#" + i.ChannelID + "> closed by <@" + utils.UserID(i) + "> without an archive.")
	}

	// The channel this reply belongs to is gone by now
	if err := utils.Edit(s, i, "Ticket closed."); err != nil {
		st.Logger.Debug("Could not confirm ticket close", zap.Error(err), zap.String("channelId", i.ChannelID))
	}

	return nil
}
