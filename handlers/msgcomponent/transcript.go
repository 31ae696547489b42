package msgcomponent

import (
	"errors"

	"panel-tickets/state"
	"panel-tickets/types"
	"panel-tickets/utils"

	"github.com/bwmarrin/discordgo"
)

var notices = map[error]string{
	types.ErrAlreadyRevealed:   "This transcript has already been opened.",
	types.ErrUnknownTranscript: "This transcript is no longer available.",
	types.ErrInvalidChannel:    "Transcripts can only be opened in a text channel.",
}

func transcriptNotice(err error) (string, bool) {
	for target, msg := range notices {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

func transcriptOpen(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error {
	if i.Message == nil {
		return utils.Ephemeral(s, i, "This transcript is no longer available.")
	}

	err := utils.Defer(s, i)

	if err != nil {
		return err
	}

	res, err := st.Gates.Reveal(st.Context, i.ChannelID, i.Message.ID)

	if msg, ok := transcriptNotice(err); ok {
		return utils.Edit(s, i, msg)
	}

	if err != nil {
		return err
	}

	return utils.Edit(s, i, "Transcript opened in <#"+res.Thread.ID+">")
}
