package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/iamwookie/qadir-bot/internal/common"
	"github.com/iamwookie/qadir-bot/internal/store"
)

const createProposalModalId = "create-proposal"

// Voting stays open this long after a proposal is created
const proposalDuration = 24 * time.Hour

const (
	upvoteEmoji   = "👍"
	downvoteEmoji = "👎"
)

func proposeCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "propose",
		Description: "Create a proposal for the community to vote on",
	}
}

func (bot *Bot) propose(discord *discordgo.Session, interaction *discordgo.Interaction) {

	if !contains(bot.config.Proposals.Channels, interaction.ChannelID) {
		mentions := make([]string, 0, len(bot.config.Proposals.Channels))
		for _, channel := range bot.config.Proposals.Channels {
			mentions = append(mentions, fmt.Sprintf("<#%s>", channel))
		}
		respondEmbed(discord, interaction, ErrorEmbed("", fmt.Sprintf("This command can only be used in: %s", strings.Join(mentions, ", "))), true)
		return
	}

	if !bot.canPropose(interaction) {
		respondEmbed(discord, interaction, ErrorEmbed("Permission Denied", "You don't have a role that is allowed to create proposals."), true)
		return
	}

	respondModal(discord, interaction, createProposalModalId, "Create Proposal", []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{CustomID: "title", Label: "Title", Style: discordgo.TextInputShort, Required: true, MaxLength: 100},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{CustomID: "description", Label: "Description", Style: discordgo.TextInputParagraph, Required: true, MaxLength: 2000},
		}},
	})
}

// An empty role list in the configuration means everyone can propose
func (bot *Bot) canPropose(interaction *discordgo.Interaction) bool {

	if len(bot.config.Proposals.Roles) == 0 {
		return true
	}
	if interaction.Member == nil {
		return false
	}
	for _, role := range interaction.Member.Roles {
		if contains(bot.config.Proposals.Roles, role) {
			return true
		}
	}
	return false
}

func (bot *Bot) createProposalSubmit(discord *discordgo.Session, interaction *discordgo.Interaction, data discordgo.ModalSubmitInteractionData) {

	respondDeferred(discord, interaction, true)

	title := modalValue(data, 0)
	description := modalValue(data, 1)
	creator := interactionUser(interaction)

	thread, err := discord.ThreadStart(interaction.ChannelID, fmt.Sprintf("📜 %s", title), discordgo.ChannelTypeGuildPublicThread, threadArchiveMinutes)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not create proposal thread: %s", err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to create the proposal thread. Are you sure I have permissions?"), true)
		return
	}

	message, err := discord.ChannelMessageSendEmbed(thread.ID, ProposalEmbed(title, description, creator))
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send proposal embed: %s", err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to post the proposal. Please try again."), true)
		return
	}

	// Seed the vote reactions so voting is one click
	for _, emoji := range []string{upvoteEmoji, downvoteEmoji} {
		if err := discord.MessageReactionAdd(thread.ID, message.ID, emoji); err != nil {
			log.Warn().Msg(fmt.Sprintf("Could not seed %s reaction on proposal %s: %s", emoji, thread.ID, err))
		}
	}

	proposal := store.Proposal{
		ThreadId:  thread.ID,
		MessageId: message.ID,
		CreatorId: creator,
		CreatedAt: time.Now().UTC(),
		Status:    store.ProposalActive,
	}
	if err := bot.store.InsertProposal(context.Background(), proposal); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not save proposal %s: %s", thread.ID, err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to save the proposal. Please try again."), true)
		return
	}

	log.Info().Msg(fmt.Sprintf("Created proposal %s (%s)", title, thread.ID))
	followupEmbed(discord, interaction, SuccessEmbed("Proposal Created", fmt.Sprintf("Your proposal is up for voting: <#%s>", thread.ID)), true)
}

// Keep votes exclusive. When a user adds one of the vote reactions on a
// tracked proposal, their opposite reaction is removed if present
func (bot *Bot) onReactionAdd(discord *discordgo.Session, event *discordgo.MessageReactionAdd) {

	if event.UserID == discord.State.User.ID {
		return
	}
	emoji := event.Emoji.Name
	if emoji != upvoteEmoji && emoji != downvoteEmoji {
		return
	}

	proposals, err := bot.store.ActiveProposals(context.Background())
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch proposals for reaction check: %s", err))
		return
	}
	tracked := false
	for _, proposal := range proposals {
		if proposal.MessageId == event.MessageID {
			tracked = true
			break
		}
	}
	if !tracked {
		return
	}

	opposite := downvoteEmoji
	if emoji == downvoteEmoji {
		opposite = upvoteEmoji
	}

	users, err := discord.MessageReactions(event.ChannelID, event.MessageID, opposite, 100, "", "")
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not list %s reactions on proposal message %s: %s", opposite, event.MessageID, err))
		return
	}
	for _, user := range users {
		if user.ID == event.UserID {
			if err := discord.MessageReactionRemove(event.ChannelID, event.MessageID, opposite, event.UserID); err != nil {
				log.Warn().Msg(fmt.Sprintf("Could not remove conflicting vote of user %s: %s", event.UserID, err))
			}
			break
		}
	}
}

// Check every so often for proposals whose voting period has ended
func (bot *Bot) runProposalsLoop(ctx context.Context) error {

	executor := common.NewTimedExecutor(time.Minute, func() {
		bot.finalizeDueProposals(ctx)
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			executor.Execute()
		}
	}
}

func (bot *Bot) finalizeDueProposals(ctx context.Context) {

	proposals, err := bot.store.ActiveProposals(ctx)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch active proposals: %s", err))
		return
	}

	for _, proposal := range proposals {
		if time.Since(proposal.CreatedAt) < proposalDuration {
			continue
		}
		bot.closeProposal(ctx, proposal)
	}
}

func (bot *Bot) closeProposal(ctx context.Context, proposal store.Proposal) {

	discord := bot.discord

	message, err := discord.ChannelMessage(proposal.ThreadId, proposal.MessageId)
	if err != nil {
		if isNotFound(err) {
			// The thread or message is gone, stop tracking the proposal
			log.Info().Msg(fmt.Sprintf("Pruning proposal %s, its message no longer exists", proposal.ThreadId))
			if err := bot.store.DeleteProposal(ctx, proposal.ThreadId); err != nil {
				log.Error().Msg(fmt.Sprintf("Could not delete proposal %s: %s", proposal.ThreadId, err))
			}
			return
		}
		log.Error().Msg(fmt.Sprintf("Could not fetch proposal message %s: %s", proposal.MessageId, err))
		return
	}

	// The bot's own seed reaction does not count as a vote
	upvotes, downvotes := 0, 0
	for _, reaction := range message.Reactions {
		switch reaction.Emoji.Name {
		case upvoteEmoji:
			upvotes = reaction.Count - 1
		case downvoteEmoji:
			downvotes = reaction.Count - 1
		}
	}
	if upvotes < 0 {
		upvotes = 0
	}
	if downvotes < 0 {
		downvotes = 0
	}

	if _, err := discord.ChannelMessageSendEmbed(proposal.ThreadId, ProposalClosedEmbed(upvotes, downvotes)); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not announce proposal result in %s: %s", proposal.ThreadId, err))
	}

	locked := true
	archived := true
	if _, err := discord.ChannelEditComplex(proposal.ThreadId, &discordgo.ChannelEdit{Locked: &locked, Archived: &archived}); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not lock proposal thread %s: %s", proposal.ThreadId, err))
	}

	if err := bot.store.CloseProposal(ctx, proposal.ThreadId); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not close proposal %s: %s", proposal.ThreadId, err))
		return
	}

	log.Info().Msg(fmt.Sprintf("Closed proposal %s with %d upvotes and %d downvotes", proposal.ThreadId, upvotes, downvotes))
}
