package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/iamwookie/qadir-bot/internal/common"
	"github.com/iamwookie/qadir-bot/internal/store"
)

// Tracked embeds are refreshed at least this often, even when the next
// light change is further out
const hangarRefreshInterval = time.Minute

// Edits to tracked messages are spaced out to stay clear of rate limits
const hangarEditInterval = time.Second

func hangarCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "hangar",
		Description: "Executive hangar status",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Post a live updating hangar status embed in this channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Show the current hangar status",
			},
		},
	}
}

func (bot *Bot) handleHangarCommand(discord *discordgo.Session, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {

	if len(data.Options) == 0 {
		return
	}

	switch data.Options[0].Name {
	case "create":
		bot.createHangarEmbed(discord, interaction)
	case "status":
		respondEmbed(discord, interaction, HangarEmbed(bot.calculator.StateAt(time.Now())), true)
	}
}

func (bot *Bot) createHangarEmbed(discord *discordgo.Session, interaction *discordgo.Interaction) {

	respondDeferred(discord, interaction, true)

	message, err := discord.ChannelMessageSendEmbed(interaction.ChannelID, HangarEmbed(bot.calculator.StateAt(time.Now())))
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send hangar embed: %s", err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to post the hangar embed. Are you sure I have permissions?"), true)
		return
	}

	tracked := store.HangarMessage{
		MessageId: message.ID,
		ChannelId: interaction.ChannelID,
		GuildId:   interaction.GuildID,
	}
	if err := bot.store.InsertHangarMessage(context.Background(), tracked); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not save hangar message %s: %s", message.ID, err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to save the hangar embed. Please try again."), true)
		return
	}

	log.Info().Msg(fmt.Sprintf("Tracking hangar embed %s in channel %s", message.ID, interaction.ChannelID))
	followupEmbed(discord, interaction, SuccessEmbed("Embed Created", "The hangar status embed will now update automatically."), true)
}

// Keep every tracked hangar embed in sync with the cycle. Wakes up at
// the next light change or after a minute, whichever comes first
func (bot *Bot) runHangarUpdater(ctx context.Context) error {

	pacer := common.NewPacer(hangarEditInterval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		state := bot.calculator.StateAt(time.Now())
		if err := bot.updateHangarEmbeds(ctx, &pacer); err != nil {
			return err
		}

		sleep := time.Until(state.NextLightChange)
		if sleep > hangarRefreshInterval {
			sleep = hangarRefreshInterval
		}
		if sleep < time.Second {
			sleep = time.Second
		}
		timer.Reset(sleep)
	}
}

func (bot *Bot) updateHangarEmbeds(ctx context.Context, pacer *common.Pacer) error {

	messages, err := bot.store.HangarMessages(ctx)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch hangar messages: %s", err))
		return nil
	}

	for _, message := range messages {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}

		embeds := []*discordgo.MessageEmbed{HangarEmbed(bot.calculator.StateAt(time.Now()))}
		edit := discordgo.MessageEdit{Channel: message.ChannelId, ID: message.MessageId, Embeds: &embeds}

		operation := func() error {
			_, err := bot.discord.ChannelMessageEditComplex(&edit)
			if isNotFound(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

		if err := backoff.Retry(operation, policy); err != nil {
			if isNotFound(err) {
				// The message was deleted by hand, stop tracking it
				log.Info().Msg(fmt.Sprintf("Pruning hangar embed %s, it no longer exists", message.MessageId))
				if err := bot.store.DeleteHangarMessage(ctx, message.MessageId); err != nil {
					log.Error().Msg(fmt.Sprintf("Could not delete hangar message %s: %s", message.MessageId, err))
				}
				continue
			}
			log.Warn().Msg(fmt.Sprintf("Could not update hangar embed %s: %s", message.MessageId, err))
		}
	}

	return nil
}
