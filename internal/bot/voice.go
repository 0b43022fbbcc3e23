package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Join every configured voice channel, muted and deafened. The bot just
// sits there as a presence marker
func (bot *Bot) connectVoiceChannels(discord *discordgo.Session) {

	for _, channelId := range bot.config.Voice.Channels {
		bot.joinVoiceChannel(discord, channelId)
	}
}

func (bot *Bot) joinVoiceChannel(discord *discordgo.Session, channelId string) {

	channel, err := discord.Channel(channelId)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not resolve voice channel %s: %s", channelId, err))
		return
	}

	if _, err := discord.ChannelVoiceJoin(channel.GuildID, channelId, true, true); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not join voice channel %s: %s", channelId, err))
		return
	}
	log.Info().Msg(fmt.Sprintf("Connected to voice channel %s", channelId))
}

// Reconnect when the bot is disconnected or moved out of a configured channel
func (bot *Bot) onVoiceStateUpdate(discord *discordgo.Session, event *discordgo.VoiceStateUpdate) {

	if event.UserID != discord.State.User.ID {
		return
	}
	if event.BeforeUpdate == nil {
		return
	}
	previous := event.BeforeUpdate.ChannelID
	if !contains(bot.config.Voice.Channels, previous) {
		return
	}
	if event.ChannelID == previous {
		return
	}

	log.Info().Msg(fmt.Sprintf("Removed from voice channel %s, reconnecting", previous))
	bot.joinVoiceChannel(discord, previous)
}
