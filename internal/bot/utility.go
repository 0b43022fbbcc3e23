package bot

import (
	"github.com/bwmarrin/discordgo"
)

func utilityCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "ping", Description: "Check if the app is alive"},
		{Name: "info", Description: "Show information about the app"},
		{Name: "help", Description: "Show the available commands"},
	}
}

func (bot *Bot) ping(discord *discordgo.Session, interaction *discordgo.Interaction) {
	respondText(discord, interaction, "🟢 Pong!", true)
}

func (bot *Bot) info(discord *discordgo.Session, interaction *discordgo.Interaction) {
	embed := InfoEmbed(bot.config.App.Name, bot.config.App.Version, discord.HeartbeatLatency(), len(discord.State.Guilds))
	respondEmbed(discord, interaction, embed, true)
}

func (bot *Bot) help(discord *discordgo.Session, interaction *discordgo.Interaction) {

	embed := &discordgo.MessageEmbed{
		Title: "Available Commands",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/event create", Value: "Create a loot tracking event", Inline: false},
			{Name: "/event join", Value: "Join the event of the current thread", Inline: false},
			{Name: "/event loot", Value: "Add collected loot to the event", Inline: false},
			{Name: "/event summary", Value: "Show a detailed event summary", Inline: false},
			{Name: "/event finalize", Value: "Close the event and post the final distribution", Inline: false},
			{Name: "/event list", Value: "List the events you take part in", Inline: false},
			{Name: "/propose", Value: "Create a proposal for the community to vote on", Inline: false},
			{Name: "/hangar create", Value: "Post a live updating hangar status embed", Inline: false},
			{Name: "/hangar status", Value: "Show the current hangar status", Inline: false},
			{Name: "/ping", Value: "Check if the app is alive", Inline: false},
			{Name: "/info", Value: "Show information about the app", Inline: false},
		},
	}
	respondEmbed(discord, interaction, embed, true)
}
