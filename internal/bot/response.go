package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Helpers to answer interactions. Most replies in this bot are a single
// embed, frequently ephemeral, so wrap the discordgo boilerplate once

func respondEmbed(discord *discordgo.Session, interaction *discordgo.Interaction, embed *discordgo.MessageEmbed, ephemeral bool) {

	data := discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &data,
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not respond to interaction: %s", err))
	}
}

func respondText(discord *discordgo.Session, interaction *discordgo.Interaction, content string, ephemeral bool) {

	data := discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &data,
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not respond to interaction: %s", err))
	}
}

// Acknowledge now, answer later with a followup
func respondDeferred(discord *discordgo.Session, interaction *discordgo.Interaction, ephemeral bool) {

	data := discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &data,
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not defer interaction: %s", err))
	}
}

func followupEmbed(discord *discordgo.Session, interaction *discordgo.Interaction, embed *discordgo.MessageEmbed, ephemeral bool) {

	params := discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := discord.FollowupMessageCreate(interaction, true, &params); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send interaction followup: %s", err))
	}
}

func respondModal(discord *discordgo.Session, interaction *discordgo.Interaction, customId string, title string, components []discordgo.MessageComponent) {

	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customId,
			Title:      title,
			Components: components,
		},
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not open modal %s: %s", customId, err))
	}
}

// Extract the value of the text input at the given row of a submitted modal
func modalValue(data discordgo.ModalSubmitInteractionData, row int) string {

	if row >= len(data.Components) {
		return ""
	}
	actionsRow, ok := data.Components[row].(*discordgo.ActionsRow)
	if !ok || len(actionsRow.Components) == 0 {
		return ""
	}
	input, ok := actionsRow.Components[0].(*discordgo.TextInput)
	if !ok {
		return ""
	}
	return input.Value
}
