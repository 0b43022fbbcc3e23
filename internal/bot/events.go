package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/iamwookie/qadir-bot/internal/loot"
	"github.com/iamwookie/qadir-bot/internal/store"
)

const createEventModalId = "create-event"

// One week, the longest auto archive duration Discord offers
const threadArchiveMinutes = 10080

// The slash command of the loot events module. The item option is built
// from the configured catalog (Discord caps choices at 25)
func (bot *Bot) eventCommand() *discordgo.ApplicationCommand {

	items := bot.config.Items
	if len(items) > 25 {
		items = items[:25]
	}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(items))
	for _, item := range items {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: item.Name, Value: item.Id})
	}

	return &discordgo.ApplicationCommand{
		Name:        "event",
		Description: "Manage loot tracking events",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create a new loot tracking event",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "join",
				Description: "Join the event of this thread",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "loot",
				Description: "Add loot items you've collected to this event",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "item",
						Description: "The item to add",
						Required:    true,
						Choices:     choices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "quantity",
						Description: "How many you collected",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "summary",
				Description: "Show a detailed summary of this event",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "finalize",
				Description: "Close the event and post the final distribution (creator only)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Show all events you've created or joined",
			},
		},
	}
}

func (bot *Bot) handleEventCommand(discord *discordgo.Session, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {

	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "create":
		bot.createEvent(discord, interaction)
	case "join":
		bot.joinEvent(discord, interaction)
	case "loot":
		bot.addLoot(discord, interaction, sub)
	case "summary":
		bot.eventSummary(discord, interaction)
	case "finalize":
		bot.finalizeEvent(discord, interaction)
	case "list":
		bot.listEvents(discord, interaction)
	}
}

func (bot *Bot) createEvent(discord *discordgo.Session, interaction *discordgo.Interaction) {

	if !contains(bot.config.Events.Channels, interaction.ChannelID) {
		mentions := make([]string, 0, len(bot.config.Events.Channels))
		for _, channel := range bot.config.Events.Channels {
			mentions = append(mentions, fmt.Sprintf("<#%s>", channel))
		}
		respondEmbed(discord, interaction, ErrorEmbed("", fmt.Sprintf("This command can only be used in: %s", strings.Join(mentions, ", "))), true)
		return
	}

	respondModal(discord, interaction, createEventModalId, "Create Loot Event", []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{CustomID: "name", Label: "Event Name", Style: discordgo.TextInputShort, Required: true, MaxLength: 100},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{CustomID: "description", Label: "Description", Style: discordgo.TextInputParagraph, Required: false, MaxLength: 1000},
		}},
	})
}

func (bot *Bot) createEventSubmit(discord *discordgo.Session, interaction *discordgo.Interaction, data discordgo.ModalSubmitInteractionData) {

	respondDeferred(discord, interaction, true)

	name := modalValue(data, 0)
	description := modalValue(data, 1)
	creator := interactionUser(interaction)

	thread, err := discord.ThreadStart(interaction.ChannelID, fmt.Sprintf("🏆 %s", name), discordgo.ChannelTypeGuildPublicThread, threadArchiveMinutes)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not create event thread: %s", err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to create the event thread. Are you sure I have permissions?"), true)
		return
	}

	event := store.Event{
		ThreadId:     thread.ID,
		CreatorId:    creator,
		CreatedAt:    time.Now().UTC(),
		Name:         name,
		Description:  description,
		Status:       store.EventActive,
		Participants: []string{creator},
	}

	message, err := discord.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{EventEmbed(&event, &bot.engine), InstructionsEmbed()},
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send event card: %s", err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to post the event card. Please try again."), true)
		return
	}
	event.MessageId = message.ID

	if err := bot.store.InsertEvent(context.Background(), event); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not save event %s: %s", thread.ID, err))
		followupEmbed(discord, interaction, ErrorEmbed("", "Failed to save the event. Please try again."), true)
		return
	}

	log.Info().Msg(fmt.Sprintf("Created event %s (%s)", name, thread.ID))
	followupEmbed(discord, interaction, SuccessEmbed("Event Created", fmt.Sprintf("Your event is ready: <#%s>", thread.ID)), true)
}

// Fetch the event of the thread the interaction happened in.
// Answers the interaction with an error embed when there is none
func (bot *Bot) eventFromThread(discord *discordgo.Session, interaction *discordgo.Interaction) *store.Event {

	event, err := bot.store.GetEvent(context.Background(), interaction.ChannelID)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch event %s: %s", interaction.ChannelID, err))
		respondEmbed(discord, interaction, ErrorEmbed("", "Something went wrong fetching the event. Please try again."), true)
		return nil
	}
	if event == nil {
		respondEmbed(discord, interaction, ErrorEmbed("", "This command can only be used inside an event thread."), true)
		return nil
	}
	return event
}

func (bot *Bot) joinEvent(discord *discordgo.Session, interaction *discordgo.Interaction) {

	event := bot.eventFromThread(discord, interaction)
	if event == nil {
		return
	}
	user := interactionUser(interaction)

	if event.HasParticipant(user) {
		respondEmbed(discord, interaction, SuccessEmbed("Already Participating", fmt.Sprintf("You're already participating in **%s**!", event.Name)), true)
		return
	}
	if event.Status != store.EventActive {
		respondEmbed(discord, interaction, ErrorEmbed("Event Inactive", "This event is closed and can no longer be joined."), true)
		return
	}

	if err := bot.store.AddParticipant(context.Background(), event.ThreadId, user); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not add participant to event %s: %s", event.ThreadId, err))
		respondEmbed(discord, interaction, ErrorEmbed("", "Something went wrong joining the event. Please try again."), true)
		return
	}
	event.Participants = append(event.Participants, user)
	bot.updateEventCard(discord, event)

	log.Info().Msg(fmt.Sprintf("User %s joined event %s", user, event.ThreadId))
	respondEmbed(discord, interaction, SuccessEmbed("Event Joined", fmt.Sprintf("Welcome to **%s**! You can now add loot with `/event loot`.", event.Name)), true)
}

func (bot *Bot) addLoot(discord *discordgo.Session, interaction *discordgo.Interaction, sub *discordgo.ApplicationCommandInteractionDataOption) {

	event := bot.eventFromThread(discord, interaction)
	if event == nil {
		return
	}
	user := interactionUser(interaction)

	if !event.HasParticipant(user) {
		respondEmbed(discord, interaction, ErrorEmbed("Not Participating", "You must join the event first using `/event join` before adding loot."), true)
		return
	}
	if event.Status != store.EventActive {
		respondEmbed(discord, interaction, ErrorEmbed("Event Inactive", "This event is closed and no longer accepts loot additions."), true)
		return
	}

	var itemId string
	var quantity int64
	for _, option := range sub.Options {
		switch option.Name {
		case "item":
			itemId = option.StringValue()
		case "quantity":
			quantity = option.IntValue()
		}
	}

	var itemName string
	for _, item := range bot.config.Items {
		if item.Id == itemId {
			itemName = item.Name
			break
		}
	}
	if itemName == "" {
		respondEmbed(discord, interaction, ErrorEmbed("Not Found", "The selected item is not configured."), true)
		return
	}

	// The engine validates the entry before anything is stored
	if _, err := bot.engine.AddEntry(event.Entries(), itemId, itemName, quantity, user); err != nil {
		respondEmbed(discord, interaction, ErrorEmbed("Invalid Quantity", fmt.Sprintf("Please enter a positive number below `%d`.", loot.DefaultMaxQuantity)), true)
		return
	}

	entry := store.LootEntry{
		Item:     store.LootItem{Id: itemId, Name: itemName},
		Quantity: quantity,
		AddedBy:  user,
		AddedAt:  time.Now().UTC(),
	}
	if err := bot.store.AppendLootEntry(context.Background(), event.ThreadId, entry); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not append loot entry to event %s: %s", event.ThreadId, err))
		respondEmbed(discord, interaction, ErrorEmbed("", "Something went wrong saving your loot. Please try again."), true)
		return
	}
	event.LootEntries = append(event.LootEntries, entry)
	bot.updateEventCard(discord, event)

	log.Info().Msg(fmt.Sprintf("User %s added %dx %s to event %s", user, quantity, itemName, event.ThreadId))
	respondEmbed(discord, interaction, SuccessEmbed("Loot Added", fmt.Sprintf("Added `%dx %s` to the event loot", quantity, itemName)), true)
}

func (bot *Bot) eventSummary(discord *discordgo.Session, interaction *discordgo.Interaction) {

	event := bot.eventFromThread(discord, interaction)
	if event == nil {
		return
	}
	respondEmbed(discord, interaction, EventSummaryEmbed(event, &bot.engine), true)
}

func (bot *Bot) finalizeEvent(discord *discordgo.Session, interaction *discordgo.Interaction) {

	event := bot.eventFromThread(discord, interaction)
	if event == nil {
		return
	}
	user := interactionUser(interaction)

	if user != event.CreatorId {
		respondEmbed(discord, interaction, ErrorEmbed("Permission Denied", fmt.Sprintf("Only the event creator <@%s> can finalize this event.", event.CreatorId)), true)
		return
	}
	if event.Status != store.EventActive {
		respondEmbed(discord, interaction, ErrorEmbed("", fmt.Sprintf("This event is already %s.", event.Status)), true)
		return
	}

	if err := bot.store.SetEventStatus(context.Background(), event.ThreadId, store.EventCompleted); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not finalize event %s: %s", event.ThreadId, err))
		respondEmbed(discord, interaction, ErrorEmbed("", "Something went wrong finalizing the event. Please try again."), true)
		return
	}
	event.Status = store.EventCompleted
	bot.updateEventCard(discord, event)

	// The final announcement is public, everything else was ephemeral
	respondEmbed(discord, interaction, FinalizedEmbed(event, &bot.engine), false)

	locked := true
	if _, err := discord.ChannelEditComplex(event.ThreadId, &discordgo.ChannelEdit{Locked: &locked}); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not lock event thread %s: %s", event.ThreadId, err))
	}

	log.Info().Msg(fmt.Sprintf("Finalized event %s (%s)", event.Name, event.ThreadId))
}

func (bot *Bot) listEvents(discord *discordgo.Session, interaction *discordgo.Interaction) {

	user := interactionUser(interaction)
	events, err := bot.store.EventsForUser(context.Background(), user)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch events for user %s: %s", user, err))
		respondEmbed(discord, interaction, ErrorEmbed("", "Something went wrong fetching your events. Please try again."), true)
		return
	}

	line := func(event store.Event) string {
		emoji := "🟢"
		if event.Status != store.EventActive {
			emoji = "🔴"
		}
		return fmt.Sprintf("%s **%s** (%d participants, %d items)", emoji, event.Name, len(event.Participants), bot.engine.CountDistinctItems(event.Entries()))
	}

	var created, joined []string
	for _, event := range events {
		if event.CreatorId == user {
			created = append(created, line(event))
		} else {
			joined = append(joined, line(event))
		}
	}

	embed := SuccessEmbed("📋 Your Events", "")
	if len(created) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🏆 Events You Created", Value: truncate(strings.Join(created, "\n")), Inline: false})
	}
	if len(joined) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🎯 Events You Joined", Value: truncate(strings.Join(joined, "\n")), Inline: false})
	}
	if len(created) == 0 && len(joined) == 0 {
		embed.Description = "You haven't created or joined any events yet."
	}

	respondEmbed(discord, interaction, embed, true)
}

// Re-render the event card from the current snapshot, keeping the
// instructions embed below it
func (bot *Bot) updateEventCard(discord *discordgo.Session, event *store.Event) {

	embeds := []*discordgo.MessageEmbed{EventEmbed(event, &bot.engine), InstructionsEmbed()}
	edit := discordgo.MessageEdit{Channel: event.ThreadId, ID: event.MessageId, Embeds: &embeds}
	if _, err := discord.ChannelMessageEditComplex(&edit); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not update event card for %s: %s", event.ThreadId, err))
	}
}
