package bot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/iamwookie/qadir-bot/internal/hangar"
	"github.com/iamwookie/qadir-bot/internal/loot"
	"github.com/iamwookie/qadir-bot/internal/store"
)

const (
	colorGreen = 0x32CD32
	colorRed   = 0xFF0000
	colorBlue  = 0x0099FF
	colorGold  = 0xFFD700
)

// Discord truncates embed field values beyond this length
const fieldLimit = 1024

func SuccessEmbed(title string, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorGreen}
}

func ErrorEmbed(title string, description string) *discordgo.MessageEmbed {
	if title == "" {
		title = "Uh Oh"
	}
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: colorRed}
}

// Render a Discord relative timestamp, e.g. "in 3 minutes"
func relativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// Truncated fields are full of emoji and mentions, so never cut
// inside a rune
func truncate(value string) string {
	if len(value) <= fieldLimit {
		return value
	}
	cut := fieldLimit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// Events

// The event card posted at the top of every event thread.
// All lists come from the engine in item id order, so re-rendering
// the same event always produces the same embed
func EventEmbed(event *store.Event, engine *loot.Engine) *discordgo.MessageEmbed {

	color := colorGreen
	statusText := "🟢 `Active`"
	if event.Status != store.EventActive {
		color = colorRed
		statusText = "🔴 `Completed`"
	}

	entries := event.Entries()
	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Event: %s", event.Name),
		Description: event.Description,
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Status", Value: statusText, Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Total Participants", Value: fmt.Sprintf("`%d`", len(event.Participants)), Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Total Items", Value: fmt.Sprintf("`%d`", engine.CountDistinctItems(entries)), Inline: true,
	})

	mentions := make([]string, 0, len(event.Participants))
	for _, participant := range event.Participants {
		mentions = append(mentions, fmt.Sprintf("<@%s>", participant))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Participants", Value: truncate(strings.Join(mentions, ", ")), Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Loot Breakdown", Value: truncate(BreakdownText(engine.Contributions(entries))), Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Distribution Preview", Value: truncate(DistributionText(entries, len(event.Participants), engine)), Inline: false,
	})

	return &embed
}

func InstructionsEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "How to participate",
		Description: "• Use `/event join` in this thread to join\n" +
			"• Use `/event loot` to add items you've collected\n" +
			"• Use `/event summary` to see current totals\n" +
			"• The event creator can use `/event finalize` to close and distribute loot",
		Color: colorBlue,
	}
}

// One line per contributor, items merged per item id
func BreakdownText(contributions []loot.Contribution) string {

	if len(contributions) == 0 {
		return "*No loot added yet - use `/event loot` to contribute!*"
	}

	lines := make([]string, 0, len(contributions))
	for _, contribution := range contributions {
		items := make([]string, 0, len(contribution.Items))
		for _, item := range contribution.Items {
			items = append(items, fmt.Sprintf("`%dx %s`", item.Quantity, item.ItemName))
		}
		lines = append(lines, fmt.Sprintf("**<@%s>**: %s", contribution.ContributorId, strings.Join(items, ", ")))
	}
	return strings.Join(lines, "\n")
}

// One line per item with the fair share.
// A zero remainder renders without the "+ N extra" suffix
func DistributionText(entries []loot.Entry, participants int, engine *loot.Engine) string {

	if len(entries) == 0 {
		return "*Distribution will be calculated once loot is added.*"
	}

	shares, err := engine.Distribution(entries, participants)
	if err != nil {
		return "*Distribution is not available without participants.*"
	}

	lines := make([]string, 0, len(shares))
	for _, share := range shares {
		if share.Remainder > 0 {
			lines = append(lines, fmt.Sprintf("**%dx %s** → %d each + %d extra", share.Total, share.ItemName, share.PerPerson, share.Remainder))
		} else {
			lines = append(lines, fmt.Sprintf("**%dx %s** → %d each", share.Total, share.ItemName, share.PerPerson))
		}
	}
	return strings.Join(lines, "\n")
}

// The ephemeral summary shown by /event summary
func EventSummaryEmbed(event *store.Event, engine *loot.Engine) *discordgo.MessageEmbed {

	embed := EventEmbed(event, engine)
	embed.Title = fmt.Sprintf("Event Summary: %s", event.Name)
	embed.Timestamp = event.CreatedAt.UTC().Format(time.RFC3339)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Created by <@%s>", event.CreatorId)}
	return embed
}

// The announcement posted in the thread when an event is finalized
func FinalizedEmbed(event *store.Event, engine *loot.Engine) *discordgo.MessageEmbed {

	entries := event.Entries()
	embed := discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏁 Event Finalized: %s", event.Name),
		Description: "The event has concluded! Here's what everyone contributed and earned:",
		Color:       colorGold,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "The thread has been locked. No more changes can be made."},
	}

	if len(entries) == 0 {
		embed.Description = "The event has concluded! No loot was collected."
		return &embed
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "🎒 Individual Contributions", Value: truncate(BreakdownText(engine.Contributions(entries))), Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "⚖️ Final Distribution", Value: truncate(DistributionText(entries, len(event.Participants), engine)), Inline: false,
	})

	return &embed
}

// Proposals

func ProposalEmbed(title string, description string, creatorId string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Proposed by", Value: fmt.Sprintf("<@%s>", creatorId), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Vote with 👍 or 👎 • Voting closes after 24 hours"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func ProposalClosedEmbed(upvotes int, downvotes int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Proposal Closed",
		Description: "Voting has ended for this proposal.",
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Upvotes", Value: fmt.Sprintf("`%d`", upvotes), Inline: true},
			{Name: "Downvotes", Value: fmt.Sprintf("`%d`", downvotes), Inline: true},
		},
	}
}

// Hangar

// Map the light colors onto the emojis shown in the embed
func LightSymbols(lights [5]hangar.Color) string {

	symbols := make([]string, 0, len(lights))
	for _, light := range lights {
		switch light {
		case hangar.Green:
			symbols = append(symbols, "🟢")
		case hangar.Red:
			symbols = append(symbols, "🔴")
		default:
			symbols = append(symbols, "⚫")
		}
	}
	return strings.Join(symbols, " ")
}

func HangarEmbed(state hangar.State) *discordgo.MessageEmbed {

	status := "Hangar Open"
	color := colorGreen
	phase := "Executive hangars are operational! LED progression shows time remaining until closure."
	if state.Status == hangar.Offline {
		status = "Hangar Closed"
		color = colorRed
		phase = "Executive hangars are currently offline. LED progression indicates time until reopening."
	}

	return &discordgo.MessageEmbed{
		Title:     "Executive Hangar Status",
		Color:     color,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎯 Current Status", Value: fmt.Sprintf("**%s**", status), Inline: true},
			{Name: "⏰ Next Status Change", Value: relativeTimestamp(state.NextStatusChange), Inline: true},
			{Name: "⏰ Next Light Change", Value: relativeTimestamp(state.NextLightChange), Inline: true},
			{Name: "💡 LED Status", Value: LightSymbols(state.Lights), Inline: false},
			{Name: "ℹ️ Phase", Value: phase, Inline: false},
		},
	}
}

// Utility

func InfoEmbed(name string, version string, latency time.Duration, guilds int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "App Information",
		Description: fmt.Sprintf("%s, a community management bot.", name),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: fmt.Sprintf("`%s`", version), Inline: true},
			{Name: "Latency", Value: fmt.Sprintf("`%d ms`", latency.Milliseconds()), Inline: true},
			{Name: "Guilds", Value: fmt.Sprintf("`%d`", guilds), Inline: false},
		},
	}
}
