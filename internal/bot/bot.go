package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iamwookie/qadir-bot/internal/config"
	"github.com/iamwookie/qadir-bot/internal/hangar"
	"github.com/iamwookie/qadir-bot/internal/loot"
	"github.com/iamwookie/qadir-bot/internal/store"
)

type Bot struct {
	config     config.Config
	store      *store.Store
	engine     loot.Engine
	calculator hangar.Calculator
	discord    *discordgo.Session
}

func NewBot(cfg config.Config, store *store.Store) (*Bot, error) {

	var bot Bot

	bot.config = cfg
	bot.store = store
	// The loot engine and the hangar calculator are pure and shared
	// across all the handlers
	bot.engine = loot.NewEngine()
	calculator, err := hangar.NewCalculator(hangar.DefaultConfig())
	if err != nil {
		return nil, err
	}
	bot.calculator = calculator

	return &bot, nil
}

// Open the Discord session and run the background loops until the
// provided context is cancelled
func (bot *Bot) Run(ctx context.Context) error {

	discord, err := discordgo.New("Bot " + bot.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	bot.discord = discord

	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildPresences

	// Event handlers
	discord.AddHandler(bot.onReady)
	discord.AddHandler(bot.onInteraction)
	discord.AddHandler(bot.onReactionAdd)
	discord.AddHandler(bot.onVoiceStateUpdate)
	discord.AddHandler(bot.onPresenceUpdate)

	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return bot.runHangarUpdater(gctx) })
	group.Go(func() error { return bot.runProposalsLoop(gctx) })

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (bot *Bot) onReady(discord *discordgo.Session, ready *discordgo.Ready) {

	log.Info().Msg(fmt.Sprintf("Logged in as %s (%d guilds)", ready.User.String(), len(ready.Guilds)))

	if err := bot.registerCommands(discord); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not register application commands: %s", err))
	}

	if err := discord.UpdateCustomStatus(fmt.Sprintf("🌐 v%s • /help", bot.config.App.Version)); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not update presence: %s", err))
	}

	bot.connectVoiceChannels(discord)
}

// Register the slash commands of every module in the guilds that
// module is configured for. Bulk overwrite keeps re-runs idempotent
func (bot *Bot) registerCommands(discord *discordgo.Session) error {

	perGuild := make(map[string][]*discordgo.ApplicationCommand)
	add := func(guilds []string, command *discordgo.ApplicationCommand) {
		for _, guild := range guilds {
			perGuild[guild] = append(perGuild[guild], command)
		}
	}

	add(bot.config.Events.Guilds, bot.eventCommand())
	add(bot.config.Hangar.Guilds, hangarCommand())
	add(bot.config.Proposals.Guilds, proposeCommand())
	for _, command := range utilityCommands() {
		add(allGuilds(bot.config), command)
	}

	for guild, commands := range perGuild {
		if _, err := discord.ApplicationCommandBulkOverwrite(discord.State.User.ID, guild, commands); err != nil {
			return fmt.Errorf("could not register commands in guild %s: %w", guild, err)
		}
		log.Debug().Msg(fmt.Sprintf("Registered %d commands in guild %s", len(commands), guild))
	}

	return nil
}

// Route interactions to the module handlers
func (bot *Bot) onInteraction(discord *discordgo.Session, event *discordgo.InteractionCreate) {

	switch event.Type {
	case discordgo.InteractionApplicationCommand:
		data := event.ApplicationCommandData()
		switch data.Name {
		case "event":
			bot.handleEventCommand(discord, event.Interaction, data)
		case "hangar":
			bot.handleHangarCommand(discord, event.Interaction, data)
		case "propose":
			bot.propose(discord, event.Interaction)
		case "ping":
			bot.ping(discord, event.Interaction)
		case "info":
			bot.info(discord, event.Interaction)
		case "help":
			bot.help(discord, event.Interaction)
		default:
			log.Warn().Msg(fmt.Sprintf("Unknown command %s", data.Name))
		}
	case discordgo.InteractionModalSubmit:
		data := event.ModalSubmitData()
		switch data.CustomID {
		case createEventModalId:
			bot.createEventSubmit(discord, event.Interaction, data)
		case createProposalModalId:
			bot.createProposalSubmit(discord, event.Interaction, data)
		default:
			log.Warn().Msg(fmt.Sprintf("Unknown modal %s", data.CustomID))
		}
	}
}

// The user behind an interaction, whether it came from a guild or a DM
func interactionUser(interaction *discordgo.Interaction) string {
	if interaction.Member != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// All guild ids any module is configured for, deduplicated
func allGuilds(cfg config.Config) []string {
	seen := make(map[string]struct{})
	guilds := []string{}
	for _, group := range [][]string{cfg.Events.Guilds, cfg.Hangar.Guilds, cfg.Proposals.Guilds, cfg.Activity.Guilds} {
		for _, guild := range group {
			if _, ok := seen[guild]; !ok {
				seen[guild] = struct{}{}
				guilds = append(guilds, guild)
			}
		}
	}
	return guilds
}

// Check if a REST error means the target message or channel is gone,
// so the corresponding document should be pruned
func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		code := restErr.Message.Code
		return code == discordgo.ErrCodeUnknownMessage || code == discordgo.ErrCodeUnknownChannel
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
