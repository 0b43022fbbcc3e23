package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/iamwookie/qadir-bot/internal/store"
)

// The presence tracker records how long members run the configured
// applications. Sessions start in Redis and land in Mongo once the
// activity disappears from the presence

// The watched activities of a presence, keyed by application id
func watchedActivities(activities []*discordgo.Activity, applications []string) map[string]*discordgo.Activity {

	watched := make(map[string]*discordgo.Activity)
	for _, activity := range activities {
		if activity.ApplicationID != "" && contains(applications, activity.ApplicationID) {
			watched[activity.ApplicationID] = activity
		}
	}
	return watched
}

// Split the presence against the tracked sessions: activities present
// but not tracked have started, tracked ids no longer present have stopped
func diffActivities(tracked []string, current map[string]*discordgo.Activity) (started []*discordgo.Activity, stopped []string) {

	for applicationId, activity := range current {
		if !contains(tracked, applicationId) {
			started = append(started, activity)
		}
	}
	for _, applicationId := range tracked {
		if _, ok := current[applicationId]; !ok {
			stopped = append(stopped, applicationId)
		}
	}
	return started, stopped
}

// When the activity carries no explicit start timestamp, fall back to
// its creation time
func activityStart(activity *discordgo.Activity) time.Time {
	if activity.Timestamps.StartTimestamp != 0 {
		return time.UnixMilli(activity.Timestamps.StartTimestamp).UTC()
	}
	return activity.CreatedAt.UTC()
}

func (bot *Bot) onPresenceUpdate(discord *discordgo.Session, event *discordgo.PresenceUpdate) {

	if !contains(bot.config.Activity.Guilds, event.GuildID) {
		return
	}
	if event.User == nil {
		return
	}
	userId := event.User.ID
	ctx := context.Background()

	current := watchedActivities(event.Activities, bot.config.Activity.Applications)

	tracked, err := bot.store.TrackedActivities(ctx, userId)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch tracked activities of user %s: %s", userId, err))
		return
	}

	started, stopped := diffActivities(tracked, current)
	for _, activity := range started {
		bot.startActivity(ctx, userId, activity)
	}
	for _, applicationId := range stopped {
		bot.stopActivity(ctx, userId, applicationId)
	}
}

func (bot *Bot) startActivity(ctx context.Context, userId string, activity *discordgo.Activity) {

	applicationId := activity.ApplicationID
	if !bot.store.AcquireActivityLock(ctx, "start", userId, applicationId) {
		return
	}

	session := store.ActivitySession{
		UserId:        userId,
		ApplicationId: applicationId,
		Name:          activity.Name,
		StartTime:     activityStart(activity),
	}
	if err := bot.store.TrackActivity(ctx, session); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not track activity %s of user %s: %s", applicationId, userId, err))
		return
	}
	log.Debug().Msg(fmt.Sprintf("Tracking activity %s of user %s", applicationId, userId))
}

func (bot *Bot) stopActivity(ctx context.Context, userId string, applicationId string) {

	if !bot.store.AcquireActivityLock(ctx, "stop", userId, applicationId) {
		return
	}

	session, err := bot.store.PopActivity(ctx, userId, applicationId)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not pop activity %s of user %s: %s", applicationId, userId, err))
		return
	}
	if session == nil {
		return
	}

	activity := store.FinishedActivity(*session, time.Now().UTC())
	if err := bot.store.InsertActivity(ctx, activity); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not save activity %s of user %s: %s", applicationId, userId, err))
		return
	}
	log.Debug().Msg(fmt.Sprintf("Saved activity %s of user %s (%.0fs)", applicationId, userId, activity.Duration))
}
