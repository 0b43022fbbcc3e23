package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchedActivities(t *testing.T) {

	activities := []*discordgo.Activity{
		{Name: "Star Citizen", ApplicationID: "100"},
		{Name: "Spotify", ApplicationID: "200"},
		{Name: "Custom Status"},
	}

	watched := watchedActivities(activities, []string{"100"})
	require.Len(t, watched, 1)
	assert.Equal(t, "Star Citizen", watched["100"].Name)
}

func TestDiffActivities(t *testing.T) {

	current := map[string]*discordgo.Activity{
		"100": {Name: "Star Citizen", ApplicationID: "100"},
		"300": {Name: "Elite", ApplicationID: "300"},
	}

	started, stopped := diffActivities([]string{"100", "200"}, current)

	require.Len(t, started, 1)
	assert.Equal(t, "300", started[0].ApplicationID)
	assert.Equal(t, []string{"200"}, stopped)
}

func TestDiffActivitiesNoChange(t *testing.T) {

	current := map[string]*discordgo.Activity{
		"100": {ApplicationID: "100"},
	}

	started, stopped := diffActivities([]string{"100"}, current)
	assert.Empty(t, started)
	assert.Empty(t, stopped)
}

func TestActivityStart(t *testing.T) {

	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	explicit := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)

	activity := &discordgo.Activity{CreatedAt: created}
	assert.Equal(t, created, activityStart(activity))

	activity.Timestamps = discordgo.TimeStamps{StartTimestamp: explicit.UnixMilli()}
	assert.Equal(t, explicit, activityStart(activity))
}
