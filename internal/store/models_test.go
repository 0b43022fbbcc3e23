package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEntries(t *testing.T) {

	event := Event{
		LootEntries: []LootEntry{
			{Item: LootItem{Id: "gold", Name: "Gold Coins"}, Quantity: 60, AddedBy: "u1"},
			{Item: LootItem{Id: "scale", Name: "Dragon Scale"}, Quantity: 7, AddedBy: "u2"},
		},
	}

	entries := event.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "gold", entries[0].ItemId)
	assert.Equal(t, int64(60), entries[0].Quantity)
	assert.Equal(t, "u2", entries[1].ContributorId)
}

func TestEventHasParticipant(t *testing.T) {

	event := Event{Participants: []string{"u1", "u2"}}
	assert.True(t, event.HasParticipant("u1"))
	assert.False(t, event.HasParticipant("u3"))
}

func TestFinishedActivity(t *testing.T) {

	start := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	session := ActivitySession{
		UserId:        "u1",
		ApplicationId: "100",
		Name:          "Star Citizen",
		StartTime:     start,
	}

	activity := FinishedActivity(session, end)
	assert.Equal(t, "u1", activity.UserId)
	assert.Equal(t, "100", activity.ApplicationId)
	assert.Equal(t, start, activity.StartTime)
	assert.Equal(t, end, activity.EndTime)
	assert.Equal(t, float64(90*60), activity.Duration)
}
