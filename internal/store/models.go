package store

import (
	"time"

	"github.com/iamwookie/qadir-bot/internal/loot"
)

// Status of a loot event
const (
	EventActive    = "active"
	EventCompleted = "completed"
)

// Status of a proposal
const (
	ProposalActive = "active"
	ProposalClosed = "closed"
)

// LootItem is one item of the configured catalog, embedded in entries
type LootItem struct {
	Id   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// LootEntry is one recorded contribution inside an event document
type LootEntry struct {
	Item     LootItem  `bson:"item" json:"item"`
	Quantity int64     `bson:"quantity" json:"quantity"`
	AddedBy  string    `bson:"added_by" json:"added_by"`
	AddedAt  time.Time `bson:"added_at" json:"added_at"`
}

// Event is a loot tracking event, one document per event thread.
// The document id is a uuid, the other ids are Discord snowflakes
// kept as strings
type Event struct {
	Id           string      `bson:"_id" json:"id"`
	ThreadId     string      `bson:"thread_id" json:"thread_id"`
	MessageId    string      `bson:"message_id" json:"message_id"`
	CreatorId    string      `bson:"creator_id" json:"creator_id"`
	CreatedAt    time.Time   `bson:"created_at" json:"created_at"`
	Name         string      `bson:"name" json:"name"`
	Description  string      `bson:"description" json:"description"`
	Status       string      `bson:"status" json:"status"`
	Participants []string    `bson:"participants" json:"participants"`
	LootEntries  []LootEntry `bson:"loot_entries" json:"loot_entries"`
}

// Entries converts the stored entry list into the engine's entry type
func (event *Event) Entries() []loot.Entry {
	entries := make([]loot.Entry, 0, len(event.LootEntries))
	for _, entry := range event.LootEntries {
		entries = append(entries, loot.Entry{
			ItemId:        entry.Item.Id,
			ItemName:      entry.Item.Name,
			Quantity:      entry.Quantity,
			ContributorId: entry.AddedBy,
		})
	}
	return entries
}

// HasParticipant checks if the user joined this event
func (event *Event) HasParticipant(userId string) bool {
	for _, participant := range event.Participants {
		if participant == userId {
			return true
		}
	}
	return false
}

// Proposal is a tracked proposal thread with its vote message
type Proposal struct {
	Id        string    `bson:"_id" json:"id"`
	ThreadId  string    `bson:"thread_id" json:"thread_id"`
	MessageId string    `bson:"message_id" json:"message_id"`
	CreatorId string    `bson:"creator_id" json:"creator_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Status    string    `bson:"status" json:"status"`
}

// ActivitySession is an in-progress presence activity, kept in Redis
// until the user stops the application
type ActivitySession struct {
	UserId        string    `json:"user_id"`
	ApplicationId string    `json:"application_id"`
	Name          string    `json:"name"`
	StartTime     time.Time `json:"start_time"`
}

// Activity is a finished presence session persisted for later analysis
type Activity struct {
	Id            string    `bson:"_id" json:"id"`
	UserId        string    `bson:"user_id" json:"user_id"`
	ApplicationId string    `bson:"application_id" json:"application_id"`
	Name          string    `bson:"name" json:"name"`
	StartTime     time.Time `bson:"start_time" json:"start_time"`
	EndTime       time.Time `bson:"end_time" json:"end_time"`
	Duration      float64   `bson:"duration" json:"duration"`
}

// FinishedActivity closes a session at the given time,
// computing the duration in seconds
func FinishedActivity(session ActivitySession, endTime time.Time) Activity {
	return Activity{
		UserId:        session.UserId,
		ApplicationId: session.ApplicationId,
		Name:          session.Name,
		StartTime:     session.StartTime,
		EndTime:       endTime,
		Duration:      endTime.Sub(session.StartTime).Seconds(),
	}
}

// HangarMessage is one tracked hangar status embed to keep updated
type HangarMessage struct {
	Id        string `bson:"_id" json:"id"`
	MessageId string `bson:"message_id" json:"message_id"`
	ChannelId string `bson:"channel_id" json:"channel_id"`
	GuildId   string `bson:"guild_id" json:"guild_id"`
}
