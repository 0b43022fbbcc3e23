package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	eventsPrefix      = "qadir:events"
	proposalsCacheKey = "qadir:proposals"
	hangarCacheKey    = "qadir:hangar:embeds"
	activityPrefix    = "qadir:activity"

	cacheTtl = time.Hour

	// Presence events for the same user can arrive in bursts, the lock
	// makes sure only one of them handles a start or stop
	activityLockTtl = 5 * time.Second
)

// Atomically read and delete a field from a hash
var popHashField = redis.NewScript(`
	local v = redis.call("HGET", KEYS[1], ARGV[1])
	if v then
		redis.call("HDEL", KEYS[1], ARGV[1])
	end
	return v
`)

// Store persists the bot's documents in MongoDB and keeps a small
// read through cache in Redis. Writes go to Mongo first and then
// invalidate the affected cache keys
type Store struct {
	client     *mongo.Client
	events     *mongo.Collection
	proposals  *mongo.Collection
	hangar     *mongo.Collection
	activities *mongo.Collection
	cache      *redis.Client
}

func NewStore(ctx context.Context, mongoUri string, database string, redisAddr string, redisPass string) (*Store, error) {

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoUri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("could not ping mongodb: %w", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: redisAddr, Password: redisPass})
	if err := cache.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("could not ping redis: %w", err)
	}

	db := client.Database(database)
	store := &Store{
		client:     client,
		events:     db.Collection("events"),
		proposals:  db.Collection("proposals"),
		hangar:     db.Collection("hangar_embeds"),
		activities: db.Collection("activities"),
		cache:      cache,
	}

	if err := store.createIndexes(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (store *Store) createIndexes(ctx context.Context) error {

	indexes := map[*mongo.Collection][]string{
		store.events:     {"thread_id", "creator_id", "status"},
		store.proposals:  {"thread_id", "message_id", "status"},
		store.hangar:     {"message_id"},
		store.activities: {"user_id", "application_id", "start_time", "end_time"},
	}
	for collection, keys := range indexes {
		models := make([]mongo.IndexModel, 0, len(keys))
		for _, key := range keys {
			models = append(models, mongo.IndexModel{Keys: bson.D{{Key: key, Value: 1}}})
		}
		if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("could not create indexes for %s: %w", collection.Name(), err)
		}
	}
	return nil
}

func (store *Store) Close(ctx context.Context) {
	if err := store.cache.Close(); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not close redis client: %s", err))
	}
	if err := store.client.Disconnect(ctx); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not disconnect from mongodb: %s", err))
	}
}

// Events

func (store *Store) InsertEvent(ctx context.Context, event Event) error {
	if event.Id == "" {
		event.Id = uuid.NewString()
	}
	if _, err := store.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("could not insert event %s: %w", event.ThreadId, err)
	}
	store.invalidate(ctx, store.eventKey(event.ThreadId))
	return nil
}

// Fetch one event by its thread id, going through the cache first.
// Returns nil without error when the thread has no event
func (store *Store) GetEvent(ctx context.Context, threadId string) (*Event, error) {

	var event Event
	if store.cacheGet(ctx, store.eventKey(threadId), &event) {
		return &event, nil
	}

	err := store.events.FindOne(ctx, bson.M{"thread_id": threadId}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch event %s: %w", threadId, err)
	}

	store.cacheSet(ctx, store.eventKey(threadId), event)
	return &event, nil
}

// All events the user created or joined
func (store *Store) EventsForUser(ctx context.Context, userId string) ([]Event, error) {

	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userId},
		bson.M{"participants": userId},
	}}
	cursor, err := store.events.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("could not fetch events for user %s: %w", userId, err)
	}
	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("could not decode events for user %s: %w", userId, err)
	}
	return events, nil
}

func (store *Store) AddParticipant(ctx context.Context, threadId string, userId string) error {
	update := bson.M{"$addToSet": bson.M{"participants": userId}}
	if _, err := store.events.UpdateOne(ctx, bson.M{"thread_id": threadId}, update); err != nil {
		return fmt.Errorf("could not add participant to event %s: %w", threadId, err)
	}
	store.invalidate(ctx, store.eventKey(threadId))
	return nil
}

// Append one loot entry to the event. The entry list is append only,
// concurrent additions serialize through the $push
func (store *Store) AppendLootEntry(ctx context.Context, threadId string, entry LootEntry) error {
	update := bson.M{"$push": bson.M{"loot_entries": entry}}
	if _, err := store.events.UpdateOne(ctx, bson.M{"thread_id": threadId}, update); err != nil {
		return fmt.Errorf("could not append loot entry to event %s: %w", threadId, err)
	}
	store.invalidate(ctx, store.eventKey(threadId))
	return nil
}

func (store *Store) SetEventStatus(ctx context.Context, threadId string, status string) error {
	update := bson.M{"$set": bson.M{"status": status}}
	if _, err := store.events.UpdateOne(ctx, bson.M{"thread_id": threadId}, update); err != nil {
		return fmt.Errorf("could not set status of event %s: %w", threadId, err)
	}
	store.invalidate(ctx, store.eventKey(threadId))
	return nil
}

// Proposals

func (store *Store) InsertProposal(ctx context.Context, proposal Proposal) error {
	if proposal.Id == "" {
		proposal.Id = uuid.NewString()
	}
	if _, err := store.proposals.InsertOne(ctx, proposal); err != nil {
		return fmt.Errorf("could not insert proposal %s: %w", proposal.ThreadId, err)
	}
	store.invalidate(ctx, proposalsCacheKey)
	return nil
}

// All proposals still collecting votes, cached as one list since the
// reaction handlers consult it on every vote
func (store *Store) ActiveProposals(ctx context.Context) ([]Proposal, error) {

	var proposals []Proposal
	if store.cacheGet(ctx, proposalsCacheKey, &proposals) {
		return proposals, nil
	}

	cursor, err := store.proposals.Find(ctx, bson.M{"status": ProposalActive})
	if err != nil {
		return nil, fmt.Errorf("could not fetch active proposals: %w", err)
	}
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, fmt.Errorf("could not decode active proposals: %w", err)
	}

	store.cacheSet(ctx, proposalsCacheKey, proposals)
	return proposals, nil
}

func (store *Store) CloseProposal(ctx context.Context, threadId string) error {
	update := bson.M{"$set": bson.M{"status": ProposalClosed}}
	if _, err := store.proposals.UpdateOne(ctx, bson.M{"thread_id": threadId}, update); err != nil {
		return fmt.Errorf("could not close proposal %s: %w", threadId, err)
	}
	store.invalidate(ctx, proposalsCacheKey)
	return nil
}

// Remove a proposal whose thread or message no longer exists
func (store *Store) DeleteProposal(ctx context.Context, threadId string) error {
	if _, err := store.proposals.DeleteOne(ctx, bson.M{"thread_id": threadId}); err != nil {
		return fmt.Errorf("could not delete proposal %s: %w", threadId, err)
	}
	store.invalidate(ctx, proposalsCacheKey)
	return nil
}

// Hangar

func (store *Store) InsertHangarMessage(ctx context.Context, message HangarMessage) error {
	if message.Id == "" {
		message.Id = uuid.NewString()
	}
	if _, err := store.hangar.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("could not insert hangar message %s: %w", message.MessageId, err)
	}
	store.invalidate(ctx, hangarCacheKey)
	return nil
}

func (store *Store) HangarMessages(ctx context.Context) ([]HangarMessage, error) {

	var messages []HangarMessage
	if store.cacheGet(ctx, hangarCacheKey, &messages) {
		return messages, nil
	}

	cursor, err := store.hangar.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("could not fetch hangar messages: %w", err)
	}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("could not decode hangar messages: %w", err)
	}

	store.cacheSet(ctx, hangarCacheKey, messages)
	return messages, nil
}

// Remove a hangar embed that was deleted on Discord
func (store *Store) DeleteHangarMessage(ctx context.Context, messageId string) error {
	if _, err := store.hangar.DeleteOne(ctx, bson.M{"message_id": messageId}); err != nil {
		return fmt.Errorf("could not delete hangar message %s: %w", messageId, err)
	}
	store.invalidate(ctx, hangarCacheKey)
	return nil
}

// Cache helpers

// Activities

func (store *Store) activityKey(userId string) string {
	return fmt.Sprintf("%s:%s", activityPrefix, userId)
}

// Take the short lived lock for a start or stop action.
// Returns false when another handler already holds it
func (store *Store) AcquireActivityLock(ctx context.Context, action string, userId string, applicationId string) bool {

	key := fmt.Sprintf("%s:lock:%s:%s:%s", activityPrefix, action, userId, applicationId)
	ok, err := store.cache.SetNX(ctx, key, 1, activityLockTtl).Result()
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not take activity lock %s: %s", key, err))
		return false
	}
	return ok
}

// Record the start of a session in the user's activity hash.
// An already tracked application is left untouched
func (store *Store) TrackActivity(ctx context.Context, session ActivitySession) error {

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not encode activity session: %w", err)
	}
	if err := store.cache.HSetNX(ctx, store.activityKey(session.UserId), session.ApplicationId, data).Err(); err != nil {
		return fmt.Errorf("could not track activity for user %s: %w", session.UserId, err)
	}
	return nil
}

// The application ids the user is currently tracked on
func (store *Store) TrackedActivities(ctx context.Context, userId string) ([]string, error) {

	ids, err := store.cache.HKeys(ctx, store.activityKey(userId)).Result()
	if err != nil {
		return nil, fmt.Errorf("could not fetch tracked activities of user %s: %w", userId, err)
	}
	return ids, nil
}

// Atomically remove and return the tracked session for the application.
// Returns nil without error when nothing was tracked
func (store *Store) PopActivity(ctx context.Context, userId string, applicationId string) (*ActivitySession, error) {

	result, err := popHashField.Run(ctx, store.cache, []string{store.activityKey(userId)}, applicationId).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not pop activity of user %s: %w", userId, err)
	}

	data, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected activity payload type %T for user %s", result, userId)
	}
	var session ActivitySession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("could not decode activity of user %s: %w", userId, err)
	}
	return &session, nil
}

func (store *Store) InsertActivity(ctx context.Context, activity Activity) error {
	if activity.Id == "" {
		activity.Id = uuid.NewString()
	}
	if _, err := store.activities.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("could not insert activity of user %s: %w", activity.UserId, err)
	}
	return nil
}

func (store *Store) eventKey(threadId string) string {
	return fmt.Sprintf("%s:%s", eventsPrefix, threadId)
}

func (store *Store) cacheGet(ctx context.Context, key string, value any) bool {
	data, err := store.cache.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not read cache key %s: %s", key, err))
		return false
	}
	if err := json.Unmarshal(data, value); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not decode cache key %s: %s", key, err))
		return false
	}
	return true
}

func (store *Store) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not encode cache key %s: %s", key, err))
		return
	}
	if err := store.cache.Set(ctx, key, data, cacheTtl).Err(); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not write cache key %s: %s", key, err))
	}
}

func (store *Store) invalidate(ctx context.Context, key string) {
	if err := store.cache.Del(ctx, key).Err(); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not invalidate cache key %s: %s", key, err))
	}
}
