package bot

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwookie/qadir-bot/internal/hangar"
	"github.com/iamwookie/qadir-bot/internal/loot"
	"github.com/iamwookie/qadir-bot/internal/store"
)

func testEvent() *store.Event {
	return &store.Event{
		ThreadId:     "111",
		MessageId:    "222",
		CreatorId:    "333",
		CreatedAt:    time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC),
		Name:         "Mining Run",
		Status:       store.EventActive,
		Participants: []string{"333", "444", "555"},
		LootEntries: []store.LootEntry{
			{Item: store.LootItem{Id: "gold", Name: "Gold Coins"}, Quantity: 60, AddedBy: "333"},
			{Item: store.LootItem{Id: "scale", Name: "Dragon Scale"}, Quantity: 7, AddedBy: "444"},
		},
	}
}

func TestDistributionText(t *testing.T) {

	engine := loot.NewEngine()
	event := testEvent()

	text := DistributionText(event.Entries(), len(event.Participants), &engine)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)

	// Item id order, zero remainders render without the extra suffix
	assert.Equal(t, "**60x Gold Coins** → 20 each", lines[0])
	assert.Equal(t, "**7x Dragon Scale** → 2 each + 1 extra", lines[1])
}

func TestDistributionTextEmpty(t *testing.T) {

	engine := loot.NewEngine()
	text := DistributionText(nil, 3, &engine)
	assert.Contains(t, text, "once loot is added")
}

func TestBreakdownText(t *testing.T) {

	engine := loot.NewEngine()
	event := testEvent()

	text := BreakdownText(engine.Contributions(event.Entries()))
	assert.Contains(t, text, "<@333>")
	assert.Contains(t, text, "`60x Gold Coins`")
	assert.Contains(t, text, "<@444>")
	assert.Contains(t, text, "`7x Dragon Scale`")
}

func TestEventEmbedDeterministic(t *testing.T) {

	engine := loot.NewEngine()
	event := testEvent()

	first := EventEmbed(event, &engine)
	second := EventEmbed(event, &engine)

	require.Equal(t, len(first.Fields), len(second.Fields))
	for i := range first.Fields {
		assert.Equal(t, first.Fields[i].Value, second.Fields[i].Value)
	}
}

func TestLightSymbols(t *testing.T) {

	lights := [5]hangar.Color{hangar.Green, hangar.Green, hangar.Red, hangar.Empty, hangar.Empty}
	assert.Equal(t, "🟢 🟢 🔴 ⚫ ⚫", LightSymbols(lights))
}

func TestTruncate(t *testing.T) {

	long := strings.Repeat("a", 2000)
	assert.Len(t, truncate(long), fieldLimit)
	assert.Equal(t, "short", truncate("short"))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {

	// The emoji straddles the limit, so the cut has to back off
	// to the previous rune boundary
	value := strings.Repeat("a", fieldLimit-2) + "🟢🟢"
	truncated := truncate(value)

	assert.True(t, utf8.ValidString(truncated))
	assert.LessOrEqual(t, len(truncated), fieldLimit)
	assert.Equal(t, strings.Repeat("a", fieldLimit-2), truncated)
}
