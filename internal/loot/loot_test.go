package loot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addAll(t *testing.T, engine *Engine, contributions [][3]any) []Entry {
	var entries []Entry
	var err error
	for _, c := range contributions {
		name := c[0].(string)
		entries, err = engine.AddEntry(entries, name, name, int64(c[1].(int)), c[2].(string))
		require.NoError(t, err)
	}
	return entries
}

func TestEvenDistribution(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{
		{"Gold Coins", 60, "u1"},
		{"Magic Sword", 3, "u2"},
	})

	shares, err := engine.Distribution(entries, 3)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, Share{"Gold Coins", "Gold Coins", 60, 20, 0}, shares[0])
	assert.Equal(t, Share{"Magic Sword", "Magic Sword", 3, 1, 0}, shares[1])
}

func TestUnevenDistribution(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{
		{"Dragon Scale", 7, "u1"},
		{"Health Potion", 13, "u1"},
	})

	shares, err := engine.Distribution(entries, 4)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, Share{"Dragon Scale", "Dragon Scale", 7, 1, 3}, shares[0])
	assert.Equal(t, Share{"Health Potion", "Health Potion", 13, 3, 1}, shares[1])
}

func TestZeroParticipants(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{{"Gold Coins", 10, "u1"}})

	_, err := engine.Distribution(entries, 0)
	assert.ErrorIs(t, err, ErrDivisionUndefined)
}

func TestAddEntryValidation(t *testing.T) {

	engine := NewEngine()
	var entries []Entry

	_, err := engine.AddEntry(entries, "item", "Item", -5, "u1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.AddEntry(entries, "item", "Item", 0, "u1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.AddEntry(entries, "item", "Item", DefaultMaxQuantity, "u1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.AddEntry(entries, "", "Item", 5, "u1")
	assert.ErrorIs(t, err, ErrInvalidItem)

	// A rejected entry leaves the list unchanged
	entries, err = engine.AddEntry(entries, "item", "Item", 5, "u1")
	require.NoError(t, err)
	rejected, err := engine.AddEntry(entries, "item", "Item", -1, "u1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, entries, rejected)
}

func TestContributionsMergeSameItem(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{
		{"ItemA", 5, "u1"},
		{"ItemA", 3, "u1"},
		{"ItemB", 2, "u2"},
	})

	contributions := engine.Contributions(entries)
	require.Len(t, contributions, 2)

	assert.Equal(t, "u1", contributions[0].ContributorId)
	require.Len(t, contributions[0].Items, 1)
	assert.Equal(t, ItemTotal{"ItemA", "ItemA", 8}, contributions[0].Items[0])

	assert.Equal(t, "u2", contributions[1].ContributorId)
	assert.Equal(t, ItemTotal{"ItemB", "ItemB", 2}, contributions[1].Items[0])
}

func TestContributionsOrdering(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{
		{"Zeta", 1, "u2"},
		{"Alpha", 1, "u2"},
		{"Mid", 1, "u1"},
	})

	contributions := engine.Contributions(entries)
	require.Len(t, contributions, 2)
	assert.Equal(t, "u1", contributions[0].ContributorId)
	assert.Equal(t, "u2", contributions[1].ContributorId)
	assert.Equal(t, "Alpha", contributions[1].Items[0].ItemId)
	assert.Equal(t, "Zeta", contributions[1].Items[1].ItemId)
}

func TestCountDistinctItems(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{
		{"ItemA", 5, "u1"},
		{"ItemA", 3, "u2"},
		{"ItemB", 100, "u1"},
	})

	// Three entries, two distinct items, 108 total quantity
	assert.Equal(t, 2, engine.CountDistinctItems(entries))
	assert.Equal(t, 0, engine.CountDistinctItems(nil))
}

func TestConservationAndRemainderBound(t *testing.T) {

	engine := NewEngine()

	// A spread of entry lists and participant counts
	for participants := 1; participants <= 7; participants++ {
		var entries []Entry
		var err error
		for i := 0; i < 20; i++ {
			item := fmt.Sprintf("item-%d", i%5)
			entries, err = engine.AddEntry(entries, item, item, int64(1+i*13%97), fmt.Sprintf("u%d", i%3))
			require.NoError(t, err)
		}

		shares, err := engine.Distribution(entries, participants)
		require.NoError(t, err)

		totals := make(map[string]int64)
		for _, entry := range entries {
			totals[entry.ItemId] += entry.Quantity
		}

		for _, share := range shares {
			assert.Equal(t, totals[share.ItemId], share.PerPerson*int64(participants)+share.Remainder)
			assert.GreaterOrEqual(t, share.Remainder, int64(0))
			assert.Less(t, share.Remainder, int64(participants))
		}
	}
}

func TestDistributionIdempotence(t *testing.T) {

	engine := NewEngine()
	entries := addAll(t, &engine, [][3]any{
		{"b", 9, "u1"},
		{"a", 4, "u2"},
		{"c", 11, "u1"},
	})

	first, err := engine.Distribution(entries, 2)
	require.NoError(t, err)
	second, err := engine.Distribution(entries, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Sorted by item id, not by discovery order
	assert.Equal(t, "a", first[0].ItemId)
	assert.Equal(t, "b", first[1].ItemId)
	assert.Equal(t, "c", first[2].ItemId)
}
