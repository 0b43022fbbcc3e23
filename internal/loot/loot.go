package loot

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// Returned when a quantity is not positive or exceeds the configured bound
	ErrInvalidQuantity = errors.New("invalid quantity")
	// Returned when an entry names no item
	ErrInvalidItem = errors.New("invalid item")
	// Returned when a distribution is requested for zero participants
	ErrDivisionUndefined = errors.New("division undefined for zero participants")
)

// Quantities above this bound break embed formatting, so the production
// system refuses them. The engine takes it as a configurable cap
const DefaultMaxQuantity int64 = 1_000_000_000

// Entry is a single recorded contribution: a quantity of one item
// by one contributor. Entries are immutable once recorded
type Entry struct {
	ItemId        string
	ItemName      string
	Quantity      int64
	ContributorId string
}

// Share is the fair split of one item across all the participants.
// The remainder is always present, even when zero, so the caller
// decides how to render it
type Share struct {
	ItemId    string
	ItemName  string
	Total     int64
	PerPerson int64
	Remainder int64
}

// ItemTotal is the summed quantity of one item within a contribution
type ItemTotal struct {
	ItemId   string
	ItemName string
	Quantity int64
}

// Contribution is everything one contributor added, merged per item
type Contribution struct {
	ContributorId string
	Items         []ItemTotal
}

// The engine turns a flat list of entries into distribution views.
// It holds no state besides the quantity cap
type Engine struct {
	MaxQuantity int64
}

func NewEngine() Engine {
	return Engine{MaxQuantity: DefaultMaxQuantity}
}

// Append a new entry to the list after validating it.
// Invalid entries are rejected here, so the compute paths
// can trust the stored data completely
func (engine *Engine) AddEntry(entries []Entry, itemId string, itemName string, quantity int64, contributorId string) ([]Entry, error) {

	if itemId == "" {
		return entries, fmt.Errorf("item id is empty: %w", ErrInvalidItem)
	}
	if quantity <= 0 {
		return entries, fmt.Errorf("quantity %d is not positive: %w", quantity, ErrInvalidQuantity)
	}
	if engine.MaxQuantity > 0 && quantity >= engine.MaxQuantity {
		return entries, fmt.Errorf("quantity %d is out of range: %w", quantity, ErrInvalidQuantity)
	}

	return append(entries, Entry{itemId, itemName, quantity, contributorId}), nil
}

// Compute the fair share of every item across the provided number of
// participants. Items come out sorted by item id so repeated calls
// render identically
func (engine *Engine) Distribution(entries []Entry, participants int) ([]Share, error) {

	if participants == 0 {
		return nil, ErrDivisionUndefined
	}
	if participants < 0 {
		return nil, fmt.Errorf("negative participant count %d: %w", participants, ErrDivisionUndefined)
	}

	totals := make(map[string]*Share)
	for _, entry := range entries {
		share, ok := totals[entry.ItemId]
		if !ok {
			share = &Share{ItemId: entry.ItemId, ItemName: entry.ItemName}
			totals[entry.ItemId] = share
		}
		share.Total += entry.Quantity
	}

	shares := make([]Share, 0, len(totals))
	for _, share := range totals {
		share.PerPerson = share.Total / int64(participants)
		share.Remainder = share.Total % int64(participants)
		shares = append(shares, *share)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].ItemId < shares[j].ItemId })

	return shares, nil
}

// Compute what every contributor added, merging multiple entries for the
// same item into one total. Contributors and their items come out sorted
// by id for deterministic display
func (engine *Engine) Contributions(entries []Entry) []Contribution {

	perContributor := make(map[string]map[string]*ItemTotal)
	for _, entry := range entries {
		items, ok := perContributor[entry.ContributorId]
		if !ok {
			items = make(map[string]*ItemTotal)
			perContributor[entry.ContributorId] = items
		}
		total, ok := items[entry.ItemId]
		if !ok {
			total = &ItemTotal{ItemId: entry.ItemId, ItemName: entry.ItemName}
			items[entry.ItemId] = total
		}
		total.Quantity += entry.Quantity
	}

	contributions := make([]Contribution, 0, len(perContributor))
	for contributorId, items := range perContributor {
		contribution := Contribution{ContributorId: contributorId}
		for _, total := range items {
			contribution.Items = append(contribution.Items, *total)
		}
		sort.Slice(contribution.Items, func(i, j int) bool {
			return contribution.Items[i].ItemId < contribution.Items[j].ItemId
		})
		contributions = append(contributions, contribution)
	}
	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].ContributorId < contributions[j].ContributorId
	})

	return contributions
}

// Number of distinct item ids among the entries.
// This is a display statistic, not the entry count and not a quantity
func (engine *Engine) CountDistinctItems(entries []Entry) int {

	distinct := make(map[string]struct{})
	for _, entry := range entries {
		distinct[entry.ItemId] = struct{}{}
	}
	return len(distinct)
}
