package timeline

import "github.com/Amund211/riftlight/internal/domain"

type ItemEntry struct {
	Type        domain.EventType
	Item        *domain.Item
	Count       int
	TimestampMs int64
}

type ItemMinute struct {
	Minute  int
	Entries []ItemEntry
}

func itemOf(event domain.GameEvent) (*domain.Item, bool) {
	switch e := event.(type) {
	case domain.ItemPurchasedEvent:
		return e.Item, true
	case domain.ItemSoldEvent:
		return e.Item, true
	}
	return nil, false
}

func sameItem(a, b *domain.Item) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// GroupItemEvents collapses consecutive purchases or sales of the same item into one entry
// with a count, and buckets the entries by elapsed game minute
func GroupItemEvents(events []domain.GameEvent) []ItemMinute {
	var entries []ItemEntry
	for _, event := range events {
		item, ok := itemOf(event)
		if !ok {
			continue
		}

		if len(entries) > 0 {
			last := &entries[len(entries)-1]
			if last.Type == event.Type() && sameItem(last.Item, item) {
				last.Count++
				continue
			}
		}

		entries = append(entries, ItemEntry{
			Type:        event.Type(),
			Item:        item,
			Count:       1,
			TimestampMs: event.Timestamp(),
		})
	}

	minutes := []ItemMinute{}
	for _, entry := range entries {
		minute := int(entry.TimestampMs / 60_000)
		if len(minutes) == 0 || minutes[len(minutes)-1].Minute != minute {
			minutes = append(minutes, ItemMinute{Minute: minute})
		}
		last := &minutes[len(minutes)-1]
		last.Entries = append(last.Entries, entry)
	}

	return minutes
}
