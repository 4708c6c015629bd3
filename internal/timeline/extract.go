package timeline

import (
	"slices"

	"github.com/Amund211/riftlight/internal/domain"
)

type ItemCatalog interface {
	Item(id int) (domain.Item, bool)
}

// ExtractParticipant selects the events where participantID is the actor or a secondary actor
// (killer, victim, creator or assist) and converts them to typed events.
//
// A raw event can end up in the timeline of several participants.
func ExtractParticipant(frames []Frame, participantID int, items ItemCatalog) domain.ParticipantTimeline {
	result := domain.ParticipantTimeline{
		ParticipantID: participantID,
		Frames:        []domain.TimelineFrame{},
	}

	for _, frame := range frames {
		var events []domain.GameEvent
		for _, raw := range frame.Events {
			if !raw.involves(participantID) {
				continue
			}

			event, ok := toGameEvent(raw, participantID, items)
			if !ok {
				continue
			}
			events = append(events, event)
		}

		if len(events) == 0 {
			continue
		}

		result.Frames = append(result.Frames, domain.TimelineFrame{
			TimestampMs: frame.Timestamp,
			Events:      events,
		})
	}

	return result
}

// ExtractAll returns one timeline per participant id, ordered by participant id
func ExtractAll(frames []Frame, participantIDs []int, items ItemCatalog) []domain.ParticipantTimeline {
	ids := slices.Clone(participantIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	timelines := make([]domain.ParticipantTimeline, 0, len(ids))
	for _, id := range ids {
		timelines = append(timelines, ExtractParticipant(frames, id, items))
	}
	return timelines
}

// Events flattens the frames of a timeline
func Events(timeline domain.ParticipantTimeline) []domain.GameEvent {
	var events []domain.GameEvent
	for _, frame := range timeline.Frames {
		events = append(events, frame.Events...)
	}
	return events
}

func resolveItem(id *int, items ItemCatalog) *domain.Item {
	if id == nil {
		return nil
	}
	item, ok := items.Item(*id)
	if !ok {
		return nil
	}
	return &item
}

func position(raw *RawPosition) domain.Position {
	if raw == nil {
		return domain.Position{}
	}
	return domain.Position{X: raw.X, Y: raw.Y}
}

func toGameEvent(raw Event, target int, items ItemCatalog) (domain.GameEvent, bool) {
	base := domain.EventBase{TimestampMs: raw.Timestamp}
	// Most events omit participantId in some feeds, stamp them with the participant being extracted
	participantID := intOr(raw.ParticipantID, target)

	switch domain.EventType(raw.Type) {
	case domain.EventItemPurchased:
		return domain.ItemPurchasedEvent{
			EventBase:     base,
			ParticipantID: participantID,
			Item:          resolveItem(raw.ItemID, items),
		}, true
	case domain.EventItemSold:
		return domain.ItemSoldEvent{
			EventBase:     base,
			ParticipantID: participantID,
			Item:          resolveItem(raw.ItemID, items),
		}, true
	case domain.EventItemDestroyed:
		return domain.ItemDestroyedEvent{
			EventBase:     base,
			ParticipantID: participantID,
			Item:          resolveItem(raw.ItemID, items),
		}, true
	case domain.EventItemUndo:
		return domain.ItemUndoEvent{
			EventBase:     base,
			ParticipantID: participantID,
			BeforeID:      intOr(raw.BeforeID, 0),
			AfterID:       intOr(raw.AfterID, 0),
			GoldGain:      intOr(raw.GoldGain, 0),
		}, true
	case domain.EventSkillLevelUp:
		return domain.SkillLevelUpEvent{
			EventBase:     base,
			ParticipantID: participantID,
			SkillSlot:     intOr(raw.SkillSlot, 0),
			LevelUpType:   stringOr(raw.LevelUpType, ""),
		}, true
	case domain.EventLevelUp:
		return domain.LevelUpEvent{
			EventBase:     base,
			ParticipantID: participantID,
			Level:         intOr(raw.Level, 0),
		}, true
	case domain.EventChampionKill:
		return domain.ChampionKillEvent{
			EventBase:               base,
			KillerID:                intOr(raw.KillerID, 0),
			VictimID:                intOr(raw.VictimID, target),
			AssistingParticipantIDs: slices.Clone(raw.AssistingParticipantIDs),
			Bounty:                  intOr(raw.Bounty, 0),
			ShutdownBounty:          intOr(raw.ShutdownBounty, 0),
			Position:                position(raw.Position),
		}, true
	case domain.EventChampionSpecialKill:
		return domain.ChampionSpecialKillEvent{
			EventBase:       base,
			KillerID:        intOr(raw.KillerID, 0),
			KillType:        stringOr(raw.KillType, ""),
			MultiKillLength: intOr(raw.MultiKillLength, 0),
			Position:        position(raw.Position),
		}, true
	case domain.EventWardPlaced:
		return domain.WardPlacedEvent{
			EventBase:     base,
			ParticipantID: participantID,
			CreatorID:     intOr(raw.CreatorID, participantID),
			WardType:      stringOr(raw.WardType, ""),
		}, true
	case domain.EventWardKill:
		return domain.WardKillEvent{
			EventBase: base,
			KillerID:  intOr(raw.KillerID, target),
			WardType:  stringOr(raw.WardType, ""),
		}, true
	case domain.EventBuildingKill:
		return domain.BuildingKillEvent{
			EventBase:               base,
			ParticipantID:           participantID,
			KillerID:                intOr(raw.KillerID, 0),
			TeamID:                  intOr(raw.TeamID, 0),
			BuildingType:            stringOr(raw.BuildingType, ""),
			LaneType:                stringOr(raw.LaneType, ""),
			TowerType:               stringOr(raw.TowerType, ""),
			AssistingParticipantIDs: slices.Clone(raw.AssistingParticipantIDs),
			Position:                position(raw.Position),
		}, true
	case domain.EventTurretPlateDestroyed:
		return domain.TurretPlateDestroyedEvent{
			EventBase:     base,
			ParticipantID: participantID,
			KillerID:      intOr(raw.KillerID, 0),
			TeamID:        intOr(raw.TeamID, 0),
			LaneType:      stringOr(raw.LaneType, ""),
			Position:      position(raw.Position),
		}, true
	case domain.EventEliteMonsterKill:
		return domain.EliteMonsterKillEvent{
			EventBase:               base,
			ParticipantID:           participantID,
			KillerID:                intOr(raw.KillerID, 0),
			KillerTeamID:            intOr(raw.KillerTeamID, 0),
			MonsterType:             stringOr(raw.MonsterType, ""),
			MonsterSubType:          stringOr(raw.MonsterSubType, ""),
			AssistingParticipantIDs: slices.Clone(raw.AssistingParticipantIDs),
			Position:                position(raw.Position),
		}, true
	}

	return nil, false
}
