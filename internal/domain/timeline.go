package domain

type EventType string

const (
	EventItemPurchased        EventType = "ITEM_PURCHASED"
	EventItemSold             EventType = "ITEM_SOLD"
	EventItemDestroyed        EventType = "ITEM_DESTROYED"
	EventItemUndo             EventType = "ITEM_UNDO"
	EventSkillLevelUp         EventType = "SKILL_LEVEL_UP"
	EventLevelUp              EventType = "LEVEL_UP"
	EventChampionKill         EventType = "CHAMPION_KILL"
	EventChampionSpecialKill  EventType = "CHAMPION_SPECIAL_KILL"
	EventWardPlaced           EventType = "WARD_PLACED"
	EventWardKill             EventType = "WARD_KILL"
	EventBuildingKill         EventType = "BUILDING_KILL"
	EventTurretPlateDestroyed EventType = "TURRET_PLATE_DESTROYED"
	EventEliteMonsterKill     EventType = "ELITE_MONSTER_KILL"
)

type Position struct {
	X int
	Y int
}

// GameEvent is one of the *Event types in this file
type GameEvent interface {
	Type() EventType
	Timestamp() int64
	gameEvent()
}

type EventBase struct {
	TimestampMs int64
}

func (e EventBase) Timestamp() int64 { return e.TimestampMs }
func (EventBase) gameEvent()         {}

// Item is nil when the item could not be resolved
type ItemPurchasedEvent struct {
	EventBase
	ParticipantID int
	Item          *Item
}

type ItemSoldEvent struct {
	EventBase
	ParticipantID int
	Item          *Item
}

type ItemDestroyedEvent struct {
	EventBase
	ParticipantID int
	Item          *Item
}

type ItemUndoEvent struct {
	EventBase
	ParticipantID int
	BeforeID      int
	AfterID       int
	GoldGain      int
}

type SkillLevelUpEvent struct {
	EventBase
	ParticipantID int
	SkillSlot     int
	LevelUpType   string
}

type LevelUpEvent struct {
	EventBase
	ParticipantID int
	Level         int
}

type ChampionKillEvent struct {
	EventBase
	KillerID                int
	VictimID                int
	AssistingParticipantIDs []int
	Bounty                  int
	ShutdownBounty          int
	Position                Position
}

type ChampionSpecialKillEvent struct {
	EventBase
	KillerID        int
	KillType        string
	MultiKillLength int
	Position        Position
}

type WardPlacedEvent struct {
	EventBase
	ParticipantID int
	CreatorID     int
	WardType      string
}

type WardKillEvent struct {
	EventBase
	KillerID int
	WardType string
}

type BuildingKillEvent struct {
	EventBase
	ParticipantID           int
	KillerID                int
	TeamID                  int
	BuildingType            string
	LaneType                string
	TowerType               string
	AssistingParticipantIDs []int
	Position                Position
}

type TurretPlateDestroyedEvent struct {
	EventBase
	ParticipantID int
	KillerID      int
	TeamID        int
	LaneType      string
	Position      Position
}

type EliteMonsterKillEvent struct {
	EventBase
	ParticipantID           int
	KillerID                int
	KillerTeamID            int
	MonsterType             string
	MonsterSubType          string
	AssistingParticipantIDs []int
	Position                Position
}

func (ItemPurchasedEvent) Type() EventType        { return EventItemPurchased }
func (ItemSoldEvent) Type() EventType             { return EventItemSold }
func (ItemDestroyedEvent) Type() EventType        { return EventItemDestroyed }
func (ItemUndoEvent) Type() EventType             { return EventItemUndo }
func (SkillLevelUpEvent) Type() EventType         { return EventSkillLevelUp }
func (LevelUpEvent) Type() EventType              { return EventLevelUp }
func (ChampionKillEvent) Type() EventType         { return EventChampionKill }
func (ChampionSpecialKillEvent) Type() EventType  { return EventChampionSpecialKill }
func (WardPlacedEvent) Type() EventType           { return EventWardPlaced }
func (WardKillEvent) Type() EventType             { return EventWardKill }
func (BuildingKillEvent) Type() EventType         { return EventBuildingKill }
func (TurretPlateDestroyedEvent) Type() EventType { return EventTurretPlateDestroyed }
func (EliteMonsterKillEvent) Type() EventType     { return EventEliteMonsterKill }

type TimelineFrame struct {
	TimestampMs int64
	Events      []GameEvent
}

// ParticipantTimeline holds the frames with events relevant to one participant.
// Frames without relevant events are omitted.
type ParticipantTimeline struct {
	// Match-local ordinal, not the puuid
	ParticipantID int
	Frames        []TimelineFrame
}
