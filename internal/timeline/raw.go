package timeline

// Frame is one sample of the game-wide event stream as delivered upstream
type Frame struct {
	Timestamp int64   `json:"timestamp"`
	Events    []Event `json:"events"`
}

type RawPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Event is a raw event. Which fields are set depends on Type.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	ParticipantID           *int  `json:"participantId,omitempty"`
	KillerID                *int  `json:"killerId,omitempty"`
	VictimID                *int  `json:"victimId,omitempty"`
	CreatorID               *int  `json:"creatorId,omitempty"`
	AssistingParticipantIDs []int `json:"assistingParticipantIds,omitempty"`

	ItemID   *int `json:"itemId,omitempty"`
	BeforeID *int `json:"beforeId,omitempty"`
	AfterID  *int `json:"afterId,omitempty"`
	GoldGain *int `json:"goldGain,omitempty"`

	SkillSlot   *int    `json:"skillSlot,omitempty"`
	LevelUpType *string `json:"levelUpType,omitempty"`
	Level       *int    `json:"level,omitempty"`

	WardType        *string `json:"wardType,omitempty"`
	KillType        *string `json:"killType,omitempty"`
	MultiKillLength *int    `json:"multiKillLength,omitempty"`
	Bounty          *int    `json:"bounty,omitempty"`
	ShutdownBounty  *int    `json:"shutdownBounty,omitempty"`

	TeamID         *int    `json:"teamId,omitempty"`
	KillerTeamID   *int    `json:"killerTeamId,omitempty"`
	BuildingType   *string `json:"buildingType,omitempty"`
	LaneType       *string `json:"laneType,omitempty"`
	TowerType      *string `json:"towerType,omitempty"`
	MonsterType    *string `json:"monsterType,omitempty"`
	MonsterSubType *string `json:"monsterSubType,omitempty"`

	Position *RawPosition `json:"position,omitempty"`
}

func (e Event) involves(participantID int) bool {
	for _, id := range []*int{e.ParticipantID, e.KillerID, e.VictimID, e.CreatorID} {
		if id != nil && *id == participantID {
			return true
		}
	}
	for _, id := range e.AssistingParticipantIDs {
		if id == participantID {
			return true
		}
	}
	return false
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
