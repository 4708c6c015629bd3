package app_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/catalog"
	"github.com/Amund211/riftlight/internal/adapters/matchrepository"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/domaintest"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() *catalog.Static {
	return catalog.NewStatic("test").
		WithChampions(domaintest.Aatrox, domaintest.Lulu).
		WithItems(domaintest.DoransBlade, domaintest.HealthPotion).
		WithSummonerSpells(domaintest.Flash, domaintest.Ignite)
}

// matchCreation returns the creation time of the nth match, later n is newer
func matchCreation(n int) time.Time {
	return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour)
}

func testMatchDTO(matchID string, gameCreation time.Time) riotapi.MatchDTO {
	return riotapi.MatchDTO{
		Metadata: riotapi.MatchMetadataDTO{MatchID: matchID},
		Info: riotapi.MatchInfoDTO{
			GameCreation:     gameCreation.UnixMilli(),
			GameDuration:     1500,
			GameEndTimestamp: gameCreation.Add(1500 * time.Second).UnixMilli(),
			GameMode:         "CLASSIC",
			QueueID:          420,
			Participants: []riotapi.ParticipantDTO{
				{PUUID: "p1", ParticipantID: 1, TeamID: 100, ChampionID: 266, Kills: 3, Deaths: 1, Summoner1ID: 4, Summoner2ID: 14, Item0: 1055},
				{PUUID: "p2", ParticipantID: 2, TeamID: 200, ChampionID: 117, Deaths: 3, Summoner1ID: 4, Summoner2ID: 14},
			},
		},
	}
}

func testTimelineDTO() riotapi.TimelineDTO {
	participantID := 1
	itemID := 1055
	return riotapi.TimelineDTO{
		Info: riotapi.TimelineInfoDTO{
			Frames: []timeline.Frame{{
				Timestamp: 60000,
				Events: []timeline.Event{
					{Type: "ITEM_PURCHASED", Timestamp: 1500, ParticipantID: &participantID, ItemID: &itemID},
				},
			}},
		},
	}
}

func testMatchRecord(matchID string, gameCreation time.Time) matchrepository.MatchRecord {
	return matchrepository.MatchRecord{
		MatchID:             matchID,
		Region:              "europe",
		GameDurationSeconds: 1500,
		GameCreation:        gameCreation,
		GameEnd:             gameCreation.Add(1500 * time.Second),
		GameMode:            "CLASSIC",
		QueueID:             420,
		Participants: []matchrepository.ParticipantRecord{
			{MatchID: matchID, ParticipantID: 1, PUUID: "p1", TeamID: 100, ChampionID: 266, SummonerSpell1ID: 4, SummonerSpell2ID: 14},
			{MatchID: matchID, ParticipantID: 2, PUUID: "p2", TeamID: 200, ChampionID: 117, SummonerSpell1ID: 4, SummonerSpell2ID: 14},
		},
	}
}

type mockMatchUpstream struct {
	t *testing.T

	mu sync.Mutex

	matchIDs    []string
	matchIDsErr error
	// Missing matches are not found
	matches      map[string]riotapi.MatchDTO
	matchErrs    map[string]error
	timelineErrs map[string]error

	requestedStart int
	requestedCount int
	matchIDsCalls  int
	fetchedMatches []string
	timelineCalls  int
}

func newMockMatchUpstream(t *testing.T) *mockMatchUpstream {
	return &mockMatchUpstream{
		t:            t,
		matches:      map[string]riotapi.MatchDTO{},
		matchErrs:    map[string]error{},
		timelineErrs: map[string]error{},
	}
}

func (m *mockMatchUpstream) addMatch(matchID string, gameCreation time.Time) {
	m.matches[matchID] = testMatchDTO(matchID, gameCreation)
}

func (m *mockMatchUpstream) upstreamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchIDsCalls + len(m.fetchedMatches) + m.timelineCalls
}

func (m *mockMatchUpstream) GetMatchIDs(ctx context.Context, region, puuid string, start, count int) ([]string, error) {
	m.t.Helper()
	require.Equal(m.t, "europe", region)
	require.Equal(m.t, "p1", puuid)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchIDsCalls++
	m.requestedStart = start
	m.requestedCount = count
	return m.matchIDs, m.matchIDsErr
}

func (m *mockMatchUpstream) GetMatch(ctx context.Context, region, matchID string) (riotapi.MatchDTO, error) {
	m.t.Helper()
	require.Equal(m.t, "europe", region)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchedMatches = append(m.fetchedMatches, matchID)
	if err, ok := m.matchErrs[matchID]; ok {
		return riotapi.MatchDTO{}, err
	}
	match, ok := m.matches[matchID]
	if !ok {
		return riotapi.MatchDTO{}, domain.ErrNotFound
	}
	return match, nil
}

func (m *mockMatchUpstream) GetTimeline(ctx context.Context, region, matchID string) (riotapi.TimelineDTO, error) {
	m.t.Helper()
	require.Equal(m.t, "europe", region)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.timelineCalls++
	if err, ok := m.timelineErrs[matchID]; ok {
		return riotapi.TimelineDTO{}, err
	}
	return testTimelineDTO(), nil
}

type mockMatchStore struct {
	t *testing.T

	mu sync.Mutex

	records map[string]matchrepository.MatchRecord
	// Match ids of p1, newest first
	history []string

	findErr error
	saveErr error

	saved          []string
	savedFrames    map[string][]timeline.Frame
	saveBudgets    []time.Duration
	findCalls      int
	findByIDsCalls int
	requestedLimit int
}

func newMockMatchStore(t *testing.T) *mockMatchStore {
	return &mockMatchStore{
		t:           t,
		records:     map[string]matchrepository.MatchRecord{},
		savedFrames: map[string][]timeline.Frame{},
	}
}

// addHistory stores matches for p1, given newest first
func (m *mockMatchStore) addHistory(records ...matchrepository.MatchRecord) {
	for _, record := range records {
		m.records[record.MatchID] = record
		m.history = append(m.history, record.MatchID)
	}
}

func withoutFrames(record matchrepository.MatchRecord, includeTimeline bool) matchrepository.MatchRecord {
	if !includeTimeline {
		record.Frames = nil
	} else if record.Frames == nil {
		record.Frames = []timeline.Frame{}
	}
	return record
}

func (m *mockMatchStore) FindMatchesByParticipant(ctx context.Context, puuid string, limit int, includeTimeline bool) ([]matchrepository.MatchRecord, error) {
	m.t.Helper()
	require.Equal(m.t, "p1", puuid)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	m.requestedLimit = limit
	if m.findErr != nil {
		return nil, m.findErr
	}

	records := []matchrepository.MatchRecord{}
	for _, matchID := range m.history {
		if len(records) == limit {
			break
		}
		records = append(records, withoutFrames(m.records[matchID], includeTimeline))
	}
	return records, nil
}

func (m *mockMatchStore) FindMatchesByIDs(ctx context.Context, matchIDs []string, includeTimeline bool) ([]matchrepository.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByIDsCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}

	records := []matchrepository.MatchRecord{}
	for _, matchID := range matchIDs {
		if record, ok := m.records[matchID]; ok {
			records = append(records, withoutFrames(record, includeTimeline))
		}
	}
	return records, nil
}

func (m *mockMatchStore) MatchExists(ctx context.Context, matchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return false, m.findErr
	}
	_, ok := m.records[matchID]
	return ok, nil
}

func (m *mockMatchStore) SaveMatch(ctx context.Context, match domain.Match, frames []timeline.Frame) (bool, error) {
	m.t.Helper()
	require.NoError(m.t, ctx.Err())

	m.mu.Lock()
	defer m.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		m.saveBudgets = append(m.saveBudgets, time.Until(deadline))
	}
	if m.saveErr != nil {
		return false, m.saveErr
	}
	if _, ok := m.records[match.MatchID]; ok {
		return false, nil
	}
	m.records[match.MatchID] = matchrepository.MatchRecord{MatchID: match.MatchID, Frames: frames}
	m.saved = append(m.saved, match.MatchID)
	m.savedFrames[match.MatchID] = frames
	return true, nil
}

func (m *mockMatchStore) savedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := slices.Clone(m.saved)
	slices.Sort(saved)
	return saved
}

func immediately(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func matchIDsOf(matches []domain.Match) []string {
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.MatchID)
	}
	return ids
}
