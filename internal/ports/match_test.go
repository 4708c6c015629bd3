package ports_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/domaintest"
	"github.com/Amund211/riftlight/internal/ports"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestMakeGetMatchHandler(t *testing.T) {
	t.Parallel()

	allowedOrigins := newAllowedOrigins(t)
	gameCreation := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	doransBlade := domaintest.DoransBlade
	healthPotion := domaintest.HealthPotion
	kill := domain.ChampionKillEvent{
		EventBase: domain.EventBase{TimestampMs: 125_000},
		KillerID:  1,
		VictimID:  6,
		Bounty:    300,
		Position:  domain.Position{X: 7500, Y: 7500},
	}

	match := domaintest.NewMatchBuilder("EUW1_7123456789", gameCreation).
		WithParticipants(
			domaintest.NewParticipantBuilder("p-1", 1).Build(),
			domaintest.NewParticipantBuilder("p-6", 6).WithChampion(domaintest.Lulu).WithPosition("UTILITY").Build(),
		).
		Build()
	match.Timelines = []domain.ParticipantTimeline{
		{
			ParticipantID: 1,
			Frames: []domain.TimelineFrame{
				{
					TimestampMs: 60_000,
					Events: []domain.GameEvent{
						domain.ItemPurchasedEvent{EventBase: domain.EventBase{TimestampMs: 65_000}, ParticipantID: 1, Item: &doransBlade},
						domain.ItemPurchasedEvent{EventBase: domain.EventBase{TimestampMs: 66_000}, ParticipantID: 1, Item: &healthPotion},
						domain.ItemPurchasedEvent{EventBase: domain.EventBase{TimestampMs: 67_000}, ParticipantID: 1, Item: &healthPotion},
					},
				},
				{
					TimestampMs: 120_000,
					Events:      []domain.GameEvent{kill},
				},
			},
		},
		{
			ParticipantID: 6,
			Frames: []domain.TimelineFrame{
				{
					TimestampMs: 120_000,
					Events: []domain.GameEvent{
						kill,
						domain.EliteMonsterKillEvent{
							EventBase:      domain.EventBase{TimestampMs: 130_000},
							KillerID:       6,
							KillerTeamID:   200,
							MonsterType:    "DRAGON",
							MonsterSubType: "FIRE_DRAGON",
							Position:       domain.Position{X: 3000, Y: 12000},
						},
					},
				},
			},
		},
	}

	makeRequest := func(query string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/v1/match/europe/EUW1_7123456789"+query, nil)
		req.SetPathValue("region", "europe")
		req.SetPathValue("matchId", "EUW1_7123456789")
		return req
	}

	type response struct {
		Success   bool            `json:"success"`
		Source    string          `json:"source"`
		Persisted bool            `json:"persisted"`
		Match     json.RawMessage `json:"match"`
		CombatLog json.RawMessage `json:"combatLog"`
		Items     json.RawMessage `json:"items"`
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		called := false
		handler := ports.MakeGetMatchHandler(
			func(ctx context.Context, region, matchID string, forceRefresh bool) (app.Resolved[domain.Match], error) {
				require.Equal(t, "europe", region)
				require.Equal(t, "EUW1_7123456789", matchID)
				require.False(t, forceRefresh)
				called = true
				return app.Resolved[domain.Match]{Data: match, Source: app.SourceUpstream, Persisted: true}, nil
			},
			allowedOrigins, testLogger, noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest(""))

		require.True(t, called)
		require.Equal(t, http.StatusOK, w.Code)

		var parsed response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
		require.True(t, parsed.Success)
		require.Equal(t, "upstream", parsed.Source)
		require.True(t, parsed.Persisted)

		var parsedMatch struct {
			MatchID      string `json:"matchId"`
			Participants []struct {
				PUUID    string `json:"puuid"`
				Side     string `json:"side"`
				Champion struct {
					ID   int    `json:"id"`
					Name string `json:"name"`
				} `json:"champion"`
			} `json:"participants"`
		}
		require.NoError(t, json.Unmarshal(parsed.Match, &parsedMatch))
		require.Equal(t, "EUW1_7123456789", parsedMatch.MatchID)
		require.Len(t, parsedMatch.Participants, 2)
		require.Equal(t, "red", parsedMatch.Participants[1].Side)
		require.Equal(t, "Lulu", parsedMatch.Participants[1].Champion.Name)

		// The kill is seen by both participants but only logged once
		require.JSONEq(t, `[
			{
				"category": "kill",
				"timestampMs": 125000,
				"killerId": 1,
				"killerSide": "blue",
				"victimId": 6,
				"victimSide": "red",
				"assistingParticipantIds": [],
				"position": {"x": 7500, "y": 7500, "minimapX": 50, "minimapY": 50}
			},
			{
				"category": "elite_monster",
				"timestampMs": 130000,
				"killerId": 6,
				"killerSide": "red",
				"monsterType": "DRAGON",
				"monsterSubType": "FIRE_DRAGON",
				"assistingParticipantIds": [],
				"position": {"x": 3000, "y": 12000, "minimapX": 20, "minimapY": 20}
			}
		]`, string(parsed.CombatLog))

		require.JSONEq(t, `[
			{
				"participantId": 1,
				"minutes": [
					{
						"minute": 1,
						"entries": [
							{"type": "ITEM_PURCHASED", "item": {"id": 1055, "name": "Doran's Blade"}, "count": 1, "timestampMs": 65000},
							{"type": "ITEM_PURCHASED", "item": {"id": 2003, "name": "Health Potion"}, "count": 2, "timestampMs": 66000}
						]
					}
				]
			},
			{
				"participantId": 6,
				"minutes": []
			}
		]`, string(parsed.Items))
	})

	t.Run("match without timeline", func(t *testing.T) {
		t.Parallel()

		withoutTimeline := match
		withoutTimeline.Timelines = nil

		handler := ports.MakeGetMatchHandler(
			func(ctx context.Context, region, matchID string, forceRefresh bool) (app.Resolved[domain.Match], error) {
				return app.Resolved[domain.Match]{Data: withoutTimeline, Source: app.SourceStore, Persisted: true}, nil
			},
			allowedOrigins, testLogger, noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest(""))

		require.Equal(t, http.StatusOK, w.Code)
		var parsed response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
		require.JSONEq(t, `[]`, string(parsed.CombatLog))
		require.JSONEq(t, `[]`, string(parsed.Items))
	})

	t.Run("forced refresh", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeGetMatchHandler(
			func(ctx context.Context, region, matchID string, forceRefresh bool) (app.Resolved[domain.Match], error) {
				require.True(t, forceRefresh)
				return app.Resolved[domain.Match]{Data: match, Source: app.SourceStaleStore, Persisted: true}, nil
			},
			allowedOrigins, testLogger, noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest("?refresh=1"))
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		handler := ports.MakeGetMatchHandler(
			func(ctx context.Context, region, matchID string, forceRefresh bool) (app.Resolved[domain.Match], error) {
				return app.Resolved[domain.Match]{}, fmt.Errorf("%w: EUW1_7123456789", domain.ErrMatchNotFound)
			},
			allowedOrigins, testLogger, noopMiddleware,
		)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest(""))
		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"success":false,"cause":"not found"}`, w.Body.String())
	})
}
