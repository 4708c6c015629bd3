package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Amund211/riftlight/internal/constants"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/goccy/go-json"
)

const dataDragonBaseURL = "https://ddragon.leagueoflegends.com"
const arenaAugmentsURL = "https://raw.communitydragon.org/latest/cdragon/arena/en_us.json"

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type dataDragonChampions struct {
	Data map[string]struct {
		Key  string `json:"key"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

type dataDragonItems struct {
	Data map[string]struct {
		Name string `json:"name"`
		Gold struct {
			Total int `json:"total"`
		} `json:"gold"`
	} `json:"data"`
}

type dataDragonRuneTree struct {
	ID    int    `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Slots []struct {
		Runes []struct {
			ID   int    `json:"id"`
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"runes"`
	} `json:"slots"`
}

type dataDragonSummonerSpells struct {
	Data map[string]struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"data"`
}

type communityDragonArena struct {
	Augments []struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Rarity int    `json:"rarity"`
	} `json:"augments"`
}

var augmentRarities = map[int]string{
	0: "silver",
	1: "gold",
	2: "prismatic",
}

type loader struct {
	httpClient HttpClient
	baseURL    string
}

// LoadDataDragon builds a catalog from Data Dragon for the given version.
// The latest version is used when version is empty.
func LoadDataDragon(ctx context.Context, httpClient HttpClient, version string, language string) (*Static, error) {
	l := loader{httpClient: httpClient, baseURL: dataDragonBaseURL}
	return l.load(ctx, version, language)
}

func (l loader) load(ctx context.Context, version string, language string) (*Static, error) {
	if version == "" {
		var versions []string
		if err := l.getJSON(ctx, fmt.Sprintf("%s/api/versions.json", l.baseURL), &versions); err != nil {
			return nil, fmt.Errorf("failed to get data dragon versions: %w", err)
		}
		if len(versions) == 0 {
			err := fmt.Errorf("data dragon returned no versions")
			reporting.Report(ctx, err)
			return nil, err
		}
		version = versions[0]
	}

	static := NewStatic(version).WithStatPerks(builtinStatPerks...)
	dataURL := func(file string) string {
		return fmt.Sprintf("%s/cdn/%s/data/%s/%s", l.baseURL, version, language, file)
	}

	var champions dataDragonChampions
	if err := l.getJSON(ctx, dataURL("champion.json"), &champions); err != nil {
		return nil, fmt.Errorf("failed to get champions: %w", err)
	}
	for _, champion := range champions.Data {
		id, err := strconv.Atoi(champion.Key)
		if err != nil {
			err := fmt.Errorf("invalid champion key: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"key": champion.Key,
			})
			return nil, err
		}
		static.WithChampions(domain.Champion{ID: id, Key: champion.ID, Name: champion.Name})
	}

	var items dataDragonItems
	if err := l.getJSON(ctx, dataURL("item.json"), &items); err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	for rawID, item := range items.Data {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			// Some entries are keyed by non-numeric ids, they never show up in matches
			continue
		}
		static.WithItems(domain.Item{ID: id, Name: item.Name, TotalGold: item.Gold.Total})
	}

	var trees []dataDragonRuneTree
	if err := l.getJSON(ctx, dataURL("runesReforged.json"), &trees); err != nil {
		return nil, fmt.Errorf("failed to get runes: %w", err)
	}
	for _, tree := range trees {
		static.WithRuneTrees(domain.RuneTree{ID: tree.ID, Key: tree.Key, Name: tree.Name})
		for _, slot := range tree.Slots {
			for _, r := range slot.Runes {
				static.WithRunes(domain.Rune{ID: r.ID, Key: r.Key, Name: r.Name, TreeID: tree.ID})
			}
		}
	}

	var spells dataDragonSummonerSpells
	if err := l.getJSON(ctx, dataURL("summoner.json"), &spells); err != nil {
		return nil, fmt.Errorf("failed to get summoner spells: %w", err)
	}
	for _, spell := range spells.Data {
		id, err := strconv.Atoi(spell.Key)
		if err != nil {
			err := fmt.Errorf("invalid summoner spell key: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"key": spell.Key,
			})
			return nil, err
		}
		static.WithSummonerSpells(domain.SummonerSpell{ID: id, Key: spell.ID, Name: spell.Name})
	}

	return static, nil
}

// LoadArenaAugments adds the arena augments from Community Dragon to the catalog
func LoadArenaAugments(ctx context.Context, httpClient HttpClient, static *Static) error {
	l := loader{httpClient: httpClient}

	var arena communityDragonArena
	if err := l.getJSON(ctx, arenaAugmentsURL, &arena); err != nil {
		return fmt.Errorf("failed to get arena augments: %w", err)
	}

	for _, augment := range arena.Augments {
		static.WithAugments(domain.Augment{
			ID:     augment.ID,
			Name:   augment.Name,
			Rarity: augmentRarities[augment.Rarity],
		})
	}

	return nil
}

func (l loader) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		err := fmt.Errorf("failed to send request: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"url": url,
		})
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err := fmt.Errorf("failed to read response body: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code %d", resp.StatusCode)
		reporting.Report(ctx, err, map[string]string{
			"url":    url,
			"status": strconv.Itoa(resp.StatusCode),
		})
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		err := fmt.Errorf("failed to parse response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"url":    url,
			"status": strconv.Itoa(resp.StatusCode),
		})
		return err
	}

	return nil
}
