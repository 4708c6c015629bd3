package catalog

import "github.com/Amund211/riftlight/internal/domain"

// Static is an in-memory catalog of reference data. It is filled once at startup
// and only read afterwards.
type Static struct {
	version string

	champions      map[int]domain.Champion
	items          map[int]domain.Item
	runes          map[int]domain.Rune
	runeTrees      map[int]domain.RuneTree
	statPerks      map[int]domain.StatPerk
	summonerSpells map[int]domain.SummonerSpell
	augments       map[int]domain.Augment
}

func NewStatic(version string) *Static {
	return &Static{
		version: version,

		champions:      make(map[int]domain.Champion),
		items:          make(map[int]domain.Item),
		runes:          make(map[int]domain.Rune),
		runeTrees:      make(map[int]domain.RuneTree),
		statPerks:      make(map[int]domain.StatPerk),
		summonerSpells: make(map[int]domain.SummonerSpell),
		augments:       make(map[int]domain.Augment),
	}
}

func (s *Static) Version() string {
	return s.version
}

func (s *Static) WithChampions(champions ...domain.Champion) *Static {
	for _, champion := range champions {
		s.champions[champion.ID] = champion
	}
	return s
}

func (s *Static) WithItems(items ...domain.Item) *Static {
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *Static) WithRuneTrees(trees ...domain.RuneTree) *Static {
	for _, tree := range trees {
		s.runeTrees[tree.ID] = tree
	}
	return s
}

func (s *Static) WithRunes(runes ...domain.Rune) *Static {
	for _, r := range runes {
		s.runes[r.ID] = r
	}
	return s
}

func (s *Static) WithStatPerks(perks ...domain.StatPerk) *Static {
	for _, perk := range perks {
		s.statPerks[perk.ID] = perk
	}
	return s
}

func (s *Static) WithSummonerSpells(spells ...domain.SummonerSpell) *Static {
	for _, spell := range spells {
		s.summonerSpells[spell.ID] = spell
	}
	return s
}

func (s *Static) WithAugments(augments ...domain.Augment) *Static {
	for _, augment := range augments {
		s.augments[augment.ID] = augment
	}
	return s
}

func (s *Static) Champion(id int) (domain.Champion, bool) {
	champion, ok := s.champions[id]
	return champion, ok
}

func (s *Static) Item(id int) (domain.Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

func (s *Static) Rune(id int) (domain.Rune, bool) {
	r, ok := s.runes[id]
	return r, ok
}

func (s *Static) RuneTree(id int) (domain.RuneTree, bool) {
	tree, ok := s.runeTrees[id]
	return tree, ok
}

func (s *Static) StatPerk(id int) (domain.StatPerk, bool) {
	perk, ok := s.statPerks[id]
	return perk, ok
}

func (s *Static) SummonerSpell(id int) (domain.SummonerSpell, bool) {
	spell, ok := s.summonerSpells[id]
	return spell, ok
}

func (s *Static) Augment(id int) (domain.Augment, bool) {
	augment, ok := s.augments[id]
	return augment, ok
}

func (s *Static) Size() int {
	return len(s.champions) + len(s.items) + len(s.runes) + len(s.runeTrees) +
		len(s.statPerks) + len(s.summonerSpells) + len(s.augments)
}

// Stat shards are not part of Data Dragon
var builtinStatPerks = []domain.StatPerk{
	{ID: 5001, Name: "Health Scaling"},
	{ID: 5002, Name: "Armor"},
	{ID: 5003, Name: "Magic Resist"},
	{ID: 5005, Name: "Attack Speed"},
	{ID: 5007, Name: "Ability Haste"},
	{ID: 5008, Name: "Adaptive Force"},
	{ID: 5010, Name: "Move Speed"},
	{ID: 5011, Name: "Health"},
	{ID: 5013, Name: "Tenacity and Slow Resist"},
}
