package domain

type Champion struct {
	ID   int
	Key  string
	Name string
}

type Item struct {
	ID        int
	Name      string
	TotalGold int
}

type RuneTree struct {
	ID   int
	Key  string
	Name string
}

type Rune struct {
	ID     int
	Key    string
	Name   string
	TreeID int
}

type StatPerk struct {
	ID   int
	Name string
}

type SummonerSpell struct {
	ID   int
	Key  string
	Name string
}

type Augment struct {
	ID     int
	Name   string
	Rarity string
}
