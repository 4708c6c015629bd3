package domain

// Account is the identity of a player across all entity families.
//
// Placeholder accounts created for match participants that have never been
// searched for have an empty GameName and TagLine.
type Account struct {
	PUUID    string
	GameName string
	TagLine  string
}

func (a Account) IsPlaceholder() bool {
	return a.GameName == "" && a.TagLine == ""
}

func (a Account) RiotID() string {
	if a.IsPlaceholder() {
		return ""
	}
	return a.GameName + "#" + a.TagLine
}
