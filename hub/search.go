package hub

import (
	"sort"

	"github.com/undeconstructed/gamehub/game"
)

// PageSize is how many summaries one listing page carries.
const PageSize = 20

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case Asc, Desc:
		return SortOrder(s), true
	}
	return "", false
}

type SortKey string

const (
	ByGameType    SortKey = "game_type"
	ByPlayers     SortKey = "players"
	ByStage       SortKey = "stage"
	ByLastUpdated SortKey = "last_updated"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case ByGameType, ByPlayers, ByStage, ByLastUpdated:
		return SortKey(s), true
	}
	return "", false
}

// SearchOptions filters and orders a listing. Nil filters match everything.
type SearchOptions struct {
	Page      int
	SortKey   SortKey
	SortOrder SortOrder

	GameType *game.Type
	Players  *int
	Stage    *game.Stage
}

// canonical secondary key order; ties on the primary fall through this list,
// skipping the primary, always ascending.
var keyChain = []SortKey{ByGameType, ByPlayers, ByStage, ByLastUpdated}

// Search applies options to a set of summaries. Returns one page and the
// filtered total.
func Search(summaries []Summary, opts SearchOptions) ([]Summary, int) {
	filtered := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if opts.GameType != nil && s.GameType != *opts.GameType {
			continue
		}
		if opts.Players != nil && len(s.Players) != *opts.Players {
			continue
		}
		if opts.Stage != nil && s.Stage != *opts.Stage {
			continue
		}
		filtered = append(filtered, s)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return compareSummaries(&filtered[i], &filtered[j], opts.SortKey, opts.SortOrder) < 0
	})

	total := len(filtered)

	skip := (opts.Page - 1) * PageSize
	if skip >= total {
		return []Summary{}, total
	}
	end := skip + PageSize
	if end > total {
		end = total
	}
	return filtered[skip:end], total
}

// compareSummaries orders by the primary key (respecting the sort order),
// then by the remaining canonical keys ascending, then by game id.
func compareSummaries(a, b *Summary, key SortKey, order SortOrder) int {
	if c := compareByKey(a, b, key); c != 0 {
		if order == Desc {
			return -c
		}
		return c
	}
	for _, k := range keyChain {
		if k == key {
			continue
		}
		if c := compareByKey(a, b, k); c != 0 {
			return c
		}
	}
	switch {
	case a.GameId < b.GameId:
		return -1
	case a.GameId > b.GameId:
		return 1
	}
	return 0
}

func compareByKey(a, b *Summary, key SortKey) int {
	switch key {
	case ByGameType:
		return compareStrings(string(a.GameType), string(b.GameType))
	case ByPlayers:
		return len(a.Players) - len(b.Players)
	case ByStage:
		return stageRank(a.Stage) - stageRank(b.Stage)
	case ByLastUpdated:
		switch {
		case a.LastUpdated.Before(b.LastUpdated):
			return -1
		case a.LastUpdated.After(b.LastUpdated):
			return 1
		}
		return 0
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// stages order by lifecycle, not alphabetically
func stageRank(s game.Stage) int {
	switch s {
	case game.StageWaiting:
		return 0
	case game.StageInProgress:
		return 1
	default:
		return 2
	}
}
