package scoreboarddomain

import (
	"sort"
	"strconv"
)

// DefaultPageGroups is the number of rank groups shown per leaderboard page.
const DefaultPageGroups = 10

// TopMembersLimit is the size of the podium shown on the scoreboard display.
const TopMembersLimit = 3

// RankTitles labels the podium places, indexed by competition rank - 1.
var RankTitles = []string{"Quote Queen", "2nd Place", "3rd Place"}

// MemberScore is one ledger row.
type MemberScore struct {
	MemberID string `json:"member_id"`
	Score    int    `json:"score"`
}

// RankedScore is a member's score together with its competition rank.
type RankedScore struct {
	MemberID string `json:"member_id"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// RankGroup is a run of members sharing the same score.
//
// Position is the 1-based index of the group among distinct scores. Rank is
// the competition rank, 1 + the number of members with a higher score, which
// is what GetRankedScore reports for every member of the group.
type RankGroup struct {
	Position int      `json:"position"`
	Rank     int      `json:"rank"`
	Score    int      `json:"score"`
	Members  []string `json:"members"`
}

// Page is one precomputed leaderboard page. Number is 0-based.
type Page struct {
	Number int         `json:"number"`
	Groups []RankGroup `json:"groups"`
}

// MemberCount returns the number of member rows rendered on the page.
func (p Page) MemberCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Members)
	}
	return n
}

// SortScores orders scores by descending score, then by member id so that
// tied members render in a stable order. The input slice is sorted in place.
func SortScores(scores []MemberScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].MemberID < scores[j].MemberID
	})
}

// GroupByRank sorts scores and folds consecutive equal scores into rank
// groups. The input slice is not modified.
func GroupByRank(scores []MemberScore) []RankGroup {
	sorted := make([]MemberScore, len(scores))
	copy(sorted, scores)
	SortScores(sorted)

	var groups []RankGroup
	for i, s := range sorted {
		if len(groups) == 0 || groups[len(groups)-1].Score != s.Score {
			groups = append(groups, RankGroup{
				Position: len(groups) + 1,
				Rank:     i + 1,
				Score:    s.Score,
			})
		}
		last := &groups[len(groups)-1]
		last.Members = append(last.Members, s.MemberID)
	}
	return groups
}

// Paginate splits groups into pages of groupsPerPage rank groups each. A
// page may therefore hold more member rows than groupsPerPage. Values below
// one fall back to DefaultPageGroups.
func Paginate(groups []RankGroup, groupsPerPage int) []Page {
	if groupsPerPage < 1 {
		groupsPerPage = DefaultPageGroups
	}

	pages := make([]Page, 0, (len(groups)+groupsPerPage-1)/groupsPerPage)
	for start := 0; start < len(groups); start += groupsPerPage {
		end := min(start+groupsPerPage, len(groups))
		pages = append(pages, Page{
			Number: len(pages),
			Groups: groups[start:end],
		})
	}
	return pages
}

// RankTitle returns the podium label for a competition rank, or an ordinal
// such as "4th" past the podium.
func RankTitle(rank int) string {
	if rank >= 1 && rank <= len(RankTitles) {
		return RankTitles[rank-1]
	}
	return OrdinalSuffix(rank)
}

// OrdinalSuffix formats n with its English ordinal suffix: 1st, 2nd, 3rd,
// 4th, 11th, 21st, 112th.
func OrdinalSuffix(n int) string {
	suffix := "th"
	switch mod100 := n % 100; {
	case mod100 >= 11 && mod100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// ScoredMessage is the attribution recorded for one message. Quotees keeps
// duplicates in document order.
type ScoredMessage struct {
	MessageID string   `json:"message_id"`
	ChannelID string   `json:"channel_id"`
	Quotees   []string `json:"quotees"`
}

// Summary is what the pinned scoreboard display shows for a channel.
type Summary struct {
	ChannelID        string        `json:"channel_id"`
	DisplayMessageID string        `json:"display_message_id"`
	Top              []RankedScore `json:"top"`
}
