package scoreboardservice

import (
	"context"
	"slices"
	"sort"
	"sync"

	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	scoreboarddb "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scoreboard Repo
// ------------------------

// FakeRepo keeps an in-memory ledger. Individual methods can be overridden
// through the *Func fields to inject failures.
type FakeRepo struct {
	mu    sync.Mutex
	trace []string

	scoreboards map[string]scoreboarddb.Scoreboard
	scores      map[string]map[string]int
	messages    map[string]scoreboarddomain.ScoredMessage

	GetScoreboardFunc        func(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddb.Scoreboard, error)
	IncrementMemberScoreFunc func(ctx context.Context, db bun.IDB, channelID, memberID string, amount int) error
	DeleteScoreboardFunc     func(ctx context.Context, db bun.IDB, channelID string) error
	RandomScoredMessageFunc  func(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddomain.ScoredMessage, error)
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		trace:       []string{},
		scoreboards: map[string]scoreboarddb.Scoreboard{},
		scores:      map[string]map[string]int{},
		messages:    map[string]scoreboarddomain.ScoredMessage{},
	}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Seeding helpers ---

func (f *FakeRepo) SeedScoreboard(channelID, messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreboards[channelID] = scoreboarddb.Scoreboard{ChannelID: channelID, MessageID: messageID}
}

func (f *FakeRepo) SeedScore(channelID, memberID string, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores[channelID] == nil {
		f.scores[channelID] = map[string]int{}
	}
	f.scores[channelID][memberID] = score
}

func (f *FakeRepo) SeedMessage(msg scoreboarddomain.ScoredMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[msg.MessageID] = msg
}

// --- Repository Interface Implementation ---

func (f *FakeRepo) GetScoreboard(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddb.Scoreboard, error) {
	f.mu.Lock()
	f.record("GetScoreboard")
	override := f.GetScoreboardFunc
	sb, ok := f.scoreboards[channelID]
	f.mu.Unlock()

	if override != nil {
		return override(ctx, db, channelID)
	}
	if !ok {
		return nil, nil
	}
	return &sb, nil
}

func (f *FakeRepo) CreateScoreboard(_ context.Context, _ bun.IDB, scoreboard *scoreboarddb.Scoreboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateScoreboard")
	f.scoreboards[scoreboard.ChannelID] = *scoreboard
	return nil
}

func (f *FakeRepo) UpdateScoreboardMessage(_ context.Context, _ bun.IDB, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateScoreboardMessage")
	sb, ok := f.scoreboards[channelID]
	if !ok {
		return scoreboarddb.ErrNoRowsAffected
	}
	sb.MessageID = messageID
	f.scoreboards[channelID] = sb
	return nil
}

func (f *FakeRepo) DeleteScoreboard(ctx context.Context, db bun.IDB, channelID string) error {
	f.mu.Lock()
	f.record("DeleteScoreboard")
	override := f.DeleteScoreboardFunc
	f.mu.Unlock()
	if override != nil {
		return override(ctx, db, channelID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.scoreboards[channelID]; !ok {
		return scoreboarddb.ErrNoRowsAffected
	}
	delete(f.scoreboards, channelID)
	delete(f.scores, channelID)
	for id, m := range f.messages {
		if m.ChannelID == channelID {
			delete(f.messages, id)
		}
	}
	return nil
}

func (f *FakeRepo) GetMemberScore(_ context.Context, _ bun.IDB, channelID, memberID string) (*scoreboarddomain.MemberScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetMemberScore")
	score, ok := f.scores[channelID][memberID]
	if !ok {
		return nil, nil
	}
	return &scoreboarddomain.MemberScore{MemberID: memberID, Score: score}, nil
}

func (f *FakeRepo) IncrementMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string, amount int) error {
	f.mu.Lock()
	f.record("IncrementMemberScore")
	override := f.IncrementMemberScoreFunc
	f.mu.Unlock()
	if override != nil {
		return override(ctx, db, channelID, memberID, amount)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores[channelID] == nil {
		f.scores[channelID] = map[string]int{}
	}
	f.scores[channelID][memberID] += amount
	return nil
}

func (f *FakeRepo) DecrementMemberScore(_ context.Context, _ bun.IDB, channelID, memberID string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DecrementMemberScore")
	score, ok := f.scores[channelID][memberID]
	if !ok {
		return nil
	}
	f.scores[channelID][memberID] = score - min(score, amount)
	return nil
}

func (f *FakeRepo) BulkCreateMemberScores(_ context.Context, _ bun.IDB, channelID string, scores []scoreboarddomain.MemberScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BulkCreateMemberScores")
	if f.scores[channelID] == nil {
		f.scores[channelID] = map[string]int{}
	}
	for _, s := range scores {
		f.scores[channelID][s.MemberID] = s.Score
	}
	return nil
}

func (f *FakeRepo) CountMembersAbove(_ context.Context, _ bun.IDB, channelID string, score int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountMembersAbove")
	n := 0
	for _, s := range f.scores[channelID] {
		if s > score {
			n++
		}
	}
	return n, nil
}

func (f *FakeRepo) ListMemberScores(_ context.Context, _ bun.IDB, channelID string) ([]scoreboarddomain.MemberScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListMemberScores")
	return f.sortedScores(channelID), nil
}

func (f *FakeRepo) TopMemberScores(_ context.Context, _ bun.IDB, channelID string, limit int) ([]scoreboarddomain.MemberScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TopMemberScores")
	rows := f.sortedScores(channelID)
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *FakeRepo) sortedScores(channelID string) []scoreboarddomain.MemberScore {
	rows := make([]scoreboarddomain.MemberScore, 0, len(f.scores[channelID]))
	for id, s := range f.scores[channelID] {
		rows = append(rows, scoreboarddomain.MemberScore{MemberID: id, Score: s})
	}
	scoreboarddomain.SortScores(rows)
	return rows
}

func (f *FakeRepo) GetScoredMessage(_ context.Context, _ bun.IDB, messageID string) (*scoreboarddomain.ScoredMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetScoredMessage")
	m, ok := f.messages[messageID]
	if !ok {
		return nil, nil
	}
	m.Quotees = slices.Clone(m.Quotees)
	return &m, nil
}

func (f *FakeRepo) CreateScoredMessage(_ context.Context, _ bun.IDB, msg *scoreboarddomain.ScoredMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateScoredMessage")
	f.messages[msg.MessageID] = *msg
	return nil
}

func (f *FakeRepo) UpdateScoredMessage(_ context.Context, _ bun.IDB, msg *scoreboarddomain.ScoredMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateScoredMessage")
	if _, ok := f.messages[msg.MessageID]; !ok {
		return scoreboarddb.ErrNoRowsAffected
	}
	f.messages[msg.MessageID] = *msg
	return nil
}

func (f *FakeRepo) DeleteScoredMessage(_ context.Context, _ bun.IDB, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteScoredMessage")
	delete(f.messages, messageID)
	return nil
}

func (f *FakeRepo) BulkCreateScoredMessages(_ context.Context, _ bun.IDB, msgs []scoreboarddomain.ScoredMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BulkCreateScoredMessages")
	for _, m := range msgs {
		f.messages[m.MessageID] = m
	}
	return nil
}

func (f *FakeRepo) RandomScoredMessage(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddomain.ScoredMessage, error) {
	f.mu.Lock()
	f.record("RandomScoredMessage")
	override := f.RandomScoredMessageFunc
	var ids []string
	for id, m := range f.messages {
		if m.ChannelID == channelID {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()

	if override != nil {
		return override(ctx, db, channelID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)
	return f.GetScoredMessage(ctx, db, ids[0])
}

// --- Accessors for assertions ---

func (f *FakeRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepo) Scores(channelID string) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for id, s := range f.scores[channelID] {
		out[id] = s
	}
	return out
}

func (f *FakeRepo) Message(messageID string) (scoreboarddomain.ScoredMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	return m, ok
}

// Ensure the fake actually satisfies the interface
var _ scoreboarddb.Repository = (*FakeRepo)(nil)

// ------------------------
// Fake Channel History
// ------------------------

type FakeHistory struct {
	Channel []platform.Message
	Err     error
}

func (h *FakeHistory) Messages(_ context.Context, _ platform.Channel) ([]platform.Message, error) {
	if h.Err != nil {
		return nil, h.Err
	}
	return h.Channel, nil
}

func (h *FakeHistory) Message(_ context.Context, _ platform.Channel, messageID string) (*platform.Message, error) {
	if h.Err != nil {
		return nil, h.Err
	}
	for i := range h.Channel {
		if h.Channel[i].ID == messageID {
			m := h.Channel[i]
			return &m, nil
		}
	}
	return nil, nil
}

var _ platform.History = (*FakeHistory)(nil)
