package scoreboardhandlers

import (
	"context"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboardservice "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/application"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
)

// ------------------------
// Fake Scoreboard Service
// ------------------------

type FakeScoreboardService struct {
	trace []string

	RecordMessageCreatedFunc func(ctx context.Context, msg platform.Message) (bool, error)
	RecordMessageEditedFunc  func(ctx context.Context, msg platform.Message) (bool, error)
	RecordMessageDeletedFunc func(ctx context.Context, channelID, messageID string) (bool, error)
	SetupScoreboardFunc      func(ctx context.Context, channel platform.Channel, displayMessageID string) (int, error)
	RemoveScoreboardFunc     func(ctx context.Context, channelID string) (string, error)
	SetScoreboardMessageFunc func(ctx context.Context, channelID, messageID string) error
	GetRankedScoreFunc       func(ctx context.Context, channelID, memberID string) (scoreboarddomain.RankedScore, error)
	GetPagedLeaderboardFunc  func(ctx context.Context, channelID string) ([]scoreboarddomain.Page, error)
	TopMembersFunc           func(ctx context.Context, channelID string, limit int) ([]scoreboarddomain.RankedScore, error)
	SummaryFunc              func(ctx context.Context, channelID string) (*scoreboarddomain.Summary, error)
	RandomQuoteFunc          func(ctx context.Context, channel platform.Channel) (string, quotedomain.QuoteTuple, error)
	CheckMessageFunc         func(ctx context.Context, msg platform.Message) ([]quotedomain.QuoteTuple, error)
}

func NewFakeScoreboardService() *FakeScoreboardService {
	return &FakeScoreboardService{trace: []string{}}
}

func (f *FakeScoreboardService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScoreboardService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoreboardService) IncrementMemberScores(context.Context, string, scoreboarddomain.FrequencyMap) error {
	f.record("IncrementMemberScores")
	return nil
}

func (f *FakeScoreboardService) DecrementMemberScores(context.Context, string, scoreboarddomain.FrequencyMap) error {
	f.record("DecrementMemberScores")
	return nil
}

func (f *FakeScoreboardService) RecordMessageCreated(ctx context.Context, msg platform.Message) (bool, error) {
	f.record("RecordMessageCreated")
	if f.RecordMessageCreatedFunc != nil {
		return f.RecordMessageCreatedFunc(ctx, msg)
	}
	return false, nil
}

func (f *FakeScoreboardService) RecordMessageEdited(ctx context.Context, msg platform.Message) (bool, error) {
	f.record("RecordMessageEdited")
	if f.RecordMessageEditedFunc != nil {
		return f.RecordMessageEditedFunc(ctx, msg)
	}
	return false, nil
}

func (f *FakeScoreboardService) RecordMessageDeleted(ctx context.Context, channelID, messageID string) (bool, error) {
	f.record("RecordMessageDeleted")
	if f.RecordMessageDeletedFunc != nil {
		return f.RecordMessageDeletedFunc(ctx, channelID, messageID)
	}
	return false, nil
}

func (f *FakeScoreboardService) SetupScoreboard(ctx context.Context, channel platform.Channel, displayMessageID string) (int, error) {
	f.record("SetupScoreboard")
	if f.SetupScoreboardFunc != nil {
		return f.SetupScoreboardFunc(ctx, channel, displayMessageID)
	}
	return 0, nil
}

func (f *FakeScoreboardService) RemoveScoreboard(ctx context.Context, channelID string) (string, error) {
	f.record("RemoveScoreboard")
	if f.RemoveScoreboardFunc != nil {
		return f.RemoveScoreboardFunc(ctx, channelID)
	}
	return "", nil
}

func (f *FakeScoreboardService) SetScoreboardMessage(ctx context.Context, channelID, messageID string) error {
	f.record("SetScoreboardMessage")
	if f.SetScoreboardMessageFunc != nil {
		return f.SetScoreboardMessageFunc(ctx, channelID, messageID)
	}
	return nil
}

func (f *FakeScoreboardService) GetRankedScore(ctx context.Context, channelID, memberID string) (scoreboarddomain.RankedScore, error) {
	f.record("GetRankedScore")
	if f.GetRankedScoreFunc != nil {
		return f.GetRankedScoreFunc(ctx, channelID, memberID)
	}
	return scoreboarddomain.RankedScore{MemberID: memberID, Rank: 1}, nil
}

func (f *FakeScoreboardService) GetPagedLeaderboard(ctx context.Context, channelID string) ([]scoreboarddomain.Page, error) {
	f.record("GetPagedLeaderboard")
	if f.GetPagedLeaderboardFunc != nil {
		return f.GetPagedLeaderboardFunc(ctx, channelID)
	}
	return nil, nil
}

func (f *FakeScoreboardService) TopMembers(ctx context.Context, channelID string, limit int) ([]scoreboarddomain.RankedScore, error) {
	f.record("TopMembers")
	if f.TopMembersFunc != nil {
		return f.TopMembersFunc(ctx, channelID, limit)
	}
	return nil, nil
}

func (f *FakeScoreboardService) Summary(ctx context.Context, channelID string) (*scoreboarddomain.Summary, error) {
	f.record("Summary")
	if f.SummaryFunc != nil {
		return f.SummaryFunc(ctx, channelID)
	}
	return nil, nil
}

func (f *FakeScoreboardService) RandomQuote(ctx context.Context, channel platform.Channel) (string, quotedomain.QuoteTuple, error) {
	f.record("RandomQuote")
	if f.RandomQuoteFunc != nil {
		return f.RandomQuoteFunc(ctx, channel)
	}
	return "", quotedomain.QuoteTuple{}, scoreboardservice.ErrNoQuotes
}

func (f *FakeScoreboardService) CheckMessage(ctx context.Context, msg platform.Message) ([]quotedomain.QuoteTuple, error) {
	f.record("CheckMessage")
	if f.CheckMessageFunc != nil {
		return f.CheckMessageFunc(ctx, msg)
	}
	return nil, nil
}

// Ensure the fake actually satisfies the interface
var _ scoreboardservice.Service = (*FakeScoreboardService)(nil)
