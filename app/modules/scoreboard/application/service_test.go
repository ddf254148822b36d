package scoreboardservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	quoteservice "github.com/Black-And-White-Club/quote-bot/app/modules/quote/application"
	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/Black-And-White-Club/quote-bot/internal/observability"
)

const (
	channelID = "900000000000000001"
	guildID   = "800000000000000001"
	authorID  = "111111111111111111"
	aliceID   = "222222222222222222"
	bobID     = "333333333333333333"
)

func newTestService(repo *FakeRepo, history platform.History) *ScoreboardService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScoreboardService(
		repo,
		quoteservice.NewQuoteService(nil, logger),
		history,
		logger,
		observability.NewNoop(),
		nil,
		nil,
		2,
	)
}

func message(id, content string) platform.Message {
	return platform.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   guildID,
		AuthorID:  authorID,
		Content:   content,
	}
}

func hasStep(trace []string, step string) bool {
	for _, s := range trace {
		if s == step {
			return true
		}
	}
	return false
}

func TestScoreboardService_RecordMessageCreated(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*FakeRepo)
		msg         platform.Message
		wantChanged bool
		wantScores  map[string]int
		wantStored  []string
	}{
		{
			name:        "channel without scoreboard is ignored",
			msg:         message("m1", `"hi" - <@222222222222222222>`),
			wantScores:  map[string]int{},
			wantChanged: false,
		},
		{
			name:  "bot messages are ignored",
			setup: func(f *FakeRepo) { f.SeedScoreboard(channelID, "d1") },
			msg: func() platform.Message {
				m := message("m1", `"hi" - <@222222222222222222>`)
				m.AuthorIsBot = true
				return m
			}(),
			wantScores: map[string]int{},
		},
		{
			name:       "message without quotes is ignored",
			setup:      func(f *FakeRepo) { f.SeedScoreboard(channelID, "d1") },
			msg:        message("m1", `no quotes <@222222222222222222>`),
			wantScores: map[string]int{},
		},
		{
			name:        "quotees are credited and stored",
			setup:       func(f *FakeRepo) { f.SeedScoreboard(channelID, "d1") },
			msg:         message("m1", `She said "I can't believe it" - <@222222222222222222>, Me "again" <@222222222222222222>`),
			wantChanged: true,
			wantScores:  map[string]int{aliceID: 2, authorID: 1},
			wantStored:  []string{aliceID, authorID, aliceID},
		},
		{
			name: "redelivered create does not double count",
			setup: func(f *FakeRepo) {
				f.SeedScoreboard(channelID, "d1")
				f.SeedScore(channelID, aliceID, 1)
				f.SeedMessage(scoreboarddomain.ScoredMessage{MessageID: "m1", ChannelID: channelID, Quotees: []string{aliceID}})
			},
			msg:        message("m1", `"hi" - <@222222222222222222>`),
			wantScores: map[string]int{aliceID: 1},
			wantStored: []string{aliceID},
		},
		{
			name:       "quote without resolvable quotee stores nothing",
			setup:      func(f *FakeRepo) { f.SeedScoreboard(channelID, "d1") },
			msg:        message("m1", `"Nobody asked" Bob`),
			wantScores: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRepo()
			if tt.setup != nil {
				tt.setup(repo)
			}
			svc := newTestService(repo, nil)

			changed, err := svc.RecordMessageCreated(context.Background(), tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantScores, repo.Scores(channelID))

			stored, ok := repo.Message(tt.msg.ID)
			if tt.wantStored == nil {
				assert.False(t, ok, "nothing should be stored")
				return
			}
			require.True(t, ok)
			if diff := cmp.Diff(tt.wantStored, stored.Quotees); diff != "" {
				t.Errorf("stored quotees mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScoreboardService_RecordMessageEdited(t *testing.T) {
	tests := []struct {
		name        string
		prior       []string
		content     string
		wantChanged bool
		wantScores  map[string]int
		wantStored  []string
		wantSteps   []string
		forbidSteps []string
	}{
		{
			name:        "same multiset is a no-op",
			prior:       []string{aliceID},
			content:     `"edited wording" - <@222222222222222222>`,
			wantScores:  map[string]int{aliceID: 1},
			wantStored:  []string{aliceID},
			forbidSteps: []string{"IncrementMemberScore", "DecrementMemberScore", "UpdateScoredMessage", "CreateScoredMessage", "DeleteScoredMessage"},
		},
		{
			name:        "added quotee is credited",
			prior:       []string{aliceID},
			content:     `"one" <@222222222222222222> "two" <@333333333333333333>`,
			wantChanged: true,
			wantScores:  map[string]int{aliceID: 1, bobID: 1},
			wantStored:  []string{aliceID, bobID},
			wantSteps:   []string{"UpdateScoredMessage"},
		},
		{
			name:        "removing every quote deletes the record",
			prior:       []string{aliceID, aliceID},
			content:     `never mind`,
			wantChanged: true,
			wantScores:  map[string]int{aliceID: 0},
			wantSteps:   []string{"DeleteScoredMessage"},
		},
		{
			name:        "edit that adds the first quote creates the record",
			content:     `"late addition" - me`,
			wantChanged: true,
			wantScores:  map[string]int{authorID: 1},
			wantStored:  []string{authorID},
			wantSteps:   []string{"CreateScoredMessage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRepo()
			repo.SeedScoreboard(channelID, "d1")
			for _, id := range tt.prior {
				repo.SeedScore(channelID, id, repo.Scores(channelID)[id]+1)
			}
			if tt.prior != nil {
				repo.SeedMessage(scoreboarddomain.ScoredMessage{MessageID: "m1", ChannelID: channelID, Quotees: tt.prior})
			}
			svc := newTestService(repo, nil)

			changed, err := svc.RecordMessageEdited(context.Background(), message("m1", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantScores, repo.Scores(channelID))

			stored, ok := repo.Message("m1")
			if tt.wantStored == nil {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assert.Equal(t, tt.wantStored, stored.Quotees)
			}

			trace := repo.Trace()
			for _, step := range tt.wantSteps {
				assert.True(t, hasStep(trace, step), "expected %s in %v", step, trace)
			}
			for _, step := range tt.forbidSteps {
				assert.False(t, hasStep(trace, step), "unexpected %s in %v", step, trace)
			}
		})
	}
}

func TestScoreboardService_EditIsIdempotent(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	svc := newTestService(repo, nil)
	msg := message("m1", `"twice" - <@222222222222222222> me`)

	changed, err := svc.RecordMessageCreated(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, changed)
	before := repo.Scores(channelID)

	for range 3 {
		changed, err = svc.RecordMessageEdited(context.Background(), msg)
		require.NoError(t, err)
		assert.False(t, changed)
	}
	assert.Equal(t, before, repo.Scores(channelID))
}

func TestScoreboardService_RecordMessageDeleted(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	repo.SeedScore(channelID, aliceID, 3)
	repo.SeedScore(channelID, bobID, 1)
	repo.SeedMessage(scoreboarddomain.ScoredMessage{MessageID: "m1", ChannelID: channelID, Quotees: []string{aliceID, aliceID, bobID}})
	svc := newTestService(repo, nil)

	changed, err := svc.RecordMessageDeleted(context.Background(), channelID, "m1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, map[string]int{aliceID: 1, bobID: 0}, repo.Scores(channelID))
	_, ok := repo.Message("m1")
	assert.False(t, ok)

	changed, err = svc.RecordMessageDeleted(context.Background(), channelID, "m1")
	require.NoError(t, err)
	assert.False(t, changed, "deleting an unknown message is a no-op")
}

func TestScoreboardService_DecrementFloor(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScore(channelID, aliceID, 1)
	svc := newTestService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.DecrementMemberScores(ctx, channelID, scoreboarddomain.FrequencyMap{aliceID: 3, bobID: 2}))
	assert.Equal(t, map[string]int{aliceID: 0}, repo.Scores(channelID), "missing rows are not created")

	require.NoError(t, svc.IncrementMemberScores(ctx, channelID, scoreboarddomain.FrequencyMap{aliceID: 2, bobID: 1}))
	assert.Equal(t, map[string]int{aliceID: 2, bobID: 1}, repo.Scores(channelID))
}

func TestScoreboardService_IncrementFailure(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	repo.IncrementMemberScoreFunc = func(context.Context, bun.IDB, string, string, int) error {
		return errors.New("connection reset")
	}
	svc := newTestService(repo, nil)

	_, err := svc.RecordMessageCreated(context.Background(), message("m1", `"hi" <@222222222222222222>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RecordMessageCreated")
	_, ok := repo.Message("m1")
	assert.False(t, ok)
}

func TestScoreboardService_SetupScoreboard(t *testing.T) {
	history := &FakeHistory{Channel: []platform.Message{
		message("m3", `"newest" - <@222222222222222222>`),
		{ID: "m2", AuthorID: "bot", AuthorIsBot: true, Content: `"bot quote" <@333333333333333333>`},
		message("m1", `just chatting`),
		message("m0", `"oldest" <@333333333333333333>, me`),
	}}

	t.Run("backfills history", func(t *testing.T) {
		repo := NewFakeRepo()
		svc := newTestService(repo, history)

		n, err := svc.SetupScoreboard(context.Background(), platform.Channel{ID: channelID, GuildID: guildID}, "d1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, map[string]int{aliceID: 1, bobID: 1, authorID: 1}, repo.Scores(channelID))

		stored, ok := repo.Message("m0")
		require.True(t, ok)
		assert.Equal(t, []string{bobID, authorID}, stored.Quotees)
		_, ok = repo.Message("m2")
		assert.False(t, ok, "bot messages are skipped")
	})

	t.Run("refuses a second scoreboard", func(t *testing.T) {
		repo := NewFakeRepo()
		repo.SeedScoreboard(channelID, "d0")
		svc := newTestService(repo, history)

		_, err := svc.SetupScoreboard(context.Background(), platform.Channel{ID: channelID}, "d1")
		require.ErrorIs(t, err, ErrScoreboardExists)
		assert.False(t, hasStep(repo.Trace(), "CreateScoreboard"))
	})

	t.Run("history failure aborts", func(t *testing.T) {
		repo := NewFakeRepo()
		svc := newTestService(repo, &FakeHistory{Err: errors.New("forbidden")})

		_, err := svc.SetupScoreboard(context.Background(), platform.Channel{ID: channelID}, "d1")
		require.Error(t, err)
		assert.False(t, hasStep(repo.Trace(), "CreateScoreboard"))
	})

	t.Run("no history reader", func(t *testing.T) {
		svc := newTestService(NewFakeRepo(), nil)
		_, err := svc.SetupScoreboard(context.Background(), platform.Channel{ID: channelID}, "d1")
		require.ErrorIs(t, err, ErrNoHistory)
	})
}

func TestScoreboardService_RemoveScoreboard(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	repo.SeedScore(channelID, aliceID, 4)
	repo.SeedMessage(scoreboarddomain.ScoredMessage{MessageID: "m1", ChannelID: channelID, Quotees: []string{aliceID}})
	svc := newTestService(repo, nil)

	displayID, err := svc.RemoveScoreboard(context.Background(), channelID)
	require.NoError(t, err)
	assert.Equal(t, "d1", displayID)
	assert.Empty(t, repo.Scores(channelID))
	_, ok := repo.Message("m1")
	assert.False(t, ok)

	_, err = svc.RemoveScoreboard(context.Background(), channelID)
	require.ErrorIs(t, err, ErrScoreboardNotFound)
}

func TestScoreboardService_SetScoreboardMessage(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	svc := newTestService(repo, nil)

	require.NoError(t, svc.SetScoreboardMessage(context.Background(), channelID, "d2"))
	summary, err := svc.Summary(context.Background(), channelID)
	require.NoError(t, err)
	assert.Equal(t, "d2", summary.DisplayMessageID)

	err = svc.SetScoreboardMessage(context.Background(), "elsewhere", "d3")
	require.ErrorIs(t, err, ErrScoreboardNotFound)
}

func TestScoreboardService_GetRankedScore(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	repo.SeedScore(channelID, "A", 9)
	repo.SeedScore(channelID, "B", 9)
	repo.SeedScore(channelID, "C", 5)
	svc := newTestService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		member string
		want   scoreboarddomain.RankedScore
	}{
		{"A", scoreboarddomain.RankedScore{MemberID: "A", Score: 9, Rank: 1}},
		{"B", scoreboarddomain.RankedScore{MemberID: "B", Score: 9, Rank: 1}},
		{"C", scoreboarddomain.RankedScore{MemberID: "C", Score: 5, Rank: 3}},
		{"D", scoreboarddomain.RankedScore{MemberID: "D", Score: 0, Rank: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			got, err := svc.GetRankedScore(ctx, channelID, tt.member)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := svc.GetRankedScore(ctx, "elsewhere", "A")
	require.ErrorIs(t, err, ErrScoreboardNotFound)
}

func TestScoreboardService_GetPagedLeaderboard(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	for id, score := range map[string]int{"A": 10, "B": 10, "C": 7, "D": 7, "E": 7, "F": 3} {
		repo.SeedScore(channelID, id, score)
	}
	svc := newTestService(repo, nil)

	pages, err := svc.GetPagedLeaderboard(context.Background(), channelID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 5, pages[0].MemberCount())
	assert.Equal(t, []string{"A", "B"}, pages[0].Groups[0].Members)
	assert.Equal(t, []string{"C", "D", "E"}, pages[0].Groups[1].Members)
	assert.Equal(t, 3, pages[0].Groups[1].Rank)
	require.Len(t, pages[1].Groups, 1)
	assert.Equal(t, scoreboarddomain.RankGroup{Position: 3, Rank: 6, Score: 3, Members: []string{"F"}}, pages[1].Groups[0])

	_, err = svc.GetPagedLeaderboard(context.Background(), "elsewhere")
	require.ErrorIs(t, err, ErrScoreboardNotFound)
}

func TestScoreboardService_Summary(t *testing.T) {
	repo := NewFakeRepo()
	repo.SeedScoreboard(channelID, "d1")
	repo.SeedScore(channelID, "A", 4)
	repo.SeedScore(channelID, "B", 4)
	repo.SeedScore(channelID, "C", 2)
	repo.SeedScore(channelID, "D", 1)
	svc := newTestService(repo, nil)

	summary, err := svc.Summary(context.Background(), channelID)
	require.NoError(t, err)
	want := &scoreboarddomain.Summary{
		ChannelID:        channelID,
		DisplayMessageID: "d1",
		Top: []scoreboarddomain.RankedScore{
			{MemberID: "A", Score: 4, Rank: 1},
			{MemberID: "B", Score: 4, Rank: 1},
			{MemberID: "C", Score: 2, Rank: 3},
		},
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	summary, err = svc.Summary(context.Background(), "elsewhere")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestScoreboardService_RandomQuote(t *testing.T) {
	channel := platform.Channel{ID: channelID, GuildID: guildID}

	t.Run("picks one tuple of a stored message", func(t *testing.T) {
		repo := NewFakeRepo()
		repo.SeedScoreboard(channelID, "d1")
		repo.SeedMessage(scoreboarddomain.ScoredMessage{MessageID: "m1", ChannelID: channelID, Quotees: []string{aliceID, bobID}})
		history := &FakeHistory{Channel: []platform.Message{
			message("m1", `"first" <@222222222222222222> "second" <@333333333333333333>`),
		}}
		svc := newTestService(repo, history)
		svc.pick = func(n int) int { return n - 1 }

		messageID, tuple, err := svc.RandomQuote(context.Background(), channel)
		require.NoError(t, err)
		assert.Equal(t, "m1", messageID)
		assert.Equal(t, quotedomain.QuoteTuple{Quote: `"second"`, Quotees: []string{bobID}}, tuple)
	})

	t.Run("message deleted upstream", func(t *testing.T) {
		repo := NewFakeRepo()
		repo.SeedScoreboard(channelID, "d1")
		repo.SeedMessage(scoreboarddomain.ScoredMessage{MessageID: "gone", ChannelID: channelID, Quotees: []string{aliceID}})
		svc := newTestService(repo, &FakeHistory{})

		_, _, err := svc.RandomQuote(context.Background(), channel)
		require.ErrorIs(t, err, ErrNoQuotes)
	})

	t.Run("no stored quotes", func(t *testing.T) {
		repo := NewFakeRepo()
		repo.SeedScoreboard(channelID, "d1")
		svc := newTestService(repo, &FakeHistory{})

		_, _, err := svc.RandomQuote(context.Background(), channel)
		require.ErrorIs(t, err, ErrNoQuotes)
	})
}

func TestScoreboardService_CheckMessage(t *testing.T) {
	svc := newTestService(NewFakeRepo(), nil)

	tuples, err := svc.CheckMessage(context.Background(), message("m1", `She said "I can't believe it" - <@222222222222222222>, Me`))
	require.NoError(t, err)
	assert.Equal(t, []quotedomain.QuoteTuple{{Quote: `"I can't believe it"`, Quotees: []string{aliceID, authorID}}}, tuples)
}
