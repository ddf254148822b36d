package quoteservice

import (
	"context"
	"log/slog"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"golang.org/x/sync/errgroup"
)

// Service extracts quotes from messages and credits them to members.
type Service interface {
	// ResolveQuoteTuples returns every quote of msg with at least one
	// resolved quotee.
	ResolveQuoteTuples(ctx context.Context, msg platform.Message) ([]quotedomain.QuoteTuple, error)

	// ResolveQuotees returns the resolved quotees of the whole message,
	// in document order and with duplicates.
	ResolveQuotees(ctx context.Context, msg platform.Message) ([]string, error)

	// ResolveMemberID resolves one quotee token. directory may be nil and
	// self may be empty.
	ResolveMemberID(ctx context.Context, token string, directory platform.Directory, self string) (string, bool)

	// ResolveGuildMember resolves token against the directory of guildID.
	ResolveGuildMember(ctx context.Context, guildID, token, self string) (string, bool)
}

// QuoteService implements Service.
type QuoteService struct {
	directories platform.DirectoryProvider
	logger      *slog.Logger
}

// NewQuoteService creates a new QuoteService. directories may be nil, in
// which case only mentions and self references resolve.
func NewQuoteService(directories platform.DirectoryProvider, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		directories: directories,
		logger:      logger,
	}
}

var _ Service = (*QuoteService)(nil)

func (s *QuoteService) directoryFor(msg platform.Message) platform.Directory {
	if s.directories == nil || msg.GuildID == "" {
		return nil
	}
	return s.directories.Directory(msg.GuildID)
}

// ResolveGuildMember implements Service.
func (s *QuoteService) ResolveGuildMember(ctx context.Context, guildID, token, self string) (string, bool) {
	return s.ResolveMemberID(ctx, token, s.directoryFor(platform.Message{GuildID: guildID}), self)
}

// ResolveQuoteTuples implements Service.
func (s *QuoteService) ResolveQuoteTuples(ctx context.Context, msg platform.Message) ([]quotedomain.QuoteTuple, error) {
	directory := s.directoryFor(msg)
	sections := quotedomain.SplitAtQuotes(quotedomain.CollapseText(msg.Content))

	tuples := make([]quotedomain.QuoteTuple, 0, len(sections))
	for _, section := range sections {
		quotees, err := s.resolveTokens(ctx, quotedomain.ExtractSectionQuotees(section), directory, msg.AuthorID)
		if err != nil {
			return nil, err
		}
		if len(quotees) == 0 {
			continue
		}
		tuples = append(tuples, quotedomain.QuoteTuple{
			Quote:   quotedomain.FirstQuote(section),
			Quotees: quotees,
		})
	}
	return tuples, nil
}

// ResolveQuotees implements Service.
func (s *QuoteService) ResolveQuotees(ctx context.Context, msg platform.Message) ([]string, error) {
	return s.resolveTokens(ctx, quotedomain.ExtractQuotees(msg.Content), s.directoryFor(msg), msg.AuthorID)
}

// resolveTokens resolves tokens concurrently and drops the unresolved ones.
// Output order follows token order.
func (s *QuoteService) resolveTokens(ctx context.Context, tokens []string, directory platform.Directory, self string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	resolved := make([]string, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	for i, token := range tokens {
		g.Go(func() error {
			if id, ok := s.ResolveMemberID(gctx, token, directory, self); ok {
				resolved[i] = id
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quotees := make([]string, 0, len(resolved))
	for _, id := range resolved {
		if id != "" {
			quotees = append(quotees, id)
		}
	}
	return quotees, nil
}
