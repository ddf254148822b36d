package quoteservice

import (
	"context"
	"log/slog"
	"strings"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
)

// ResolveMemberID turns a free-text quotee token into a member id.
//
// Accepted inputs are a mention (`<@123456789012345678>`), "Me" when self is
// given, or a name that the directory matches to exactly one member.
func (s *QuoteService) ResolveMemberID(ctx context.Context, token string, directory platform.Directory, self string) (string, bool) {
	token = strings.TrimSpace(token)
	if id, ok := quotedomain.MentionID(token); ok {
		return id, true
	}

	name := quotedomain.FirstWord(token)
	if name == "" {
		return "", false
	}
	if self != "" && strings.EqualFold(name, "me") {
		return self, true
	}
	if directory == nil {
		return "", false
	}

	members, err := directory.SearchByName(ctx, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "Member directory search failed",
			slog.String("query", name),
			slog.Any("error", err),
		)
		return "", false
	}
	// TODO: ask the invoking user to pick when several members match.
	if len(members) != 1 {
		s.logger.DebugContext(ctx, "Quotee left unresolved",
			slog.String("query", name),
			slog.Int("matches", len(members)),
		)
		return "", false
	}
	return members[0], true
}
