package quotedomain

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

const mentionOrMeExpr = `<@[0-9]{17,19}>|(?<!\*)\bMe\b`

var (
	// Opening and closing glyphs are interchangeable.
	quoteRegexp = regexp.MustCompile(`(?s)["“”].+?["“”]`)

	mentionIDRegexp = regexp.MustCompile(`<@([0-9]{17,19})>`)
	wordRegexp      = regexp.MustCompile(`\w+`)
	spaceRegexp     = regexp.MustCompile(`[\s\p{Zs}\x{feff}\x{2028}\x{2029}]+`)

	// QuotePattern matches one quote including its delimiters.
	QuotePattern = Std(quoteRegexp)

	// MentionOrMePattern matches a platform mention or the word "Me" (not
	// preceded by an asterisk, so "*Me*" style emphasis is left alone).
	MentionOrMePattern = Lookaround(regexp2.MustCompile(mentionOrMeExpr, regexp2.IgnoreCase))

	// SeparatorPattern matches the run of dashes, commas and spaces between
	// two chained quotees.
	SeparatorPattern = Lookaround(regexp2.MustCompile(`[-,\s]+(?=`+mentionOrMeExpr+`)`, regexp2.IgnoreCase))
)

// QuoteTuple pairs a quote with the ids of the members credited for it.
// Quotees keeps duplicates in document order.
type QuoteTuple struct {
	Quote   string   `json:"quote"`
	Quotees []string `json:"quotees"`
}

// CollapseText squeezes every whitespace run (including no-break spaces)
// into a single space and trims both ends.
func CollapseText(text string) string {
	return strings.TrimSpace(spaceRegexp.ReplaceAllString(text, " "))
}

// HasQuote reports whether text contains at least one quote.
func HasQuote(text string) bool {
	return quoteRegexp.MatchString(text)
}

// FirstQuote returns the first quote in text, delimiters included.
func FirstQuote(text string) string {
	return quoteRegexp.FindString(text)
}

// SplitAtQuotes cuts text into sections, one per quote. A section runs from
// the start of its quote to the start of the next quote, or to the end of
// the text for the last one.
func SplitAtQuotes(text string) []string {
	locs := quoteRegexp.FindAllStringIndex(text, -1)
	sections := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections = append(sections, text[loc[0]:end])
	}
	return sections
}

// ExtractSectionQuotees returns the raw quotee tokens that follow the quote
// at the head of section, e.g. `"hi" - <@1>, Me` yields ["<@1>", "Me"].
func ExtractSectionQuotees(section string) []string {
	var tokens []string
	nav := NewNavigator(section)

	nav.MoveIf(QuotePattern)
	if !nav.MoveUntil(MentionOrMePattern) {
		return tokens
	}
	if token := nav.Take(MentionOrMePattern); token != "" {
		tokens = append(tokens, token)
	}
	for nav.MoveIf(SeparatorPattern) {
		if token := nav.Take(MentionOrMePattern); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// ExtractQuotees returns every raw quotee token credited after any quote in
// text, in document order and with duplicates.
func ExtractQuotees(text string) []string {
	var tokens []string
	for _, section := range SplitAtQuotes(CollapseText(text)) {
		tokens = append(tokens, ExtractSectionQuotees(section)...)
	}
	return tokens
}

// MentionID returns the member id wrapped in a mention, if token has one.
func MentionID(token string) (string, bool) {
	m := mentionIDRegexp.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FirstWord returns the first run of word characters in token.
func FirstWord(token string) string {
	return wordRegexp.FindString(token)
}
