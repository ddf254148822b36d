package quotedomain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Pattern finds the leftmost match of something inside a string.
// Offsets are byte offsets into s.
type Pattern interface {
	FindIndex(s string) (start, end int, ok bool)
}

type stdPattern struct {
	re *regexp.Regexp
}

// Std adapts a standard library regexp to a Pattern.
func Std(re *regexp.Regexp) Pattern {
	return stdPattern{re: re}
}

func (p stdPattern) FindIndex(s string) (int, int, bool) {
	loc := p.re.FindStringIndex(s)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

type lookaroundPattern struct {
	re *regexp2.Regexp
}

// Lookaround adapts a regexp2 expression to a Pattern. regexp2 supports
// lookbehind and lookahead, which the mention patterns rely on.
func Lookaround(re *regexp2.Regexp) Pattern {
	return lookaroundPattern{re: re}
}

func (p lookaroundPattern) FindIndex(s string) (int, int, bool) {
	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return 0, 0, false
	}
	// regexp2 reports rune offsets.
	start := runeToByteOffset(s, m.Index)
	end := start + runeToByteOffset(s[start:], m.Length)
	return start, end, true
}

func runeToByteOffset(s string, runes int) int {
	offset := 0
	for i := 0; i < runes && offset < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return offset
}

// Navigator is a cursor over a string. Every forward move that consumes
// text is recorded so that Back can undo it.
//
// A Navigator is not safe for concurrent use.
type Navigator struct {
	text    string
	pos     int
	history []int
}

// NewNavigator returns a Navigator positioned at the start of text.
func NewNavigator(text string) *Navigator {
	return &Navigator{text: text}
}

// Pos returns the cursor's byte offset.
func (n *Navigator) Pos() int {
	return n.pos
}

// Peek returns the text from the cursor to the end.
func (n *Navigator) Peek() string {
	return n.text[n.pos:]
}

// PeekN returns at most limit characters starting at the cursor.
func (n *Navigator) PeekN(limit int) string {
	rest := n.Peek()
	if limit <= 0 {
		return ""
	}
	return rest[:runeToByteOffset(rest, limit)]
}

// PeekPattern returns the match of p only if it starts exactly at the cursor.
func (n *Navigator) PeekPattern(p Pattern) string {
	rest := n.Peek()
	start, end, ok := p.FindIndex(rest)
	if !ok || start != 0 {
		return ""
	}
	return rest[:end]
}

func (n *Navigator) move(length int) {
	if length > 0 {
		n.history = append(n.history, length)
	}
	n.pos += length
}

// MoveIf advances past the match of p when that match starts at the cursor.
func (n *Navigator) MoveIf(p Pattern) bool {
	match := n.PeekPattern(p)
	if match == "" {
		return false
	}
	n.move(len(match))
	return true
}

// MoveIfString advances past s when the remaining text starts with it.
func (n *Navigator) MoveIfString(s string) bool {
	if s == "" || !strings.HasPrefix(n.Peek(), s) {
		return false
	}
	n.move(len(s))
	return true
}

// MoveUntil advances the cursor to the first match of p in the remaining text.
// The cursor is left on the match, not after it.
func (n *Navigator) MoveUntil(p Pattern) bool {
	start, _, ok := p.FindIndex(n.Peek())
	if !ok {
		return false
	}
	n.move(start)
	return true
}

// MoveUntilString advances the cursor to the first occurrence of s.
func (n *Navigator) MoveUntilString(s string) bool {
	idx := strings.Index(n.Peek(), s)
	if idx == -1 {
		return false
	}
	n.move(idx)
	return true
}

// MoveAfter is MoveUntil followed by MoveIf.
func (n *Navigator) MoveAfter(p Pattern) bool {
	return n.MoveUntil(p) && n.MoveIf(p)
}

// MoveAfterString is MoveUntilString followed by MoveIfString.
func (n *Navigator) MoveAfterString(s string) bool {
	return n.MoveUntilString(s) && n.MoveIfString(s)
}

// Take consumes and returns the match of p starting at the cursor, or
// returns "" without moving.
func (n *Navigator) Take(p Pattern) string {
	match := n.PeekPattern(p)
	if match != "" {
		n.move(len(match))
	}
	return match
}

// Back undoes the most recent consuming move.
func (n *Navigator) Back() *Navigator {
	if len(n.history) == 0 {
		return n
	}
	last := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.pos -= last
	return n
}
