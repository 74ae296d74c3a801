package argbind

import (
	"strings"

	"github.com/edwingeng/deque"
)

// stream is the not-yet-consumed tail of a call's tokens. Tokens are taken
// from the front only; peek is the single token of lookahead the grammars
// need to find where a sequence ends.
type stream struct {
	q deque.Deque
}

func newStream(tokens []string) *stream {
	q := deque.NewDeque()
	for _, tok := range tokens {
		q.PushBack(tok)
	}
	return &stream{q: q}
}

func (s *stream) empty() bool {
	return s.q.Len() == 0
}

func (s *stream) peek() (string, bool) {
	if s.q.Len() == 0 {
		return "", false
	}
	return s.q.Front().(string), true
}

func (s *stream) next() (string, bool) {
	if s.q.Len() == 0 {
		return "", false
	}
	return s.q.PopFront().(string), true
}

// sequence consumes tokens up to, not including, the next token that starts
// with an unescaped dash, unescaping each one.
func (s *stream) sequence() []string {
	items := []string{}
	for {
		tok, ok := s.peek()
		if !ok || isFlagLike(tok) {
			return items
		}
		s.next()
		items = append(items, unescape(tok))
	}
}

// isFlagLike reports whether tok ends a sequence.
func isFlagLike(tok string) bool {
	return strings.HasPrefix(tok, "-")
}

// unescape strips the backslash from a token written as "\-...".
func unescape(tok string) string {
	if strings.HasPrefix(tok, `\-`) {
		return tok[1:]
	}
	return tok
}
