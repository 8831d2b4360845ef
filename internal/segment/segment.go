// Package segment splits accepted text into a teaser and a remainder that is
// revealed progressively.
//
// Cut points are searched from the most to the least natural boundary: the
// last sentence end (". ") before the limit, then the last newline, then the
// last space, and finally a hard cut at the limit. All positions are counted
// in runes so that multi-byte characters are never split. A byte that is not
// valid UTF-8 counts as one rune and is kept as is.
//
// Concatenating the teaser and every revealed chunk always yields the
// original body exactly, byte for byte.
package segment

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultTeaserLimit is the teaser length used when none is given.
	DefaultTeaserLimit = 350

	// DefaultChunkSize is the reveal chunk length used when none is given.
	DefaultChunkSize = 700
)

// Text is a body split into a teaser and a progressively revealed remainder.
// A Text is not safe for concurrent use.
type Text struct {
	teaser    string
	revealed  strings.Builder
	remainder string
}

// Segment splits body into a teaser of at most teaserLimit runes and the
// remainder. A non-positive teaserLimit selects DefaultTeaserLimit.
func Segment(body string, teaserLimit int) *Text {
	if teaserLimit <= 0 {
		teaserLimit = DefaultTeaserLimit
	}
	cut := cutOffset(body, teaserLimit)
	return &Text{
		teaser:    body[:cut],
		remainder: body[cut:],
	}
}

// Teaser returns the initially shown prefix.
func (t *Text) Teaser() string {
	return t.teaser
}

// Remainder returns the part of the body not yet revealed.
func (t *Text) Remainder() string {
	return t.remainder
}

// HasMore reports whether any part of the remainder is still hidden.
// Once false it stays false.
func (t *Text) HasMore() bool {
	return t.remainder != ""
}

// Shown returns the teaser followed by every chunk revealed so far.
func (t *Text) Shown() string {
	return t.teaser + t.revealed.String()
}

// Reveal releases the next chunk of at most chunkSize runes, cut with the
// same boundary cascade as the teaser. A non-positive chunkSize reveals
// everything. Reveal returns "" once the remainder is empty.
func (t *Text) Reveal(chunkSize int) string {
	if chunkSize <= 0 {
		return t.RevealAll()
	}
	return t.advance(cutOffset(t.remainder, chunkSize))
}

// RevealAll releases the whole remainder.
func (t *Text) RevealAll() string {
	return t.advance(len(t.remainder))
}

func (t *Text) advance(cut int) string {
	chunk := t.remainder[:cut]
	t.remainder = t.remainder[cut:]
	t.revealed.WriteString(chunk)
	return chunk
}

// cutOffset returns the byte offset at which s is cut for a prefix of at
// most limit runes. Only the first limit+1 runes are decoded.
func cutOffset(s string, limit int) int {
	runes := make([]rune, 0, min(limit+1, len(s)))
	offsets := make([]int, 0, cap(runes)+1)
	i := 0
	for i < len(s) && len(runes) <= limit {
		r, size := utf8.DecodeRuneInString(s[i:])
		runes = append(runes, r)
		offsets = append(offsets, i)
		i += size
	}
	offsets = append(offsets, i)
	if i == len(s) && len(runes) <= limit {
		return len(s)
	}
	return offsets[CutPoint(runes, limit)]
}

// CutPoint returns the rune index at which runes should be cut so that the
// prefix holds at most limit runes. It returns len(runes) when everything
// fits, and always a positive index for a non-empty input.
func CutPoint(runes []rune, limit int) int {
	if limit <= 0 || len(runes) <= limit {
		return len(runes)
	}

	// The period is kept with the sentence it closes.
	cut := -1
	for i := limit - 1; i >= 0; i-- {
		if runes[i] == '.' && runes[i+1] == ' ' {
			cut = i + 1
			break
		}
	}
	if belowHalf(cut, limit) {
		cut = lastIndex(runes[:limit], '\n')
	}
	if belowHalf(cut, limit) {
		cut = lastIndex(runes[:limit], ' ')
	}
	if cut*10 < limit*3 {
		cut = limit
	}
	return cut
}

func belowHalf(cut, limit int) bool {
	return cut*2 < limit
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
