// internal/fault/fault.go
package fault

import (
	"strings"
	"unicode/utf8"
)

// MaxTextLen is the display limit for the joined fault text.
const MaxTextLen = 254

// Entry maps one bit mask to a message.
type Entry struct {
	Code    uint32 `yaml:"code"`
	Message string `yaml:"message"`
}

// Table is an ordered code -> message mapping.
// Order is significant: decoded messages follow declaration order.
type Table []Entry

// Tables holds one table per 32-bit fault word, in word order.
type Tables [3]Table

// Decode returns the messages of every entry whose code intersects bitmask,
// in table order. A zero bitmask never consults the table.
func Decode(bitmask uint32, t Table) []string {
	if bitmask == 0 {
		return nil
	}

	var out []string
	for _, e := range t {
		if bitmask&e.Code != 0 {
			out = append(out, e.Message)
		}
	}
	return out
}

// DecodeAll decodes each fault word against its own table and concatenates
// the results in word order.
func (ts Tables) DecodeAll(words [3]uint32) []string {
	var out []string
	for i, w := range words {
		out = append(out, Decode(w, ts[i])...)
	}
	return out
}

// Join builds the display text: ", " separated, trimmed, then cut to
// MaxTextLen characters.
func Join(messages []string) string {
	s := strings.TrimSpace(strings.Join(messages, ", "))
	if utf8.RuneCountInString(s) <= MaxTextLen {
		return s
	}
	return string([]rune(s)[:MaxTextLen])
}
