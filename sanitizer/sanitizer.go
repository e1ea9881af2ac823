// Package sanitizer rewrites message text according to composable filter and
// transform rules before it reaches a day file.
package sanitizer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
	FilterShellSpecial                    // '`', '$', ';', '|', '&', '>', '<', '(', ')', '#'
	FilterLineBreak                       // '\n' and '\r'
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Drop the rune
	TransformHexEncode                     // "<XXYY>" of the rune's UTF-8 bytes
	TransformJSONEscape                    // Backslash escapes, \u00XX for the rest
	TransformSpace                         // Replace the rune with a single space
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw    PolicyPreset = "raw"    // Passthrough, messages are written verbatim
	PolicyTxt    PolicyPreset = "txt"    // Hex-encode everything not printable, including line breaks
	PolicyJSON   PolicyPreset = "json"   // JSON-style escaping of control characters
	PolicyShell  PolicyPreset = "shell"  // Strip shell metacharacters and whitespace
	PolicySingle PolicyPreset = "single" // Fold line breaks into spaces, keep one line per message
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:    {},
	PolicyTxt:    {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON:   {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyShell:  {{filter: FilterShellSpecial | FilterWhitespace, transform: TransformStrip}},
	PolicySingle: {{filter: FilterLineBreak, transform: TransformSpace}},
}

// Checked in this order; a map would make multi-flag masks nondeterministic.
var filterCheckers = []struct {
	flag  uint64
	check func(rune) bool
}{
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) }},
	{FilterControl, unicode.IsControl},
	{FilterWhitespace, unicode.IsSpace},
	{FilterShellSpecial, func(r rune) bool {
		switch r {
		case '`', '$', ';', '|', '&', '>', '<', '(', ')', '#':
			return true
		}
		return false
	}},
	{FilterLineBreak, func(r rune) bool { return r == '\n' || r == '\r' }},
}

// Sanitizer applies an ordered list of rules; the first matching rule wins.
// A Sanitizer is immutable after construction and safe for concurrent use.
type Sanitizer struct {
	rules []rule
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{}
}

// ForPolicy builds a Sanitizer for a named preset
func ForPolicy(name string) (*Sanitizer, error) {
	preset := PolicyPreset(name)
	if _, ok := policyRules[preset]; !ok {
		return nil, fmt.Errorf("sanitizer: unknown policy '%s' (use raw, txt, json, shell, or single)", name)
	}
	return New().Policy(preset), nil
}

// IsPolicy reports whether name is a known preset
func IsPolicy(name string) bool {
	_, ok := policyRules[PolicyPreset(name)]
	return ok
}

// Rule returns a copy of the sanitizer with a custom rule appended
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	return s.with(rule{filter: filter, transform: transform})
}

// Policy returns a copy of the sanitizer with the preset's rules appended
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	return s.with(policyRules[preset]...)
}

func (s *Sanitizer) with(extra ...rule) *Sanitizer {
	rules := make([]rule, 0, len(s.rules)+len(extra))
	rules = append(rules, s.rules...)
	rules = append(rules, extra...)
	return &Sanitizer{rules: rules}
}

// Passthrough reports whether Sanitize returns its input unchanged
func (s *Sanitizer) Passthrough() bool {
	return s == nil || len(s.rules) == 0
}

// Sanitize applies all configured rules to the input string
func (s *Sanitizer) Sanitize(data string) string {
	if s.Passthrough() {
		return data
	}

	buf := make([]byte, 0, len(data)+8)
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				buf = applyTransform(buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			buf = utf8.AppendRune(buf, r)
		}
	}
	return string(buf)
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, fc := range filterCheckers {
		if filterMask&fc.flag != 0 && fc.check(r) {
			return true
		}
	}
	return false
}

func applyTransform(buf []byte, r rune, transformMask uint64) []byte {
	switch {
	case transformMask&TransformStrip != 0:
		return buf

	case transformMask&TransformSpace != 0:
		return append(buf, ' ')

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		buf = append(buf, '<')
		buf = append(buf, hex.EncodeToString(runeBytes[:n])...)
		return append(buf, '>')

	case transformMask&TransformJSONEscape != 0:
		switch r {
		case '\n':
			return append(buf, '\\', 'n')
		case '\r':
			return append(buf, '\\', 'r')
		case '\t':
			return append(buf, '\\', 't')
		case '\b':
			return append(buf, '\\', 'b')
		case '\f':
			return append(buf, '\\', 'f')
		case '"':
			return append(buf, '\\', '"')
		case '\\':
			return append(buf, '\\', '\\')
		}
		if r < 0x20 || r == 0x7f {
			return append(buf, fmt.Sprintf("\\u%04x", r)...)
		}
		return utf8.AppendRune(buf, r)
	}
	return utf8.AppendRune(buf, r)
}

var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders an arbitrary value for inclusion in a message, compacted to one line
func Dump(v any) string {
	var b bytes.Buffer
	dumper.Fdump(&b, v)
	return string(bytes.Join(bytes.Fields(b.Bytes()), []byte{' '}))
}
