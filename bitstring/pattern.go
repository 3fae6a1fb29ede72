package bitstring

import (
	"regexp"
	"strings"

	"github.com/AlephTX/enigma/term"
)

// Pattern is a compiled multi-alternative binary search pattern, the boxed
// result of compile_pattern/1: each literal alternative is regexp-escaped
// and joined with "|", then compiled with Go's standard regexp package —
// the universal ecosystem choice for literal/alternation matching over
// []byte (see DESIGN.md).
type Pattern struct {
	re *regexp.Regexp
}

// Tag implements term.Boxed.
func (*Pattern) Tag() term.BoxTag { return term.TagRegex }

// CompilePattern builds a Pattern matching any one of the literal byte
// strings in alternatives, each escaped so regex metacharacters in the
// literal bytes themselves (e.g. a literal ".") aren't treated specially.
func CompilePattern(alternatives [][]byte) (*Pattern, bool) {
	if len(alternatives) == 0 {
		return nil, false
	}
	parts := make([]string, len(alternatives))
	for i, alt := range alternatives {
		parts[i] = regexp.QuoteMeta(string(alt))
	}
	re, err := regexp.Compile(strings.Join(parts, "|"))
	if err != nil {
		return nil, false
	}
	return &Pattern{re: re}, true
}

// Match is a single match span, byte offsets into the subject.
type Match struct {
	Start, Length int
}

// FindFirst returns the leftmost match; where several alternatives match at
// that position, the one listed first in CompilePattern's input wins (Go
// regexp alternation is leftmost-first, not leftmost-longest).
func (p *Pattern) FindFirst(subject []byte) (Match, bool) {
	loc := p.re.FindIndex(subject)
	if loc == nil {
		return Match{}, false
	}
	return Match{Start: loc[0], Length: loc[1] - loc[0]}, true
}

// FindAll returns every non-overlapping match.
func (p *Pattern) FindAll(subject []byte) []Match {
	locs := p.re.FindAllIndex(subject, -1)
	out := make([]Match, len(locs))
	for i, loc := range locs {
		out[i] = Match{Start: loc[0], Length: loc[1] - loc[0]}
	}
	return out
}
