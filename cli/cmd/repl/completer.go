package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/fncall/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "dump", "reset", "clear", "quit"}

// isWordBoundary reports whether r separates identifiers in source text.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '(', ')', '{', '}', ';', ',', '"', '/', '*':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte offsets within input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether cursor lies inside a string literal that starts
// before it. Escaped quotes do not close a literal.
func inString(input string, cursor int) bool {
	cursor = min(cursor, len(input))

	open := false

	for i := 0; i < cursor; i++ {
		switch input[i] {
		case '\\':
			if open {
				i++
			}
		case '"':
			open = !open
		}
	}

	return open
}

// evalCandidates returns the names completed in eval mode.
func evalCandidates(session *Session) []string {
	return append(session.Names(), lang.BuiltinPrintln, lang.KeywordFunction)
}

// computeMatches ranks the candidates for the word at the cursor.
// Nothing is offered for an empty word or inside a string literal.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		if inString(input, cursor) {
			return nil, wordStart, wordEnd
		}

		candidates = evalCandidates(m.session)
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate is highlighted while tab-cycling.
// Function names are followed by suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	suffix string,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, suffix)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		reserve := ellipsisWidth
		if last {
			reserve = 0
		}

		if i > 0 && used+entryWidth+reserve > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool, suffix string) string {
	base := suggestionStyle
	highlight := matchStyle

	if selected {
		base = selectedStyle
		highlight = selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if suffix != "" && match.Str != lang.KeywordFunction {
		b.WriteString(base.Render(suffix))
	}

	return b.String()
}

// preview summarizes a declaration body for the list command.
func preview(decl *lang.FunctionDecl) string {
	calls := decl.Body.Calls

	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}

	const limit = 40

	s := "{ " + strings.Join(names, "; ") + " }"
	if len(calls) == 0 {
		s = "{ }"
	}

	if len(s) > limit {
		s = s[:limit-3] + "..."
	}

	return s
}
