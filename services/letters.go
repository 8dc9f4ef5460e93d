package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type LetterMatchKind int

const (
	LettersMatched LetterMatchKind = iota
	LettersMismatched
	// LettersWrongCount: the titles list is not five long.
	LettersWrongCount
	// LettersMisconfigured: the day's letters are not five long.
	LettersMisconfigured
)

func (k LetterMatchKind) String() string {
	switch k {
	case LettersMatched:
		return "matched"
	case LettersMismatched:
		return "mismatched"
	case LettersWrongCount:
		return "wrong_count"
	case LettersMisconfigured:
		return "misconfigured"
	default:
		return "unknown"
	}
}

// LetterMismatch describes one failing position. Position is 0-based.
type LetterMismatch struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Got      string `json:"got"`
	Want     string `json:"want"`
}

type LetterMatch struct {
	Kind       LetterMatchKind
	Message    string
	Mismatches []LetterMismatch
}

func (m LetterMatch) Valid() bool {
	return m.Kind == LettersMatched
}

// MatchLetters checks that titles[i] starts with requiredLetters[i], ignoring
// case, for every position.
func MatchLetters(titles, requiredLetters []string) LetterMatch {
	if len(titles) != SubmissionSize {
		return LetterMatch{
			Kind:    LettersWrongCount,
			Message: fmt.Sprintf("You must submit exactly %d achievements.", SubmissionSize),
		}
	}
	if len(requiredLetters) != SubmissionSize {
		return LetterMatch{
			Kind:    LettersMisconfigured,
			Message: "Invalid word configuration. Please contact an administrator.",
		}
	}

	var mismatches []LetterMismatch
	for i := range titles {
		want := toUpper(firstRune(requiredLetters[i]))
		got := toUpper(firstRune(titles[i]))
		if got != want || want == "" {
			mismatches = append(mismatches, LetterMismatch{Position: i, Title: titles[i], Got: got, Want: want})
		}
	}

	if len(mismatches) == 0 {
		return LetterMatch{Kind: LettersMatched, Message: "All achievement titles match the required letters!"}
	}

	lines := make([]string, len(mismatches))
	for i, m := range mismatches {
		lines[i] = fmt.Sprintf("Achievement %d: %q starts with %q but needs to start with %q",
			m.Position+1, m.Title, m.Got, m.Want)
	}
	return LetterMatch{
		Kind:       LettersMismatched,
		Message:    "Letter mismatches found:\n" + strings.Join(lines, "\n"),
		Mismatches: mismatches,
	}
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}
