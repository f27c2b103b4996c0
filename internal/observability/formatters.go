// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxHintLength caps hints shown under each question
	maxHintLength = 120
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, truncate(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s%s │\n", wrapped, strings.Repeat(" ", inner-len([]rune(wrapped))))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQuestionBank prints the bank of one context in display order.
func (p *Printer) PrintQuestionBank(key types.ContextKey, items []types.QuestionItem) {
	var sb strings.Builder
	if len(items) == 0 {
		sb.WriteString("No questions yet.\n")
	}
	for i, item := range items {
		marker := " "
		if item.Bookmarked {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%2d. [%s] %s\n", marker, i+1, item.Type, item.Question))
		if item.Source != "" {
			sb.WriteString(fmt.Sprintf("     source: %s\n", item.Source))
		}
		if item.Hint != "" {
			sb.WriteString(fmt.Sprintf("     hint: %s\n", truncate(item.Hint, maxHintLength)))
		}
		if item.HasAnswer() {
			sb.WriteString("     answer drafted\n")
		}
	}
	p.printBox(fmt.Sprintf("QUESTION BANK: %s / %s (%d)", key.Company, key.Role, len(items)), sb.String())
}

// PrintSelfIntro prints a generated intro.
func (p *Printer) PrintSelfIntro(intro *types.SelfIntro) {
	if intro == nil {
		return
	}
	content := "Strategy:\n" + intro.Rationale + "\n\nScript:\n" + intro.Script
	p.printBox("SELF INTRODUCTION", content)
}

// PrintTranscript prints mock interview turns.
func (p *Printer) PrintTranscript(turns []types.Turn) {
	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(fmt.Sprintf("%s: %s\n", speaker(turn.Role), turn.Text))
	}
	if len(turns) == 0 {
		sb.WriteString("(empty)\n")
	}
	p.printBox("MOCK INTERVIEW", sb.String())
}

// PrintPoints prints the balance and free attempt usage.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPoints(balance, usage, freeAttempts int) {
	fmt.Fprintf(p.out, "Points: %d\n", balance)
	fmt.Fprintf(p.out, "Free mock interviews used: %d of %d\n", min(usage, freeAttempts), freeAttempts)
}

func speaker(role types.SpeakerRole) string {
	switch role {
	case types.RoleInterviewer:
		return "Interviewer"
	case types.RoleCandidate:
		return "You"
	default:
		return string(role)
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// wrap splits line into pieces no wider than width runes. Leading
// indentation is repeated on every piece.
func wrap(line string, width int) []string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	if len(indent) >= width/2 {
		indent = ""
	}
	width -= len(indent)

	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for len([]rune(word)) > width {
			if current != "" {
				lines = append(lines, indent+current)
				current = ""
			}
			runes := []rune(word)
			lines = append(lines, indent+string(runes[:width]))
			word = string(runes[width:])
		}
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= width:
			current += " " + word
		default:
			lines = append(lines, indent+current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, indent+current)
	}
	return lines
}
