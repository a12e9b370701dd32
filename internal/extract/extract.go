// Package extract pulls labeled fields and tabular payloads out of
// free-text stage output. Extraction is best-effort and total: malformed
// input yields absence, never an error.
package extract

import (
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with optional language tag.
// Captures: (1) optional language, (2) content.
var fencePattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// headingPattern matches a markdown heading line.
// Captures: (1) the hash run, (2) the heading text.
var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

// Section returns the body of the markdown section whose heading text equals
// heading. The body runs until the next heading of equal or higher level or
// the end of the text. The second return value is false when the heading is
// absent.
func Section(text, heading string) (string, bool) {
	lines := strings.Split(text, "\n")

	level := 0
	start := -1
	for i, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.EqualFold(m[2], heading) {
			level = len(m[1])
			start = i + 1
			break
		}
	}

	if start < 0 {
		return "", false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		m := headingPattern.FindStringSubmatch(lines[i])
		if m != nil && len(m[1]) <= level {
			end = i
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines[start:end], "\n")), true
}

// LabeledField extracts a bolded-label field of the form "**Label:** value",
// the convention the stage personas use for single-value answers.
func LabeledField(text, label string) (string, bool) {
	pattern := regexp.MustCompile(`\*\*` + regexp.QuoteMeta(label) + `:\*\*\s*(.+)`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	value := strings.TrimSpace(m[1])
	if value == "" {
		return "", false
	}
	return value, true
}

// TabularBlock locates the comma-separated candidate payload inside stage
// output. Candidates are tried in priority order:
//  1. a fence explicitly tagged as csv
//  2. any fence
//  3. a section whose heading mentions "Output"
//  4. a fence inside a section whose heading mentions "Final"
//
// The first candidate containing both a field separator and a line break is
// accepted; anything else is rejected as prose.
func TabularBlock(text string) (string, bool) {
	if block, ok := fencedBlock(text, "csv"); ok {
		return block, true
	}

	if block, ok := fencedBlock(text, ""); ok {
		return block, true
	}

	if body, ok := sectionContaining(text, "Output"); ok {
		if candidate := strings.TrimSpace(body); plausiblyTabular(candidate) {
			return candidate, true
		}
	}

	if body, ok := sectionContaining(text, "Final"); ok {
		if block, ok := fencedBlock(body, ""); ok {
			return block, true
		}
	}

	return "", false
}

// fencedBlock returns the first fence whose language tag matches lang
// (empty lang accepts any tag) and whose content is plausibly tabular.
func fencedBlock(text, lang string) (string, bool) {
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		if len(m) < 3 {
			continue
		}
		if lang != "" && !strings.EqualFold(m[1], lang) {
			continue
		}

		content := strings.TrimSpace(m[2])
		if plausiblyTabular(content) {
			return content, true
		}
	}
	return "", false
}

// sectionContaining returns the body of the first section whose heading text
// contains the given word, case-insensitively.
func sectionContaining(text, word string) (string, bool) {
	lines := strings.Split(text, "\n")
	lower := strings.ToLower(word)

	for _, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.Contains(strings.ToLower(m[2]), lower) {
			return Section(text, m[2])
		}
	}
	return "", false
}

// plausiblyTabular is the minimal heuristic that a candidate is tabular data
// and not prose: it must contain a field separator and a line break.
func plausiblyTabular(content string) bool {
	return strings.Contains(content, ",") && strings.Contains(content, "\n")
}
