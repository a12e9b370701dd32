// Package schema validates extracted tabular payloads against the fixed
// security-controls column schema.
package schema

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// RequiredColumns is the fixed column schema, in canonical order.
var RequiredColumns = []string{
	"controlId",
	"controlName",
	"severity",
	"policies",
	"awsConfig",
	"implementation",
	"relatedRequirements",
}

// Header is the canonical header row of a persisted controls table.
var Header = strings.Join(RequiredColumns, ",")

// Severity is the allowed severity level of a control.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// String returns the string representation of the Severity
func (s Severity) String() string {
	return string(s)
}

// IsValid checks if the severity is one of the allowed tokens
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Report is the outcome of one validation pass. A fresh Report is produced
// on every call; reports are never mutated in place.
type Report struct {
	IsValid         bool     `json:"is_valid"`
	Issues          []string `json:"issues"`
	RowCount        int      `json:"row_count"`
	ColumnCount     int      `json:"column_count"`
	RequiredColumns []string `json:"required_columns"`
}

// Validate checks tabular text against the fixed column schema, uniqueness
// and enumeration constraints. It accumulates every detected issue before
// returning and never fails the caller: parse errors become issues.
func Validate(tabularText string) Report {
	report := Report{
		Issues:          []string{},
		RequiredColumns: append([]string(nil), RequiredColumns...),
	}

	rows, err := parseRows(tabularText)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("failed to parse table: %v", err))
		return report
	}

	if len(rows) == 0 {
		report.Issues = append(report.Issues, "table has no header row")
		return report
	}

	header := rows[0]
	report.ColumnCount = len(header)
	report.RowCount = len(rows) - 1

	present := make(map[string]int, len(header))
	for i, name := range header {
		present[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		rowNum := i + 1

		id := fieldValue(row, present, "controlId")
		name := fieldValue(row, present, "controlName")
		severity := fieldValue(row, present, "severity")

		if _, ok := present["controlId"]; ok && id == "" {
			report.Issues = append(report.Issues, fmt.Sprintf("row %d: empty controlId", rowNum))
		}
		if _, ok := present["controlName"]; ok && name == "" {
			report.Issues = append(report.Issues, fmt.Sprintf("row %d: empty controlName", rowNum))
		}

		if id != "" {
			if seen[id] {
				report.Issues = append(report.Issues, fmt.Sprintf("row %d: duplicate controlId %q", rowNum, id))
			}
			seen[id] = true
		}

		if severity != "" && !Severity(severity).IsValid() {
			report.Issues = append(report.Issues,
				fmt.Sprintf("row %d: invalid severity %q (allowed: Critical, High, Medium, Low)", rowNum, severity))
		}
	}

	report.IsValid = len(report.Issues) == 0
	return report
}

// parseRows reads comma-separated rows. Rows may have inconsistent field
// counts; that is the validator's concern, not the parser's.
func parseRows(tabularText string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(tabularText)))
	reader.FieldsPerRecord = -1

	return reader.ReadAll()
}

// fieldValue returns the trimmed value of a named column in a row, or ""
// when the column is absent or the row is short.
func fieldValue(row []string, present map[string]int, column string) string {
	idx, ok := present[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
