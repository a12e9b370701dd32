package schema

import "strings"

// ControlRecord is one validated row describing a single security or
// compliance control. Free-text fields may carry "Not specified" but are
// never empty in a valid table.
type ControlRecord struct {
	ControlID           string `json:"controlId"`
	ControlName         string `json:"controlName"`
	Severity            string `json:"severity"`
	Policies            string `json:"policies"`
	AWSConfig           string `json:"awsConfig"`
	Implementation      string `json:"implementation"`
	RelatedRequirements string `json:"relatedRequirements"`
}

// Fields returns the record's values in canonical column order.
func (r ControlRecord) Fields() []string {
	return []string{
		r.ControlID,
		r.ControlName,
		r.Severity,
		r.Policies,
		r.AWSConfig,
		r.Implementation,
		r.RelatedRequirements,
	}
}

// Records parses tabular text into typed control records, mapping columns by
// header name. Rows shorter than the header are padded with empty fields;
// unknown columns are ignored. Parse failures yield an empty slice: callers
// are expected to have validated the table first.
func Records(tabularText string) []ControlRecord {
	rows, err := parseRows(tabularText)
	if err != nil || len(rows) < 2 {
		return nil
	}

	present := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		present[strings.TrimSpace(name)] = i
	}

	records := make([]ControlRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, ControlRecord{
			ControlID:           fieldValue(row, present, "controlId"),
			ControlName:         fieldValue(row, present, "controlName"),
			Severity:            fieldValue(row, present, "severity"),
			Policies:            fieldValue(row, present, "policies"),
			AWSConfig:           fieldValue(row, present, "awsConfig"),
			Implementation:      fieldValue(row, present, "implementation"),
			RelatedRequirements: fieldValue(row, present, "relatedRequirements"),
		})
	}

	return records
}
