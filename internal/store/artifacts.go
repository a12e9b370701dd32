package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsentry/docsentry/internal/types"
)

// Fixed artifact filenames.
const (
	MasterFilename     = "master_security_controls.csv"
	ComplianceFilename = "compliance_report.md"
)

// ArtifactStore writes analysis outputs under a single output directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the output directory if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.WrapError(types.STORE_OPEN_FAILED, "failed to create output directory", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir returns the output directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// SaveAnalysis writes a subject's markdown analysis report and returns its
// path.
func (s *ArtifactStore) SaveAnalysis(subject, content string) (string, error) {
	name := fmt.Sprintf("%s_security_analysis.md", slugify(subject))
	return s.write(name, content)
}

// SaveTable writes a subject's validated controls table and returns its
// path.
func (s *ArtifactStore) SaveTable(subject, table string) (string, error) {
	name := fmt.Sprintf("%s_security_controls.csv", slugify(subject))
	if !strings.HasSuffix(table, "\n") {
		table += "\n"
	}
	return s.write(name, table)
}

// SaveMaster writes the aggregated master dataset and returns its path.
func (s *ArtifactStore) SaveMaster(content string) (string, error) {
	return s.write(MasterFilename, content)
}

// SaveCompliance writes the multi-subject compliance report and returns its
// path.
func (s *ArtifactStore) SaveCompliance(content string) (string, error) {
	return s.write(ComplianceFilename, content)
}

func (s *ArtifactStore) write(name, content string) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", types.WrapError(types.STORE_WRITE_FAILED,
			fmt.Sprintf("failed to write %s", name), err)
	}
	return path, nil
}

// slugify lowercases a subject and replaces path-hostile characters so it
// can safely appear in a filename.
func slugify(subject string) string {
	slug := strings.ToLower(strings.TrimSpace(subject))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	return strings.Trim(slug, "_")
}
