package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/schema"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommandValidTable(t *testing.T) {
	table := schema.Header + "\nAWS-S3-001,Encryption,High,p,c,i,r\n"

	out, err := execute(t, table, "validate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "valid: 1 rows")
}

func TestValidateCommandInvalidTable(t *testing.T) {
	table := schema.Header + "\n,Encryption,Extreme,p,c,i,r\n"

	out, err := execute(t, table, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "invalid:")
	assert.Contains(t, out, "controlId")
}

func TestValidateCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(schema.Header+"\nAWS-S3-001,Encryption,High,p,c,i,r\n"), 0o644))

	out, err := execute(t, "", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: 1 rows")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docsentry")
}
