package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prun-economy-lab/internal/reporting"
)

func TestRun_DemoWritesReports(t *testing.T) {
	dir := t.TempDir()

	code := run([]string{"-config", "", "-demo", "-store", "memory", "-workers", "2", "-output-dir", dir})
	require.Equal(t, exitOK, code)

	for _, name := range []string{reporting.FileReport, reporting.FileScores, reporting.FileArbitrage} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-bogus"}, exitInvalidConfig},
		{"invalid backend", []string{"-config", "", "-store", "tape"}, exitInvalidConfig},
		{"missing config file", []string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, exitFailure},
		{"no inputs", []string{"-config", "", "-store", "memory", "-output-dir", t.TempDir()}, exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args))
		})
	}
}
