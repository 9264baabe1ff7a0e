package cli

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archiveEntries(t *testing.T, path string) map[string]bool {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	entries := make(map[string]bool, len(r.File))
	for _, f := range r.File {
		entries[f.Name] = true
	}
	return entries
}

func TestExportCommand_WritesArchive(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)
	archive := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, "export", project, "-o", archive, "--date", "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 editions")

	entries := archiveEntries(t, archive)
	assert.True(t, entries["images/1.png"])
	assert.True(t, entries["images/2.png"])
	assert.True(t, entries["metadata/1.json"])
	assert.True(t, entries["metadata/2.json"])
	assert.True(t, entries["manifest.json"])
}

func TestExportCommand_JSONSummary(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)
	archive := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, "--format", "json", "export", project, "-o", archive)
	require.NoError(t, err)

	var summary ExportSummary
	decodeData(t, out, &summary)
	assert.Equal(t, 2, summary.Editions)
	assert.Equal(t, archive, summary.Archive)
	assert.NotEmpty(t, summary.RunID)
	assert.Empty(t, summary.Failed)
	// Forced selections collapse to one DNA.
	assert.Equal(t, 1, summary.UniqueDNA)
}

func TestExportCommand_EmbeddedImageSource(t *testing.T) {
	project := imageProject(t)
	archive := filepath.Join(t.TempDir(), "out.zip")

	_, err := execute(t, "export", project, "-o", archive)
	require.NoError(t, err)

	entries := archiveEntries(t, archive)
	assert.True(t, entries["images/1.png"])
}

func TestExportCommand_SeedOverride(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)
	archive := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, "--format", "json", "export", project, "-o", archive, "--seed", "other")
	require.NoError(t, err)

	var summary ExportSummary
	decodeData(t, out, &summary)
	assert.Equal(t, 2, summary.Editions)
}

func TestExportCommand_InvalidProjectFails(t *testing.T) {
	project := writeFixture(t, "bad.yaml", "name: x\nsize: 0\nseed: s\nwidth: 8\nheight: 8\nclasses: []\n")
	archive := filepath.Join(t.TempDir(), "out.zip")

	_, err := execute(t, "export", project, "-o", archive)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// No partial archive left behind.
	_, statErr := os.Stat(archive)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportCommand_MissingOutputFlag(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)

	_, err := execute(t, "export", project)
	require.Error(t, err)
}
