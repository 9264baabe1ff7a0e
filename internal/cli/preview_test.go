package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/trait"
)

func TestPreviewCommand_Text(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)

	out, err := execute(t, "preview", project, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "edition 1 (seed cli-master-1)")
	assert.Contains(t, out, "Background: Solid")
	assert.Contains(t, out, "dna: ")
}

func TestPreviewCommand_WritesImage(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)
	imagePath := filepath.Join(t.TempDir(), "token.png")

	_, err := execute(t, "preview", project, "1", "-o", imagePath)
	require.NoError(t, err)

	raw, err := os.ReadFile(imagePath)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestPreviewCommand_JSONRecord(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)

	out, err := execute(t, "--format", "json", "preview", project, "2")
	require.NoError(t, err)

	var rec trait.GenerationRecord
	decodeData(t, out, &rec)
	assert.Equal(t, 2, rec.Edition)
	assert.Equal(t, "cli-master-2", rec.Seed)
	assert.Equal(t, "bg_solid", rec.Selection["bg"].ID)
	assert.NotEmpty(t, rec.DNA)
}

func TestPreviewCommand_BadEdition(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)

	for _, edition := range []string{"0", "abc", "99"} {
		_, err := execute(t, "preview", project, edition)
		require.Error(t, err, "edition %s", edition)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}
}
