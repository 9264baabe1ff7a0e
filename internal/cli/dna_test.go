package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDNACommand_DuplicatesFail(t *testing.T) {
	// Forced selections give every edition the same DNA.
	project := writeFixture(t, "project.yaml", forcedProject)

	_, err := execute(t, "dna", project)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDNACommand_SingleEditionPasses(t *testing.T) {
	content := `
name: Single
description: one edition cannot collide
size: 1
seed: single-master
width: 8
height: 8
classes:
  - id: bg
    name: Background
    z_index: 0
    traits:
      - id: bg_solid
        name: Solid
        source: "webgl:gradient"
        weight: 1
`
	project := writeFixture(t, "single.yaml", content)

	out, err := execute(t, "dna", project)
	require.NoError(t, err)
	assert.Contains(t, out, "1 editions, 1 unique DNA")
}

func TestDNACommand_JSONReport(t *testing.T) {
	project := writeFixture(t, "project.yaml", forcedProject)

	out, err := execute(t, "--format", "json", "dna", project)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var report DNAReport
	decodeData(t, out, &report)
	assert.Equal(t, 2, report.Size)
	assert.Equal(t, 1, report.UniqueDNA)
	require.Len(t, report.Duplicates, 1)
	require.Len(t, report.Tokens, 2)
	assert.Equal(t, "cli-master-1", report.Tokens[0].Seed)
}
