package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/testutil"
)

// forcedProject has one positive-weight trait per class, so every
// edition produces the same known selection.
const forcedProject = `
name: CLI Fixture
description: forced selections
size: 2
seed: cli-master
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
  - id: fg
    name: Foreground
    z_index: 10
    traits:
      - id: fg_dots
        name: Dots
        source: "p5:dots"
        weight: 1
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// imageProject embeds a generated data-URI sprite so the export
// exercises the raw image modality end to end.
func imageProject(t *testing.T) string {
	t.Helper()
	sprite := testutil.PNGDataURI(testutil.SolidPNG(8, 8, color.RGBA{R: 200, A: 255}))
	content := fmt.Sprintf(`
name: Sprite Fixture
description: embedded sprite
size: 1
seed: sprite-master
width: 8
height: 8
classes:
  - id: sprite
    name: Sprite
    z_index: 0
    traits:
      - id: sprite_red
        name: Red
        source: "%s"
        weight: 1
`, sprite)
	return writeFixture(t, "sprite.yaml", content)
}

// execute runs the root command with args and returns stdout and the
// execution error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeData unmarshals the data field of a JSON response envelope.
func decodeData(t *testing.T, raw string, v interface{}) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}
