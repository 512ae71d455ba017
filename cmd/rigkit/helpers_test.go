package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/conn-castle/rigkit/internal/prompt"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// runCLI runs the CLI with dir as the working directory and returns the exit
// code with both output streams. Prompts answer with confirm.
func runCLI(t *testing.T, dir string, confirm prompt.Confirmer, args ...string) (int, string, string) {
	t.Helper()
	origWd, origNow, origConfirm := getwd, now, newConfirmer
	t.Cleanup(func() {
		getwd, now, newConfirmer = origWd, origNow, origConfirm
	})
	getwd = func() (string, error) { return dir, nil }
	now = func() time.Time { return fixedNow }
	if confirm == nil {
		confirm = prompt.Always(false)
	}
	newConfirmer = func() prompt.Confirmer { return confirm }

	var stdout, stderr bytes.Buffer
	code := 0
	runMain(append([]string{"rigkit"}, args...), &stdout, &stderr, func(c int) { code = c })
	return code, stdout.String(), stderr.String()
}

// failingConfirmer reports that no prompt can be shown.
type failingConfirmer struct{}

func (failingConfirmer) Confirm(string) (bool, error) { return false, prompt.ErrRequiresTerminal }

const skirtScene = `name: Skirt Test
roots:
  - name: Avatar
    children:
      - name: Hips
        position: [0, 1, 0]
        children:
          - name: Skirt
            position: [0, 1, 0]
            children:
              - name: Skirt.001
                position: [0, 1, 0]
                components:
                  - type: PhysBone
                    physBone:
                      limitType: hinge
                      maxAngleX: 45
                children:
                  - name: Skirt.001_end
                    position: [0, 0.5, 1]
              - name: Skirt.002
                position: [0, 1, 0]
                components:
                  - type: PhysBone
                    physBone:
                      limitType: angle
                      maxAngleX: 200
                children:
                  - name: Skirt.002_end
                    position: [1, 0.5, 0]
              - name: Decoration
`

const bareScene = `name: Bare
roots:
  - name: Skirt
    children:
      - name: Skirt.001
        children:
          - name: Skirt.001_end
            position: [0, -1, 1]
      - name: Skirt.002
`
