package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/physbone"
	"github.com/conn-castle/rigkit/internal/testutil"
)

func TestBonesConfigure_Success(t *testing.T) {
	dir := t.TempDir()
	scenePath := testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml", "--root", "Skirt")

	require.Equal(t, batch.CodeSuccess, code, stdout)
	assert.Contains(t, stdout, "State: done (exit 0)")
	assert.Contains(t, stdout, "Matched 2 bones")
	assert.FileExists(t, filepath.Join(dir, "data", "output", "hierarchy_dump.txt"))
	assert.FileExists(t, filepath.Join(dir, "data", "output", "physbone_report.txt"))

	saved := testutil.ReadFile(t, scenePath)
	assert.Contains(t, saved, "limitType: hinge")
	assert.NotContains(t, saved, "maxAngleX: 200")
}

func TestBonesConfigure_NoRootDumpsOnly(t *testing.T) {
	dir := t.TempDir()
	scenePath := testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml")

	assert.Equal(t, batch.CodeNoRootSpecified, code)
	assert.Contains(t, stdout, "no_root_specified")
	assert.FileExists(t, filepath.Join(dir, "data", "output", "hierarchy_dump.txt"))
	assert.Equal(t, skirtScene, testutil.ReadFile(t, scenePath))
}

func TestBonesConfigure_RootNotFound(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml", "--root", "Cape")

	assert.Equal(t, batch.CodeNotFound, code)
	assert.Contains(t, stdout, "root_not_found")
}

func TestBonesConfigure_NoBonesMatched(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, _, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml", "--root", "Skirt", "--bone-regex", `^Frill`)

	assert.Equal(t, batch.CodeNotFound, code)
}

func TestBonesConfigure_MissingComponentFailsValidation(t *testing.T) {
	dir := t.TempDir()
	scenePath := testutil.WriteFile(t, dir, "bare.yaml", bareScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "configure", "bare.yaml", "--root", "Skirt")

	assert.Equal(t, batch.CodeValidationFailed, code)
	assert.Contains(t, stdout, "validation_failed")
	assert.Equal(t, bareScene, testutil.ReadFile(t, scenePath))
}

func TestBonesInstall_AddsComponents(t *testing.T) {
	dir := t.TempDir()
	scenePath := testutil.WriteFile(t, dir, "bare.yaml", bareScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "install", "bare.yaml", "--root", "Skirt", "--angle", "30")

	require.Equal(t, batch.CodeSuccess, code, stdout)
	saved := testutil.ReadFile(t, scenePath)
	assert.Contains(t, saved, "type: PhysBone")
	assert.Contains(t, saved, "maxAngleX: 30")
}

func TestBonesInstall_DryRunPrintsDiff(t *testing.T) {
	dir := t.TempDir()
	scenePath := testutil.WriteFile(t, dir, "bare.yaml", bareScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "install", "bare.yaml", "--root", "Skirt", "--dry-run")

	require.Equal(t, batch.CodeSuccess, code, stdout)
	assert.Contains(t, stdout, "Dry run: no files were changed")
	assert.Equal(t, bareScene, testutil.ReadFile(t, scenePath))
}

func TestBonesConfigure_JSONReportAndOutputDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, _, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml",
		"--root", "Skirt", "--output-dir", "out", "--report-format", "json", "--report-out", "skirt")

	require.Equal(t, batch.CodeSuccess, code)
	var decoded struct {
		Kind     string         `json:"kind"`
		Counters map[string]int `json:"counters"`
	}
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, filepath.Join(dir, "out", "skirt.json"))), &decoded))
	assert.Equal(t, batch.ReportKind, decoded.Kind)
	assert.Equal(t, 2, decoded.Counters["matched"])
}

func TestBonesConfigure_MissingSceneIsUnexpected(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, dir, nil, "bones", "configure", "missing.yaml", "--root", "Skirt")

	assert.Equal(t, batch.CodeUnexpected, code)
	assert.Contains(t, stderr, "read scene")
}

func TestBonesConfigure_SettingsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	scenePath := testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)
	testutil.WriteFile(t, dir, ".rigkit/config.toml", "root = \"Cape\"\nangle = 20.0\n")
	testutil.WriteFile(t, dir, ".rigkit/.env", "RIGKIT_ROOT=Skirt\n")

	code, stdout, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml")

	require.Equal(t, batch.CodeSuccess, code, stdout)
	assert.Contains(t, testutil.ReadFile(t, scenePath), "maxAngleX: 20")
}

func TestBonesConfigure_InvalidSettingsFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)
	testutil.WriteFile(t, dir, ".rigkit/config.toml", "skirtRoot = \"Skirt\"\n")

	code, _, stderr := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml")

	assert.Equal(t, batch.CodeUnexpected, code)
	assert.Contains(t, stderr, "config.toml")
}

func TestBonesConfigure_MalformedRuleStillDumps(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml", "--root", "Skirt", "--bone-regex", "(")

	assert.Equal(t, batch.CodeUnexpected, code)
	assert.Contains(t, stdout, `Error (malformed): bone rule: malformed: regex "("`)
	assert.NotContains(t, stdout, "config validation failed")
	assert.FileExists(t, filepath.Join(dir, "data", "output", "hierarchy_dump.txt"))
}

func TestBonesInstall_MalformedSettingsRuleStillDumps(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)
	testutil.WriteFile(t, dir, ".rigkit/config.toml", "root = \"Skirt\"\nboneRule = \"fuzzy\"\n")

	code, stdout, _ := runCLI(t, dir, nil, "bones", "install", "avatar.yaml")

	assert.Equal(t, batch.CodeUnexpected, code)
	assert.Contains(t, stdout, `unknown rule kind "fuzzy"`)
	assert.FileExists(t, filepath.Join(dir, "data", "output", "hierarchy_dump.txt"))
	assert.FileExists(t, filepath.Join(dir, "data", "output", "physbone_report.txt"))
}

func TestBonesConfigure_LogFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, _, stderr := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml",
		"--root", "Skirt", "--log-file", "logs/rigkit.log", "--quiet")

	require.Equal(t, batch.CodeSuccess, code)
	assert.Empty(t, stderr)
	data, err := os.ReadFile(filepath.Join(dir, "logs", "rigkit.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "level=INFO")
}

func TestBonesAudit_Text(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "audit", "avatar.yaml")

	assert.Equal(t, batch.CodeValidationFailed, code)
	assert.Contains(t, stdout, "physics bones")
	assert.Contains(t, stdout, "[CHECK] Avatar/Hips/Skirt/Skirt.002")
	assert.Contains(t, stdout, "not a hinge")
	assert.Contains(t, stdout, "max angle outside (0, 180]")
}

func TestBonesAudit_CleanAfterConfigure(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	code, _, _ := runCLI(t, dir, nil, "bones", "configure", "avatar.yaml", "--root", "Skirt")
	require.Equal(t, batch.CodeSuccess, code)

	code, stdout, _ := runCLI(t, dir, nil, "bones", "audit", "avatar.yaml")
	assert.Equal(t, batch.CodeSuccess, code)
	assert.Contains(t, stdout, "All physics bones are hinges")
}

func TestBonesAudit_JSON(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "avatar.yaml", skirtScene)

	_, stdout, _ := runCLI(t, dir, nil, "bones", "audit", "avatar.yaml", "--report-format", "json")

	var result physbone.AuditResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 1, result.Issues())
}

func TestBonesConfigure_SettingsFoundInParent(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, ".rigkit/config.json", `{"root": "Skirt"}`)
	nested := filepath.Join(dir, "scenes")
	testutil.WriteFile(t, nested, "avatar.yaml", skirtScene)

	code, stdout, _ := runCLI(t, nested, nil, "bones", "configure", "avatar.yaml")

	require.Equal(t, batch.CodeSuccess, code, stdout)
	assert.FileExists(t, filepath.Join(nested, "data", "output", "physbone_report.txt"))
}
