package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/material"
	"github.com/conn-castle/rigkit/internal/testutil"
)

const skirtYAML = `name: Avatar
roots:
  - name: Avatar
    position: [0, 0, 0]
    children:
      - name: HipRoot
        position: [0, 1, 0]
        children:
          - name: Skirt.001
            position: [1, 1, 0]
            components:
              - type: PhysBone
                physBone:
                  limitType: hinge
                  maxAngleX: 45
          - name: Skirt.002
            position: [-1, 1, 0]
            components:
              - type: PhysBone
                physBone:
                  limitType: angle
                  maxAngleX: 200
          - name: Belt
            position: [0, 1, 0]
`

func connect(t *testing.T, opts Options) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := NewServer(opts).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func testOptions(dir string) Options {
	return Options{
		Version:  "test",
		BaseDir:  dir,
		Settings: config.DefaultSettings(),
		Now:      func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t, testOptions(t.TempDir()))
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolDumpHierarchy, ToolAuditPhysBones, ToolMatchBones, ToolListBackups}, names)
}

func TestDumpHierarchy(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scene.yaml", skirtYAML)
	cs := connect(t, testOptions(dir))

	res, text := callText(t, cs, ToolDumpHierarchy, map[string]any{"scene": "scene.yaml", "components": true})
	assert.False(t, res.IsError)
	assert.Contains(t, text, "=== Scene Hierarchy Dump: Avatar ===")
	assert.Contains(t, text, "    Skirt.001 | Avatar/HipRoot/Skirt.001 [PhysBone]")
}

func TestDumpHierarchy_DepthLimit(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scene.yaml", skirtYAML)
	cs := connect(t, testOptions(dir))

	_, text := callText(t, cs, ToolDumpHierarchy, map[string]any{"scene": "scene.yaml", "maxDepth": 1})
	assert.Contains(t, text, "... (3 children - depth limit reached)")
	assert.NotContains(t, text, "Skirt.001 |")
}

func TestDumpHierarchy_MissingScene(t *testing.T) {
	cs := connect(t, testOptions(t.TempDir()))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolDumpHierarchy,
		Arguments: map[string]any{"scene": "missing.yaml"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAuditPhysBones(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scene.yaml", skirtYAML)
	cs := connect(t, testOptions(dir))

	_, text := callText(t, cs, ToolAuditPhysBones, map[string]any{"scene": filepath.Join(dir, "scene.yaml")})
	var out AuditOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, 5, out.Scanned)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, 1, out.Issues)
	assert.True(t, out.Entries[0].Hinge)
	assert.False(t, out.Entries[1].AngleInRange)
}

func TestMatchBones(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scene.yaml", skirtYAML)
	cs := connect(t, testOptions(dir))

	_, text := callText(t, cs, ToolMatchBones, map[string]any{"scene": "scene.yaml", "root": "HipRoot"})
	var out MatchOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Roots, 1)
	assert.Equal(t, "Avatar/HipRoot", out.Roots[0].Path)
	assert.Equal(t, []string{"Avatar/HipRoot/Skirt.001", "Avatar/HipRoot/Skirt.002"}, out.Roots[0].Bones)
}

func TestMatchBones_CustomRule(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scene.yaml", skirtYAML)
	cs := connect(t, testOptions(dir))

	_, text := callText(t, cs, ToolMatchBones, map[string]any{
		"scene": "scene.yaml", "root": "HipRoot", "rule": "belt", "ruleKind": "keywords",
	})
	var out MatchOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, []string{"Avatar/HipRoot/Belt"}, out.Roots[0].Bones)
}

func TestMatchBones_UnknownRoot(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "scene.yaml", skirtYAML)
	cs := connect(t, testOptions(dir))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolMatchBones,
		Arguments: map[string]any{"scene": "scene.yaml", "root": "Nope"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListBackups(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "body.mat.yaml", "name: body\nshader: Standard\n")
	opts := testOptions(dir)
	backups, err := material.OpenBackups(filepath.Join(dir, opts.Settings.BackupPath), nil, opts.Now)
	require.NoError(t, err)
	_, err = backups.Backup("body", original, "avatar.model.yaml")
	require.NoError(t, err)

	cs := connect(t, opts)
	_, text := callText(t, cs, ToolListBackups, map[string]any{})
	var out BackupOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "body", out.Entries[0].MaterialName)
	assert.Equal(t, "2026-01-02T03:04:05Z", out.Entries[0].Timestamp)
	assert.Equal(t, "avatar.model.yaml", out.Entries[0].ModelPath)
}

func TestRun_NilRunner(t *testing.T) {
	err := run(context.Background(), testOptions(t.TempDir()), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner is nil")
}

func TestRun_UsesRunner(t *testing.T) {
	var got *mcp.Server
	err := run(context.Background(), testOptions(t.TempDir()), func(_ context.Context, s *mcp.Server) error {
		got = s
		return nil
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
}
