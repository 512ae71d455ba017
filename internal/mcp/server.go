// Package mcp serves read-only scene and backup tools over the Model Context
// Protocol.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/conn-castle/rigkit/internal/config"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/match"
	"github.com/conn-castle/rigkit/internal/material"
	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/physbone"
	"github.com/conn-castle/rigkit/internal/report"
	"github.com/conn-castle/rigkit/internal/scene"
)

// Tool names.
const (
	ToolDumpHierarchy  = "dump_hierarchy"
	ToolAuditPhysBones = "audit_physbones"
	ToolMatchBones     = "match_bones"
	ToolListBackups    = "list_backups"
)

// Options configure the server.
type Options struct {
	Version string
	// BaseDir resolves relative scene and backup paths.
	BaseDir  string
	Settings config.Settings
	Now      func() time.Time
	Logger   *slog.Logger
}

type serverRunner func(ctx context.Context, server *mcp.Server) error

// Run serves the tools over stdio until ctx is done or the client disconnects.
func Run(ctx context.Context, opts Options) error {
	return run(ctx, opts, defaultServerRunner)
}

func run(ctx context.Context, opts Options, runner serverRunner) error {
	if runner == nil {
		return fmt.Errorf(messages.McpRunServerFailedFmt, errors.New(messages.McpServerNil))
	}
	if err := runner(ctx, NewServer(opts)); err != nil {
		return fmt.Errorf(messages.McpRunServerFailedFmt, err)
	}
	return nil
}

func defaultServerRunner(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// NewServer builds the server with every tool registered.
func NewServer(opts Options) *mcp.Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{opts: opts}
	server := mcp.NewServer(&mcp.Implementation{Name: "rigkit", Version: opts.Version}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: ToolDumpHierarchy, Description: messages.McpDumpToolDescription}, h.dump)
	mcp.AddTool(server, &mcp.Tool{Name: ToolAuditPhysBones, Description: messages.McpAuditToolDescription}, h.audit)
	mcp.AddTool(server, &mcp.Tool{Name: ToolMatchBones, Description: messages.McpMatchToolDescription}, h.match)
	mcp.AddTool(server, &mcp.Tool{Name: ToolListBackups, Description: messages.McpBackupToolDescription}, h.listBackups)
	return server
}

type handlers struct {
	opts Options
}

func (h *handlers) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.opts.BaseDir, path)
}

func (h *handlers) loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: scene path is required", errkind.ErrMalformed)
	}
	return scene.Load(h.abs(path))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}

// DumpInput selects the scene and dump depth.
type DumpInput struct {
	Scene      string `json:"scene" jsonschema:"Path to the scene document (.yaml, .yml, or .json)"`
	MaxDepth   int    `json:"maxDepth,omitempty" jsonschema:"Deepest level expanded; zero uses the configured depth"`
	Deep       bool   `json:"deep,omitempty" jsonschema:"Expand without a depth limit"`
	Components bool   `json:"components,omitempty" jsonschema:"Include component types on each line"`
}

// DumpOutput is the dump text and its counts.
type DumpOutput struct {
	Scene         string `json:"scene"`
	Nodes         int    `json:"nodes"`
	Truncated     int    `json:"truncated"`
	CyclesSkipped int    `json:"cyclesSkipped"`
	Text          string `json:"text"`
}

func (h *handlers) dump(_ context.Context, _ *mcp.CallToolRequest, in DumpInput) (*mcp.CallToolResult, DumpOutput, error) {
	sc, err := h.loadScene(in.Scene)
	if err != nil {
		return nil, DumpOutput{}, err
	}
	opts := hierarchy.WalkOptions{MaxDepth: h.opts.Settings.MaxDepth, IncludeComponents: in.Components}
	if in.MaxDepth > 0 {
		opts.MaxDepth = in.MaxDepth
	}
	if in.Deep {
		opts.MaxDepth = hierarchy.Unlimited
	}
	walk := hierarchy.Walk(sc, opts)
	var buf bytes.Buffer
	if err := report.WriteDump(&buf, report.Dump{
		SceneName: sc.SceneName(),
		Generated: h.opts.Now(),
		RootCount: len(sc.Roots()),
		Walk:      walk,
	}); err != nil {
		return nil, DumpOutput{}, err
	}
	h.opts.Logger.Info("mcp dump", "scene", in.Scene, "nodes", len(walk.Entries))
	out := DumpOutput{
		Scene:         sc.SceneName(),
		Nodes:         len(walk.Entries),
		Truncated:     walk.TruncatedCount(),
		CyclesSkipped: walk.CyclesSkipped,
		Text:          buf.String(),
	}
	return textResult(out.Text), out, nil
}

// AuditInput selects the scene to audit.
type AuditInput struct {
	Scene string `json:"scene" jsonschema:"Path to the scene document (.yaml, .yml, or .json)"`
}

// AuditOutput lists physics bone components.
type AuditOutput struct {
	Scanned int                   `json:"scanned"`
	Issues  int                   `json:"issues"`
	Entries []physbone.AuditEntry `json:"entries"`
}

func (h *handlers) audit(_ context.Context, _ *mcp.CallToolRequest, in AuditInput) (*mcp.CallToolResult, AuditOutput, error) {
	sc, err := h.loadScene(in.Scene)
	if err != nil {
		return nil, AuditOutput{}, err
	}
	res := physbone.Audit(sc)
	out := AuditOutput{Scanned: res.Scanned, Issues: res.Issues(), Entries: res.Entries}
	if out.Entries == nil {
		out.Entries = []physbone.AuditEntry{}
	}
	result, err := jsonResult(out)
	return result, out, err
}

// MatchInput selects a root and the rule applied to its direct children.
type MatchInput struct {
	Scene    string `json:"scene" jsonschema:"Path to the scene document (.yaml, .yml, or .json)"`
	Root     string `json:"root" jsonschema:"Exact name of the root node"`
	Rule     string `json:"rule,omitempty" jsonschema:"Rule source; defaults to the configured bone rule"`
	RuleKind string `json:"ruleKind,omitempty" jsonschema:"Rule kind: regex, keywords, glob, path-glob, or expr"`
}

// RootMatch is one root candidate and the bones selected under it.
type RootMatch struct {
	Path  string   `json:"path"`
	Bones []string `json:"bones"`
}

// MatchOutput lists every root candidate.
type MatchOutput struct {
	Rule  string      `json:"rule"`
	Roots []RootMatch `json:"roots"`
}

func (h *handlers) match(_ context.Context, _ *mcp.CallToolRequest, in MatchInput) (*mcp.CallToolResult, MatchOutput, error) {
	sc, err := h.loadScene(in.Scene)
	if err != nil {
		return nil, MatchOutput{}, err
	}
	kind, source := h.opts.Settings.BoneRule, h.opts.Settings.BoneRegex
	if in.Rule != "" {
		kind, source = in.RuleKind, in.Rule
	}
	rule, err := match.Parse(kind, source)
	if err != nil {
		return nil, MatchOutput{}, err
	}
	roots := hierarchy.FindByName(sc, in.Root)
	if len(roots) == 0 {
		return nil, MatchOutput{}, fmt.Errorf("%w: no node named %q", errkind.ErrNotFound, in.Root)
	}
	paths := hierarchy.NewPathCache(sc)
	out := MatchOutput{Rule: rule.String(), Roots: make([]RootMatch, 0, len(roots))}
	for _, root := range roots {
		rm := RootMatch{Path: paths.Path(root), Bones: []string{}}
		for _, bone := range hierarchy.CollectMatching(sc, root, rule) {
			rm.Bones = append(rm.Bones, paths.Path(bone))
		}
		out.Roots = append(out.Roots, rm)
	}
	result, err := jsonResult(out)
	return result, out, err
}

// BackupInput selects the backup folder.
type BackupInput struct {
	BackupPath string `json:"backupPath,omitempty" jsonschema:"Backup folder; defaults to the configured backup path"`
}

// BackupRecord is one manifest entry with a string timestamp.
type BackupRecord struct {
	MaterialName string `json:"materialName"`
	OriginalPath string `json:"originalPath"`
	BackupPath   string `json:"backupPath"`
	ModelPath    string `json:"modelPath"`
	Timestamp    string `json:"timestamp"`
	Checksum     string `json:"checksum"`
}

// BackupOutput lists the manifest.
type BackupOutput struct {
	Dir     string         `json:"dir"`
	Entries []BackupRecord `json:"entries"`
}

func (h *handlers) listBackups(_ context.Context, _ *mcp.CallToolRequest, in BackupInput) (*mcp.CallToolResult, BackupOutput, error) {
	dir := in.BackupPath
	if dir == "" {
		dir = h.opts.Settings.BackupPath
	}
	dir = h.abs(dir)
	backups, err := material.OpenBackups(dir, h.opts.Logger, h.opts.Now)
	if err != nil {
		return nil, BackupOutput{}, err
	}
	out := BackupOutput{Dir: dir, Entries: []BackupRecord{}}
	for _, e := range backups.Entries() {
		out.Entries = append(out.Entries, BackupRecord{
			MaterialName: e.MaterialName,
			OriginalPath: e.OriginalPath,
			BackupPath:   e.BackupPath,
			ModelPath:    e.ModelPath,
			Timestamp:    e.Timestamp.Format(time.RFC3339),
			Checksum:     e.Checksum,
		})
	}
	result, err := jsonResult(out)
	return result, out, err
}
