package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/rigkit/internal/batch"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/report"
	"github.com/conn-castle/rigkit/internal/testutil"
)

func TestDefaultSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Empty(t, s.Root)
	assert.Equal(t, batch.DefaultRuleSource, s.BoneRegex)
	assert.InDelta(t, 45, s.Angle, 1e-9)
	assert.InDelta(t, 10, s.InnerAngle, 1e-9)
	assert.Equal(t, hierarchy.DefaultMaxDepth, s.MaxDepth)
	assert.True(t, s.CreateBackups)
	assert.Equal(t, 30*24*60*60, int(s.BackupRetention().Seconds()))
}

func TestLoad_EmptyOrMissingPathYieldsDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	s, err = Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_TOML(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.toml", `
root = "Skirt"
rootPathContains = "Armature"
boneRule = "keywords"
boneRegex = "skirt,frill"
angle = 30.0
maxDepth = 4
findArmature = true
reportFormat = "json"
targetShader = "Poiyomi"
excludePatterns = ["_old"]
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Skirt", s.Root)
	assert.Equal(t, "Armature", s.RootPathContains)
	assert.Equal(t, "keywords", s.BoneRule)
	assert.InDelta(t, 30, s.Angle, 1e-9)
	assert.InDelta(t, 10, s.InnerAngle, 1e-9, "unset keys keep defaults")
	assert.Equal(t, 4, s.MaxDepth)
	assert.True(t, s.FindArmature)
	assert.Equal(t, "Poiyomi", s.TargetShader)
	assert.Equal(t, []string{"_old"}, s.ExcludePatterns)
}

func TestLoad_JSON(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.json", `{
  "root": "Skirt",
  "angle": 60,
  "innerAngle": 5,
  "createBackups": false,
  "alphaThreshold": 0.25
}`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Skirt", s.Root)
	assert.InDelta(t, 60, s.Angle, 1e-9)
	assert.InDelta(t, 5, s.InnerAngle, 1e-9)
	assert.False(t, s.CreateBackups)
	assert.InDelta(t, 0.25, s.AlphaThreshold, 1e-9)
}

func TestLoad_UnknownKeysRejected(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"config.toml": "skirtRoot = \"Skirt\"\n",
		"config.json": `{"skirtRoot": "Skirt"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(testutil.WriteFile(t, dir, name, content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigValidation)
			assert.ErrorIs(t, err, errkind.ErrMalformed)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoad_SyntaxErrorIsMalformed(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.toml", "root = \n")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrMalformed)
	assert.NotErrorIs(t, err, ErrConfigValidation)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.yaml", "root: Skirt\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, errkind.ErrMalformed)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	path := testutil.WriteFile(t, t.TempDir(), "config.toml", "outputDir = \"~/rigkit\"\nbackupPath = \"~/backups\"\n")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "rigkit"), s.OutputDir)
	assert.Equal(t, filepath.Join(home, "backups"), s.BackupPath)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Settings){
		"bad format":       func(s *Settings) { s.ReportFormat = "xml" },
		"negative depth":   func(s *Settings) { s.MaxDepth = -1 },
		"bad log level":    func(s *Settings) { s.LogLevel = "trace" },
		"negative keep":    func(s *Settings) { s.BackupRetentionDays = -1 },
		"no target shader": func(s *Settings) { s.TargetShader = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := DefaultSettings()
			mutate(&s)
			err := s.Validate()
			assert.ErrorIs(t, err, ErrConfigValidation)
			assert.ErrorIs(t, err, errkind.ErrMalformed)
			assert.Equal(t, 1, strings.Count(err.Error(), "malformed"), err.Error())
		})
	}
}

func TestValidate_LeavesBoneRuleToRun(t *testing.T) {
	s := DefaultSettings()
	s.BoneRegex = "("
	s.BoneRule = "fuzzy"
	s.Angle = math.NaN()
	s.InnerAngle = math.Inf(1)
	require.NoError(t, s.Validate())

	opts, err := s.BoneOptions(batch.ModeValidate)
	require.NoError(t, err)
	assert.Nil(t, opts.Rule)
	assert.Equal(t, "fuzzy", opts.RuleKind)
	assert.Equal(t, "(", opts.RuleSource)
	assert.True(t, math.IsNaN(opts.Params.MaxAngle))
}

func TestApplyEnv(t *testing.T) {
	s, err := DefaultSettings().ApplyEnv(map[string]string{
		"RIGKIT_ROOT":           "Skirt",
		"RIGKIT_ANGLE":          " 25.5 ",
		"RIGKIT_MAX_DEPTH":      "3",
		"RIGKIT_DEEP_HIERARCHY": "true",
		"RIGKIT_CREATE_BACKUPS": "false",
		"RIGKIT_UNKNOWN":        "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "Skirt", s.Root)
	assert.InDelta(t, 25.5, s.Angle, 1e-9)
	assert.Equal(t, 3, s.MaxDepth)
	assert.True(t, s.DeepHierarchy)
	assert.False(t, s.CreateBackups)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	for key, value := range map[string]string{
		"RIGKIT_ANGLE":          "wide",
		"RIGKIT_MAX_DEPTH":      "-2",
		"RIGKIT_DEEP_HIERARCHY": "maybe",
		"RIGKIT_REPORT_FORMAT":  "xml",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := DefaultSettings().ApplyEnv(map[string]string{key: value})
			assert.ErrorIs(t, err, ErrConfigValidation)
		})
	}
}

func TestApplyEnv_DoesNotAliasSlices(t *testing.T) {
	base := DefaultSettings()
	out, err := base.ApplyEnv(nil)
	require.NoError(t, err)
	out.FileFilters[0] = "*.changed"
	assert.NotEqual(t, "*.changed", base.FileFilters[0])
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	env, err := LoadEnv(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Empty(t, env)

	path := testutil.WriteFile(t, dir, ".env", "# overrides\nRIGKIT_ROOT=\"Skirt\"\nOTHER=1\n")
	env, err = LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"RIGKIT_ROOT": "Skirt"}, env)

	path = testutil.WriteFile(t, dir, "bad.env", "RIGKIT_ROOT=\"Skirt\n")
	_, err = LoadEnv(path)
	assert.ErrorIs(t, err, errkind.ErrMalformed)
}

func TestProcessEnv(t *testing.T) {
	t.Setenv("RIGKIT_TARGET_SHADER", "Poiyomi")
	t.Setenv("NOT_RIGKIT", "x")
	env := ProcessEnv()
	assert.Equal(t, "Poiyomi", env["RIGKIT_TARGET_SHADER"])
	assert.NotContains(t, env, "NOT_RIGKIT")
}

func TestPaths(t *testing.T) {
	root := t.TempDir()
	p := DefaultPaths(root)
	assert.Equal(t, filepath.Join(root, ".rigkit", ".env"), p.EnvPath)
	assert.Empty(t, p.ConfigPath())

	testutil.WriteFile(t, root, ".rigkit/config.json", "{}")
	assert.Equal(t, p.ConfigJSON, p.ConfigPath())

	testutil.WriteFile(t, root, ".rigkit/config.toml", "")
	assert.Equal(t, p.ConfigTOML, p.ConfigPath())
}

func TestBoneOptions(t *testing.T) {
	s := DefaultSettings()
	s.Root = "Skirt"
	s.RootPathContains = "Armature"
	s.BoneRule = "keywords"
	s.BoneRegex = "skirt"
	s.Angle = 30
	s.OutputDir = "out"
	s.ReportFormat = "csv"
	s.ShowBoneStructure = true

	opts, err := s.BoneOptions(batch.ModeInstall)
	require.NoError(t, err)
	assert.Equal(t, "Skirt", opts.Root)
	assert.Equal(t, "Armature", opts.RootPathContains)
	assert.Nil(t, opts.Rule)
	assert.Equal(t, "keywords", opts.RuleKind)
	assert.Equal(t, "skirt", opts.RuleSource)
	assert.InDelta(t, 30, opts.Params.MaxAngle, 1e-9)
	assert.Equal(t, batch.ModeInstall, opts.Mode)
	assert.True(t, opts.Walk.IncludeComponents)
	assert.Equal(t, filepath.Join("out", batch.DefaultHierarchyOut), opts.HierarchyOut)
	assert.Empty(t, opts.ArmatureOut)
	assert.False(t, opts.AnalyzeArmature)
	assert.Equal(t, filepath.Join("out", DefaultReportOut+".csv"), opts.ReportOut)
	assert.Equal(t, report.FormatCSV, opts.ReportFormat)
}

func TestBoneOptions_DeepAndArmature(t *testing.T) {
	s := DefaultSettings()
	s.DeepHierarchy = true
	s.FindArmature = true
	s.ReportOut = ""

	opts, err := s.BoneOptions(batch.ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, hierarchy.Unlimited, opts.Walk.MaxDepth)
	assert.True(t, opts.AnalyzeArmature)
	assert.Equal(t, filepath.Join(DefaultOutputDir, batch.DefaultArmatureOut), opts.ArmatureOut)
	assert.Empty(t, opts.ReportOut)
}

func TestOutputPath(t *testing.T) {
	s := DefaultSettings()
	abs := filepath.Join(string(os.PathSeparator), "tmp", "dump.txt")
	assert.Equal(t, abs, s.OutputPath(abs))
	assert.Empty(t, s.OutputPath(""))
	assert.Equal(t, filepath.Join(DefaultOutputDir, "dump.txt"), s.OutputPath("dump.txt"))
}

func TestMaterialSettingsCopy(t *testing.T) {
	s := DefaultSettings()
	m := s.Material()
	m.ExcludePatterns[0] = "_changed"
	assert.NotEqual(t, "_changed", s.ExcludePatterns[0])
	require.NoError(t, m.Validate())
}
