package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/conn-castle/rigkit/internal/envfile"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/messages"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "RIGKIT_"

// LoadEnv reads a .env file and keeps only RIGKIT_ keys. A missing file is
// empty.
func LoadEnv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, errkind.IOf(fmt.Sprintf(messages.ConfigReadFailedFmt, path), err)
	}
	env, err := envfile.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigInvalidEnvFileFmt, errkind.ErrMalformed, path, err)
	}
	return envfile.WithPrefix(env, EnvPrefix), nil
}

// ProcessEnv returns the RIGKIT_ variables of the current process.
func ProcessEnv() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, EnvPrefix) {
			env[key] = value
		}
	}
	return env
}

type envBinding struct {
	key   string
	apply func(s *Settings, v string) error
}

func stringVar(field func(*Settings) *string) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		*field(s) = v
		return nil
	}
}

func floatVar(field func(*Settings) *float64) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(s) = f
		return nil
	}
}

func intVar(field func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(s) = n
		return nil
	}
}

func boolVar(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

var envBindings = []envBinding{
	{"RIGKIT_ROOT", stringVar(func(s *Settings) *string { return &s.Root })},
	{"RIGKIT_ROOT_PATH_CONTAINS", stringVar(func(s *Settings) *string { return &s.RootPathContains })},
	{"RIGKIT_BONE_RULE", stringVar(func(s *Settings) *string { return &s.BoneRule })},
	{"RIGKIT_BONE_REGEX", stringVar(func(s *Settings) *string { return &s.BoneRegex })},
	{"RIGKIT_ANGLE", floatVar(func(s *Settings) *float64 { return &s.Angle })},
	{"RIGKIT_INNER_ANGLE", floatVar(func(s *Settings) *float64 { return &s.InnerAngle })},
	{"RIGKIT_OUTPUT_DIR", stringVar(func(s *Settings) *string { return &s.OutputDir })},
	{"RIGKIT_REPORT_FORMAT", stringVar(func(s *Settings) *string { return &s.ReportFormat })},
	{"RIGKIT_MAX_DEPTH", intVar(func(s *Settings) *int { return &s.MaxDepth })},
	{"RIGKIT_DEEP_HIERARCHY", boolVar(func(s *Settings) *bool { return &s.DeepHierarchy })},
	{"RIGKIT_LOG_LEVEL", stringVar(func(s *Settings) *string { return &s.LogLevel })},
	{"RIGKIT_LOG_FILE", stringVar(func(s *Settings) *string { return &s.LogFile })},
	{"RIGKIT_TARGET_FOLDER", stringVar(func(s *Settings) *string { return &s.TargetFolder })},
	{"RIGKIT_TARGET_SHADER", stringVar(func(s *Settings) *string { return &s.TargetShader })},
	{"RIGKIT_BACKUP_PATH", stringVar(func(s *Settings) *string { return &s.BackupPath })},
	{"RIGKIT_CREATE_BACKUPS", boolVar(func(s *Settings) *bool { return &s.CreateBackups })},
}

// ApplyEnv overrides settings from RIGKIT_ variables, then revalidates. Unknown
// RIGKIT_ keys are ignored.
func (s Settings) ApplyEnv(env map[string]string) (Settings, error) {
	out := s
	out.FileFilters = append([]string(nil), s.FileFilters...)
	out.ExcludePatterns = append([]string(nil), s.ExcludePatterns...)
	for _, b := range envBindings {
		v, ok := env[b.key]
		if !ok {
			continue
		}
		if err := b.apply(&out, strings.TrimSpace(v)); err != nil {
			return Settings{}, invalid(messages.ConfigEnvValueInvalidFmt, b.key, v, err)
		}
	}
	if err := out.expandPaths(); err != nil {
		return Settings{}, err
	}
	if err := out.Validate(); err != nil {
		return Settings{}, err
	}
	return out, nil
}
