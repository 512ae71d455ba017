package messages

// Config messages for settings loading and validation.
const (
	ConfigUnsupportedExtFmt   = "settings file %s must end in .toml or .json"
	ConfigExpandPathFmt       = "expand path %s: %w"
	ConfigReadFailedFmt       = "read settings %s"
	ConfigInvalidFmt          = "invalid settings %s: %w"
	ConfigUnrecognizedKeysFmt = "settings %s contain unrecognized keys: %w"
	ConfigInvalidEnvFileFmt   = "invalid env file %s: %w"
	ConfigEnvValueInvalidFmt  = "%s=%q: %w"
	ConfigRootStartRequired   = "settings search needs a start directory"
	ConfigRootNotDirFmt       = "%s exists but is not a directory"

	ConfigMaxDepthNegativeFmt  = "maxDepth must be zero or positive, got %d"
	ConfigLogLevelInvalidFmt   = "logLevel must be one of debug, info, warn, error; got %q"
	ConfigRetentionNegativeFmt = "backupRetentionDays must be zero or positive, got %d"
)
