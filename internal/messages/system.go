package messages

// System messages for low-level helpers.
const (
	// EnvfileLineErrorFmt formats envfile line errors.
	EnvfileLineErrorFmt            = "line %d: %w"
	EnvfileReadFailedFmt           = "failed to read env content: %w"
	EnvfileExpectedKeyValue        = "expected KEY=VALUE"
	EnvfileUnterminatedQuotedValue = "unterminated quoted value"
	EnvfileInvalidQuotedSuffix     = "invalid trailing characters after quoted value"

	// LogOpenFileFmt formats log file open failures.
	LogOpenFileFmt = "open log file %s: %w"

	// PromptRequiresTerminal is returned when a confirmation cannot be shown.
	PromptRequiresTerminal = "confirmation requires an interactive terminal; re-run with --yes"
	PromptDeclined         = "Aborted."
)
