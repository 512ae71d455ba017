package messages

// Report renderer labels and line formats.
const (
	ReportHeaderFmt          = "=== rigkit %s report ===\n"
	ReportRunIDFmt           = "Run: %s\n"
	ReportGeneratedFmt       = "Generated: %s\n"
	ReportMetaFmt            = "%s: %s\n"
	ReportEntryFmt           = "[%s] %s\n"
	ReportEntryMessageFmt    = "       %s\n"
	ReportErrorsHeader       = "Errors:"
	ReportErrorFmt           = "  %s: %s\n"
	ReportErrorWithPathFmt   = "  %s: %s: %s\n"
	ReportSummaryHeader      = "Summary:"
	ReportCounterFmt         = "  %s: %d\n"
	ReportStatusOKLabel      = "OK"
	ReportStatusWarnLabel    = "WARN"
	ReportStatusFailLabel    = "FAIL"
	ReportStatusSkippedLabel = "SKIP"

	DumpHeaderFmt        = "=== Scene Hierarchy Dump: %s ===\n"
	DumpGeneratedFmt     = "Generated: %s\n"
	DumpRootCountFmt     = "Root objects: %d\n"
	DumpTruncatedFmt     = "%s  ... (%d children - depth limit reached)\n"
	DumpCyclesSkippedFmt = "(%d repeated node(s) skipped)\n"
)
