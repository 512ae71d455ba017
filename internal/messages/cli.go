package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse         = "rigkit"
	RootShort       = "Configure skirt physics bones and convert avatar materials"
	RootVersionFlag = "Print version and exit"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagConfig     = "Settings file (.toml or .json); defaults to .rigkit/config.toml or .rigkit/config.json"
	FlagLogLevel   = "Log level: debug, info, warn, or error"
	FlagLogFile    = "Write logs to this file instead of stderr"
	FlagQuiet      = "Suppress logs below error and the summary banner"
	FlagYes        = "Assume yes for confirmation prompts"
	FlagNoColor    = "Disable colored output"
	FlagDryRun     = "Show what would change without writing"
	FlagOutputDir  = "Directory for the dump, armature, and report files"
	FlagReportFmt  = "Report format: text, json, or csv"
	FlagReportOut  = "Report file name without extension; empty disables the report file"
	FlagRoot       = "Exact name of the node whose direct children are matched"
	FlagRootPath   = "Only use root candidates whose full path contains this text"
	FlagBoneRegex  = "Rule source selecting bones among the root's direct children"
	FlagRuleKind   = "Rule kind: regex, keywords, glob, path-glob, or expr"
	FlagAngle      = "Maximum hinge angle in degrees"
	FlagInnerAngle = "Inner angle in degrees; limit rotation X is angle minus inner angle"
	FlagHierarchy  = "Hierarchy dump file name"
	FlagMaxDepth   = "Deepest level expanded in the dump"
	FlagDeep       = "Expand the dump without a depth limit"
	FlagArmature   = "Also write an armature analysis"
	FlagComponents = "List component types in the dump"

	// DumpUse is the dump command usage.
	DumpUse   = "dump SCENE"
	DumpShort = "Write the scene hierarchy dump"

	BonesUse            = "bones"
	BonesShort          = "Validate, install, or audit physics bones"
	BonesConfigureUse   = "configure SCENE"
	BonesConfigureShort = "Configure bones that already carry a physics bone component"
	BonesInstallUse     = "install SCENE"
	BonesInstallShort   = "Add missing physics bone components, then configure every matched bone"
	BonesAuditUse       = "audit SCENE"
	BonesAuditShort     = "List every physics bone component with hinge and angle checks"

	BonesStateFmt        = "State: %s (exit %d)\n"
	BonesRootFmt         = "Root: %s\n"
	BonesMatchedFmt      = "Matched %d bones: %s\n"
	BonesArtifactFmt     = "Wrote %s\n"
	BonesDryRunHeader    = "Dry run: no files were changed. Pending scene changes:"
	BonesDryRunNoChanges = "Dry run: no scene changes."
	BonesErrorFmt        = "Error (%s): %v\n"
	BonesProgressFmt     = "Configured %d/%d bones\n"

	AuditHeaderFmt   = "Scanned %d nodes, %d physics bones\n"
	AuditDetailFmt   = "     limit %s, max angle %g, limit rotation (%g, %g, %g)\n"
	AuditIssueHinge  = "not a hinge"
	AuditIssueAngle  = "max angle outside (0, 180]"
	AuditIssuesFmt   = "%d components need attention\n"
	AuditAllGood     = "All physics bones are hinges with an in-range max angle."
	AuditOKLabel     = "OK"
	AuditIssueLabel  = "CHECK"
	AuditLineFmt     = "[%s] %s\n"
	AuditIssueSepFmt = "     %s\n"
)
