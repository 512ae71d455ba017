package messages

// Material conversion messages.
const (
	MaterialsUse   = "materials"
	MaterialsShort = "Convert Standard materials to the target shader and manage backups"

	MaterialsConvertUse     = "convert"
	MaterialsConvertShort   = "Convert every model's Standard materials under the target folder"
	MaterialsRestoreUse     = "restore MATERIAL"
	MaterialsRestoreShort   = "Restore one material from its first backup"
	MaterialsRestoreAllUse  = "restore-all"
	MaterialsRestoreAllShrt = "Restore every backed up material"
	MaterialsListUse        = "list"
	MaterialsListShort      = "List recorded backups"
	MaterialsPruneUse       = "prune"
	MaterialsPruneShort     = "Delete old backups, or drop manifest entries whose file is gone"

	FlagProject      = "Project directory the target and backup folders are relative to"
	FlagTargetFolder = "Folder scanned for model descriptors"
	FlagTargetShader = "Shader materials are converted to"
	FlagBackupPath   = "Backup folder"
	FlagNoBackups    = "Convert without writing backups"
	FlagOlderThan    = "Prune backups older than this many days"
	FlagStale        = "Drop entries whose backup file is missing instead of pruning by age"

	MaterialsFileFmt         = "[%s] %s: %d/%d converted, %d transparent\n"
	MaterialsSummaryFmt      = "Processed %d/%d files (%.1f%%), %d failed\n"
	MaterialsNoFiles         = "No model files found."
	MaterialsErrorFmt        = "Error (%s): %v\n"
	MaterialsReportFmt       = "Wrote %s\n"
	MaterialsProgressFmt     = "Processed %d/%d files\n"
	MaterialsRestoredFmt     = "Restored %s to %s\n"
	MaterialsRestoreAllFmt   = "Restored %d/%d materials\n"
	MaterialsRestoreFailFmt  = "  %s: %v\n"
	MaterialsNoBackups       = "No backups recorded."
	MaterialsBackupHeader    = "MATERIAL\tTIMESTAMP\tBACKUP\tORIGINAL"
	MaterialsBackupRowFmt    = "%s\t%s\t%s\t%s\n"
	MaterialsPrunedFmt       = "Removed %d backups\n"
	MaterialsConfirmRestore  = "Overwrite %d materials with their backups?"
	MaterialsConfirmPruneFmt = "Delete backups older than %d days?"
	MaterialsConfirmStale    = "Drop manifest entries whose backup file is missing?"
	MaterialsConfirmConvert  = "Convert materials under %s without backups?"
)
