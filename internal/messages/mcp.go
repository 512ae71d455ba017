package messages

// MCP server messages.
const (
	McpUse   = "mcp"
	McpShort = "Serve scene and backup tools over MCP stdio"

	McpRunServerFailedFmt = "run MCP server: %w"
	McpServerNil          = "MCP server runner is nil"

	McpDumpToolDescription   = "Dump a scene document's hierarchy as indented text with full paths."
	McpAuditToolDescription  = "List every physics bone component in a scene with hinge and max angle checks."
	McpBackupToolDescription = "List the material backups recorded in a backup folder's manifest."
	McpMatchToolDescription  = "List the direct children of a root node that a bone rule selects."
)
