// Package logx configures the CLI's structured logging.
//
// It is a thin wrapper over zerolog that keeps:
//   - Console output readable on stderr (short timestamp + short caller)
//   - Optional file output JSON-structured (used by the watch daemon)
//
// Command output intended for the user goes through pterm on stdout; logx is
// for diagnostics only.
package logx
