// Package terminal provides direct ANSI terminal control for the color wall.
//
// Features:
//   - True color (24-bit) and 256-color palette output
//   - Cell-level diffing against the last flushed frame
//   - Raw stdin input parsing: keys, focus reports, kitty keyboard event types
//   - SIGWINCH resize detection
//   - Clean terminal restoration on exit/panic
//
// A tcell-backed implementation of the same Terminal interface is available
// through NewTcell for terminals the native parser does not handle well.
package terminal
