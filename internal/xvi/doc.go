// Package xvi parses the Elekta XVI vendor file dialects that appear
// throughout a patient export tree: the flat key=value INI dialect (both as
// standalone Reconstruction/*.INI files and as archive members inside
// registration records), the ScanUID strings with an embedded acquisition
// timestamp, and the _Frames.xml acquisition metadata files.
//
// The INI dialect is non-standard enough that generic INI libraries choke on
// it (duplicate keys, bare section headers carrying timestamps, values with
// embedded separators), so parsing is intentionally line-oriented and
// tolerant: malformed lines are counted and skipped, never fatal.
package xvi
