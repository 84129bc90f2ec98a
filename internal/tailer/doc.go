// Package tailer follows the node's debug log file and hands accumulated
// lines to the log handlers in batches. It survives log rotation (the file
// is reopened when replaced) and seeks to the end on startup unless
// configured to backfill from the beginning.
package tailer
