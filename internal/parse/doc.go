// Package parse extracts structured activity messages from raw node log text.
//
// Parsers are permissive by contract: they preserve log order, silently skip
// lines that do not match, and never return an error for malformed input. An
// empty result is the normal outcome for log text without relevant activity.
package parse
