// Package logging builds slog loggers for the CLI.
//
// Two formats are supported: a human-oriented console format that
// renders one key=value line per record, and structured JSON for log
// files or machine consumption. Output can fan out to stdout plus a
// per-run log file under the configured log directory.
package logging
