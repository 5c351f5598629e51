package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"reelist/internal/reconcile"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// renderRecordLine formats one per-entry progress line as the sync run
// reaches a terminal state for that entry.
func renderRecordLine(position, total int, rec reconcile.Record, colorize bool) string {
	status := string(rec.Status)
	if colorize {
		if color := statusColor(rec.Status); color != "" {
			status = color + status + ansiReset
		}
	}

	detail := ""
	switch rec.Status {
	case reconcile.StatusAdded, reconcile.StatusAlreadyMember:
		detail = fmt.Sprintf(" -> %s (%d)", rec.MatchedTitle, rec.MatchedYear)
		if rec.Score > 0 {
			detail += fmt.Sprintf(" [%s %d%%]", rec.Method, rec.Score)
		}
	case reconcile.StatusMissing, reconcile.StatusError:
		if rec.Note != "" {
			detail = " -> " + rec.Note
		}
	}

	return fmt.Sprintf("[%d/%d] %-7s %s%s", position+1, total, status, rec.Entry.Display(), detail)
}

func statusColor(status reconcile.Status) string {
	switch status {
	case reconcile.StatusAdded:
		return ansiGreen
	case reconcile.StatusAlreadyMember:
		return ansiYellow
	case reconcile.StatusMissing, reconcile.StatusError:
		return ansiRed
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
