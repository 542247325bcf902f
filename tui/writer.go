package tui

import (
	"bufio"
	"io"
)

// lineWriter wraps an io.Writer and captures the first write error,
// skipping all subsequent writes after an error occurs. This is the
// same pattern used by bufio.Writer and encoding/csv.Writer.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

// writeFlush writes s and flushes it to the underlying writer, doing
// nothing if a prior write failed.
func (lw *lineWriter) writeFlush(s string) {
	if lw.err != nil {
		return
	}
	if _, lw.err = lw.w.WriteString(s); lw.err != nil {
		return
	}
	lw.err = lw.w.Flush()
}

// Err returns the first error encountered during any write, or nil.
func (lw *lineWriter) Err() error {
	return lw.err
}
