package io

import "bytes"

// LineWriter receives one line at a time, without any line terminator.
// The slice is only valid for the duration of the call.
type LineWriter interface {
	WriteLine(line []byte) error
}

// LineWriterFunc adapts a function to LineWriter.
type LineWriterFunc func(line []byte) error

func (f LineWriterFunc) WriteLine(line []byte) error { return f(line) }

// LineWrapper reflows arbitrary writes into lines of at most width bytes.
//
// An explicit line break (LF, or CRLF) ends a line and is never forwarded.
// A line that reaches width bytes without a break is split after its last
// space or tab, which is dropped; with no usable whitespace it is cut at
// exactly width bytes. Flush forwards a trailing partial line.
type LineWrapper struct {
	width int
	out   LineWriter
	buf   *Buffer
}

// NewLineWrapper returns a LineWrapper forwarding lines to out. A width below
// two is raised to two.
func NewLineWrapper(width int, out LineWriter) *LineWrapper {
	if width < 2 {
		width = 2
	}
	return &LineWrapper{
		width: width,
		out:   out,
		buf:   NewBuffer(width + 1),
	}
}

// Write implements io.Writer. On a LineWriter failure it reports how much of
// p was buffered before the failing line was emitted.
func (w *LineWrapper) Write(p []byte) (int, error) {
	total := len(p)
	for {
		if room := w.width - w.buf.Len(); room > 0 && len(p) > 0 {
			k := min(room, len(p))
			w.buf.Append(p[:k])
			p = p[k:]
		}

		emitted, skip, err := w.emit(p)
		p = p[skip:]
		if err != nil {
			return total - len(p), err
		}
		if !emitted && len(p) == 0 {
			return total, nil
		}
	}
}

// emit forwards at most one line from the buffer and reports whether it did.
// next is the input not yet buffered; skip is how much of it was consumed.
func (w *LineWrapper) emit(next []byte) (emitted bool, skip int, err error) {
	data := w.buf.Bytes()

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		end := i
		if end > 0 && data[end-1] == '\r' {
			end--
		}
		return true, 0, w.forward(end, i+1)
	}

	if len(data) < w.width {
		return false, 0, nil
	}

	if i := bytes.LastIndexAny(data, " \t"); i > 0 {
		return true, 0, w.forward(i, i+1)
	}

	// A full buffer ending in CR may be the first half of a CRLF.
	if data[len(data)-1] == '\r' {
		if len(next) == 0 {
			return false, 0, nil
		}
		if next[0] == '\n' {
			return true, 1, w.forward(len(data)-1, len(data))
		}
	}
	return true, 0, w.forward(len(data), len(data))
}

// forward writes data[:end] as a line and drops data[:consume].
func (w *LineWrapper) forward(end, consume int) error {
	err := w.out.WriteLine(w.buf.Bytes()[:end])
	w.buf.ConsumePrefix(consume)
	return err
}

// Flush forwards any buffered partial line unbroken.
func (w *LineWrapper) Flush() error {
	for w.buf.Len() > 0 {
		emitted, _, err := w.emit(nil)
		if err != nil {
			return err
		}
		if !emitted {
			return w.forward(w.buf.Len(), w.buf.Len())
		}
	}
	return nil
}

// Buffered returns the number of bytes held back waiting for more input.
func (w *LineWrapper) Buffered() int { return w.buf.Len() }
