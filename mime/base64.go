package mime

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Base64 stream errors.
var (
	ErrSourceRead = errors.New("mime: attachment source read failed")
	ErrSinkWrite  = errors.New("mime: output write failed")
)

// base64Block is the number of input bytes encoded per chunk. It is a
// multiple of 3 so that only the last chunk of a stream carries padding.
const base64Block = 1024 * 3

// EncodeChunk returns the standard base64 encoding of data, padded with '='.
func EncodeChunk(data []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)
	return out
}

// EncodeStream base64-encodes src into dst one block at a time and returns
// the number of encoded bytes written. No line breaks are inserted.
func EncodeStream(src io.Reader, dst io.Writer) (int64, error) {
	in := make([]byte, base64Block)
	out := make([]byte, base64.StdEncoding.EncodedLen(base64Block))
	var written int64

	for {
		n, rerr := io.ReadFull(src, in)
		if n > 0 {
			m := base64.StdEncoding.EncodedLen(n)
			base64.StdEncoding.Encode(out, in[:n])
			w, err := dst.Write(out[:m])
			written += int64(w)
			if err != nil {
				return written, fmt.Errorf("%w: %w", ErrSinkWrite, err)
			}
		}
		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return written, nil
		default:
			return written, fmt.Errorf("%w: %w", ErrSourceRead, rerr)
		}
	}
}
