// Package wire implements the bridge's outer TCP framing, the
// protobuf-wire-format envelope carried inside each frame, the RMI byte
// layout and the little-endian typed value codec used by PDO/RMI
// payloads (spec.md §4.1).
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/airnode/ventbridge"
)

// DefaultMaxFrameSize is the default ceiling on an envelope's declared
// length. Frames larger than this are rejected as a fatal transport
// error (spec.md §4.1).
const DefaultMaxFrameSize = 64 * 1024

// ReadFrame reads a single length-prefixed frame from r: a 4-byte
// big-endian length N followed by exactly N bytes of envelope payload.
// N == 0 or N > maxSize are rejected.
func ReadFrame(r io.Reader, maxSize uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, ventbridge.ErrEmptyFrame
	}
	if maxSize != 0 && n > maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ventbridge.ErrFrameTooLarge, n, maxSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes a single length-prefixed frame to w. The length
// prefix always equals len(payload) exactly (spec.md §3 invariant).
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(append(lenBuf[:], payload...)); err != nil {
		return err
	}
	return nil
}
