// Package event reads and writes the fixed-layout Linux input_event records
// that flow through the relay on stdin and stdout.
package event

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/holoplot/go-evdev"
)

// Key event values carried in InputEvent.Value for EV_KEY events.
const (
	ValueRelease int32 = 0
	ValuePress   int32 = 1
	ValueRepeat  int32 = 2
)

// Size is the length in bytes of one record on the host platform
// (24 on 64-bit targets, where struct timeval is two 64-bit words).
var Size = binary.Size(evdev.InputEvent{})

// Decoder reads records from an unbuffered stream.
type Decoder struct {
	r   io.Reader
	buf []byte
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, buf: make([]byte, Size)}
}

// Decode reads the next record. A zero-length or short read reports io.EOF:
// a truncated record cannot be recovered and ends the stream.
func (d *Decoder) Decode() (evdev.InputEvent, error) {
	var ev evdev.InputEvent
	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ev, io.EOF
		}
		return ev, err
	}
	if _, err := binary.Decode(d.buf, binary.NativeEndian, &ev); err != nil {
		return ev, fmt.Errorf("decode input event: %w", err)
	}
	return ev, nil
}

// Encoder writes records one at a time. Each record is handed to the
// underlying writer in a single Write call.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, buf: make([]byte, 0, Size)}
}

// Encode writes ev. A short write is reported as io.ErrShortWrite.
func (e *Encoder) Encode(ev evdev.InputEvent) error {
	buf, err := binary.Append(e.buf[:0], binary.NativeEndian, ev)
	if err != nil {
		return fmt.Errorf("encode input event: %w", err)
	}
	e.buf = buf
	n, err := e.w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}
