// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"encoding/binary"
	"fmt"
	"io"
)

// envelope is the read cursor over one BLTE envelope. Positions are
// relative to where the source was positioned when decoding started,
// so error offsets match the envelope layout regardless of where the
// envelope sits in a larger file.
type envelope struct {
	source io.ReadSeeker

	// origin is the absolute source position of the magic.
	origin int64

	// end is the absolute source position of end-of-stream.
	end int64

	// cursor is the current position relative to origin.
	cursor int64
}

// newEnvelope records the current source position as the envelope
// origin and measures the remaining length of the source.
func newEnvelope(source io.ReadSeeker) (*envelope, error) {
	origin, err := source.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &IOError{Op: "locating envelope start", Offset: 0, Err: err}
	}
	end, err := source.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "measuring source length", Offset: 0, Err: err}
	}
	if _, err := source.Seek(origin, io.SeekStart); err != nil {
		return nil, &IOError{Op: "returning to envelope start", Offset: 0, Err: err}
	}
	return &envelope{source: source, origin: origin, end: end}, nil
}

// position returns the cursor relative to the envelope origin.
func (e *envelope) position() int64 {
	return e.cursor
}

// remaining returns the number of bytes between the cursor and the
// end of the source.
func (e *envelope) remaining() int64 {
	return e.end - e.origin - e.cursor
}

// seek moves the cursor to position, relative to the envelope origin.
func (e *envelope) seek(position int64) error {
	if _, err := e.source.Seek(e.origin+position, io.SeekStart); err != nil {
		return &IOError{Op: "seeking", Offset: position, Err: err}
	}
	e.cursor = position
	return nil
}

// readFull reads exactly len(buffer) bytes. op names the field for
// error messages.
func (e *envelope) readFull(buffer []byte, op string) error {
	read, err := io.ReadFull(e.source, buffer)
	if err != nil {
		return &IOError{Op: op, Offset: e.cursor, Err: err}
	}
	e.cursor += int64(read)
	return nil
}

// readBytes allocates and reads exactly size bytes.
func (e *envelope) readBytes(size int64, op string) ([]byte, error) {
	buffer := make([]byte, size)
	if err := e.readFull(buffer, op); err != nil {
		return nil, err
	}
	return buffer, nil
}

func (e *envelope) readByte(op string) (byte, error) {
	var buffer [1]byte
	if err := e.readFull(buffer[:], op); err != nil {
		return 0, err
	}
	return buffer[0], nil
}

func (e *envelope) readUint32BE(op string) (uint32, error) {
	var buffer [4]byte
	if err := e.readFull(buffer[:], op); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buffer[:]), nil
}

// readUint24BE reads a 3-byte big-endian unsigned integer.
func (e *envelope) readUint24BE(op string) (uint32, error) {
	var buffer [3]byte
	if err := e.readFull(buffer[:], op); err != nil {
		return 0, err
	}
	return uint32(buffer[0])<<16 | uint32(buffer[1])<<8 | uint32(buffer[2]), nil
}

// chunkOp formats the operation name for reading a chunk's data.
func chunkOp(index int) string {
	return fmt.Sprintf("reading chunk %d", index)
}

// newEnvelopeAt is newEnvelope for a source already advanced to
// position within the envelope.
func newEnvelopeAt(source io.ReadSeeker, position int64) (*envelope, error) {
	env, err := newEnvelope(source)
	if err != nil {
		return nil, err
	}
	env.origin -= position
	env.cursor = position
	return env, nil
}
