package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxOutboundSize is Chrome's limit for messages sent to the browser.
	MaxOutboundSize = 1024 * 1024

	// MaxInboundSize bounds messages read from the browser.
	MaxInboundSize = 64 * 1024 * 1024
)

var (
	// ErrMessageTooLarge is returned when a message exceeds its size limit.
	ErrMessageTooLarge = errors.New("native message too large")

	// ErrEmptyMessage is returned for zero-length frames.
	ErrEmptyMessage = errors.New("empty native message")
)

// ReadMessage reads one framed message. It returns io.EOF when the browser
// closed the pipe between messages.
func ReadMessage(r io.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated message header: %w", err)
		}
		return nil, err
	}
	if size == 0 {
		return nil, ErrEmptyMessage
	}
	if size > MaxInboundSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("truncated message body: %w", err)
	}
	return buf, nil
}

// WriteMessage encodes v as JSON and writes it as one frame.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if len(data) > MaxOutboundSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(data))
	}

	frame := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(frame, uint32(len(data))) //nolint:gosec // bounded by MaxOutboundSize
	copy(frame[4:], data)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}
