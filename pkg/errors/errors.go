package errors

import "fmt"

type Underflow struct {
	MessageName string
	MsgSize     int
	MinimumSize int
}

func (e *Underflow) Error() string {
	return fmt.Sprintf("Message parsing underflowed (type=%s), provided %d bytes, needed at least %d", e.MessageName, e.MsgSize, e.MinimumSize)
}

type InvalidEnumValue struct {
	EnumName string
	IntValue int
}

func (e *InvalidEnumValue) Error() string {
	return fmt.Sprintf("Invalid enum value=%d (enum: %s)", e.IntValue, e.EnumName)
}

type InvalidHeaderVersion struct {
	ExpectedMagicNumber uint32
	ActualMagicNumber   uint32
	ExpectedVersion     uint8
	ActualVersion       uint8
}

func (e *InvalidHeaderVersion) Error() string {
	return fmt.Sprintf("Invalid header: expected MagicNumber=%d, got MagicNumber=%d. Expected version %d, got %d", e.ExpectedMagicNumber, e.ActualMagicNumber, e.ExpectedVersion, e.ActualVersion)
}

// PayloadSizeMismatch is returned when the payload length declared in a header
// disagrees with the bytes present, or a decoder leaves bytes unread.
type PayloadSizeMismatch struct {
	MessageName  string
	DeclaredSize int
	ActualSize   int
}

func (e *PayloadSizeMismatch) Error() string {
	return fmt.Sprintf("Payload size mismatch (type=%s), declared %d bytes, got %d", e.MessageName, e.DeclaredSize, e.ActualSize)
}

// Overflow is returned when a field is too large for its length prefix.
type Overflow struct {
	MessageName string
	FieldName   string
	Size        int
	MaximumSize int
}

func (e *Overflow) Error() string {
	return fmt.Sprintf("Field %s of message type %s is too large, %d exceeds the maximum of %d", e.FieldName, e.MessageName, e.Size, e.MaximumSize)
}

type MissingFieldError struct {
	MessageName string
	FieldName   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing field %s in message type %s", e.FieldName, e.MessageName)
}

// DecodeError wraps every failure produced while turning wire bytes back into
// a message, so callers can test for one type regardless of the cause.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to decode network message: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
