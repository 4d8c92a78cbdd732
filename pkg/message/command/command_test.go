package command

import (
	goerrs "errors"
	"testing"

	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "UpdatePlayerCursorPosition", Type_UpdatePlayerCursorPosition.String())
	assert.Equal(t, "UpdateLogicCounter", (&UpdateLogicCounter{}).Type().String())
	assert.Equal(t, "Unknown", Type(999).String())

	assert.True(t, Type_BuildUtilityPath.IsKnown())
	assert.False(t, Type_NONE.IsKnown())
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(Type(42), []byte{})

	var invalid *errors.InvalidEnumValue
	require.True(t, goerrs.As(err, &invalid))
	assert.Equal(t, 42, invalid.IntValue)
}

func TestEncodeNilCommand(t *testing.T) {
	_, err := Encode(nil)

	var missing *errors.MissingFieldError
	assert.True(t, goerrs.As(err, &missing))
}

func TestCursorPayloadLayout(t *testing.T) {
	payload, err := Encode(&UpdatePlayerCursorPosition{Player: "ab", X: 1, Y: 2})
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x02, 0x00, 'a', 'b',
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x00, 0x40,
	}, payload)
}

func TestDecodeStopsAtFirstUnderflow(t *testing.T) {
	// Material count claims 3 entries but the payload ends after the prefab id.
	payload := []byte{0x01, 0x00, 'X', 0x03, 0x00}

	_, err := Decode(Type_BuildUtilityPath, payload)

	var underflow *errors.Underflow
	require.True(t, goerrs.As(err, &underflow))
	assert.Equal(t, "BuildUtilityPath", underflow.MessageName)
}
