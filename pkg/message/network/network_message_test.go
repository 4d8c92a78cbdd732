package network

import (
	"encoding/binary"
	goerrs "errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCommands() []command.Command {
	return []command.Command{
		&command.UpdatePlayerCursorPosition{Player: "k3Fz9q", X: 12.5, Y: -3.25},
		&command.ChangeDefaultPermission{
			Target:     command.GridReference{Cell: 1024, Layer: 1},
			Permission: command.Permission_GoRight,
		},
		&command.ChangeMinionPermission{
			Target:     command.GridReference{Cell: 77, Layer: 1},
			Minion:     objects.Id{Owner: 2, Serial: 1 << 40},
			Permission: command.Permission_Neither,
		},
		&command.ChangeMinionPermission{
			Target:  command.GridReference{Cell: 77, Layer: 1},
			Minion:  objects.Id{Owner: 0, Serial: 5},
			Cleared: true,
		},
		&command.BuildUtilityPath{
			PrefabId:  "LiquidConduit",
			Materials: []string{"Copper", "Granite"},
			Path: []command.PathNode{
				{Cell: 100, Valid: true},
				{Cell: 101, Valid: true},
				{Cell: 357, Valid: false},
			},
			Priority: command.PrioritySetting{Class: 1, Value: 5},
		},
		&command.BuildUtilityPath{PrefabId: "Wire"},
		&command.UpdateLogicCounter{
			Target:       objects.Id{Owner: 0, Serial: 9001},
			CurrentCount: 3,
			MaxCount:     10,
			AdvancedMode: true,
		},
	}
}

func allOptions() []Options {
	return []Options{
		OptionsNone,
		OptionsUnreliable,
		OptionsLatestOnly | OptionsSkipHost,
		Options(0xF0),
	}
}

func TestRoundTrip(t *testing.T) {
	s := CreateSerializer(0, 0)

	for _, cmd := range allCommands() {
		for _, options := range allOptions() {
			msg := &NetworkMessage{Command: cmd, Options: options}

			data, err := s.Encode(msg)
			require.NoError(t, err)

			decoded, err := s.Decode(data)
			require.NoError(t, err, "type=%s options=%s", cmd.Type(), options)

			if diff := cmp.Diff(msg, decoded, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch for %s (-want +got):\n%s", cmd.Type(), diff)
			}
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	s := CreateSerializer(0, 0)
	msg := &NetworkMessage{Command: allCommands()[4], Options: OptionsUnreliable}

	first, err := s.Encode(msg)
	require.NoError(t, err)
	second, err := s.Encode(msg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncodeWritesHeader(t *testing.T) {
	s := CreateSerializer(0x01020304, 3)
	data, err := s.Encode(&NetworkMessage{
		Command: &command.ChangeDefaultPermission{},
		Options: OptionsLatestOnly,
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(0x01020304), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint8(3), data[4])
	assert.Equal(t, uint8(OptionsLatestOnly), data[5])
	assert.Equal(t, uint16(command.Type_ChangeDefaultPermission), binary.LittleEndian.Uint16(data[6:8]))
	assert.Equal(t, uint32(len(data)-HeaderSize), binary.LittleEndian.Uint32(data[8:12]))
}

func TestEncodeRejectsMissingCommand(t *testing.T) {
	s := CreateSerializer(0, 0)

	_, err := s.Encode(&NetworkMessage{})

	var missing *errors.MissingFieldError
	assert.True(t, goerrs.As(err, &missing))
}

func TestEncodeRejectsOversizeFields(t *testing.T) {
	s := CreateSerializer(0, 0)
	long := strings.Repeat("a", math.MaxUint16+1)

	tests := []struct {
		name  string
		cmd   command.Command
		field string
	}{
		{
			name:  "player name",
			cmd:   &command.UpdatePlayerCursorPosition{Player: long},
			field: "Player",
		},
		{
			name:  "prefab id",
			cmd:   &command.BuildUtilityPath{PrefabId: long},
			field: "PrefabId",
		},
		{
			name:  "material count",
			cmd:   &command.BuildUtilityPath{Materials: make([]string, math.MaxUint16+1)},
			field: "Materials",
		},
		{
			name:  "one material",
			cmd:   &command.BuildUtilityPath{Materials: []string{"Copper", long}},
			field: "Materials",
		},
		{
			name:  "path length",
			cmd:   &command.BuildUtilityPath{Path: make([]command.PathNode, 70000)},
			field: "Path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := s.Encode(&NetworkMessage{Command: tt.cmd})
			assert.Nil(t, data)

			var overflow *errors.Overflow
			require.True(t, goerrs.As(err, &overflow), "got %v", err)
			assert.Equal(t, tt.cmd.Type().String(), overflow.MessageName)
			assert.Equal(t, tt.field, overflow.FieldName)
			assert.Equal(t, math.MaxUint16, overflow.MaximumSize)
			assert.Greater(t, overflow.Size, overflow.MaximumSize)
		})
	}
}

func TestLongestFieldsRoundTrip(t *testing.T) {
	s := CreateSerializer(0, 0)
	// 1 + 2*32767 bytes: the longest multibyte string that still fits.
	player := "a" + strings.Repeat("é", (math.MaxUint16-1)/2)
	require.Equal(t, math.MaxUint16, len(player))

	msg := &NetworkMessage{Command: &command.BuildUtilityPath{
		PrefabId:  player,
		Materials: make([]string, math.MaxUint16),
		Path:      make([]command.PathNode, math.MaxUint16),
	}}

	data, err := s.Encode(msg)
	require.NoError(t, err)
	decoded, err := s.Decode(data)
	require.NoError(t, err)

	got := decoded.Command.(*command.BuildUtilityPath)
	assert.Equal(t, player, got.PrefabId)
	assert.Len(t, got.Materials, math.MaxUint16)
	assert.Len(t, got.Path, math.MaxUint16)
}

func encodeOrFail(t *testing.T, s *Serializer, cmd command.Command) []byte {
	t.Helper()
	data, err := s.Encode(&NetworkMessage{Command: cmd})
	require.NoError(t, err)
	return data
}

func TestDecodeRejectsGarbage(t *testing.T) {
	s := CreateSerializer(0, 0)
	valid := encodeOrFail(t, s, allCommands()[0])

	unknownType := append([]byte{}, valid...)
	binary.LittleEndian.PutUint16(unknownType[6:8], 0x7777)

	zeroType := append([]byte{}, valid...)
	binary.LittleEndian.PutUint16(zeroType[6:8], uint16(command.Type_NONE))

	wrongMagic := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(wrongMagic[0:4], 0xDEADBEEF)

	wrongVersion := append([]byte{}, valid...)
	wrongVersion[4] = DefaultVersion + 1

	longerThanDeclared := append(append([]byte{}, valid...), 0x00)

	declaredTooLong := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(declaredTooLong[8:12], uint32(len(valid)))

	tests := []struct {
		name  string
		data  []byte
		cause any
	}{
		{"empty", []byte{}, new(*errors.Underflow)},
		{"nil", nil, new(*errors.Underflow)},
		{"truncated header", valid[:7], new(*errors.Underflow)},
		{"unknown discriminator", unknownType, new(*errors.InvalidEnumValue)},
		{"unassigned zero discriminator", zeroType, new(*errors.InvalidEnumValue)},
		{"wrong magic number", wrongMagic, new(*errors.InvalidHeaderVersion)},
		{"wrong version", wrongVersion, new(*errors.InvalidHeaderVersion)},
		{"trailing bytes", longerThanDeclared, new(*errors.PayloadSizeMismatch)},
		{"declared length too long", declaredTooLong, new(*errors.PayloadSizeMismatch)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := s.Decode(tt.data)
			assert.Nil(t, msg)

			var decodeErr *errors.DecodeError
			require.True(t, goerrs.As(err, &decodeErr), "expected DecodeError, got %v", err)
			assert.True(t, goerrs.As(err, tt.cause), "unexpected cause %v", decodeErr.Cause)
		})
	}
}

func TestDecodeRejectsInconsistentPayload(t *testing.T) {
	s := CreateSerializer(0, 0)

	// Header length agrees with the bytes present, but the payload is shorter
	// than the command needs.
	truncated := encodeOrFail(t, s, allCommands()[2])
	truncated = truncated[:len(truncated)-3]
	binary.LittleEndian.PutUint32(truncated[8:12], uint32(len(truncated)-HeaderSize))

	_, err := s.Decode(truncated)
	var underflow *errors.Underflow
	assert.True(t, goerrs.As(err, &underflow))

	// Payload longer than the command consumes.
	padded := encodeOrFail(t, s, allCommands()[1])
	padded = append(padded, 0xAA, 0xBB)
	binary.LittleEndian.PutUint32(padded[8:12], uint32(len(padded)-HeaderSize))

	_, err = s.Decode(padded)
	var mismatch *errors.PayloadSizeMismatch
	assert.True(t, goerrs.As(err, &mismatch))
}

func TestDecodeRejectsInvalidFieldValues(t *testing.T) {
	s := CreateSerializer(0, 0)

	badBool := encodeOrFail(t, s, &command.UpdateLogicCounter{AdvancedMode: true})
	badBool[len(badBool)-1] = 0x02

	badPermission := encodeOrFail(t, s, &command.ChangeDefaultPermission{})
	badPermission[len(badPermission)-1] = 0x09

	for _, data := range [][]byte{badBool, badPermission} {
		_, err := s.Decode(data)

		var invalid *errors.InvalidEnumValue
		assert.True(t, goerrs.As(err, &invalid), "unexpected error %v", err)
	}
}

func TestOptions(t *testing.T) {
	o := OptionsUnreliable | OptionsSkipHost
	assert.True(t, o.Has(OptionsUnreliable))
	assert.False(t, o.Has(OptionsLatestOnly))
	assert.Equal(t, "Unreliable|SkipHost", o.String())
	assert.Equal(t, "None", OptionsNone.String())
	assert.Equal(t, "LatestOnly|0x80", (OptionsLatestOnly | Options(0x80)).String())
}
