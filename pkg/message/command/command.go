package command

import (
	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
)

// Type is the wire discriminator of a command. Values are never reused.
type Type uint16

const (
	Type_NONE                       Type = 0
	Type_UpdatePlayerCursorPosition Type = 1
	Type_ChangeDefaultPermission    Type = 2
	Type_ChangeMinionPermission     Type = 3
	Type_BuildUtilityPath           Type = 4
	Type_UpdateLogicCounter         Type = 5
)

// Command is one application-level action. The set of implementations is
// closed: only this package can add one, and each must be listed in decoders.
type Command interface {
	Type() Type
	// AppendPayload appends the encoded fields to out. It fails with an
	// *errors.Overflow when a string or slice is too long for its prefix.
	AppendPayload(out []byte) ([]byte, error)

	sealed()
}

type decoder struct {
	name   string
	decode func(r *payloadReader) Command
}

var decoders = map[Type]decoder{
	Type_UpdatePlayerCursorPosition: {
		name:   "UpdatePlayerCursorPosition",
		decode: decodeUpdatePlayerCursorPosition,
	},
	Type_ChangeDefaultPermission: {
		name:   "ChangeDefaultPermission",
		decode: decodeChangeDefaultPermission,
	},
	Type_ChangeMinionPermission: {
		name:   "ChangeMinionPermission",
		decode: decodeChangeMinionPermission,
	},
	Type_BuildUtilityPath: {
		name:   "BuildUtilityPath",
		decode: decodeBuildUtilityPath,
	},
	Type_UpdateLogicCounter: {
		name:   "UpdateLogicCounter",
		decode: decodeUpdateLogicCounter,
	},
}

func (t Type) String() string {
	if d, has := decoders[t]; has {
		return d.name
	}
	return "Unknown"
}

func (t Type) IsKnown() bool {
	_, has := decoders[t]
	return has
}

// Encode returns the payload bytes of cmd, without any envelope. Oversize
// fields are rejected, never truncated.
func Encode(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, &errors.MissingFieldError{
			MessageName: "Command",
			FieldName:   "Command",
		}
	}
	return cmd.AppendPayload([]byte{})
}

// Decode rebuilds a command of type t from its payload. The payload must be
// consumed exactly.
func Decode(t Type, payload []byte) (Command, error) {
	d, has := decoders[t]
	if !has {
		return nil, &errors.InvalidEnumValue{
			EnumName: "command.Type",
			IntValue: int(t),
		}
	}

	r := &payloadReader{
		name: d.name,
		buf:  payload,
	}
	cmd := d.decode(r)
	if err := r.finish(); err != nil {
		return nil, err
	}
	return cmd, nil
}
