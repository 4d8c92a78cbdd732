package network

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
)

const (
	DefaultMagicNumber uint32 = 0x4D504C4E
	DefaultVersion     uint8  = 1

	HeaderSize = 12
)

// Options is an open bit set that modifies how a single command is delivered.
// Bits without a name here are carried through the codec untouched.
type Options uint8

const (
	OptionsNone Options = 0

	OptionsUnreliable Options = 1 << 0
	OptionsLatestOnly Options = 1 << 1
	OptionsSkipHost   Options = 1 << 2
)

func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

func (o Options) String() string {
	if o == OptionsNone {
		return "None"
	}

	names := []string{}
	rest := o
	for _, named := range []struct {
		flag Options
		name string
	}{
		{OptionsUnreliable, "Unreliable"},
		{OptionsLatestOnly, "LatestOnly"},
		{OptionsSkipHost, "SkipHost"},
	} {
		if o.Has(named.flag) {
			names = append(names, named.name)
			rest &^= named.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(names, "|")
}

type NetworkMessage struct {
	Command command.Command
	Options Options
}

// Serializer frames a NetworkMessage as
//
//	magic(4) | version(1) | options(1) | command type(2) | payload length(4) | payload
//
// with every integer little endian.
type Serializer struct {
	MagicNumber uint32
	Version     uint8
}

func CreateSerializer(magicNumber uint32, version uint8) *Serializer {
	if magicNumber == 0 {
		magicNumber = DefaultMagicNumber
	}
	if version == 0 {
		version = DefaultVersion
	}

	return &Serializer{
		MagicNumber: magicNumber,
		Version:     version,
	}
}

func (s *Serializer) Encode(msg *NetworkMessage) ([]byte, error) {
	if msg == nil || msg.Command == nil {
		return nil, &errors.MissingFieldError{
			MessageName: "NetworkMessage",
			FieldName:   "Command",
		}
	}

	payload, err := command.Encode(msg.Command)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(payload))
	out = binary.LittleEndian.AppendUint32(out, s.MagicNumber)
	out = append(out, s.Version, uint8(msg.Options))
	out = binary.LittleEndian.AppendUint16(out, uint16(msg.Command.Type()))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))

	return append(out, payload...), nil
}

// Decode never panics; every failure comes back as *errors.DecodeError.
func (s *Serializer) Decode(data []byte) (msg *NetworkMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg = nil
			err = &errors.DecodeError{Cause: fmt.Errorf("deformed message: %v", r)}
		}
	}()

	msg, err = s.decode(data)
	if err != nil {
		return nil, &errors.DecodeError{Cause: err}
	}
	return msg, nil
}

func (s *Serializer) decode(data []byte) (*NetworkMessage, error) {
	if len(data) < HeaderSize {
		return nil, &errors.Underflow{
			MessageName: "NetworkMessage",
			MsgSize:     len(data),
			MinimumSize: HeaderSize,
		}
	}

	magicNumber := binary.LittleEndian.Uint32(data[0:4])
	version := data[4]
	if magicNumber != s.MagicNumber || version != s.Version {
		return nil, &errors.InvalidHeaderVersion{
			ExpectedMagicNumber: s.MagicNumber,
			ExpectedVersion:     s.Version,
			ActualMagicNumber:   magicNumber,
			ActualVersion:       version,
		}
	}

	options := Options(data[5])
	cmdType := command.Type(binary.LittleEndian.Uint16(data[6:8]))
	if !cmdType.IsKnown() {
		return nil, &errors.InvalidEnumValue{
			EnumName: "command.Type",
			IntValue: int(cmdType),
		}
	}

	payloadLength := int(binary.LittleEndian.Uint32(data[8:12]))
	payload := data[HeaderSize:]
	if payloadLength != len(payload) {
		return nil, &errors.PayloadSizeMismatch{
			MessageName:  cmdType.String(),
			DeclaredSize: payloadLength,
			ActualSize:   len(payload),
		}
	}

	cmd, err := command.Decode(cmdType, payload)
	if err != nil {
		return nil, err
	}

	return &NetworkMessage{
		Command: cmd,
		Options: options,
	}, nil
}
