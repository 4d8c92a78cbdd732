package command

import (
	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/objects"
)

// Permission mirrors the host's door access permission values.
type Permission uint8

const (
	Permission_Both Permission = iota
	Permission_GoLeft
	Permission_GoRight
	Permission_Neither
)

func (p Permission) String() string {
	switch p {
	case Permission_Both:
		return "Both"
	case Permission_GoLeft:
		return "GoLeft"
	case Permission_GoRight:
		return "GoRight"
	case Permission_Neither:
		return "Neither"
	}
	return "Unknown"
}

func readPermission(r *payloadReader) Permission {
	v := r.readUint8()
	if r.err == nil && v > uint8(Permission_Neither) {
		r.err = &errors.InvalidEnumValue{
			EnumName: "command.Permission",
			IntValue: int(v),
		}
	}
	return Permission(v)
}

// GridReference addresses a building by the cell and layer it occupies.
type GridReference struct {
	Cell  int32
	Layer int32
}

func writeGridReference(w *payloadWriter, g GridReference) {
	w.writeInt32(g.Cell)
	w.writeInt32(g.Layer)
}

func readGridReference(r *payloadReader) GridReference {
	cell := r.readInt32()
	layer := r.readInt32()
	return GridReference{Cell: cell, Layer: layer}
}

//
// UpdatePlayerCursorPosition

type UpdatePlayerCursorPosition struct {
	Player string
	X      float32
	Y      float32
}

func (c *UpdatePlayerCursorPosition) Type() Type { return Type_UpdatePlayerCursorPosition }
func (c *UpdatePlayerCursorPosition) sealed()    {}

func (c *UpdatePlayerCursorPosition) AppendPayload(out []byte) ([]byte, error) {
	w := &payloadWriter{name: "UpdatePlayerCursorPosition", buf: out}
	w.writeString("Player", c.Player)
	w.writeFloat32(c.X)
	w.writeFloat32(c.Y)
	return w.finish()
}

func decodeUpdatePlayerCursorPosition(r *payloadReader) Command {
	player := r.readString()
	x := r.readFloat32()
	y := r.readFloat32()
	return &UpdatePlayerCursorPosition{Player: player, X: x, Y: y}
}

//
// ChangeDefaultPermission

type ChangeDefaultPermission struct {
	Target     GridReference
	Permission Permission
}

func (c *ChangeDefaultPermission) Type() Type { return Type_ChangeDefaultPermission }
func (c *ChangeDefaultPermission) sealed()    {}

func (c *ChangeDefaultPermission) AppendPayload(out []byte) ([]byte, error) {
	w := &payloadWriter{name: "ChangeDefaultPermission", buf: out}
	writeGridReference(w, c.Target)
	w.writeUint8(uint8(c.Permission))
	return w.finish()
}

func decodeChangeDefaultPermission(r *payloadReader) Command {
	target := readGridReference(r)
	permission := readPermission(r)
	return &ChangeDefaultPermission{Target: target, Permission: permission}
}

//
// ChangeMinionPermission

// ChangeMinionPermission sets or, when Cleared is true, removes the
// permission override of one minion on one door.
type ChangeMinionPermission struct {
	Target     GridReference
	Minion     objects.Id
	Permission Permission
	Cleared    bool
}

func (c *ChangeMinionPermission) Type() Type { return Type_ChangeMinionPermission }
func (c *ChangeMinionPermission) sealed()    {}

func (c *ChangeMinionPermission) AppendPayload(out []byte) ([]byte, error) {
	w := &payloadWriter{name: "ChangeMinionPermission", buf: out}
	writeGridReference(w, c.Target)
	w.writeId(c.Minion)
	w.writeUint8(uint8(c.Permission))
	w.writeBool(c.Cleared)
	return w.finish()
}

func decodeChangeMinionPermission(r *payloadReader) Command {
	target := readGridReference(r)
	minion := r.readId()
	permission := readPermission(r)
	cleared := r.readBool()
	return &ChangeMinionPermission{
		Target:     target,
		Minion:     minion,
		Permission: permission,
		Cleared:    cleared,
	}
}

//
// BuildUtilityPath

type PathNode struct {
	Cell  int32
	Valid bool
}

type PrioritySetting struct {
	Class uint8
	Value int32
}

type BuildUtilityPath struct {
	PrefabId  string
	Materials []string
	Path      []PathNode
	Priority  PrioritySetting
}

func (c *BuildUtilityPath) Type() Type { return Type_BuildUtilityPath }
func (c *BuildUtilityPath) sealed()    {}

func (c *BuildUtilityPath) AppendPayload(out []byte) ([]byte, error) {
	w := &payloadWriter{name: "BuildUtilityPath", buf: out}
	w.writeString("PrefabId", c.PrefabId)

	if w.writeCount("Materials", len(c.Materials)) {
		for _, material := range c.Materials {
			w.writeString("Materials", material)
		}
	}

	if w.writeCount("Path", len(c.Path)) {
		for _, node := range c.Path {
			w.writeInt32(node.Cell)
			w.writeBool(node.Valid)
		}
	}

	w.writeUint8(c.Priority.Class)
	w.writeInt32(c.Priority.Value)
	return w.finish()
}

func decodeBuildUtilityPath(r *payloadReader) Command {
	prefabId := r.readString()

	materialCount := int(r.readUint16())
	materials := make([]string, 0, materialCount)
	for i := 0; i < materialCount && r.err == nil; i++ {
		materials = append(materials, r.readString())
	}

	nodeCount := int(r.readUint16())
	path := make([]PathNode, 0, nodeCount)
	for i := 0; i < nodeCount && r.err == nil; i++ {
		cell := r.readInt32()
		valid := r.readBool()
		path = append(path, PathNode{Cell: cell, Valid: valid})
	}

	class := r.readUint8()
	value := r.readInt32()

	return &BuildUtilityPath{
		PrefabId:  prefabId,
		Materials: materials,
		Path:      path,
		Priority:  PrioritySetting{Class: class, Value: value},
	}
}

//
// UpdateLogicCounter

type UpdateLogicCounter struct {
	Target       objects.Id
	CurrentCount int32
	MaxCount     int32
	AdvancedMode bool
}

func (c *UpdateLogicCounter) Type() Type { return Type_UpdateLogicCounter }
func (c *UpdateLogicCounter) sealed()    {}

func (c *UpdateLogicCounter) AppendPayload(out []byte) ([]byte, error) {
	w := &payloadWriter{name: "UpdateLogicCounter", buf: out}
	w.writeId(c.Target)
	w.writeInt32(c.CurrentCount)
	w.writeInt32(c.MaxCount)
	w.writeBool(c.AdvancedMode)
	return w.finish()
}

func decodeUpdateLogicCounter(r *payloadReader) Command {
	target := r.readId()
	current := r.readInt32()
	maxCount := r.readInt32()
	advanced := r.readBool()
	return &UpdateLogicCounter{
		Target:       target,
		CurrentCount: current,
		MaxCount:     maxCount,
		AdvancedMode: advanced,
	}
}
