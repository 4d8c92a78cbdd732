package gameevents

import (
	"github.com/sessamekesh/multiplayer-lan-client/pkg/handlers"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/objects"
)

// AccessControlEventArgs describes one change to a door's access rules.
// Minion is nil for the door's default permission. Permission is nil when a
// minion's override was cleared.
type AccessControlEventArgs struct {
	Target     command.GridReference
	Minion     *objects.Id
	Permission *command.Permission
}

type AccessControlEvents struct {
	patches *PatchControl

	defaultPermissionChanged handlers.List[AccessControlEventArgs]
	permissionChanged        handlers.List[AccessControlEventArgs]
}

func CreateAccessControlEvents(patches *PatchControl) *AccessControlEvents {
	return &AccessControlEvents{
		patches: patches,
	}
}

func (e *AccessControlEvents) OnDefaultPermissionChanged(fn func(args AccessControlEventArgs)) func() {
	return e.defaultPermissionChanged.Add(fn)
}

func (e *AccessControlEvents) OnPermissionChanged(fn func(args AccessControlEventArgs)) func() {
	return e.permissionChanged.Add(fn)
}

// SetDefaultPermission is called by the host after a door's default
// permission changed locally.
func (e *AccessControlEvents) SetDefaultPermission(target command.GridReference, permission command.Permission) {
	e.patches.RunIfEnabled(func() {
		e.defaultPermissionChanged.Notify(AccessControlEventArgs{
			Target:     target,
			Permission: &permission,
		}, nil)
	})
}

func (e *AccessControlEvents) SetPermission(target command.GridReference, minion objects.Id, permission command.Permission) {
	e.patches.RunIfEnabled(func() {
		e.permissionChanged.Notify(AccessControlEventArgs{
			Target:     target,
			Minion:     &minion,
			Permission: &permission,
		}, nil)
	})
}

func (e *AccessControlEvents) ClearPermission(target command.GridReference, minion objects.Id) {
	e.patches.RunIfEnabled(func() {
		e.permissionChanged.Notify(AccessControlEventArgs{
			Target: target,
			Minion: &minion,
		}, nil)
	})
}
