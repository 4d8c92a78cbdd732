package gameevents

import (
	"github.com/sessamekesh/multiplayer-lan-client/pkg/handlers"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
)

type UtilityBuildEventArgs struct {
	PrefabId         string
	SelectedElements []string
	Path             []command.PathNode
	Priority         command.PrioritySetting
}

type UtilityBuildEvents struct {
	patches *PatchControl
	build   handlers.List[UtilityBuildEventArgs]
}

func CreateUtilityBuildEvents(patches *PatchControl) *UtilityBuildEvents {
	return &UtilityBuildEvents{
		patches: patches,
	}
}

func (e *UtilityBuildEvents) OnBuild(fn func(args UtilityBuildEventArgs)) func() {
	return e.build.Add(fn)
}

// BuildPath is called by the host when the player commits a pipe or wire
// path. Paths with fewer than two nodes place nothing and are not reported.
func (e *UtilityBuildEvents) BuildPath(args UtilityBuildEventArgs) {
	if len(args.Path) < 2 {
		return
	}
	e.patches.RunIfEnabled(func() {
		e.build.Notify(args, nil)
	})
}
