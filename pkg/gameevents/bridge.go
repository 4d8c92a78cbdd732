package gameevents

import (
	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/command"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/network"
	"go.uber.org/zap"
)

// Sender is the part of the client the bridge needs. *client.Client satisfies
// it.
type Sender interface {
	Send(cmd command.Command, options network.Options)
}

type BridgeParams struct {
	Sender Sender

	// Any of the producers may be nil, in which case the bridge does not
	// forward that kind of event.
	AccessControl     *AccessControlEvents
	UtilityBuild      *UtilityBuildEvents
	CounterSideScreen *CounterSideScreenEvents

	Logger *zap.Logger
}

// Bridge turns local game events into commands for the server.
type Bridge struct {
	sender Sender
	log    *zap.Logger

	unsubscribe []func()
}

func CreateBridge(params BridgeParams) (*Bridge, error) {
	if params.Sender == nil {
		return nil, &errors.MissingFieldError{
			MessageName: "BridgeParams",
			FieldName:   "Sender",
		}
	}

	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}

	b := &Bridge{
		sender: params.Sender,
		log:    logger.With(zap.String("component", "GameEventBridge")),
	}

	if params.AccessControl != nil {
		b.unsubscribe = append(b.unsubscribe,
			params.AccessControl.OnDefaultPermissionChanged(b.onDefaultPermissionChanged),
			params.AccessControl.OnPermissionChanged(b.onPermissionChanged))
	}
	if params.UtilityBuild != nil {
		b.unsubscribe = append(b.unsubscribe, params.UtilityBuild.OnBuild(b.onBuild))
	}
	if params.CounterSideScreen != nil {
		b.unsubscribe = append(b.unsubscribe, params.CounterSideScreen.OnUpdateLogicCounter(b.onUpdateLogicCounter))
	}

	return b, nil
}

// Close stops forwarding. Safe to call more than once.
func (b *Bridge) Close() {
	for _, unsubscribe := range b.unsubscribe {
		unsubscribe()
	}
	b.unsubscribe = nil
}

func (b *Bridge) forward(cmd command.Command, options network.Options) {
	b.log.Debug("Forwarding game event", zap.Stringer("type", cmd.Type()), zap.Stringer("options", options))
	b.sender.Send(cmd, options)
}

func (b *Bridge) onDefaultPermissionChanged(args AccessControlEventArgs) {
	if args.Permission == nil {
		b.log.Warn("Default permission change without a permission, ignoring", zap.Any("target", args.Target))
		return
	}
	b.forward(&command.ChangeDefaultPermission{
		Target:     args.Target,
		Permission: *args.Permission,
	}, network.OptionsNone)
}

func (b *Bridge) onPermissionChanged(args AccessControlEventArgs) {
	if args.Minion == nil {
		b.log.Warn("Minion permission change without a minion, ignoring", zap.Any("target", args.Target))
		return
	}

	cmd := &command.ChangeMinionPermission{
		Target:  args.Target,
		Minion:  *args.Minion,
		Cleared: args.Permission == nil,
	}
	if args.Permission != nil {
		cmd.Permission = *args.Permission
	}
	b.forward(cmd, network.OptionsNone)
}

func (b *Bridge) onBuild(args UtilityBuildEventArgs) {
	b.forward(&command.BuildUtilityPath{
		PrefabId:  args.PrefabId,
		Materials: append([]string{}, args.SelectedElements...),
		Path:      append([]command.PathNode{}, args.Path...),
		Priority:  args.Priority,
	}, network.OptionsNone)
}

// Counter edits are state snapshots, so only the newest one matters.
func (b *Bridge) onUpdateLogicCounter(state LogicCounterState) {
	b.forward(&command.UpdateLogicCounter{
		Target:       state.Target,
		CurrentCount: state.CurrentCount,
		MaxCount:     state.MaxCount,
		AdvancedMode: state.AdvancedMode,
	}, network.OptionsLatestOnly)
}
