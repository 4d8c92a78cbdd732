package gameevents

import "sync/atomic"

// PatchControl gates every interception hook. The host disables it while it
// applies commands that arrived from the network, so replaying a remote change
// does not raise a local event and echo it back.
type PatchControl struct {
	disabled atomic.Bool
}

func CreatePatchControl() *PatchControl {
	return &PatchControl{}
}

func (p *PatchControl) Enable() {
	p.disabled.Store(false)
}

func (p *PatchControl) Disable() {
	p.disabled.Store(true)
}

func (p *PatchControl) Enabled() bool {
	return !p.disabled.Load()
}

// RunIfEnabled calls fn unless hooks are disabled, and reports whether it ran.
func (p *PatchControl) RunIfEnabled(fn func()) bool {
	if p.disabled.Load() {
		return false
	}
	fn()
	return true
}

// RunDisabled calls fn with hooks disabled, restoring the previous setting
// afterwards.
func (p *PatchControl) RunDisabled(fn func()) {
	wasDisabled := p.disabled.Swap(true)
	defer p.disabled.Store(wasDisabled)
	fn()
}
