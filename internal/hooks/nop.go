// Package hooks provides default lifecycle hooks.
package hooks

import (
	"context"

	"github.com/arloliu/collective/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.Phase, types.Phase) error = (*NopHooks)(nil).OnPhaseChanged
	_ func(context.Context, types.Identity, int) error       = (*NopHooks)(nil).OnLocalResult
	_ func(context.Context, error) error                     = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnPhaseChanged: h.OnPhaseChanged,
		OnLocalResult:  h.OnLocalResult,
		OnError:        h.OnError,
	}
}

// Fill returns a copy of hooks with every nil callback replaced by a no-op.
func Fill(hooks *types.Hooks) types.Hooks {
	out := NewNop()
	if hooks == nil {
		return out
	}
	if hooks.OnPhaseChanged != nil {
		out.OnPhaseChanged = hooks.OnPhaseChanged
	}
	if hooks.OnLocalResult != nil {
		out.OnLocalResult = hooks.OnLocalResult
	}
	if hooks.OnError != nil {
		out.OnError = hooks.OnError
	}

	return out
}

// OnPhaseChanged is a no-op implementation.
func (h *NopHooks) OnPhaseChanged(_ context.Context, _, _ types.Phase) error {
	return nil
}

// OnLocalResult is a no-op implementation.
func (h *NopHooks) OnLocalResult(_ context.Context, _ types.Identity, _ int) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
