package sim

// HookPos names a point at which hooks run.
type HookPos struct {
	Name string
}

// Hook positions of the engine.
var (
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &HookPos{Name: "AfterEvent"}
)

// HookCtx describes the site a hook runs at. Item is the event being
// handled.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
}

// A Hook observes an engine without changing it.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// Hookable accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase keeps a list of hooks for embedding types.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// InvokeHook runs every registered hook in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
