package focus

import "errors"

var (
	// ErrNoFocusableTarget is logged when a trap activates over a
	// scope with nothing to focus. The trap still activates; the
	// initial focus move is skipped.
	ErrNoFocusableTarget = errors.New("focus: no focusable target in scope")

	// ErrOrphanedScope is logged when a trap is removed from a
	// registry it is not registered with. Teardown paths stay safe
	// against double cleanup.
	ErrOrphanedScope = errors.New("focus: scope not present in registry")

	// ErrDuplicateRoot is logged when a second trap is activated for
	// a root that already has an active trap.
	ErrDuplicateRoot = errors.New("focus: root already has an active trap")
)
