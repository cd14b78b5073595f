package core

import "context"

// runCompensated executes do and, when it fails, runs undo to restore the
// state written before the call. The primary error is always returned; a
// failure of the compensation itself is reported to onUndoErr (for logging)
// and never masks the primary error.
func runCompensated(ctx context.Context, do func(context.Context) error, undo func(context.Context) error, onUndoErr func(error)) error {
	err := do(ctx)
	if err == nil {
		return nil
	}
	if undo != nil {
		if undoErr := undo(ctx); undoErr != nil && onUndoErr != nil {
			onUndoErr(undoErr)
		}
	}
	return err
}
