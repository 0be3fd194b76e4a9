package tools

import "errors"

var (
	// ErrUnknownTool is returned by Registry.Resolve when the requested tool
	// is not registered. The orchestration layer recovers by feeding an
	// error payload back to the model instead of failing the turn.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBadArgument marks tool input that does not satisfy the tool's
	// schema. Recovered the same way as ErrUnknownTool.
	ErrBadArgument = errors.New("invalid tool argument")
)
