package editor

import "errors"

var (
	// ErrStaleReference is returned internally when an image id no longer
	// resolves to an element of the surface. Public operations treat it as a
	// no-op.
	ErrStaleReference  = errors.New("image no longer on the surface")
	ErrNoDrag          = errors.New("no image selected to drag")
	ErrUnknownEdge     = errors.New("unknown handle edge")
	ErrInvalidPreset   = errors.New("invalid size preset")
	ErrInvalidPosition = errors.New("invalid image position")
	ErrUnknownAction   = errors.New("unknown toolbar action")
	ErrDuplicateImage  = errors.New("image id already on the surface")
	ErrSessionClosed   = errors.New("editing session closed")
	ErrSessionNotFound = errors.New("editing session not found")
)
