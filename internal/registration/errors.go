package registration

import "errors"

var (
	// ErrArtifactNotFound indicates an expected registration artifact is
	// absent: no private archive element, an empty element, or no .INI.XVI
	// member. Common and non-fatal; the session simply has no registration.
	ErrArtifactNotFound = errors.New("registration artifact not found")

	// ErrCorruptArchive indicates the private element bytes do not parse as
	// a ZIP container.
	ErrCorruptArchive = errors.New("corrupt embedded archive")

	// ErrMalformedMatrix indicates a matrix or alignment field with the
	// wrong value count or non-numeric tokens.
	ErrMalformedMatrix = errors.New("malformed matrix field")
)
