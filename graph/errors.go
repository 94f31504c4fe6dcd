package graph

import "errors"

// ErrRepositoryRequired is returned when a nil document repository is
// passed to NewBuilder.
var ErrRepositoryRequired = errors.New("document repository is required")
