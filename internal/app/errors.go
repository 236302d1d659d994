package app

import "errors"

var ErrMissingDependencies = errors.New("missing dependencies")
