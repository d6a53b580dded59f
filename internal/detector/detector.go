package detector

import "context"

// Detector is a strategy that determines whether a dependency is present.
// Implementations may check a filesystem path, the exit status of a command,
// or the host process table.
type Detector interface {
	// Alive returns true if the dependency is detected.
	// A false result may be accompanied by the error that prevented detection.
	Alive(ctx context.Context) (bool, error)
	// Describe returns a human-readable description of the detection method.
	Describe() string
}
