package archive

import "context"

// Store keeps audit copies of voice audio when archiving is enabled.
type Store interface {
	// SaveFile uploads the file at path under a generated key and
	// returns the object key.
	SaveFile(ctx context.Context, kind string, path string) (string, error)

	// Enabled reports whether an archive backend is configured.
	Enabled() bool
}
