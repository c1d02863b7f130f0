package archive

import (
	"context"
	"log"
)

// Kinds of archived audio.
const (
	KindIncoming  = "incoming"
	KindSynthesis = "synthesis"
)

// Service wraps a Store so callers never have to care whether the
// archive is configured or an upload failed.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Save archives the file if a backend is configured. Errors are
// logged, never returned: archiving must not affect the reply path.
func (s *Service) Save(ctx context.Context, kind, path string) {
	if !s.store.Enabled() {
		return
	}
	key, err := s.store.SaveFile(ctx, kind, path)
	if err != nil {
		log.Printf("[archive] save %s fail: %v", kind, err)
		return
	}
	log.Printf("[archive] saved %s -> %s", kind, key)
}
