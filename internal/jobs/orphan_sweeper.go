package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/robfig/cron/v3"
)

type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]blobstore.ObjectInfo, error)
	Delete(ctx context.Context, path string) error
}

type ReferenceSource interface {
	DocumentPaths(ctx context.Context) ([]string, error)
}

// OrphanSweeper deletes stored documents that no reservation references.
// Objects younger than Grace are left alone so an upload whose reservation
// insert is still in flight is not removed.
type OrphanSweeper struct {
	store ObjectLister
	refs  ReferenceSource
	Grace time.Duration
	Now   func() time.Time
}

func NewOrphanSweeper(store ObjectLister, refs ReferenceSource, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{store: store, refs: refs, Grace: grace, Now: time.Now}
}

// Sweep runs one pass and returns the number of deleted objects.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	log.Println("[OrphanSweeper] checking for unreferenced documents")

	objects, err := s.store.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("orphan sweep: list objects: %w", err)
	}
	if len(objects) == 0 {
		return 0, nil
	}

	paths, err := s.refs.DocumentPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("orphan sweep: load referenced paths: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	cutoff := s.Now().Add(-s.Grace)
	deleted := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Path]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Path); err != nil {
			log.Printf("[OrphanSweeper] failed to delete %s: %v", obj.Path, err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		log.Printf("[OrphanSweeper] deleted %d orphaned documents", deleted)
	}
	return deleted, nil
}

// Schedule registers the sweep on a new cron scheduler. The caller starts
// and stops it.
func (s *OrphanSweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			log.Printf("[OrphanSweeper] %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule orphan sweep %q: %w", spec, err)
	}
	return c, nil
}
