package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/odvcencio/rgit/pkg/object"
)

// copyStats counts the outcome of copyObjects.
type copyStats struct {
	Copied  int
	Missing int // absent from the source store, logged and skipped
}

// copyObjects copies the envelope of every OID in oids from src to dst,
// skipping objects dst already has. An object missing from src is logged
// and skipped. Copies run on a pool of at most concurrency goroutines; any
// other failure cancels the rest.
func copyObjects(ctx context.Context, log *slog.Logger, dst, src *object.Store, oids []object.OID, concurrency int) (copyStats, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	var copied, missing atomic.Int64

	p := pool.New().WithMaxGoroutines(concurrency).WithContext(ctx).WithCancelOnError()
	for _, oid := range oids {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dst.Has(oid) {
				return nil
			}
			raw, err := src.ReadRaw(oid)
			if errors.Is(err, object.ErrNotFound) {
				log.Warn("skip missing object", "oid", oid)
				missing.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("copy %s: %w", oid, err)
			}
			if err := dst.WriteRaw(oid, raw); err != nil {
				return fmt.Errorf("copy %s: %w", oid, err)
			}
			copied.Add(1)
			return nil
		})
	}
	err := p.Wait()
	return copyStats{Copied: int(copied.Load()), Missing: int(missing.Load())}, err
}
