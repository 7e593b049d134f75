package beacon

import (
	"context"
	"time"

	"github.com/garrettladley/wext/internal/xslog"
)

// RunRetention prunes beacons older than retention every interval until ctx
// is cancelled. A zero retention disables pruning.
func RunRetention(ctx context.Context, svc Service, retention, interval time.Duration) error {
	if retention <= 0 {
		<-ctx.Done()
		return nil
	}

	logger := xslog.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			before := now.Add(-retention)
			n, err := svc.Prune(ctx, before)
			if err != nil {
				logger.WarnContext(ctx, "beacon retention failed", xslog.Before(before), xslog.Error(err))
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "pruned beacons", xslog.Count(int(n)), xslog.Before(before))
			}
		}
	}
}
