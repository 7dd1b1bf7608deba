package ui

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/tokihunter/internal/util"
)

// Stats totals one tokihunter run across its operations.
type Stats struct {
	TotalImages  atomic.Int64
	TotalBytes   atomic.Int64
	TotalSkipped atomic.Int64
	TotalLinks   atomic.Int64
}

func (s *Stats) Summary(elapsed time.Duration) string {
	return fmt.Sprintf("%d images (%s), %d skipped, %d links in %s",
		s.TotalImages.Load(),
		util.Human(s.TotalBytes.Load()),
		s.TotalSkipped.Load(),
		s.TotalLinks.Load(),
		elapsed.Round(time.Second),
	)
}
