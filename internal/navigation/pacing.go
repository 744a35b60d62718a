package navigation

import (
	"context"
	"time"
)

// 特例路线的加载提示序列
var corridorSequence = []string{
	"INITIALIZING SATELLITE CONNECTION...",
	"ACCESSING CLASSIFIED DATABASE...",
	"TRIANGULATING CPEC COORDINATES...",
	"DECRYPTING GEOSPATIAL DATA...",
	"SYNCHRONIZING WITH GROUND STATIONS...",
	"ESTABLISHING SECURE LINK...",
	"CPEC INTELLIGENCE ACTIVATED",
}

// 关键人员面板的加载提示序列
var officialsSequence = []string{
	"FINDING OFFICIALS...",
	"FINDING OFFICIALS...",
	"FINDING OFFICIALS...",
	"FINDING OFFICIALS...",
	"FINDING OFFICIALS...",
	"FINDING OFFICIALS...",
	"KEY OFFICIALS DATABASE UNLOCKED",
}

// DefaultStep：每条提示的展示时长
const DefaultStep = 800 * time.Millisecond

// sleepCtx：等待 d 或上下文结束
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
