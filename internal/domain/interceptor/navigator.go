package interceptor

import (
	"context"
	"sync/atomic"
)

// ReplyNavigator performs no navigation itself. The browser shell receives
// the launcher URL in the reply to its event and moves the tab.
type ReplyNavigator struct {
	nextTab atomic.Int64
}

// UpdateTab accepts the redirect; the shell applies it.
func (n *ReplyNavigator) UpdateTab(ctx context.Context, tabID int, url string) error {
	return ctx.Err()
}

// CreateTab hands out a provisional tab id. Provisional ids are negative so
// they never collide with ids the browser assigns.
func (n *ReplyNavigator) CreateTab(ctx context.Context, url string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int(-n.nextTab.Add(1)), nil
}
