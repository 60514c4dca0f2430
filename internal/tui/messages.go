package tui

import "github.com/Veraticus/finanzas/internal/finance"

// overviewLoadedMsg carries the result of one dashboard load. seq ties it to
// the request that produced it so stale answers can be dropped.
type overviewLoadedMsg struct {
	err      error
	overview finance.Overview
	seq      int
}
