package app

import "sync"

// campaignLocks hands out one mutex per campaign id. Locks are never
// reclaimed; a campaign entry is a single mutex and campaigns are not
// deleted by the core.
type campaignLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCampaignLocks() *campaignLocks {
	return &campaignLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the exclusive lock for campaignID and returns its unlock
// function.
func (c *campaignLocks) lock(campaignID string) func() {
	c.mu.Lock()
	lock, ok := c.locks[campaignID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[campaignID] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
