package profile

// ActiveLocks exposes the lock table size to tests.
func (m *Manager) ActiveLocks() int { return m.activeLocks() }
