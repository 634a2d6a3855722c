package services

// InterfaceSnapshotCache invalidates cached health snapshots. RedisService
// implements it; a nil cache disables invalidation.
type InterfaceSnapshotCache interface {
	InvalidateHealthSnapshot(convertID uint) error
}

// invalidateSnapshot drops a convert's cached snapshot after a committed
// rescore. Cache errors never surface to the caller.
func invalidateSnapshot(cache InterfaceSnapshotCache, convertID uint) {
	if cache == nil {
		return
	}
	_ = cache.InvalidateHealthSnapshot(convertID)
}
