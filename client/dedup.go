package client

// recentIDs is a bounded recency window of message ids already surfaced to
// the caller. Guards against a message arriving both via the send response
// and via the live stream.
type recentIDs struct {
	limit int
	order []string
	seen  map[string]struct{}
}

func newRecentIDs(limit int) *recentIDs {
	if limit <= 0 {
		limit = 256
	}
	return &recentIDs{
		limit: limit,
		order: make([]string, 0, limit),
		seen:  make(map[string]struct{}, limit),
	}
}

// Observe records id and reports whether it had been seen before. The
// oldest id falls out of the window once the limit is reached.
func (r *recentIDs) Observe(id string) (dup bool) {
	if _, ok := r.seen[id]; ok {
		return true
	}
	if len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest)
	}
	r.order = append(r.order, id)
	r.seen[id] = struct{}{}
	return false
}
