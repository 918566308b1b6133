package webhook

import "sync"

// deliveryLogSize bounds how many recent delivery IDs are remembered.
const deliveryLogSize = 1024

// deliveryLog remembers recently seen webhook delivery IDs so redelivered
// events are not posted twice. Old entries are evicted FIFO.
type deliveryLog struct {
	ids   map[string]struct{}
	order []string
	limit int
	mu    sync.Mutex
}

func newDeliveryLog(limit int) *deliveryLog {
	return &deliveryLog{
		ids:   make(map[string]struct{}, limit),
		limit: limit,
	}
}

// record marks id as seen and reports whether it was new.
func (d *deliveryLog) record(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ids[id]; ok {
		return false
	}

	if len(d.order) >= d.limit {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.ids, oldest)
	}

	d.ids[id] = struct{}{}
	d.order = append(d.order, id)
	return true
}
