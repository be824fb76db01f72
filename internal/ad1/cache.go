package ad1

// payloadCache is a fixed-capacity FIFO cache for decompressed item
// payloads, keyed by item id. Grounded on the same bounded, eviction-on-
// insert structure as the teacher's segment cache, reduced here to a
// pure in-memory map since AD1 payloads never spill to disk.
type payloadCache struct {
	capacity int
	data     map[uint64][]byte
	order    []uint64
}

func newPayloadCache(capacity int) *payloadCache {
	if capacity <= 0 {
		capacity = defaultItemCapacity
	}
	return &payloadCache{
		capacity: capacity,
		data:     make(map[uint64][]byte, capacity),
	}
}

func (c *payloadCache) get(id uint64) ([]byte, bool) {
	data, ok := c.data[id]
	return data, ok
}

func (c *payloadCache) put(id uint64, data []byte) {
	if _, exists := c.data[id]; exists {
		return
	}
	if len(c.data) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}
	c.data[id] = data
	c.order = append(c.order, id)
}
