package redisx

import "time"

const (
	// Stored order record: order:{order_id} -> JSON
	KeyOrderDetail = "order:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderDetail = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
