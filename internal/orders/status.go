package orders

type Status string

// Stored values.
const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// StatusCompleted is never stored; it is how StatusPaid is shown to callers.
const StatusCompleted Status = "completed"

// Display maps a stored status to the label callers see.
func (s Status) Display() Status {
	if s == StatusPaid {
		return StatusCompleted
	}
	return s
}
