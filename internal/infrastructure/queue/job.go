package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobProcessOrder nombre del único trabajo que publica la API.
const JobProcessOrder = "process_order"

// Job sobre JSON publicado en el topic de trabajos.
type Job struct {
	ID         string    `json:"job_id"`
	Job        string    `json:"job"`
	OrderID    int64     `json:"order_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewProcessOrderJob arma el trabajo process_order para un pedido confirmado.
func NewProcessOrderJob(orderID int64, now time.Time) Job {
	return Job{
		ID:         uuid.NewString(),
		Job:        JobProcessOrder,
		OrderID:    orderID,
		EnqueuedAt: now.UTC(),
	}
}
