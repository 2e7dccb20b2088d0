package queue

const (
	TypePersistWrite = "persist:write"

	QueuePersist = "persist"
)

// PersistWritePayload carries one whole-collection write to the worker.
type PersistWritePayload struct {
	Key   string `json:"key"`
	Seq   int64  `json:"seq"`
	Value []byte `json:"value"`
}
