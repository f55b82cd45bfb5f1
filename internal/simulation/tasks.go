package simulation

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskTypeRecord is the asynq task type for persisting one simulation run.
const TaskTypeRecord = "simulation:record"

// RecordPayload is the task payload: the submitted cart and the computed
// quote, both as raw JSON.
type RecordPayload struct {
	Cart   json.RawMessage `json:"cart"`
	Result json.RawMessage `json:"result"`
}

// NewRecordTask builds a simulation:record task.
func NewRecordTask(cart, result json.RawMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(RecordPayload{Cart: cart, Result: result})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecord, payload), nil
}
