package jobs

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
)

const (
	// QueueCampaigns is the queue carrying pool runs.
	QueueCampaigns = "campaigns"
	// TaskTypePoolRun is the task type for running a campaign pool.
	TaskTypePoolRun = "campaign:pool_run"
	// TaskTypeReplayError is the task type for replaying a single errored line.
	TaskTypeReplayError = "campaign:replay_error"
)

var validate = validator.New()

// PoolRunPayload identifies the pool to run.
type PoolRunPayload struct {
	PoolID string `json:"pool_id" validate:"required,uuid4"`
}

// NewPoolRunTask constructs an Asynq task.
func NewPoolRunTask(payload PoolRunPayload) (*asynq.Task, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePoolRun, data), nil
}

// ReplayErrorPayload identifies the draft line whose error should be replayed.
type ReplayErrorPayload struct {
	LineID string `json:"line_id" validate:"required,uuid4"`
}

// NewReplayErrorTask constructs an Asynq task.
func NewReplayErrorTask(payload ReplayErrorPayload) (*asynq.Task, error) {
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReplayError, data), nil
}
