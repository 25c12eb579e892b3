package senpai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/crewchat/internal/metrics"
	"github.com/mmynk/crewchat/internal/queue"
)

// Task types.
const (
	TaskRespond     = "senpai:respond"
	TaskRandomSweep = "senpai:random_sweep"
)

// RespondPayload is the JSON payload of a TaskRespond task.
type RespondPayload struct {
	GroupID string `json:"groupId"`
	Trigger string `json:"trigger"`
}

// Schedule enqueues a one-off trigger after delay. Responses are never
// retried, so a failed completion cannot produce a duplicate post.
func Schedule(ctx context.Context, client queue.Client, groupID, trigger string, delay time.Duration) error {
	task, err := queue.NewJSONTask(TaskRespond, RespondPayload{GroupID: groupID, Trigger: trigger})
	if err != nil {
		return err
	}
	if _, err := client.Enqueue(ctx, task, queue.EnqueueOption{ProcessIn: delay, NoRetry: true}); err != nil {
		return fmt.Errorf("failed to schedule senpai trigger: %w", err)
	}
	metrics.ScheduledTriggers.WithLabelValues(trigger).Inc()
	return nil
}

// HandleRespond decodes a TaskRespond payload and runs the responder.
func (r *Responder) HandleRespond(ctx context.Context, t queue.Task) error {
	var p RespondPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", t.Type, err)
	}
	_, err := r.Respond(ctx, p.GroupID, p.Trigger)
	return err
}
