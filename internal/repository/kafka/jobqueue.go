package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

// JobEnvelope is the wire format for a dispatch queue message, replacing the
// teacher's protobuf CheckRequest with a plain JSON body (spec carries no
// retrievable .proto definitions to regenerate from).
type JobEnvelope struct {
	JobID          string `json:"job_id"`
	LinkID         string `json:"link_id"`
	ExternalURLID  string `json:"external_url_id"`
	ExternalUserID string `json:"external_user_id"`
	LongURL        string `json:"long_url"`
	ShortURL       string `json:"short_url"`
	Environment    string `json:"environment"`
}

func ToEnvelope(j job.HealthCheckJob, jobID string) JobEnvelope {
	return JobEnvelope{
		JobID:          jobID,
		LinkID:         j.LinkID,
		ExternalURLID:  j.ExternalURLID,
		ExternalUserID: j.ExternalUserID,
		LongURL:        j.LongURL,
		ShortURL:       j.ShortURL,
		Environment:    string(j.Environment),
	}
}

func (e JobEnvelope) ToJob() job.HealthCheckJob {
	return job.HealthCheckJob{
		LinkID:         e.LinkID,
		ExternalURLID:  e.ExternalURLID,
		ExternalUserID: e.ExternalUserID,
		LongURL:        e.LongURL,
		ShortURL:       e.ShortURL,
		Environment:    monitor.Environment(e.Environment),
	}
}

// PublishJob writes j to p's topic, keyed by job ID for partition stickiness.
func PublishJob(ctx context.Context, p *Producer, j job.HealthCheckJob, jobID string) error {
	return p.PublishJSON(ctx, KeyFromString(jobID), ToEnvelope(j, jobID))
}

// DecodeEnvelope replaces the teacher's protobuf protohandler.go: it turns
// a raw message value back into the JSON envelope a Dispatch Queue consumer
// dispatches from.
func DecodeEnvelope(value []byte) (JobEnvelope, error) {
	var env JobEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return JobEnvelope{}, fmt.Errorf("decode job envelope: %w", err)
	}
	return env, nil
}
