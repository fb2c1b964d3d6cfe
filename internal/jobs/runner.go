package jobs

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/ncc-airhealth/korea-geovariable/internal/border"
	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/point"
)

// Runner executes one claimed job and returns its result rows.
type Runner func(ctx context.Context, job *Job) (json.RawMessage, error)

// NewRunner builds the dispatching runner the worker pool and the sync
// API path share. Border jobs resolve the administrative level and year,
// point jobs the buffer and emission parameters.
func NewRunner(pool db.Pool) Runner {
	return func(ctx context.Context, job *Job) (json.RawMessage, error) {
		switch job.Kind {
		case KindBorder:
			bt, err := border.ParseType(job.Params.BorderType)
			if err != nil {
				return nil, err
			}
			calc, err := border.New(job.Variable, bt, job.Params.Year)
			if err != nil {
				return nil, err
			}
			f, err := calc.Calculate(ctx, pool)
			if err != nil {
				return nil, err
			}
			return marshalRecords(f.Records())
		case KindPoint:
			calc, err := point.New(job.Variable, point.Params{
				Year:          job.Params.Year,
				BufferSize:    job.Params.BufferSize,
				EmissionType:  job.Params.EmissionType,
				PollutantType: job.Params.PollutantType,
			})
			if err != nil {
				return nil, err
			}
			f, err := calc.Calculate(ctx, pool)
			if err != nil {
				return nil, err
			}
			return marshalRecords(f.Records())
		default:
			return nil, eris.Errorf("jobs: unknown job kind %q", job.Kind)
		}
	}
}

func marshalRecords(records []map[string]any) (json.RawMessage, error) {
	out, err := json.Marshal(records)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: marshal records")
	}
	return out, nil
}
