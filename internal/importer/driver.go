// Package importer pulls market data from external sources and merges it into the database,
// one subject (an ETF, an indicator, or the exchange-rate series) at a time.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/internal/upsert"
)

// Subject is one unit of import work
type Subject interface {
	Name() string
}

// Job fetches, transforms and merges data for each of its subjects.
// Import must make at most one merge call per subject.
type Job[S Subject] interface {
	Name() string
	Subjects(ctx context.Context) ([]S, error)
	Import(ctx context.Context, subject S) (upsert.Result, error)
}

// Options controls a run
type Options struct {
	// Pause is slept between two subjects
	Pause time.Duration
}

// SubjectFailure records why one subject was not imported
type SubjectFailure struct {
	Subject string `json:"subject"`
	Error   string `json:"error"`
}

// Summary aggregates a run. Created, Updated and Skipped only count succeeded subjects.
type Summary struct {
	RunID     string           `json:"run_id"`
	Job       string           `json:"job"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	Skipped   int              `json:"skipped"`
	Warnings  int              `json:"warnings"`
	Failures  []SubjectFailure `json:"failures,omitempty"`
}

// AllFailed reports whether there was work and none of it succeeded
func (s Summary) AllFailed() bool {
	return s.Total > 0 && s.Succeeded == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%s run %s: total=%d succeeded=%d failed=%d created=%d updated=%d skipped=%d warnings=%d",
		s.Job, s.RunID, s.Total, s.Succeeded, s.Failed, s.Created, s.Updated, s.Skipped, s.Warnings)
}

// Run imports every subject of job in order. A failing subject is logged and counted; the
// remaining subjects still run. The returned error is non-nil only when the subject list
// could not be loaded or ctx was cancelled mid-run.
func Run[S Subject](ctx context.Context, job Job[S], opts Options) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), Job: job.Name()}
	logger := log.WithFields(log.Fields{"run_id": sum.RunID, "job": sum.Job})

	subjects, err := job.Subjects(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to load %s subjects: %w", job.Name(), err)
	}
	sum.Total = len(subjects)
	logger.Infof("starting import of %d subjects", sum.Total)

	for i, subject := range subjects {
		if i > 0 {
			if err := sleep(ctx, opts.Pause); err != nil {
				return sum, err
			}
		}

		entry := logger.WithField("subject", subject.Name())
		subjectCtx, wl := WithWarningLog(ctx)

		res, err := job.Import(subjectCtx, subject)
		sum.Warnings += wl.Total()
		kept := wl.Warnings()
		for _, w := range kept {
			entry.WithField("code", w.Code).Warn(w.Message)
		}
		if dropped := wl.Total() - len(kept); dropped > 0 {
			entry.Warnf("%d more warnings not shown", dropped)
		}

		if err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, SubjectFailure{Subject: subject.Name(), Error: err.Error()})
			entry.Errorf("import failed: %v", err)
			continue
		}

		sum.Succeeded++
		sum.Created += res.Created
		sum.Updated += res.Updated
		sum.Skipped += res.Skipped
		entry.Infof("imported: created=%d updated=%d skipped=%d", res.Created, res.Updated, res.Skipped)
	}

	logger.Info(sum.String())
	return sum, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
