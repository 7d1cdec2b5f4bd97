package webmo

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is the status poll cadence used when WaitForJobs is
// given a non-positive interval.
const DefaultPollInterval = 5 * time.Second

// WaitForJob blocks until the job reaches a terminal status (complete or
// failed). See WaitForJobs.
func (c *Client) WaitForJob(ctx context.Context, jobNumber int, pollInterval time.Duration) error {
	return c.WaitForJobs(ctx, []int{jobNumber}, pollInterval)
}

// WaitForJobs blocks until every listed job has reached a terminal status.
// Each poll round queries only the jobs not yet observed terminal, then
// sleeps pollInterval. There is no upper bound on the total wait: callers
// wanting a deadline supply it through ctx.
func (c *Client) WaitForJobs(ctx context.Context, jobNumbers []int, pollInterval time.Duration) error {
	if len(jobNumbers) == 0 {
		return ErrNoJobNumbers
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	status := make(map[int]string, len(jobNumbers))
	for _, n := range jobNumbers {
		status[n] = ""
	}

	for {
		done := true
		for _, n := range jobNumbers {
			if IsTerminalStatus(status[n]) {
				continue
			}
			s, err := c.JobStatus(ctx, n)
			if err != nil {
				return err
			}
			status[n] = s
			if !IsTerminalStatus(s) {
				done = false
			}
		}
		if done {
			return nil
		}

		c.logger.Debug("jobs still running, polling again",
			slog.Duration("poll_interval", pollInterval),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
