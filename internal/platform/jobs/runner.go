package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swalih2233/hr.employee/internal/domain/ledger"
	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/platform/metrics"
)

const (
	JobYearEndGrant         = "year_end_grant"
	JobCarryforwardCleanup  = "carryforward_cleanup"
	JobCarryforwardReminder = "carryforward_reminder"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

func ValidJobType(t string) bool {
	switch t {
	case JobYearEndGrant, JobCarryforwardCleanup, JobCarryforwardReminder:
		return true
	}
	return false
}

// RunStats is persisted as the stats_json of a job run.
type RunStats struct {
	TotalProcessed        int      `json:"totalProcessed"`
	EligibleCount         int      `json:"eligibleCount"`
	TotalCarryforwardDays int      `json:"totalCarryforwardDays"`
	ForfeitedDays         int      `json:"forfeitedDays"`
	RemindersSent         int      `json:"remindersSent"`
	Errors                []string `json:"errors,omitempty"`
}

type JobRun struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	TriggeredBy string          `json:"triggeredBy"`
	DryRun      bool            `json:"dryRun"`
	Status      string          `json:"status"`
	Stats       json.RawMessage `json:"stats,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// PolicyNotifier hears about ledger changes the policy jobs make.
type PolicyNotifier interface {
	CarryforwardGranted(ctx context.Context, recipient people.Person, days int)
	CarryforwardExpired(ctx context.Context, recipient people.Person, days int)
	CarryforwardReminder(ctx context.Context, recipient people.Person, remaining int)
}

type PeopleDirectory interface {
	GetByID(ctx context.Context, personID string) (people.Person, error)
}

// Runner executes the leave policy jobs. One ledger is handled per
// transaction, so a bad row poisons only itself and every other ledger
// still gets its grant or cleanup.
type Runner struct {
	DB       *pgxpool.Pool
	Ledgers  *ledger.Store
	People   PeopleDirectory
	Notifier PolicyNotifier
	Policy   ledger.PolicyConfig
	Logger   *slog.Logger
	Metrics  *metrics.Collector
}

// Run executes one policy job and records it in job_runs. Grant and
// cleanup runs are guarded per calendar year: if a completed non-dry run
// of the same type already exists for the year of now, the run is
// recorded as skipped and touches nothing. Dry runs compute the same
// stats without writing a single ledger.
func (r *Runner) Run(ctx context.Context, jobType, triggeredBy string, dryRun bool, now time.Time) (JobRun, error) {
	if !ValidJobType(jobType) {
		return JobRun{}, fmt.Errorf("unknown job type %q", jobType)
	}

	if !dryRun && jobType != JobCarryforwardReminder {
		done, err := r.alreadyRanThisYear(ctx, jobType, now)
		if err != nil {
			return JobRun{}, err
		}
		if done {
			return r.record(ctx, jobType, triggeredBy, dryRun, "skipped", nil)
		}
	}

	run, err := r.record(ctx, jobType, triggeredBy, dryRun, "running", nil)
	if err != nil {
		return JobRun{}, err
	}

	var stats RunStats
	switch jobType {
	case JobYearEndGrant:
		stats, err = r.runGrant(ctx, dryRun)
	case JobCarryforwardCleanup:
		stats, err = r.runCleanup(ctx, dryRun)
	case JobCarryforwardReminder:
		stats, err = r.runReminder(ctx, dryRun)
	}

	status := "completed"
	if err != nil {
		status = "failed"
		r.Logger.Error("policy job failed", "jobType", jobType, "runId", run.ID, "error", err)
	}
	if r.Metrics != nil {
		r.Metrics.RecordJobRun(err != nil)
	}
	return r.finish(ctx, run, status, stats, err)
}

func (r *Runner) alreadyRanThisYear(ctx context.Context, jobType string, now time.Time) (bool, error) {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	var done bool
	err := r.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM job_runs
      WHERE job_type = $1 AND NOT dry_run AND status = 'completed' AND started_at >= $2
    )
  `, jobType, yearStart).Scan(&done)
	return done, err
}

func (r *Runner) record(ctx context.Context, jobType, triggeredBy string, dryRun bool, status string, stats *RunStats) (JobRun, error) {
	run := JobRun{JobType: jobType, TriggeredBy: triggeredBy, DryRun: dryRun, Status: status}
	var statsJSON []byte
	if stats != nil {
		statsJSON, _ = json.Marshal(stats)
	}
	err := r.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, triggered_by, dry_run, status, stats_json)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id, started_at
  `, jobType, triggeredBy, dryRun, status, statsJSON).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return JobRun{}, err
	}
	run.Stats = statsJSON
	return run, nil
}

func (r *Runner) finish(ctx context.Context, run JobRun, status string, stats RunStats, runErr error) (JobRun, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		statsJSON = []byte("{}")
	}
	run.Status = status
	run.Stats = statsJSON
	if _, err := r.DB.Exec(ctx, `
    UPDATE job_runs SET status = $2, stats_json = $3, completed_at = now()
    WHERE id = $1
  `, run.ID, status, statsJSON); err != nil {
		r.Logger.Warn("job run update failed", "runId", run.ID, "error", err)
	}
	return run, runErr
}

func (r *Runner) runGrant(ctx context.Context, dryRun bool) (RunStats, error) {
	var stats RunStats

	ledgers, err := r.Ledgers.ListAll(ctx)
	if err != nil {
		return stats, err
	}

	for _, snapshot := range ledgers {
		stats.TotalProcessed++

		var outcome ledger.GrantOutcome
		if dryRun {
			led := snapshot
			outcome = r.Policy.ApplyGrant(&led)
		} else {
			err := r.mutateLedger(ctx, snapshot.PersonID, func(led *ledger.Ledger) {
				outcome = r.Policy.ApplyGrant(led)
			})
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("person %s: %v", snapshot.PersonID, err))
				r.Logger.Warn("year-end grant skipped one ledger", "personId", snapshot.PersonID, "error", err)
				continue
			}
		}

		if outcome.Eligible {
			stats.EligibleCount++
			stats.TotalCarryforwardDays += outcome.CarryforwardGranted
			if !dryRun {
				r.notify(ctx, snapshot.PersonID, func(p people.Person) {
					r.Notifier.CarryforwardGranted(ctx, p, outcome.CarryforwardGranted)
				})
			}
		}
	}
	return stats, nil
}

func (r *Runner) runCleanup(ctx context.Context, dryRun bool) (RunStats, error) {
	var stats RunStats

	ledgers, err := r.Ledgers.ListAll(ctx)
	if err != nil {
		return stats, err
	}

	for _, snapshot := range ledgers {
		stats.TotalProcessed++

		var outcome ledger.CleanupOutcome
		if dryRun {
			led := snapshot
			outcome = r.Policy.ApplyCleanup(&led)
		} else {
			err := r.mutateLedger(ctx, snapshot.PersonID, func(led *ledger.Ledger) {
				outcome = r.Policy.ApplyCleanup(led)
			})
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("person %s: %v", snapshot.PersonID, err))
				r.Logger.Warn("carryforward cleanup skipped one ledger", "personId", snapshot.PersonID, "error", err)
				continue
			}
		}

		stats.ForfeitedDays += outcome.ForfeitedDays
		if !dryRun && outcome.ForfeitedDays > 0 {
			r.notify(ctx, snapshot.PersonID, func(p people.Person) {
				r.Notifier.CarryforwardExpired(ctx, p, outcome.ForfeitedDays)
			})
		}
	}
	return stats, nil
}

// runReminder only reads. Ledgers stay untouched whether or not this is
// a dry run; dry runs just skip the notifications.
func (r *Runner) runReminder(ctx context.Context, dryRun bool) (RunStats, error) {
	var stats RunStats

	ledgers, err := r.Ledgers.ListAll(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalProcessed = len(ledgers)

	for _, entry := range ledger.ReminderEntries(ledgers) {
		stats.TotalCarryforwardDays += entry.RemainingDays
		if dryRun {
			stats.RemindersSent++
			continue
		}
		r.notify(ctx, entry.PersonID, func(p people.Person) {
			r.Notifier.CarryforwardReminder(ctx, p, entry.RemainingDays)
		})
		stats.RemindersSent++
	}
	return stats, nil
}

// mutateLedger applies one change in its own transaction. The row is
// re-read under lock so an in-flight approval serializes with the policy
// write instead of being clobbered by a stale snapshot.
func (r *Runner) mutateLedger(ctx context.Context, personID string, apply func(*ledger.Ledger)) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	led, err := r.Ledgers.GetByPersonForUpdate(ctx, tx, personID)
	if err != nil {
		return err
	}
	apply(&led)
	if err := r.Ledgers.UpdateCountersTx(ctx, tx, led); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Runner) notify(ctx context.Context, personID string, send func(people.Person)) {
	if r.Notifier == nil {
		return
	}
	p, err := r.People.GetByID(ctx, personID)
	if err != nil {
		r.Logger.Warn("policy notification recipient lookup failed", "personId", personID, "error", err)
		return
	}
	send(p)
}

// ListRuns returns recent job runs, newest first.
func (r *Runner) ListRuns(ctx context.Context, jobType string, limit int) ([]JobRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
    SELECT id, job_type, triggered_by, dry_run, status, stats_json, started_at, completed_at
    FROM job_runs
  `
	args := []any{limit}
	if jobType != "" {
		query += " WHERE job_type = $2"
		args = append(args, jobType)
	}
	query += " ORDER BY started_at DESC LIMIT $1"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobRun
	for rows.Next() {
		var run JobRun
		if err := rows.Scan(&run.ID, &run.JobType, &run.TriggeredBy, &run.DryRun,
			&run.Status, &run.Stats, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}
