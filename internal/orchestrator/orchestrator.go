// Package orchestrator runs the selected updaters in order, applies their
// records and persists a summary of the run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
	"github.com/nsynca/nsynca/internal/updater"
)

// ErrAuth marks a run aborted because Notion rejected the integration token.
var ErrAuth = errors.New("notion authentication failed")

// RunStore persists runs.
type RunStore interface {
	SaveRun(run *models.Run) error
}

// Tracker receives finished runs for telemetry.
type Tracker interface {
	TrackRun(run *models.Run)
}

// Options configures an Orchestrator.
type Options struct {
	// Updaters are the available variants. Only selected ones run.
	Updaters []updater.Updater
	// Applier writes records. Required.
	Applier *updater.Applier
	// Validate checks the configuration for a selection before any network call.
	Validate func(models.Selection) error
	Store    RunStore
	Tracker  Tracker
	Now      func() time.Time
}

// Orchestrator runs updaters sequentially.
type Orchestrator struct {
	updaters map[models.UpdaterType]updater.Updater
	applier  *updater.Applier
	validate func(models.Selection) error
	store    RunStore
	tracker  Tracker
	now      func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		updaters: make(map[models.UpdaterType]updater.Updater, len(opts.Updaters)),
		applier:  opts.Applier,
		validate: opts.Validate,
		store:    opts.Store,
		tracker:  opts.Tracker,
		now:      opts.Now,
	}
	for _, u := range opts.Updaters {
		o.updaters[u.Type()] = u
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// NewFromConfig wires the Notion client and every updater variant from cfg.
func NewFromConfig(cfg *config.Config, store RunStore, tracker Tracker) *Orchestrator {
	s := cfg.Settings
	client := notion.NewClient(cfg.NotionToken, notion.Options{
		APIVersion:        s.Notion.APIVersion,
		RequestsPerSecond: s.Notion.RequestsPerSecond,
		Timeout:           cfg.RequestTimeout(),
	})
	return New(Options{
		Updaters: []updater.Updater{
			updater.NewDeploymentUpdater(client, cfg.DeploymentsDB, s.Properties.Deployments),
			updater.NewTaskUpdater(client, cfg.TasksDB, s.Properties.Tasks),
			updater.NewServiceUpdater(client, cfg.ServicesDB, s.Properties.Services),
			updater.NewChargeUpdater(client, cfg.ServicesDB, s.Properties.Services),
		},
		Applier:  updater.NewApplier(client),
		Validate: cfg.Validate,
		Store:    store,
		Tracker:  tracker,
	})
}

// Run executes the selected updaters in canonical order and returns the
// finished run. Every planned record yields exactly one RecordResult.
//
// A configuration error is returned before anything runs or is saved. The
// run is saved once, when it finishes, so history never holds a run stuck
// in the running state. An authentication failure or cancellation stops the
// run; the partial run is still saved and returned together with the error. Record and updater
// failures are recorded on the run and do not produce an error.
func (o *Orchestrator) Run(ctx context.Context, sel models.Selection, rep Reporter) (*models.Run, error) {
	if rep == nil {
		rep = NopReporter{}
	}
	if len(sel) == 0 {
		sel = models.AllSelection()
	}
	if o.validate != nil {
		if err := o.validate(sel); err != nil {
			return nil, err
		}
	}
	for _, t := range sel {
		if _, ok := o.updaters[t]; !ok {
			return nil, fmt.Errorf("updater %q is not configured", t)
		}
	}

	run := models.NewRun(sel, o.now())
	fatal := o.execute(ctx, sel, run, rep)
	if fatal != nil {
		run.Error = fatal.Error()
	}
	run.Finish(o.now())
	o.save(run)
	if o.tracker != nil {
		o.tracker.TrackRun(run)
	}
	rep.OnRunComplete(run)
	return run, fatal
}

// execute runs the updaters and returns a fatal error, if any.
func (o *Orchestrator) execute(ctx context.Context, sel models.Selection, run *models.Run, rep Reporter) error {
	for _, t := range sel {
		if err := ctx.Err(); err != nil {
			return err
		}
		u := o.updaters[t]
		rep.OnUpdaterStart(t)

		recs, err := u.Plan(ctx)
		if err != nil {
			rep.OnUpdaterDone(t, err)
			if fatal := fatalError(ctx, err); fatal != nil {
				return fatal
			}
			run.UpdaterErrors = append(run.UpdaterErrors, models.UpdaterError{Updater: t, Error: err.Error()})
			continue
		}
		rep.OnPlanned(t, len(recs))

		for _, r := range recs {
			if err := ctx.Err(); err != nil {
				rep.OnUpdaterDone(t, err)
				return err
			}
			res, err := o.apply(ctx, t, r)
			run.Results = append(run.Results, res)
			rep.OnResult(res)
			if fatal := fatalError(ctx, err); fatal != nil {
				rep.OnUpdaterDone(t, fatal)
				return fatal
			}
		}
		rep.OnUpdaterDone(t, nil)
	}
	return nil
}

func (o *Orchestrator) apply(ctx context.Context, t models.UpdaterType, r updater.Record) (models.RecordResult, error) {
	out, err := o.applier.Apply(ctx, r)
	res := models.RecordResult{
		Updater:   t,
		RecordID:  out.PageID,
		Name:      out.Name,
		Timestamp: o.now().UTC(),
	}
	if res.RecordID == "" {
		res.RecordID = r.Key.String()
	}
	if res.Name == "" {
		res.Name = res.RecordID
	}
	if err != nil {
		res.Status = models.ResultFailed
		res.Error = err.Error()
		return res, err
	}
	res.Status = models.ResultSuccess
	res.Action = out.Action
	res.Changes = out.ChangeStrings()
	return res, nil
}

func (o *Orchestrator) save(run *models.Run) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveRun(run); err != nil {
		slog.Error("Failed to save run history", "run", run.ID, "err", err)
	}
}

// fatalError returns the error that must stop the run: authentication
// failures and cancellation of ctx.
func fatalError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if notion.IsAuthError(err) {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return nil
}
