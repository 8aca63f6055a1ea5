package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-quake-impact/internal/config"
	"github.com/mr1hm/go-quake-impact/internal/repository"
	"github.com/mr1hm/go-quake-impact/internal/worker"
)

// job is one scenario of a batch and its index in the report.
type job struct {
	index    int
	id       string
	scenario Scenario
}

type Manager struct {
	cfg    *config.Config
	repo   repository.AssessmentRepository
	runner *Runner
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.AssessmentRepository, runner *Runner) *Manager {
	return &Manager{
		cfg:    cfg,
		repo:   repo,
		runner: runner,
	}
}

// Start polls the scenario dir until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.runPoller(ctx, m.cfg.Scenarios.Dir, m.cfg.Scenarios.PollInterval)
}

func (m *Manager) runPoller(ctx context.Context, dir string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting scenario poller", "dir", dir, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, dir)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scenario poller shutting down", "dir", dir)
			return
		case <-ticker.C:
			m.poll(ctx, dir)
		}
	}
}

// poll runs the scenarios of dir that have not been stored yet.
func (m *Manager) poll(ctx context.Context, dir string) {
	slog.Debug("polling scenarios", "dir", dir)

	scenarios, err := ListScenarios(dir, m.cfg.Scenarios.DataDir)
	if err != nil {
		slog.Error("poll failed", "dir", dir, "error", err)
		return
	}

	var pending []Scenario
	for _, s := range scenarios {
		if m.repo != nil {
			exists, err := m.repo.Exists(ctx, s.ID())
			if err != nil {
				slog.Error("error checking existence", "id", s.ID(), "error", err)
				continue
			}
			if exists {
				continue
			}
		}
		pending = append(pending, s)
	}
	if len(pending) == 0 {
		slog.Debug("poll complete", "dir", dir, "count", 0)
		return
	}

	report := m.run(ctx, pending, Scenario.ID)
	m.writeReport(report)
	slog.Info("poll complete", "dir", dir, "count", len(pending),
		"passed", report.Passed(), "failed", report.Failed())
}

// RunOnce runs every scenario of dir once and writes the batch report.
// Each run is stored under a new ID.
func (m *Manager) RunOnce(ctx context.Context, dir string) (*Report, error) {
	scenarios, err := ListScenarios(dir, m.cfg.Scenarios.DataDir)
	if err != nil {
		return nil, err
	}
	report := m.run(ctx, scenarios, func(Scenario) string { return uuid.NewString() })
	m.writeReport(report)
	return report, ctx.Err()
}

// run pushes scenarios through a worker pool and waits for it to drain.
func (m *Manager) run(ctx context.Context, scenarios []Scenario, idFor func(Scenario) string) *Report {
	report := newReport(scenarios)

	processor := func(ctx context.Context, j job) error {
		_, err := m.runner.Run(ctx, j.id, j.scenario)
		report.record(j.index, err)
		return err
	}
	pool := worker.NewWorkerPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	pool.Start(ctx)

	for i, s := range scenarios {
		if err := pool.Submit(ctx, job{index: i, id: idFor(s), scenario: s}); err != nil {
			break
		}
	}
	pool.Stop()
	return report
}

func (m *Manager) writeReport(report *Report) {
	if report.Tasks() == 0 {
		return
	}
	path, err := report.WriteFile(m.cfg.Scenarios.ReportDir)
	if err != nil {
		slog.Error("error writing batch report", "error", err)
		return
	}
	slog.Info("batch report written", "path", path,
		"passed", report.Passed(), "failed", report.Failed(), "tasks", report.Tasks())
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("scenario manager stopped")
}
