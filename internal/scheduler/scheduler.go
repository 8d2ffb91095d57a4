package scheduler

import (
	"fmt"
	"time"

	"FloorSentinel/internal/notifier"
	"FloorSentinel/internal/recorder"
	"FloorSentinel/internal/sweeper"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the cron-driven digest tasks. The auto-sweep loop
// itself runs on its own ticker; the scheduler only reports on it.
type Scheduler struct {
	Cron     *cron.Cron
	Sweeper  *sweeper.Sweeper
	Notifier notifier.Notifier
	Recorder recorder.Recorder
}

// NewScheduler creates a new Scheduler.
func NewScheduler(sw *sweeper.Sweeper, notif notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Sweeper:  sw,
		Notifier: notif,
		Recorder: rec,
	}
}

// RegisterAll registers the daily digest task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyDigest); err != nil {
		return fmt.Errorf("register daily digest: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunDigestNow executes the digest task immediately (manual trigger).
func (s *Scheduler) RunDigestNow() {
	s.dailyDigest()
}

func (s *Scheduler) dailyDigest() {
	log.Info().Msg("running daily digest")

	summary, err := s.Recorder.Summarize(time.Now().Add(-24 * time.Hour))
	if err != nil {
		log.Error().Err(err).Msg("summarize history")
		s.trySend(fmt.Sprintf("❌ Daily digest failed: %v", err))
		return
	}

	state := s.Sweeper.State()
	status := "stopped"
	if state.Running {
		status = "running"
	}

	msg := fmt.Sprintf(
		"📋 <b>Daily Sweep Digest</b>\n\n"+
			"Ticks: %d\n"+
			"Opportunities found: %d\n"+
			"Purchases: %d\n"+
			"Spent (24h): %s\n"+
			"Avg discount: %s\n\n"+
			"Auto-sweep: %s\n"+
			"Budget used: %s / %s",
		summary.Ticks,
		summary.Opportunities,
		summary.Purchases,
		notifier.FormatEth(summary.SpentETH),
		notifier.FormatPercent(summary.AvgDiscount),
		status,
		notifier.FormatEth(state.TotalSpent),
		notifier.FormatEth(state.MaxTotalSpend),
	)
	s.trySend(msg)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyText(text); err != nil {
		log.Error().Err(err).Msg("send digest")
	}
}
