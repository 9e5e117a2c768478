// Package worker runs the periodic maintenance loop: expired targets
// roll into their next period and overdue follow-up tasks are marked
// postponed.
package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

type Scheduler struct {
	DB            *config.Database
	Logger        *zap.Logger
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler(db *config.Database, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		DB:            db,
		Logger:        logger,
		CheckInterval: 1 * time.Hour,
		stop:          make(chan struct{}),
	}
}

// Start begins the maintenance loop. The first pass runs immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	s.Logger.Info("scheduler started", zap.Duration("check_interval", s.CheckInterval))
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Logger.Info("scheduler stopped")
	}
}

// RunNow triggers an immediate pass.
func (s *Scheduler) RunNow() {
	s.sweep()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// Retries on transient failures happen per statement inside Database;
// a job that still fails is logged and retried on the next tick.
func (s *Scheduler) sweep() {
	if err := s.rollExpiredTargets(); err != nil {
		s.Logger.Error("target rollover failed", zap.Error(err))
	}
	if err := s.postponeOverdueTasks(); err != nil {
		s.Logger.Error("overdue task sweep failed", zap.Error(err))
	}
}

// rollExpiredTargets advances every target whose period has ended into
// the period containing today. Custom targets restart from zero; the
// other categories derive their current value at read time, so only
// the window moves.
func (s *Scheduler) rollExpiredTargets() error {
	now := time.Now().In(utils.BusinessLocation)
	today := utils.FormatDate(now)

	rows, err := s.DB.Query(`
		SELECT id, type FROM targets WHERE end_date < $1
	`, today)
	if err != nil {
		return err
	}
	defer rows.Close()

	type expired struct {
		id         string
		targetType string
	}
	var expiredTargets []expired
	for rows.Next() {
		var e expired
		if err := rows.Scan(&e.id, &e.targetType); err != nil {
			return err
		}
		expiredTargets = append(expiredTargets, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rolled := 0
	for _, e := range expiredTargets {
		// end_date is stored inclusive, matching the target table.
		startDate, endDate := utils.PeriodWindow(e.targetType, now)
		endDate = endDate.AddDate(0, 0, -1)
		_, err := s.DB.Exec(`
			UPDATE targets
			SET start_date = $1, end_date = $2, current_value = 0, updated_at = NOW()
			WHERE id = $3
		`, startDate, endDate, e.id)
		if err != nil {
			s.Logger.Error("failed to roll target", zap.String("target_id", e.id), zap.Error(err))
			continue
		}
		rolled++
	}

	if rolled > 0 {
		s.Logger.Info("rolled expired targets", zap.Int("count", rolled))
	}
	return nil
}

// postponeOverdueTasks flags pending follow-up tasks whose due date has
// passed so coordinators see them resurface instead of silently aging.
func (s *Scheduler) postponeOverdueTasks() error {
	today := utils.FormatDate(time.Now().In(utils.BusinessLocation))

	result, err := s.DB.Exec(`
		UPDATE follow_up_tasks SET status = 'postponed', updated_at = NOW()
		WHERE status = 'pending' AND due_date < $1
	`, today)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected > 0 {
		s.Logger.Info("postponed overdue follow-up tasks", zap.Int64("count", affected))
	}
	return nil
}
