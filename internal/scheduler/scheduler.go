// Package scheduler keeps time-driven control tasks and answers "is it time
// yet". It runs no loop of its own; a driver polls DueTasks and invokes the
// returned callbacks.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// rolloverCron backs rollover tasks after their first, calendar-derived
// firing: Friday 17:00, the weekly futures close.
const rolloverCron = "0 17 * * 5"

// Task is a named cron-backed trigger. NextRun advances each time the task
// is returned by DueTasks.
type Task struct {
	Name     string
	Cron     string
	Callback func()
	NextRun  time.Time

	schedule cron.Schedule
}

// Scheduler is the named-task registry. Safe for concurrent use.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*Task
	now   func() time.Time // swappable for tests
}

func New() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// AddCron registers a task under name, replacing any existing task with the
// same name. The first run is the next instant matching expr after now; a
// malformed expression is rejected up front.
func (s *Scheduler) AddCron(name, expr string, callback func()) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("cron expression %q: %w", expr, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[name] = &Task{
		Name:     name,
		Cron:     expr,
		Callback: callback,
		NextRun:  schedule.Next(s.now()),
		schedule: schedule,
	}
	return nil
}

// DueTasks returns every task whose NextRun has passed (inclusive) and
// advances each returned task's NextRun relative to now. Tasks not due are
// untouched. Results are ordered by name.
func (s *Scheduler) DueTasks(now time.Time) []*Task {
	if now.IsZero() {
		now = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Task
	for _, task := range s.tasks {
		if !task.NextRun.After(now) {
			due = append(due, task)
			task.NextRun = task.schedule.Next(now)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Name < due[j].Name })
	return due
}

// ScheduleRollover registers a contract-rollover trigger for symbol. The
// first firing is the next market close on the given calendar; subsequent
// firings follow the weekly cron.
func (s *Scheduler) ScheduleRollover(symbol string, cal *Calendar, calendar string, callback func(symbol string)) {
	_, closeAt := cal.NextOpenClose(calendar, s.now())
	schedule, _ := cron.ParseStandard(rolloverCron)

	s.mu.Lock()
	defer s.mu.Unlock()
	name := "rollover:" + symbol
	s.tasks[name] = &Task{
		Name:     name,
		Cron:     rolloverCron,
		Callback: func() { callback(symbol) },
		NextRun:  closeAt,
		schedule: schedule,
	}
}

// Remove deletes a task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, name)
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
