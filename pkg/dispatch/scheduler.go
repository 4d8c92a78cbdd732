package dispatch

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs callbacks on the consumer goroutine, either on the next Tick
// or on the first Tick after a delay has elapsed.
type Scheduler struct {
	queue *Queue[func()]
	log   *zap.Logger

	mut_timers sync.Mutex
	timers     map[*time.Timer]struct{}
	stopped    bool
}

type SchedulerParams struct {
	Logger *zap.Logger
}

func CreateScheduler(params SchedulerParams) *Scheduler {
	logger := params.Logger
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}

	return &Scheduler{
		queue:      CreateQueue[func()](),
		log:        logger.With(zap.String("component", "Scheduler")),
		mut_timers: sync.Mutex{},
		timers:     make(map[*time.Timer]struct{}),
	}
}

func (s *Scheduler) Run(fn func()) {
	s.queue.Enqueue(fn)
}

func (s *Scheduler) RunAfter(delay time.Duration, fn func()) {
	s.mut_timers.Lock()
	defer s.mut_timers.Unlock()

	if s.stopped {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mut_timers.Lock()
		_, pending := s.timers[timer]
		delete(s.timers, timer)
		s.mut_timers.Unlock()

		if pending {
			s.queue.Enqueue(fn)
		}
	})
	s.timers[timer] = struct{}{}
}

// Tick runs every callback that was due when it was called. Panics are
// logged and do not stop the remaining callbacks.
func (s *Scheduler) Tick() int {
	return s.queue.Drain(s.safeRun)
}

func (s *Scheduler) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled callback panicked", zap.Error(fmt.Errorf("%v", r)))
		}
	}()
	fn()
}

// Stop cancels every pending delayed callback and rejects new ones. Callbacks
// already queued still run on the next Tick.
func (s *Scheduler) Stop() {
	s.mut_timers.Lock()
	defer s.mut_timers.Unlock()

	s.stopped = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}

func (s *Scheduler) Pending() int {
	s.mut_timers.Lock()
	defer s.mut_timers.Unlock()
	return len(s.timers) + s.queue.Len()
}
