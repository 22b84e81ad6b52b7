package timer

import (
	"container/heap"
	"errors"
	"sync"
	"time"
)

// ErrSchedulerStopped is returned when scheduling after Stop.
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// idleWait bounds the sleep when no task is queued.
const idleWait = 24 * time.Hour

// task is one scheduled callback.
type task struct {
	// id identifies the task; rescheduling the same id replaces the task.
	id string
	// deadline is when the callback should fire.
	deadline time.Time
	// callback runs on its own goroutine once the deadline passes.
	callback func()
	// index is the task's position in the heap.
	index int
}

// taskHeap is a min-heap of tasks ordered by deadline.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t, _ := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]

	return t
}

// Scheduler runs callbacks at requested instants.
type Scheduler struct {
	// mu protects the heap, the id index and the stopped flag.
	mu sync.Mutex
	// heap orders pending tasks by deadline.
	heap taskHeap
	// tasks indexes pending tasks by id.
	tasks map[string]*task
	// wakeup interrupts the run loop when an earlier task arrives.
	wakeup chan struct{}
	// stopCh terminates the run loop.
	stopCh chan struct{}
	// stopped is set once Stop has been called.
	stopped bool
}

// NewScheduler creates a scheduler; call Start before scheduling.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		tasks:  make(map[string]*task),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}

	heap.Init(&s.heap)

	return s
}

// Start launches the scheduler loop.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop cancels all pending tasks and terminates the loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.stopped = true
	s.heap = nil
	s.tasks = make(map[string]*task)

	close(s.stopCh)
}

// At schedules callback to run at the given instant. An existing task with
// the same id is replaced.
func (s *Scheduler) At(id string, when time.Time, callback func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	if existing, ok := s.tasks[id]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.tasks, id)
	}

	t := &task{
		id:       id,
		deadline: when,
		callback: callback,
	}

	heap.Push(&s.heap, t)
	s.tasks[id] = t

	// Wake the loop only when the new task became the earliest one.
	if s.heap[0] == t {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// After schedules callback to run once the duration elapses.
func (s *Scheduler) After(id string, d time.Duration, callback func()) error {
	return s.At(id, time.Now().Add(d), callback)
}

// Cancel removes a pending task, reporting whether one existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false
	}

	heap.Remove(&s.heap, t.index)
	delete(s.tasks, id)

	return true
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tasks)
}

// run sleeps until the earliest deadline, firing due tasks as it goes.
func (s *Scheduler) run() {
	for {
		s.mu.Lock()

		if s.stopped {
			s.mu.Unlock()

			return
		}

		wait := idleWait

		if s.heap.Len() > 0 {
			wait = time.Until(s.heap[0].deadline)

			if wait <= 0 {
				due, _ := heap.Pop(&s.heap).(*task)
				delete(s.tasks, due.id)
				s.mu.Unlock()

				go due.callback()

				continue
			}
		}

		s.mu.Unlock()

		sleep := time.NewTimer(wait)
		select {
		case <-sleep.C:
		case <-s.wakeup:
			sleep.Stop()
		case <-s.stopCh:
			sleep.Stop()

			return
		}
	}
}
