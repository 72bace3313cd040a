package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize    = 1024 // Circular buffer size
	MaxEventsPerSec    = 10000
	BatchFlushInterval = 100 * time.Millisecond
)

// EventLog provides bounded, rate-limited JSONL event logging with an async
// writer, so gameplay ticks never block on disk.
type EventLog struct {
	// Circular buffer (single producer: the engine tick)
	buffer    [EventBufferSize]Event
	writeHead uint64 // atomic - producer position
	readHead  uint64 // consumer position, writer goroutine only

	limiter *rate.Limiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	// observer is invoked synchronously for every emitted event, even when
	// persistence is off. Set once before the engine starts.
	observer func(Event)

	// Stats for monitoring
	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// NewEventLog creates a new bounded event log
func NewEventLog() *EventLog {
	return &EventLog{
		limiter:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan: make(chan struct{}),
	}
}

// Start begins the async writer goroutine. An empty filePath disables
// persistence but keeps the in-memory buffer for stats.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}

	el.filePath = filePath
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(1)
	go el.writerLoop()

	return nil
}

// Stop gracefully shuts down the event log
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// SetObserver registers a synchronous event callback (metrics). Must be
// called before Start.
func (el *EventLog) SetObserver(fn func(Event)) {
	el.observer = fn
}

// Emit adds an event, dropping it when rate limited or the buffer laps the
// writer. Returns whether the event was accepted.
func (el *EventLog) Emit(event Event) bool {
	if el.observer != nil {
		el.observer(event)
	}

	if !el.running.Load() {
		return false
	}

	if !el.limiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}

	head := atomic.AddUint64(&el.writeHead, 1)
	event.Sequence = head
	el.buffer[head%EventBufferSize] = event
	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// writerLoop drains the buffer to disk in batches.
func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			el.flush()
			return
		case <-ticker.C:
			el.flush()
		}
	}
}

func (el *EventLog) flush() {
	if el.file == nil {
		return
	}

	head := atomic.LoadUint64(&el.writeHead)
	if el.readHead >= head {
		return
	}
	// If the producer lapped us, skip to the oldest event still present.
	if head-el.readHead > EventBufferSize {
		el.readHead = head - EventBufferSize
	}

	el.fileMu.Lock()
	defer el.fileMu.Unlock()

	for el.readHead < head {
		el.readHead++
		ev := el.buffer[el.readHead%EventBufferSize]
		line, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		el.file.Write(append(line, '\n'))
	}
}

// Stats returns journal counters for monitoring.
func (el *EventLog) Stats() map[string]uint64 {
	return map[string]uint64{
		"total":   atomic.LoadUint64(&el.totalCount),
		"dropped": atomic.LoadUint64(&el.droppedCount),
	}
}
