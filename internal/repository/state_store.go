package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"DeskStream/internal/domain/models"
	drepo "DeskStream/internal/domain/repository"
)

// StateStore is the reconciled, in-memory view the display reads. Every
// mutation is atomic with respect to ReadAll. Nothing is persisted.
type StateStore struct {
	mu          sync.RWMutex
	log         *auditRing
	instruments map[string]models.InstrumentState
	metrics     models.GlobalMetrics
	feeds       map[string]*feedState
	version     uint64

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int

	recorder drepo.Metrics
	now      func() time.Time
}

type feedState struct {
	status   models.FeedStatus
	patterns map[string]struct{}
}

type StoreOption func(*StateStore)

// WithRecorder reports log and instrument counts after each mutation.
func WithRecorder(m drepo.Metrics) StoreOption {
	return func(s *StateStore) { s.recorder = m }
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *StateStore) { s.now = now }
}

func NewStateStore(logCapacity int, opts ...StoreOption) *StateStore {
	s := &StateStore{
		log:         newAuditRing(logCapacity),
		instruments: make(map[string]models.InstrumentState),
		feeds:       make(map[string]*feedState),
		subs:        make(map[int]chan struct{}),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed installs neutral placeholders for tickers not yet present. Tickers
// are folded the same way event tickers are; blanks are ignored.
func (s *StateStore) Seed(tickers []string) {
	s.mutate(func() {
		for _, t := range tickers {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, ok := s.instruments[t]; !ok {
				s.instruments[t] = models.NewInstrumentState(t)
			}
		}
	})
}

func (s *StateStore) AppendLog(entry models.AuditLogEntry) {
	s.mutate(func() {
		s.log.push(entry)
	})
}

// MergeInstrument applies patch field-wise, creating the instrument with
// neutral values if it is new.
func (s *StateStore) MergeInstrument(ticker string, patch models.InstrumentPatch) {
	s.mutate(func() {
		st, ok := s.instruments[ticker]
		if !ok {
			st = models.NewInstrumentState(ticker)
		}
		st.Apply(patch)
		s.instruments[ticker] = st
	})
}

// SetGlobalMetrics replaces the metrics as a whole.
func (s *StateStore) SetGlobalMetrics(m models.GlobalMetrics) {
	s.mutate(func() {
		s.metrics = m
	})
}

func (s *StateStore) SetLiveness(scope string, state models.Liveness) {
	s.mutate(func() {
		f := s.feed(scope)
		f.status.Liveness = state
		if state == models.LivenessLive {
			f.status.Completed = false
		}
		f.status.UpdatedAt = s.now()
	})
}

// MarkComplete records that the producer ended the stream.
func (s *StateStore) MarkComplete(scope string) {
	s.mutate(func() {
		f := s.feed(scope)
		f.status.Liveness = models.LivenessOffline
		f.status.Completed = true
		f.status.UpdatedAt = s.now()
	})
}

// RaiseWarning sets the scope's warning and reports whether pattern is new
// since the last ClearWarnings. Repeats change nothing.
func (s *StateStore) RaiseWarning(scope, pattern, message string) bool {
	s.mu.Lock()
	f := s.feed(scope)
	if _, seen := f.patterns[pattern]; seen {
		s.mu.Unlock()
		return false
	}
	f.patterns[pattern] = struct{}{}
	f.status.Warning = message
	f.status.UpdatedAt = s.now()
	s.version++
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *StateStore) ClearWarnings(scope string) {
	s.mutate(func() {
		f := s.feed(scope)
		f.status.Warning = ""
		f.patterns = make(map[string]struct{})
	})
}

// ReadAll returns a deep copy; later mutations do not affect it.
func (s *StateStore) ReadAll() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instruments := make(map[string]models.InstrumentState, len(s.instruments))
	for k, v := range s.instruments {
		instruments[k] = v
	}
	feeds := make([]models.FeedStatus, 0, len(s.feeds))
	for _, f := range s.feeds {
		feeds = append(feeds, f.status)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Scope < feeds[j].Scope })

	return models.Snapshot{
		Version:     s.version,
		TakenAt:     s.now(),
		Log:         s.log.newestFirst(),
		Instruments: instruments,
		Metrics:     s.metrics,
		Feeds:       feeds,
	}
}

// Subscribe returns a channel that receives a value after mutations.
// Notifications coalesce: a slow reader sees at most one pending signal
// and should call ReadAll to catch up. cancel releases the subscription.
func (s *StateStore) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *StateStore) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	logLen, instruments := s.log.len(), len(s.instruments)
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordStoreSize(logLen, instruments)
	}
	s.notify()
}

func (s *StateStore) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// feed must be called with mu held.
func (s *StateStore) feed(scope string) *feedState {
	f, ok := s.feeds[scope]
	if !ok {
		f = &feedState{
			status:   models.FeedStatus{Scope: scope, Liveness: models.LivenessConnecting},
			patterns: make(map[string]struct{}),
		}
		s.feeds[scope] = f
	}
	return f
}
