package usecase

import (
	"context"
	"sync"

	applogger "DeskStream/pkg/logger"
)

// FeedSupervisor runs one session per configured scope. Sessions run
// concurrently and share the store.
type FeedSupervisor struct {
	sessions []*FeedSession
	log      *applogger.Logger
}

func NewFeedSupervisor(l *applogger.Logger, sessions ...*FeedSession) *FeedSupervisor {
	return &FeedSupervisor{sessions: sessions, log: l}
}

func (s *FeedSupervisor) Start(ctx context.Context) {
	scopes := make([]string, 0, len(s.sessions))
	for _, fs := range s.sessions {
		fs.Start(ctx)
		scopes = append(scopes, fs.Scope())
	}
	s.log.Info("feeds started", applogger.Strings("scopes", scopes))
}

// Stop stops every session and waits for all of them.
func (s *FeedSupervisor) Stop() {
	var wg sync.WaitGroup
	for _, fs := range s.sessions {
		wg.Add(1)
		go func(fs *FeedSession) {
			defer wg.Done()
			fs.Stop()
		}(fs)
	}
	wg.Wait()
	s.log.Info("feeds stopped")
}

func (s *FeedSupervisor) Sessions() []*FeedSession {
	return s.sessions
}
