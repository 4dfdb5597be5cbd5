package di

import (
	"fmt"

	"DeskStream/internal/domain/repository"
	"DeskStream/internal/handler/api"
	mid "DeskStream/internal/middleware"
	internalrepo "DeskStream/internal/repository"
	"DeskStream/internal/service/stream"
	"DeskStream/internal/usecase"
	"DeskStream/pkg/cache"
	"DeskStream/pkg/config"
	xhttp "DeskStream/pkg/http"
	pkgkafka "DeskStream/pkg/kafka"
	applogger "DeskStream/pkg/logger"
	"DeskStream/pkg/metrics"
	"DeskStream/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideStateStore creates the reconciled store seeded with the ticker universe.
func ProvideStateStore(cfg *config.Config, m repository.Metrics) *internalrepo.StateStore {
	store := internalrepo.NewStateStore(cfg.Store.LogCapacity, internalrepo.WithRecorder(m))
	store.Seed(cfg.Store.SeedTickers)
	return store
}

// ProvideTransport selects the feed transport.
func ProvideTransport(cfg *config.Config) (repository.Transport, error) {
	feed := cfg.Feed
	switch feed.Transport {
	case config.TransportSSE:
		return stream.NewSSETransport(xhttp.NewClient(xhttp.WithTimeout(0)), feed.URL), nil
	case config.TransportWebSocket:
		return stream.NewWSTransport(feed.URL, feed.PingInterval), nil
	case config.TransportKafka:
		return stream.NewKafkaTransport(feed.Kafka.Topic,
			pkgkafka.WithBrokers(feed.Kafka.Brokers),
			pkgkafka.WithGroupID(feed.Kafka.GroupID),
			pkgkafka.WithFetchBytes(feed.Kafka.MinBytes, feed.Kafka.MaxBytes),
			pkgkafka.WithLatest(),
		), nil
	default:
		return nil, fmt.Errorf("unknown feed transport %q", feed.Transport)
	}
}

func ProvideGate() *mid.Gate {
	return mid.NewGate()
}

func ProvideNormalizer(cfg *config.Config) *usecase.Normalizer {
	return usecase.NewNormalizer(usecase.NewBadgeTable(cfg.Badges))
}

// ProvideFeedSupervisor creates one session per configured scope.
func ProvideFeedSupervisor(
	cfg *config.Config,
	transport repository.Transport,
	gate *mid.Gate,
	norm *usecase.Normalizer,
	store *internalrepo.StateStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.FeedSupervisor {
	sessions := make([]*usecase.FeedSession, 0, len(cfg.Feed.Scopes))
	for _, scope := range cfg.Feed.Scopes {
		sessions = append(sessions, usecase.NewFeedSession(
			usecase.SessionConfig{
				Scope:                 scope,
				BackoffMin:            cfg.Feed.BackoffMin,
				BackoffMax:            cfg.Feed.BackoffMax,
				DialsPerMinute:        cfg.Feed.DialsPerMinute,
				ResubscribeOnComplete: cfg.Feed.ResubscribeOnComplete,
			},
			transport, gate, norm, store, m, l,
		))
	}
	return usecase.NewFeedSupervisor(l, sessions...)
}

func ProvidePortfolioBook() *usecase.PortfolioBook {
	return usecase.NewPortfolioBook()
}

// ProvideAccountPoller returns nil when no account source is configured.
func ProvideAccountPoller(
	cfg *config.Config,
	store *internalrepo.StateStore,
	book *usecase.PortfolioBook,
	l *applogger.Logger,
) (*usecase.AccountPoller, func(), error) {
	acc := cfg.Account
	switch acc.Source {
	case config.AccountNone:
		return nil, func() {}, nil
	case config.AccountRedis:
		rc := cache.NewRedisCache(
			cache.WithRedisAddr(acc.Redis.Addr),
			cache.WithRedisAuth(acc.Redis.Password, acc.Redis.DB),
		)
		src := internalrepo.NewRedisAccountSource(rc, acc.Redis.Key)
		cleanup := func() {
			if err := rc.Close(); err != nil {
				l.Warn("redis close error", applogger.Error(err))
			}
		}
		return usecase.NewAccountPoller(src, store, book, acc.Timeout, l), cleanup, nil
	case config.AccountHTTP:
		client := xhttp.NewClient(xhttp.WithTimeout(acc.Timeout), xhttp.WithRetries(2))
		src := internalrepo.NewHTTPAccountSource(client, acc.HTTP.URL)
		return usecase.NewAccountPoller(src, store, book, acc.Timeout, l), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown account source %q", acc.Source)
	}
}

func ProvideBroker(store *internalrepo.StateStore, l *applogger.Logger) *api.Broker {
	return api.NewBroker(store, 0, l)
}

func ProvideDashboardHandler(
	store *internalrepo.StateStore,
	book *usecase.PortfolioBook,
	broker *api.Broker,
	l *applogger.Logger,
) *api.DashboardHandler {
	return api.NewDashboardHandler(store, book, broker, l)
}

// ProvideHTTPServer builds the echo server for the display surface.
func ProvideHTTPServer(
	cfg *config.Config,
	handler *api.DashboardHandler,
	reg *prometheus.Registry,
	l *applogger.Logger,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer([]xhttp.Handler{handler}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	feeds *usecase.FeedSupervisor,
	poller *usecase.AccountPoller,
	broker *api.Broker,
	httpServer *xhttp.Server,
) *server.App {
	return server.New(cfg, l, feeds, poller, broker, httpServer)
}
