package di

import (
	"context"
	"fmt"
	"time"

	domrepo "GigCredit/internal/domain/repository"
	domsvc "GigCredit/internal/domain/service"
	"GigCredit/internal/handler/api"
	internalrepo "GigCredit/internal/repository"
	icache "GigCredit/internal/service/cache"
	"GigCredit/internal/service/ratelimit"
	"GigCredit/internal/service/recalc"
	"GigCredit/internal/services/scoring"
	"GigCredit/internal/usecase"
	pkgcache "GigCredit/pkg/cache"
	pkgch "GigCredit/pkg/clickhouse"
	"GigCredit/pkg/config"
	xhttp "GigCredit/pkg/http"
	pkgkafka "GigCredit/pkg/kafka"
	applogger "GigCredit/pkg/logger"
	"GigCredit/pkg/metrics"
	pkgmongo "GigCredit/pkg/mongo"
	"GigCredit/pkg/queue"
	"GigCredit/pkg/server"
)

const initTimeout = 10 * time.Second

// Stores groups the persistence backends selected by store.backend and
// clickhouse.enabled.
type Stores struct {
	Profiles domrepo.ProfileStore
	Loans    domrepo.LoanStore
	Ledger   domrepo.TransactionStore
}

// ProvideLogger creates the application logger from the log section. With
// log.collector set, repeated errors are also shipped to kafka.topics.logs.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if collectLogs(cfg, producer) {
		l.AddCollector(&applogger.CollectionConfig{
			Service:        "gigcredit",
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topics.Logs,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("service", "gigcredit"), applogger.String("env", cfg.Environment)), nil
}

func collectLogs(cfg *config.Config, producer *pkgkafka.Producer) bool {
	return cfg.Log.Collector && producer != nil && cfg.Kafka.Topics.Logs != ""
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideMongoClient connects to MongoDB. It returns nil for the memory backend.
func ProvideMongoClient(cfg *config.Config, log *applogger.Logger) (*pkgmongo.Client, error) {
	if cfg.Store.Backend != "mongo" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	client, err := pkgmongo.NewClient(ctx,
		pkgmongo.WithURI(cfg.Mongo.URI),
		pkgmongo.WithDatabase(cfg.Mongo.Database),
		pkgmongo.WithTimeouts(cfg.Mongo.ConnectTimeout, cfg.Mongo.QueryTimeout),
		pkgmongo.WithPool(0, cfg.Mongo.MaxPoolSize, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo client: %w", err)
	}
	log.Info("mongo: connected",
		applogger.String("uri", pkgmongo.RedactURI(cfg.Mongo.URI)),
		applogger.String("database", cfg.Mongo.Database))
	return client, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRedisCache connects to Redis, or returns nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideStores picks Mongo or memory for profiles and loans, and ClickHouse
// or memory for the transaction ledger. Indexes and tables are created here.
func ProvideStores(mongo *pkgmongo.Client, ch *pkgch.Client, log *applogger.Logger) (Stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	mem := internalrepo.NewMemoryStore()
	stores := Stores{Profiles: mem, Loans: mem.Loans(), Ledger: mem.Ledger()}

	if mongo != nil {
		profiles := internalrepo.NewMongoProfileStore(mongo)
		if err := profiles.EnsureIndexes(ctx); err != nil {
			return Stores{}, fmt.Errorf("profile indexes: %w", err)
		}
		loans := internalrepo.NewMongoLoanStore(mongo)
		if err := loans.EnsureIndexes(ctx); err != nil {
			return Stores{}, fmt.Errorf("loan indexes: %w", err)
		}
		stores.Profiles, stores.Loans = profiles, loans
	}

	if ch != nil {
		ledger := internalrepo.NewCHTransactionStore(ch)
		ledger.SetLogger(log)
		stores.Ledger = ledger
	}
	if err := stores.Ledger.Init(ctx); err != nil {
		return Stores{}, fmt.Errorf("ledger init: %w", err)
	}
	return stores, nil
}

// ProvideCacheService returns the Redis-backed cache, falling back to an
// in-process cache when Redis is disabled.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service {
	if rc == nil {
		return pkgcache.NewMemoryCache()
	}
	return rc
}

// ProvideQueue returns a Redis list queue when Redis is enabled and an
// in-process queue otherwise.
func ProvideQueue(cfg *config.Config, rc *pkgcache.RedisCache, log *applogger.Logger) queue.Queue {
	qc := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	if rc == nil {
		return queue.NewLocalQueue(log, qc)
	}
	var opts []queue.RedisQueueOption
	if rc.Prefix() != "" {
		opts = append(opts, queue.WithKeyPrefix(pkgcache.Key(rc.Prefix(), "queue")))
	}
	return queue.NewRedisQueue(log, qc, rc.Client(), opts...)
}

// ProvideEventPublisher publishes domain events to Kafka, or drops them when
// Kafka is disabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.EventPublisher {
	if producer == nil {
		return internalrepo.NopEventPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topics.Events)
}

// ProvideScorer creates the scoring engine.
func ProvideScorer() domsvc.CreditScorer {
	return scoring.NewEngine()
}

// ProvideCreditUsecase builds the scoring flow together with its profile
// cache and the deferred recalculation job.
func ProvideCreditUsecase(
	cfg *config.Config,
	scorer domsvc.CreditScorer,
	stores Stores,
	cacheSvc pkgcache.Service,
	jobs queue.Queue,
	pub domrepo.EventPublisher,
	m domrepo.Metrics,
	log *applogger.Logger,
) *usecase.CreditProfileUsecase {
	profileCache := icache.NewProfileCache(cacheSvc, cfg.Cache.ProfileTTL, log)
	credit := usecase.NewCreditProfileUsecase(scorer, stores.Profiles, stores.Ledger, profileCache, nil, pub, m, log)

	jobs.RegisterJob(recalc.NewJob(credit, cacheSvc, log))
	credit.SetScheduler(recalc.NewScheduler(cacheSvc, jobs, cfg.Cache.RecalcLockTTL))
	return credit
}

// ProvideEligibility evaluates borrowers against their stored profile.
func ProvideEligibility(credit *usecase.CreditProfileUsecase) *usecase.EligibilityUsecase {
	return usecase.NewEligibilityUsecase(credit)
}

// ProvideMarketplace creates the loan marketplace.
func ProvideMarketplace(
	stores Stores,
	eligibility *usecase.EligibilityUsecase,
	pub domrepo.EventPublisher,
	m domrepo.Metrics,
	log *applogger.Logger,
) *usecase.LoanMarketplace {
	return usecase.NewLoanMarketplace(stores.Loans, eligibility, pub, m, log)
}

// ProvideLimiter creates the per-caller API rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideRouter mounts the API handlers and registers one health check per
// enabled dependency.
func ProvideRouter(
	credit *api.CreditHandler,
	loans *api.LoanHandler,
	lender *api.LenderHandler,
	limiter *ratelimit.Limiter,
	mongo *pkgmongo.Client,
	rc *pkgcache.RedisCache,
	ch *pkgch.Client,
	stores Stores,
) *api.Router {
	r := api.NewRouter(credit, loans, lender, limiter)
	if mongo != nil {
		r.AddHealthCheck("mongo", mongo)
	}
	if rc != nil {
		r.AddHealthCheck("redis", api.HealthFunc(func(ctx context.Context) error {
			return rc.Client().Ping(ctx).Err()
		}))
	}
	r.AddHealthCheck("ledger", stores.Ledger)
	return r
}

// ProvideHTTPServer creates the Echo server from the server section.
func ProvideHTTPServer(cfg *config.Config, router *api.Router, log *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowedOrigins),
		xhttp.WithLogger(log),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path))
	}
	return xhttp.NewServer(router, opts...)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when Kafka or the transactions topic is disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.Topics.Transactions == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.TraceHook())
	return consumer, nil
}

// ProvideTransactionsHandler ingests transaction batches from Kafka.
func ProvideTransactionsHandler(cfg *config.Config, credit *usecase.CreditProfileUsecase, m domrepo.Metrics) *usecase.KafkaTransactionsHandler {
	return usecase.NewKafkaTransactionsHandler(cfg.Kafka.Topics.Transactions, credit, m)
}

// ProvideApp assembles the application and registers every resource it must
// release. Closers run in reverse, so the log collector flushes before the
// producer it ships through is closed.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	jobs queue.Queue,
	consumer *pkgkafka.Consumer,
	txHandler *usecase.KafkaTransactionsHandler,
	mongo *pkgmongo.Client,
	rc *pkgcache.RedisCache,
	ch *pkgch.Client,
	stores Stores,
	producer *pkgkafka.Producer,
	pub domrepo.EventPublisher,
) *server.App {
	opts := []server.Option{
		server.WithQueue(jobs),
		server.WithConsumer(consumer, txHandler),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	}
	if mongo != nil {
		opts = append(opts, server.WithCloser("mongo", mongo.Close))
	}
	if rc != nil {
		opts = append(opts, server.WithCloser("redis", rc.Close))
	}
	if ch != nil {
		opts = append(opts, server.WithCloser("clickhouse", ch.Close))
	}
	opts = append(opts, server.WithCloser("ledger", stores.Ledger.Close))
	if producer != nil {
		opts = append(opts, server.WithCloser("event publisher", pub.Close))
	}
	if collectLogs(cfg, producer) {
		opts = append(opts, server.WithCloser("log collector", func() error {
			log.RemoveCollector()
			return nil
		}))
	}
	return server.New(log, httpServer, opts...)
}
