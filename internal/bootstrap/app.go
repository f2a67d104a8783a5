package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "pettech-backend/internal/app"
	"pettech-backend/internal/cache"
	"pettech-backend/internal/config"
	"pettech-backend/internal/errs"
	"pettech-backend/internal/metrics"
	"pettech-backend/internal/model"
	"pettech-backend/internal/platform/database"
	"pettech-backend/internal/platform/logger"
	rabbitmqClient "pettech-backend/internal/platform/rabbitmq"
	redisClient "pettech-backend/internal/platform/redis"
	"pettech-backend/internal/repository"
	"pettech-backend/internal/vision"
	"pettech-backend/internal/worker"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *gorm.DB
	Redis   *redis.Client
	MQConn  *amqp.Connection
	Engine  vision.Engine
	Metrics *metrics.Metrics

	Registration *appsvc.RegistrationService
	Appointments *appsvc.AppointmentService
	Classifier   *vision.Classifier
	NotifyWorker *worker.AppointmentNotifyWorker

	StartedAt time.Time
}

// Deps are the already-opened resources Assemble builds services on.
// Redis and MQConn may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Engine vision.Engine
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.Install(cfg.Log.Level, cfg.Log.Format, cfg.App.Name)

	var deps Deps
	release := func() {
		partial := &App{DB: deps.DB, Redis: deps.Redis, MQConn: deps.MQConn, Engine: deps.Engine, Logger: log}
		_ = partial.Close()
	}

	deps.DB, err = database.New(ctx, database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.DSN(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connected", "driver", cfg.Database.Driver)

	if cfg.Redis.Addr != "" {
		deps.Redis, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			release()
			return nil, err
		}
		log.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	if cfg.RabbitMQ.URL != "" {
		deps.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			release()
			return nil, err
		}
		log.Info("rabbitmq connected", "queue", cfg.RabbitMQ.AppointmentQueue)
	}

	engine, err := vision.NewONNXEngine(cfg.Vision.ModelPath, cfg.Vision.ONNXSharedLibPath)
	if err != nil {
		release()
		return nil, fmt.Errorf("load model failed: %w", err)
	}
	deps.Engine = engine
	log.Info("model loaded", "path", cfg.Vision.ModelPath, "input_shape", engine.InputShape())

	a, err := Assemble(ctx, cfg, log, deps)
	if err != nil {
		release()
		return nil, err
	}
	return a, nil
}

// Assemble builds repositories, services and the classifier on top of deps.
func Assemble(ctx context.Context, cfg *config.Config, log *slog.Logger, deps Deps) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	if cfg.Database.AutoMigrate {
		if err := deps.DB.AutoMigrate(&model.Owner{}, &model.Appointment{}); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
	}

	passwords, err := appsvc.NewPasswordHasher(cfg.Auth.PasswordMode)
	if err != nil {
		return nil, err
	}

	ownerRepo := repository.NewOwnerRepository(deps.DB)
	appointmentRepo := repository.NewAppointmentRepository(deps.DB)

	var publisher appsvc.AppointmentPublisher
	if deps.MQConn != nil {
		publisher = rabbitmqClient.NewAppointmentPublisher(deps.MQConn, cfg.RabbitMQ.AppointmentQueue)
	}

	m := metrics.New()

	store, err := vision.NewArtifactStore(cfg.Vision.UploadDir)
	if err != nil {
		return nil, err
	}

	opts := vision.Options{Observer: m, Logger: log}
	if deps.Redis != nil {
		ttl := time.Duration(cfg.Redis.PredictionTTLSeconds) * time.Second
		opts.Cache = cache.NewPredictionCache(deps.Redis, ttl, filepath.Base(cfg.Vision.ModelPath))
	}
	classifier, err := vision.NewClassifier(deps.Engine, store, cfg.Vision.InputSize, opts)
	if err != nil {
		return nil, fmt.Errorf("configure classifier failed: %w", err)
	}

	a := &App{
		Config:       cfg,
		Logger:       log,
		DB:           deps.DB,
		Redis:        deps.Redis,
		MQConn:       deps.MQConn,
		Engine:       deps.Engine,
		Metrics:      m,
		Registration: appsvc.NewRegistrationService(ownerRepo, passwords),
		Appointments: appsvc.NewAppointmentService(appointmentRepo, publisher, log),
		Classifier:   classifier,
		StartedAt:    time.Now(),
	}

	if deps.MQConn != nil {
		notifyWorker := worker.NewAppointmentNotifyWorker(
			deps.MQConn,
			worker.LogNotifier{Logger: log},
			cfg.RabbitMQ.AppointmentQueue,
			log,
		)
		if err := notifyWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start appointment worker failed: %w", err)
		}
		a.NotifyWorker = notifyWorker
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var closeErr error
	if a.NotifyWorker != nil {
		a.NotifyWorker.Close()
	}
	if a.Engine != nil {
		if err := a.Engine.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if err := database.Close(a.DB); err != nil {
		closeErr = err
	}
	if closeErr != nil && a.Logger != nil {
		a.Logger.Warn("close resources failed", "err", errs.Loggable(closeErr))
	}
	return closeErr
}
