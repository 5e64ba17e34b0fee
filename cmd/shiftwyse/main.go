package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/shiftwyse/shiftwyse/client"
	"github.com/shiftwyse/shiftwyse/internal/config"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/internal/infra/database"
	"github.com/shiftwyse/shiftwyse/internal/infra/gateway"
	"github.com/shiftwyse/shiftwyse/internal/infra/repository"
	"github.com/shiftwyse/shiftwyse/internal/present/rest"
	"github.com/shiftwyse/shiftwyse/internal/present/rest/middleware"
	"github.com/shiftwyse/shiftwyse/internal/service"
	"github.com/shiftwyse/shiftwyse/internal/usecase"
	"github.com/shiftwyse/shiftwyse/policy"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to set up tracer: " + err.Error())
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	domainConf := domain.Config{
		AppID:            conf.App.ID,
		PrivilegedPrefix: conf.App.PrivilegedPrefix,
		SessionSecret:    conf.App.SessionSecret,
	}

	messageRepo := repository.NewMessageRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	mentorRepo := repository.NewMentorRepository(db, mc)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	inferrer := gateway.NewInferenceGateway(conf.Inference.Endpoint, conf.Inference.APIKey, conf.Inference.Model)
	summarizer := gateway.NewSimulatedSummarizer(0)

	signal := service.NewSignalService(rdb)
	idClient := client.New(conf.Identity.Endpoint, conf.Identity.APIKey)
	pol := policy.New(conf.App.PrivilegedPrefix)
	auth := service.NewAuthService(domainConf, idClient, pol, time.Duration(conf.App.SessionTTLHours)*time.Hour)

	chat := usecase.NewChatUsecase(domainConf, messageRepo, inferrer, signal)
	snapshots := usecase.NewSnapshotUsecase(domainConf, snapshotRepo, signal)
	mentors := usecase.NewMentorUsecase(domainConf, mentorRepo, signal)
	analytics := usecase.NewAnalyticsUsecase(domainConf, analyticsRepo, signal)
	knowledge := usecase.NewKnowledgeUsecase(domainConf, insightRepo, summarizer, signal)

	handler := rest.NewHandler(domainConf, auth, chat, snapshots, mentors, analytics, knowledge, signal)
	authMiddleware := middleware.NewAuthMiddleware(auth, domainConf)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("shiftwyse"))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTracer(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := provider.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("failed to shut down tracer provider",
				slog.String("error", err.Error()),
				slog.String("module", "main"),
			)
		}
	}, nil
}
