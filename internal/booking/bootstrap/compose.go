package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tidywork/internal/booking/adapters/in/in_amqp"
	"tidywork/internal/booking/adapters/in/transport"
	"tidywork/internal/booking/adapters/out/journal"
	"tidywork/internal/booking/adapters/out/out_amqp"
	"tidywork/internal/booking/adapters/out/remoteapi"
	"tidywork/internal/booking/adapters/out/tracking"
	ports "tidywork/internal/booking/application/ports/out"
	"tidywork/internal/booking/application/usecase"
	"tidywork/internal/booking/store"
	"tidywork/internal/shared/auth"
	"tidywork/internal/shared/config"
	"tidywork/internal/shared/logger"
	"tidywork/internal/shared/mq"
)

// Run запускает worker agent: стор, реконсилер, трекер и HTTP поверхность.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{
		Action:   "worker_agent_starting",
		Message:  "initializing worker agent",
		WorkerID: cfg.Worker.ID,
	})

	st := store.NewStore(cfg.Worker.ID)

	// 1. Remote Booking Service (или демо-реализация — решается внутри New)
	remote := remoteapi.New(cfg, log)

	// 2. Опциональный журнал переходов
	var jrnl ports.Journal
	if cfg.Journal.Enabled() {
		pg, err := journal.NewPgJournal(ctx, cfg.Journal)
		if err != nil {
			// Журнал — вспомогательный: агент работает и без него.
			log.Error(logger.Entry{
				Action:  "journal_init_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		} else {
			jrnl = pg
			defer pg.Close()
		}
	}

	// 3. Push-канал и presence (в демо-режиме брокер не нужен)
	var presence ports.PresencePublisher
	var stream ports.PushStream
	if !cfg.DemoMode {
		mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal(logger.Entry{
				Action:  "rabbitmq_connection_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
		defer mqConn.Close()

		if err := mq.SetupTopology(mqConn, cfg.Worker.ID, log); err != nil {
			log.Error(logger.Entry{
				Action:  "rabbitmq_topology_setup_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
			// Не падаем если топология уже создана
		}

		presence = out_amqp.NewPresencePublisher(mqConn, log)

		consumer, err := in_amqp.Subscribe(ctx, mqConn, cfg.Worker.ID, log)
		if err != nil {
			log.Fatal(logger.Entry{
				Action:  "push_channel_subscribe_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
		defer func() { _ = consumer.Close() }()
		stream = consumer
	}

	// 4. Координатор трекинга локации
	tracker := tracking.NewWSTracker(cfg.Tracking, nil, log)

	// 5. Поверхность действий
	actions := usecase.NewActions(st, remote, tracker, jrnl, presence, log, cfg.Worker.ID)

	// 6. Начальная загрузка; дальше стор живет на push-событиях
	if err := actions.FetchAll(ctx); err != nil {
		log.Error(logger.Entry{
			Action:  "initial_load_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		// Пустой стор заполнится push-событиями и ручным refresh
	}

	// 7. Реконсилер
	if stream != nil {
		reconciler := usecase.NewReconciler(st, stream, tracker, jrnl, log)
		go reconciler.Run(ctx)
	}

	// 8. HTTP поверхность
	jwtService := auth.NewJWTService(cfg.JWT)
	handler := transport.NewHandler(actions, st, log)
	router := transport.NewRouter(handler, jwtService, cfg.Worker.ID, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info(logger.Entry{
		Action:   "worker_agent_started",
		Message:  fmt.Sprintf("listening on :%d", cfg.HTTP.Port),
		WorkerID: cfg.Worker.ID,
	})

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(logger.Entry{
			Action:  "http_server_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	log.Info(logger.Entry{
		Action:  "worker_agent_stopped",
		Message: "shutdown complete",
	})
}
