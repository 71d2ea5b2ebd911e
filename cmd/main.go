package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	admitReservationHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/admit_reservation"
	blockersHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/blockers"
	deleteReservationHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/delete_reservation"
	getLastSettingsHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/get_last_settings"
	getNotAvailableHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/get_not_available"
	getReservationHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/get_reservation"
	getPercentageHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/get_reservation_percentage"
	listCompanyHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/list_company_reservations"
	listObfuscatedHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/list_obfuscated_reservations"
	listReservationsHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/list_reservations"
	recommendSlotsHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/recommend_slots"
	updateStateHandler "github.com/m04kA/SMC-CarWashService/internal/api/handlers/update_reservation_state"
	"github.com/m04kA/SMC-CarWashService/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashService/internal/config"
	userServiceClient "github.com/m04kA/SMC-CarWashService/internal/integrations/userservice"
	"github.com/m04kA/SMC-CarWashService/internal/scheduler"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
	blockersService "github.com/m04kA/SMC-CarWashService/internal/service/blockers"
	"github.com/m04kA/SMC-CarWashService/internal/service/catalog"
	reservationsService "github.com/m04kA/SMC-CarWashService/internal/service/reservations"
	admitReservationUC "github.com/m04kA/SMC-CarWashService/internal/usecase/admit_reservation"
	recommendSlotsUC "github.com/m04kA/SMC-CarWashService/internal/usecase/recommend_slots"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
	"github.com/m04kA/SMC-CarWashService/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CarWashService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Каталог слотов и лимитов компаний
	loc, err := cfg.Booking.LoadLocation()
	if err != nil {
		log.Fatal("Failed to load booking location: %v", err)
	}
	slotCatalog, err := catalog.New(cfg.Booking.DomainSlots(), cfg.Booking.DomainLimits(), cfg.Booking.UnitMinutes, loc)
	if err != nil {
		log.Fatal("Failed to build slot catalog: %v", err)
	}
	log.Info("Slot catalog loaded (slots=%d, companies=%d, unit=%dmin, location=%s)",
		len(cfg.Booking.Slots), len(cfg.Booking.Companies), cfg.Booking.UnitMinutes, loc)

	// Хранилище: PostgreSQL или память процесса
	store, err := openStorage(cfg, loc, metricsCollector, log, stopMetricsCh)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout)

	// Инициализируем сервисы
	calculator := availability.NewCalculator(store.reservations, store.blockers, slotCatalog, log)
	reservationSvc := reservationsService.NewService(store.reservations, store.tx, log)
	blockerSvc := blockersService.NewService(store.blockers, store.tx, loc, log)

	// Инициализируем use cases
	admitUseCase := admitReservationUC.NewUseCase(
		store.reservations,
		calculator,
		slotCatalog,
		userClient,
		store.tx,
		metricsCollector,
		cfg.Booking.UserConcurrentLimit,
		log,
	)
	recommendUseCase := recommendSlotsUC.NewUseCase(calculator, slotCatalog, cfg.Booking.DaysAhead, log)

	// Инициализируем handlers
	admitReservation := admitReservationHandler.NewHandler(admitUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	deleteReservation := deleteReservationHandler.NewHandler(reservationSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationSvc, log)
	listCompany := listCompanyHandler.NewHandler(reservationSvc, log)
	listObfuscated := listObfuscatedHandler.NewHandler(reservationSvc, log)
	getLastSettings := getLastSettingsHandler.NewHandler(reservationSvc, log)
	updateState := updateStateHandler.NewHandler(reservationSvc, log)
	getNotAvailable := getNotAvailableHandler.NewHandler(calculator, log)
	getPercentage := getPercentageHandler.NewHandler(calculator, loc, log)
	recommendSlots := recommendSlotsHandler.NewHandler(recommendUseCase, log)
	blockers := blockersHandler.NewHandler(blockerSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(userClient, log))

	// --- Резервации ---
	// Статические пути регистрируются раньше /reservations/{id}
	protected.HandleFunc("/reservations", admitReservation.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/reservations", listReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/company", listCompany.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/obfuscated", listObfuscated.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/lastsettings", getLastSettings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/notavailable", getNotAvailable.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/percentage", getPercentage.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/recommended", recommendSlots.Handle).Methods(http.MethodGet)

	protected.HandleFunc("/reservations/{id}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{id}", admitReservation.HandleUpdate).Methods(http.MethodPut)
	protected.HandleFunc("/reservations/{id}", deleteReservation.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/reservations/{id}/state", updateState.Handle).Methods(http.MethodPatch)

	// --- Закрытия мойки (для операторов) ---
	protected.HandleFunc("/blockers", blockers.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/blockers", blockers.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/blockers/{id}", blockers.HandleGet).Methods(http.MethodGet)
	protected.HandleFunc("/blockers/{id}", blockers.HandleDelete).Methods(http.MethodDelete)

	// CORS для PWA клиента
	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", middleware.UserIDHeader},
	}).Handler(r)

	// Периодическое обновление заполненности слотов
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(
			calculator,
			metricsCollector,
			time.Duration(cfg.Scheduler.SlotFillInterval)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize scheduler: %v", err)
		}
		jobs.Start()
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if jobs != nil {
		if err := jobs.Stop(); err != nil {
			log.Error("Scheduler shutdown failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	close(stopMetricsCh)
	log.Info("Server exited")
}
