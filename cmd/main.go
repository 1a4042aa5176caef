package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	commitCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/commit_checkout"
	createCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/create_checkout"
	deleteCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/delete_checkout"
	getBookingHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/get_booking"
	getCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/get_checkout"
	getEligibleStaffHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/get_eligible_staff"
	navigateCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/navigate_checkout"
	updateCustomerHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_customer"
	updatePaymentHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_payment"
	updateProductsHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_products"
	updateScheduleHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_schedule"
	updateServicesHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_services"
	"github.com/m04kA/SMC-CheckoutService/internal/api/middleware"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-CheckoutService/internal/infra/storage/appointment"
	scheduleRepo "github.com/m04kA/SMC-CheckoutService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
	availabilityService "github.com/m04kA/SMC-CheckoutService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-CheckoutService/internal/service/bookings"
	sessionsService "github.com/m04kA/SMC-CheckoutService/internal/service/sessions"
	commitBookingUC "github.com/m04kA/SMC-CheckoutService/internal/usecase/commit_booking"
	"github.com/m04kA/SMC-CheckoutService/pkg/logger"
	"github.com/m04kA/SMC-CheckoutService/pkg/metrics"
	"github.com/m04kA/SMC-CheckoutService/pkg/txmanager"
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

	log.Info("Starting SMC-CheckoutService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент каталога
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("CatalogService client initialized (url=%s, timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем репозитории и transaction manager
	appointments := appointmentRepo.NewRepository(db)
	schedules := scheduleRepo.NewRepository(db)
	txManager := txmanager.NewTransactionManager(db)

	// Сервис доступности: consultative-проверки для checkout и
	// авторитетный recheck внутри транзакции commit
	availabilityChecker := availabilityService.NewChecker(
		catalogClient,
		appointments,
		schedules,
		log,
	)

	// Use case фиксации бронирования
	commitUseCase := commitBookingUC.NewUseCase(
		appointments,
		availabilityChecker,
		txManager,
		log,
	)

	// Сервис чтения зафиксированных бронирований
	bookingSvc := bookingsService.NewService(appointments, log)

	// Реестр checkout-сессий. Каждая сессия получает свой оркестратор,
	// колбэки коммита питают метрики.
	orchestratorFactory := func() *checkout.Orchestrator {
		o := checkout.NewOrchestrator(catalogClient, availabilityChecker, commitUseCase, log)
		if metricsCollector != nil {
			o.OnCommitSuccess = func(reference string) {
				metricsCollector.ObserveCommit("success")
			}
			o.OnCommitError = func(err error) {
				if errors.Is(err, checkout.ErrConflictAtCommit) {
					metricsCollector.ObserveCommit("conflict")
				} else {
					metricsCollector.ObserveCommit("failed")
				}
			}
		}
		return o
	}

	var sessionsGauge sessionsService.Gauge
	if metricsCollector != nil {
		sessionsGauge = metricsCollector.ActiveSessions
	}
	sessionRegistry := sessionsService.NewService(
		orchestratorFactory,
		time.Duration(cfg.Checkout.SessionTTLMinutes)*time.Minute,
		sessionsGauge,
		log,
	)

	stopCleanupCh := make(chan struct{})
	sessionRegistry.StartCleanup(time.Duration(cfg.Checkout.CleanupIntervalMinutes)*time.Minute, stopCleanupCh)
	log.Info("Session registry started (ttl=%dm, cleanup every %dm)",
		cfg.Checkout.SessionTTLMinutes, cfg.Checkout.CleanupIntervalMinutes)

	// Инициализируем handlers
	createCheckout := createCheckoutHandler.NewHandler(sessionRegistry, log)
	getCheckout := getCheckoutHandler.NewHandler(sessionRegistry, log)
	deleteCheckout := deleteCheckoutHandler.NewHandler(sessionRegistry, log)
	updateServices := updateServicesHandler.NewHandler(sessionRegistry, log)
	updateProducts := updateProductsHandler.NewHandler(sessionRegistry, log)
	updateSchedule := updateScheduleHandler.NewHandler(sessionRegistry, log)
	updateCustomer := updateCustomerHandler.NewHandler(sessionRegistry, log)
	updatePayment := updatePaymentHandler.NewHandler(sessionRegistry, log)
	navigateCheckout := navigateCheckoutHandler.NewHandler(sessionRegistry, log)
	commitCheckout := commitCheckoutHandler.NewHandler(sessionRegistry, log)
	getEligibleStaff := getEligibleStaffHandler.NewHandler(sessionRegistry, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Checkout-сессии ---
	api.HandleFunc("/checkout-sessions", createCheckout.Handle).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}", getCheckout.Handle).Methods(http.MethodGet)
	api.HandleFunc("/checkout-sessions/{sessionId}", deleteCheckout.Handle).Methods(http.MethodDelete)

	// Выбор услуг, товаров, времени, контактов и оплаты
	api.HandleFunc("/checkout-sessions/{sessionId}/services", updateServices.Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/products", updateProducts.Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/customer", updateCustomer.Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/payment", updatePayment.Handle).Methods(http.MethodPut)

	// Мастера, подходящие для выбранной услуги
	api.HandleFunc("/checkout-sessions/{sessionId}/services/{serviceId}/eligible-staff",
		getEligibleStaff.Handle).Methods(http.MethodGet)

	// Навигация по шагам
	api.HandleFunc("/checkout-sessions/{sessionId}/advance", navigateCheckout.HandleAdvance).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}/step", navigateCheckout.HandleGoTo).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}/reset", navigateCheckout.HandleReset).Methods(http.MethodPost)

	// Фиксация бронирования
	api.HandleFunc("/checkout-sessions/{sessionId}/commit", commitCheckout.Handle).Methods(http.MethodPost)

	// Просмотр зафиксированного бронирования по публичной ссылке
	api.HandleFunc("/bookings/{reference}", getBooking.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

	// Останавливаем фоновую очистку сессий
	close(stopCleanupCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
