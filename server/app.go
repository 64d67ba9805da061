package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"identity/config"
	"identity/internal/db"
	"identity/internal/guardian"
	"identity/internal/health"
	"identity/internal/identity"
	"identity/internal/logs"
	"identity/internal/mail"
	"identity/internal/middleware"
	"identity/internal/models"
	"identity/internal/orgtree"
	"identity/internal/password"
	"identity/internal/repo"
	"identity/internal/storage"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB */
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if d == nil {
		log.Fatalf("database.driver must be configured")
	}
	a.db = d

	if err := a.db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.OrganizationUnit{},
		&models.Position{},
		&models.Customer{},
		&models.Subcontractor{},
		&models.PasswordResetOTP{},
	); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	/* 3) Отправка почты */
	var mailer mail.Sender = mail.Disabled{}
	if a.cfg.Mail.Enabled {
		mailer = mail.NewSMTPSender(a.cfg.Mail.Host, a.cfg.Mail.Port,
			a.cfg.Mail.Username, a.cfg.Mail.Password, a.cfg.Mail.From)
	}

	/* 4) Сервисы и клиенты */
	guard := guardian.New(a.cfg.Guardian.URL,
		time.Duration(a.cfg.Guardian.TimeoutSeconds)*time.Second,
		a.cfg.JWT.CookieName)
	blobs := storage.New(a.cfg.Storage.URL,
		time.Duration(a.cfg.Storage.TimeoutSeconds)*time.Second,
		a.cfg.Storage.MaxAvatarMB,
		a.cfg.JWT.CookieName)
	passwords := password.New(a.db, mailer, password.Options{
		OTPTTL:         time.Duration(a.cfg.PasswordReset.OTPTTLMinutes) * time.Minute,
		MaxOTPAttempts: a.cfg.PasswordReset.MaxAttempts,
		TempPassLength: a.cfg.PasswordReset.TempPassLength,
	})

	h := identity.NewHandler(identity.Deps{
		Companies:      repo.NewCompanyStore(a.db),
		Users:          repo.NewUserStore(a.db),
		Positions:      repo.NewPositionStore(a.db),
		Customers:      repo.NewCustomerStore(a.db),
		Subcontractors: repo.NewSubcontractorStore(a.db),
		Tree:           orgtree.New(a.db),
		Passwords:      passwords,
		Guardian:       guard,
		Storage:        blobs,
		PublicConfig: map[string]any{
			"guardian_url":        a.cfg.Guardian.URL,
			"storage_url":         a.cfg.Storage.URL,
			"mail_enabled":        a.cfg.Mail.Enabled,
			"max_avatar_mb":       a.cfg.Storage.MaxAvatarMB,
			"otp_ttl_minutes":     a.cfg.PasswordReset.OTPTTLMinutes,
			"otp_max_attempts":    a.cfg.PasswordReset.MaxAttempts,
			"access_token_cookie": a.cfg.JWT.CookieName,
		},
	})

	/* 5) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 6) Health */
	health.RegisterRoutesWithDB(a.Router, a.db) // /healthz, /readyz

	/* 7) Публичные маршруты: verify_password + password-reset за лимитером */
	limiter := middleware.NewRateLimiter(
		a.cfg.PasswordReset.RatePerHour,
		a.cfg.PasswordReset.RatePerDay,
	)
	identity.RegisterPublicRoutes(a.Router, h, limiter)

	/* 8) Остальное — за JWT-кукой */
	protected := a.Router.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuth(a.cfg.JWT.Secret, a.cfg.JWT.CookieName))
	identity.RegisterProtectedRoutes(protected, h)

	/* (необязательно) вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Жёсткие таймауты — это важно для production
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second, // выдача файлов из хранилища
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
