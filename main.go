package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/registro/backend/internal/api"
	"github.com/registro/backend/internal/auth"
	"github.com/registro/backend/internal/cache"
	"github.com/registro/backend/internal/config"
	"github.com/registro/backend/internal/email"
	"github.com/registro/backend/internal/middleware"
	"github.com/registro/backend/internal/migrate"
	"github.com/registro/backend/internal/repo"
	"github.com/registro/backend/internal/seed"
	"github.com/registro/backend/internal/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("conexão postgres: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("db.DB: %v", err)
		}
		if cfg.DBMaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		}
		if cfg.DBMaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		}
		defer func() { _ = sqlDB.Close() }()
		if err := sqlDB.PingContext(context.Background()); err != nil {
			log.Fatalf("ping postgres: %v", err)
		}
		if err := migrate.Run(context.Background(), db, "migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		if err := seed.Run(context.Background(), db); err != nil {
			log.Printf("seed (ignored if already applied): %v", err)
		}
	}

	store, err := storage.New(cfg.StorageDir)
	if err != nil {
		log.Fatalf("storage %s: %v", cfg.StorageDir, err)
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no database"}`))
			return
		}
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	h := &api.Handler{
		DB:     db,
		Cfg:    cfg,
		Cache:  cache.New(30 * time.Second),
		Store:  store,
		Signer: storage.NewURLSigner(cfg.JWTSecret, cfg.BackendPublicURL),
	}
	h.SetHashPassword(auth.HashPassword)
	mailCfg := &email.Config{
		Host:     cfg.SMTPHost,
		Port:     email.PortFromString(cfg.SMTPPort),
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromEmail,
	}
	if mailCfg.Host != "" && mailCfg.FromAddr != "" {
		mailCfg.LogConfigSummary()
		h.Mail = mailCfg
		h.SetSendAppointmentConfirmation(mailCfg.SendAppointmentConfirmation)
	} else {
		log.Printf("[email] envio desativado: SMTP_HOST ou SMTP_FROM_EMAIL vazio")
	}

	// Endpoints públicos: login e leitura de anexos por signed URL.
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/files", h.ServeFile).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.JWTSecret))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	for _, route := range []struct {
		prefix string
		kind   string
	}{
		{"/clients", repo.KindClient},
		{"/patients", repo.KindPatient},
	} {
		protected.HandleFunc(route.prefix, h.ListPersons(route.kind)).Methods(http.MethodGet)
		protected.HandleFunc(route.prefix, h.CreatePerson(route.kind)).Methods(http.MethodPost)
		protected.HandleFunc(route.prefix+"/export.csv", h.ExportPersonsCSV(route.kind)).Methods(http.MethodGet)
		protected.HandleFunc(route.prefix+"/{id}", h.GetPerson).Methods(http.MethodGet)
		protected.HandleFunc(route.prefix+"/{id}", h.UpdatePerson).Methods(http.MethodPut)
		protected.HandleFunc(route.prefix+"/{id}", h.DeletePerson).Methods(http.MethodDelete)
		protected.HandleFunc(route.prefix+"/{id}/photo", h.UploadPhoto).Methods(http.MethodPost)
		protected.HandleFunc(route.prefix+"/{id}/photo-url", h.PhotoURL).Methods(http.MethodGet)
		protected.HandleFunc(route.prefix+"/{id}/sheet.pdf", h.PersonSheetPDF).Methods(http.MethodGet)
		protected.HandleFunc(route.prefix+"/{id}/sheet-email", h.EmailPersonSheet).Methods(http.MethodPost)
		protected.HandleFunc(route.prefix+"/{id}/appointments", h.ListAppointments).Methods(http.MethodGet)
		protected.HandleFunc(route.prefix+"/{id}/appointments", h.CreateAppointment).Methods(http.MethodPost)
	}
	protected.HandleFunc("/appointments/{appointmentId}", h.PatchAppointment).Methods(http.MethodPatch)
	protected.Handle("/users", middleware.RequireAdmin(http.HandlerFunc(h.CreateUser))).Methods(http.MethodPost)

	chain := middleware.Recover(middleware.RequestID(middleware.Timeout(cfg.RequestTimeoutSec)(middleware.CORS(cfg.CORSOrigins)(middleware.Gzip(r)))))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("backend listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("backend stopped")
}
