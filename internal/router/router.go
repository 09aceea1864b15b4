package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	mem "medication-timeline/internal/adapters/storage/memory"
	pg "medication-timeline/internal/adapters/storage/postgres"
	"medication-timeline/internal/domain/facilities"
	"medication-timeline/internal/domain/medications"
	"medication-timeline/internal/domain/patients"
	"medication-timeline/internal/domain/prescriptions"
	"medication-timeline/internal/domain/timeline"
	"medication-timeline/internal/middleware"
	"medication-timeline/internal/platform/metrics"
	"medication-timeline/internal/platform/seed"
	"medication-timeline/internal/ports/auth"

	_ "medication-timeline/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger      *zap.Logger // nil = no-op
	ServiceName string

	// 0 = sin rate limit
	RateLimitPerSecond int

	// SeedDemo carga los datos de demo al armar el router.
	SeedDemo bool
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "medication-timeline"
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if opts.RateLimitPerSecond > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimitPerSecond, time.Second))
	}

	// Claims antes del logger para que el log lleve user_id.
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Tracing(serviceName))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", readyHandler(opts.DB))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		patientRepo      patients.Repository
		medicationRepo   medications.Repository
		facilityRepo     facilities.Repository
		prescriptionRepo prescriptions.Repository
	)

	if opts.DB != nil {
		patientRepo = pg.NewPatientsRepo(opts.DB)
		medicationRepo = pg.NewMedicationsRepo(opts.DB)
		facilityRepo = pg.NewFacilitiesRepo(opts.DB)
		prescriptionRepo = pg.NewPrescriptionsRepo(opts.DB)
	} else {
		patientRepo = mem.NewPatientRepo()
		medicationRepo = mem.NewMedicationRepo()
		facilityRepo = mem.NewFacilityRepo()
		prescriptionRepo = mem.NewPrescriptionRepo()
	}

	// Services por módulo
	patientsSvc := patients.NewService(patientRepo).WithPurger(prescriptionRepo)
	medsSvc := medications.NewService(medicationRepo).WithUsageCounter(prescriptionRepo)
	facsSvc := facilities.NewService(facilityRepo).WithDetacher(prescriptionRepo)
	rxSvc := prescriptions.NewService(prescriptionRepo, medsSvc, facsSvc)
	timelineSvc := timeline.NewService(rxSvc, log.Named("timeline")).WithRecorder(metrics.TimelineRecorder{})

	if opts.SeedDemo {
		_, err := seed.Demo(context.Background(), seed.Services{
			Patients:      patientsSvc,
			Medications:   medsSvc,
			Facilities:    facsSvc,
			Prescriptions: rxSvc,
		}, time.Now(), log)
		if err != nil {
			log.Error("demo seed failed", zap.Error(err))
		}
	}

	// Rutas por módulo
	patients.RegisterRoutes(r, patientsSvc)
	medications.RegisterRoutes(r, medsSvc)
	facilities.RegisterRoutes(r, facsSvc)
	prescriptions.RegisterRoutes(r, rxSvc, patientsSvc)
	timeline.RegisterRoutes(r, timelineSvc, patientsSvc)

	return r
}

// readyHandler: con Postgres, ping con timeout corto; en memoria siempre listo.
func readyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
