package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/httpapi"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/obs"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/store/pg"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/stream"
)

var version = "1.0.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("PICT_COMMIT"))

	// Stores: PostgreSQL when configured, in-memory otherwise so the
	// portal still runs for local frontend work.
	var (
		profileStore    profiles.Store
		projectStore    projects.Store
		enrollmentStore enrollment.Store
	)
	var pgStore *pg.Store
	if dsn := os.Getenv("PICT_PG_DSN"); dsn != "" {
		var err error
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		profileStore = pgStore
		projectStore = pgStore.Projects()
		enrollmentStore = pgStore
	} else {
		mem := profiles.NewInMemory()
		profileStore = mem
		projectStore = projects.NewInMemory(mem)
		enrollmentStore = enrollment.NewInMemoryStore()
		log.Println("PICT_PG_DSN not set, using in-memory stores")
	}

	// Optional Redis for shared dashboard sessions across replicas.
	var rdb *redis.Client
	if addr := os.Getenv("PICT_REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("PICT_REDIS_PASSWORD"),
		})
	}

	enrollmentSvc := enrollment.NewService(enrollmentStore)
	profileSvc := profiles.NewService(profileStore)
	projectSvc := projects.NewService(projectStore, enrollmentSvc)

	provider := auth.NewMicrosoftProvider(auth.MicrosoftConfig{
		TenantID:     os.Getenv("PICT_MS_TENANT_ID"),
		ClientID:     os.Getenv("PICT_MS_CLIENT_ID"),
		ClientSecret: os.Getenv("PICT_MS_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("PICT_MS_REDIRECT_URI"),
	}, nil)
	secret := os.Getenv("PICT_JWT_SECRET")
	if secret == "" {
		secret = "fallback-secret"
		log.Println("PICT_JWT_SECRET not set, using insecure fallback")
	}
	authSvc := auth.NewService(provider, profileSvc, auth.Config{
		Secret: secret,
		Issuer: "pict-portal",
	})

	frontendURL := os.Getenv("PICT_FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	events := stream.New()

	var readyDB httpapi.ReadyProbe
	if pgStore != nil {
		readyDB = httpapi.ReadyProbe{DB: pgStore.DB()}
	}

	api := httpapi.New(httpapi.Config{
		Auth:        authSvc,
		Profiles:    profileSvc,
		Projects:    projectSvc,
		Enrollment:  enrollmentSvc,
		Stream:      events,
		Sessions:    sessionFactory(rdb),
		ReadyProbe:  readyDB,
		Version:     version,
		FrontendURL: frontendURL,
		DevTokens:   os.Getenv("PICT_DEV_TOKENS") == "1",
	})

	handler := httpapi.RequestID(
		httpapi.LoggingJSON(
			httpapi.SecurityHeaders(
				httpapi.CORS(
					httpapi.MaxBodyBytes(
						httpapi.RateLimit(api.Handler(), 20, 10),
						1<<20,
					),
					frontendURL,
				),
			),
		),
	)

	addr := os.Getenv("PICT_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting pict-portal %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Println("Stopped")
}

// sessionFactory builds per-request session managers. With Redis the session
// lives server-side under an opaque sid cookie, so replicas share it; without
// Redis the cookies themselves carry the session.
func sessionFactory(rdb *redis.Client) func(http.ResponseWriter, *http.Request) *session.Manager {
	if rdb == nil {
		return nil // httpapi falls back to cookie storage
	}
	return func(w http.ResponseWriter, r *http.Request) *session.Manager {
		sid := ""
		if c, err := r.Cookie("pict_sid"); err == nil {
			sid = c.Value
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     "pict_sid",
				Value:    sid,
				Path:     "/",
				MaxAge:   int((30 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		return session.NewManager(session.NewRedisStorage(rdb, "pict:sess:"+sid))
	}
}
