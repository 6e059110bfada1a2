// Command openleads-server exposes the Open Leads authentication core as a
// REST API: OTP-gated registration, login, token refresh, and password
// reset, backed by Redis for OTP state and PostgreSQL for accounts.
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/openleads/openleads"
	"github.com/openleads/openleads/mail"
	"github.com/openleads/openleads/pgstore"
	"github.com/openleads/openleads/session"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("config: ", err)
	}

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis: ", err)
	}
	defer rdb.Close()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres: ", err)
	}
	defer pool.Close()

	engine, err := openleads.New().
		WithConfig(cfg.Engine).
		WithRedis(rdb).
		WithAccountProvider(pgstore.New(pool)).
		WithMailer(mail.New(cfg.Mail)).
		WithAuditSink(logSink{}).
		Build()
	if err != nil {
		log.Fatal("engine build: ", err)
	}
	defer engine.Close()

	cookies := session.CookieConfig{
		AccessName:  cfg.Engine.Cookie.AccessName,
		RefreshName: cfg.Engine.Cookie.RefreshName,
		Path:        cfg.Engine.Cookie.Path,
		Domain:      cfg.Engine.Cookie.Domain,
		Secure:      cfg.Engine.Cookie.Secure,
		SameSite:    cfg.Engine.Cookie.SameSite,
	}

	router := newRouter(engine, cookies, cfg.AllowedOrigins)

	log.Printf("listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, router))
}

// logSink writes audit events to the process log.
type logSink struct{}

func (logSink) Emit(_ context.Context, event openleads.AuditEvent) {
	if event.Success {
		log.Printf("audit event=%s email=%s ok", event.Event, event.Email)
		return
	}
	log.Printf("audit event=%s email=%s err=%q", event.Event, event.Email, event.Err)
}
