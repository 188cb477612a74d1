package main // Entry point package

import (
    "context"
    "log"
    "time"

    "github.com/hibiken/asynq"
    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/swan-prince/booking-server/internal/booking"
    "github.com/swan-prince/booking-server/internal/config"
    "github.com/swan-prince/booking-server/internal/cron"
    "github.com/swan-prince/booking-server/internal/database"
    "github.com/swan-prince/booking-server/internal/handler"
    "github.com/swan-prince/booking-server/internal/middleware"
    "github.com/swan-prince/booking-server/internal/queue"
    "github.com/swan-prince/booking-server/internal/repository"
    "github.com/swan-prince/booking-server/internal/router"
    "github.com/swan-prince/booking-server/internal/service/eventpub"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments set env vars
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    store := repository.NewBookingRepo(db)
    catalog := repository.NewCatalogRepo(db)
    orders := repository.NewOrderRepo(db)

    ledger := booking.NewLedger(store, catalog, orders, eventpub.New())

    // Lifecycle events end up in logs/booking.log via the broker; the
    // consumer keeps reconnecting on its own.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking-consumer: %v", err)
        }
    }()

    // Expiry sweep: scheduled through asynq when redis is reachable,
    // otherwise a plain in-process ticker.  Both run the same sweep.
    rs := config.LoadRedis()
    rdb := config.NewRedisClient(rs)
    if rdb != nil {
        cron.InitSweepWorker(asynq.RedisClientOpt{
            Addr:     rs.Addr,
            Password: rs.Password,
            DB:       rs.DB,
        }, ledger)
    } else {
        log.Println("redis unavailable; using in-process expiry monitor")
        mon := booking.NewMonitor(ledger, time.Duration(cfg.SweepSec)*time.Second)
        go mon.Run(context.Background())
    }

    e := echo.New()

    // The limiter is registered inside the /v1 group, behind JWTAuth, so
    // buckets are keyed per authenticated user.
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterBooking(e, handler.NewBookingHandler(ledger, store), cfg.JWTSecret, limiter)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
