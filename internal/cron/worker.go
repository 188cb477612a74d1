// Package cron schedules the recurring expiry sweep through asynq.  The
// sweep itself lives in the booking package; this package only wires it
// to a redis-backed scheduler and worker so the task survives restarts
// and is visible in asynq tooling.
package cron

import (
    "context"
    "log"

    "github.com/hibiken/asynq"

    "github.com/swan-prince/booking-server/internal/booking"
)

// TypeExpireSweep is the asynq task type of the periodic expiry sweep.
const TypeExpireSweep = "booking:expire_sweep"

// sweepSpec fires the sweep once per minute, matching the fixed interval
// of the in-process Monitor fallback.
const sweepSpec = "*/1 * * * *"

// InitSweepWorker starts the asynq server and scheduler in background
// goroutines.  The worker handles only the sweep task; concurrency 1 is
// deliberate so overlapping sweeps cannot pile up when one run is slow.
func InitSweepWorker(redisOpt asynq.RedisClientOpt, ledger *booking.Ledger) {
    srv := asynq.NewServer(
        redisOpt,
        asynq.Config{
            Concurrency: 1,
            Queues: map[string]int{
                "default": 1,
            },
        },
    )

    mux := asynq.NewServeMux()
    mux.HandleFunc(TypeExpireSweep, handleExpireSweep(ledger))

    scheduler := asynq.NewScheduler(redisOpt, nil)
    if _, err := scheduler.Register(sweepSpec, asynq.NewTask(TypeExpireSweep, nil)); err != nil {
        log.Fatalf("cron: register sweep task: %v", err)
    }

    go func() {
        if err := scheduler.Run(); err != nil {
            log.Fatalf("cron: scheduler failed to start: %v", err)
        }
    }()

    go func() {
        if err := srv.Run(mux); err != nil {
            log.Fatalf("cron: worker failed to start: %v", err)
        }
    }()
}

func handleExpireSweep(ledger *booking.Ledger) asynq.HandlerFunc {
    return func(ctx context.Context, t *asynq.Task) error {
        n, err := ledger.SweepExpired(ctx)
        if err != nil {
            return err
        }
        if n > 0 {
            log.Printf("cron: expired %d booking(s)", n)
        }
        return nil
    }
}
