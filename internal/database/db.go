package database

import (
    "context"
    "database/sql"
    "fmt"
    "log"
    "time"

    _ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection, retrying a few
// times so the service survives a database that is still starting up.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    auth := user
    if pass != "" {
        auth = fmt.Sprintf("%s:%s", user, pass)
    }
    // parseTime=true -> DATETIME -> time.Time | loc=UTC keeps booking
    // timestamps comparable without zone conversion
    dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, host, port, name)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }

    // Pool settings
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    const attempts = 5
    for i := 1; ; i++ {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err = db.PingContext(ctx)
        cancel()
        if err == nil {
            return db, nil
        }
        if i == attempts {
            db.Close()
            return nil, fmt.Errorf("ping after %d attempts: %w", attempts, err)
        }
        log.Printf("database: ping failed (attempt %d/%d): %v", i, attempts, err)
        time.Sleep(time.Duration(i) * time.Second)
    }
}
