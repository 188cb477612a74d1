package config

// Redis backs two concerns here: distributed rate limiting and the asynq
// scheduler that drives the expiry sweep.  Connection parameters come
// from environment variables.  If the initial ping fails the constructor
// returns nil and callers degrade gracefully: rate limiting is disabled
// and the expiry sweep falls back to an in-process ticker.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisSettings carries connection parameters shared by the go-redis
// client and the asynq scheduler.
type RedisSettings struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedis reads redis settings from the environment.  Supported
// variables:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (takes precedence when set together)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
func LoadRedis() RedisSettings {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    dbNum := 0
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            dbNum = n
        }
    }
    tlsEnv := os.Getenv("REDIS_TLS")
    return RedisSettings{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       dbNum,
        TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
    }
}

// NewRedisClient instantiates a Redis client from the given settings.
// The returned client is nil if a connection cannot be established.
func NewRedisClient(s RedisSettings) *redis.Client {
    var tlsConf *tls.Config
    if s.TLS {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      s.Addr,
        Password:  s.Password,
        DB:        s.DB,
        TLSConfig: tlsConf,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
