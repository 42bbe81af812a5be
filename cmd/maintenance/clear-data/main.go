package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/skillbridge/tutoring-backend/internal/config"
	"github.com/skillbridge/tutoring-backend/internal/database"
)

// activityTables hold per-user activity, accountTables the accounts and
// catalogue it references
var (
	activityTables = []string{"audit_logs", "reviews", "bookings"}
	accountTables  = []string{"tutor_profile_categories", "tutor_profiles", "categories", "users"}
)

func main() {
	var (
		dbURLFlag      string
		activityOnly   bool
		flushSessions  bool
		redisAddrFlag  string
		redisKeyPrefix string
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&activityOnly, "activity-only", false, "clear bookings, reviews and audit logs but keep users and categories")
	flag.BoolVar(&flushSessions, "flush-sessions", false, "also delete every session and rate limit key from Redis")
	flag.StringVar(&redisAddrFlag, "redis-addr", "", "Redis address (overrides REDIS_ADDR)")
	flag.StringVar(&redisKeyPrefix, "redis-prefix", "", "Redis key prefix (overrides REDIS_KEY_PREFIX)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := firstNonEmpty(dbURLFlag, os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	tables := activityTables
	if !activityOnly {
		tables = append(append([]string{}, activityTables...), accountTables...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("Connected to database. Truncating tables...")
	if _, err := db.ExecContext(ctx, truncateStatement(tables)); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}
	fmt.Println("Data cleared successfully (tables truncated, identities reset).")

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}

	if flushSessions {
		addr := firstNonEmpty(redisAddrFlag, os.Getenv("REDIS_ADDR"), "localhost:6379")
		prefix := firstNonEmpty(redisKeyPrefix, os.Getenv("REDIS_KEY_PREFIX"), "skillbridge")
		removed, err := flushPrefix(ctx, redis.NewClient(&redis.Options{Addr: addr}), prefix)
		if err != nil {
			log.Fatalf("failed to flush sessions: %v", err)
		}
		fmt.Printf("Removed %d Redis keys under %s:*\n", removed, prefix)
	}
}

func truncateStatement(tables []string) string {
	stmt := "TRUNCATE TABLE "
	for i, t := range tables {
		if i > 0 {
			stmt += ", "
		}
		stmt += t
	}
	return stmt + " RESTART IDENTITY CASCADE"
}

// flushPrefix deletes every key under prefix, walking the keyspace with SCAN
func flushPrefix(ctx context.Context, client *redis.Client, prefix string) (int, error) {
	defer client.Close()

	removed := 0
	iter := client.Scan(ctx, 0, prefix+":*", 500).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
