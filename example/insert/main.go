package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/vektorlab/chwire/insert"
	"github.com/vektorlab/chwire/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func getSettings() session.Settings {
	port, _ := strconv.Atoi(envOr("CHWIRE_PORT", "9000"))
	return session.Settings{
		Host:             envOr("CHWIRE_HOST", "localhost"),
		Port:             port,
		Database:         envOr("CHWIRE_DATABASE", "default"),
		User:             envOr("CHWIRE_USER", "default"),
		Password:         os.Getenv("CHWIRE_PASSWORD"),
		ConnectTimeout:   5 * time.Second,
		ReadWriteTimeout: 30 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var fields = []insert.Field{
	{Name: "id"},
	{Name: "name"},
	{Name: "age"},
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings := getSettings()
	sess, err := session.Dial(ctx, settings)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = sess.Close() }()

	fmt.Printf("connected to %s:%d\n", settings.Host, settings.Port)

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for i := 1; ; i++ {
		if err := doInsertBatch(sess, i); err != nil {
			log.Printf("insert: %v", err)
		}

		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func doInsertBatch(sess *session.Session, i int) error {
	rows := make([][]any, 0, 10)
	for j := 0; j < 10; j++ {
		rows = append(rows, []any{
			uint32(i*10 + j),
			fmt.Sprintf("user-%d-%d", i, j),
			uint8(20 + j),
		})
	}

	if err := insert.InsertBatch(sess, "users", fields, rows); err != nil {
		return err
	}
	fmt.Printf("[%d] inserted %d rows\n", i, len(rows))
	return nil
}
