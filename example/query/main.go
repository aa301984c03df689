package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/vektorlab/chwire/rowmap"
	"github.com/vektorlab/chwire/sanitize"
	"github.com/vektorlab/chwire/session"
)

type user struct {
	ID   uint32
	Name string
}

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

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings := getSettings()
	sess, err := session.Dial(ctx, settings)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = sess.Close() }()

	info := sess.Info()
	fmt.Printf("connected to %s:%d (server %q rev %d)\n", settings.Host, settings.Port, info.Name, info.Revision)

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for i := 1; ; i++ {
		if err := doQuery(sess, i); err != nil {
			log.Printf("query: %v", err)
		}

		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func doQuery(sess *session.Session, i int) error {
	sql := fmt.Sprintf("SELECT id, name FROM users WHERE id >= %d LIMIT 10", i)
	fmt.Printf("[%d] %s\n", i, sanitize.SQL(sql))

	result, err := sess.StartQuery(session.NewQuery(sql))
	if err != nil {
		return err
	}

	var mapper *rowmap.Mapper
	count := 0
	for {
		b, err := result.Next()
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
		if mapper == nil {
			var u user
			mapper, err = rowmap.NewMapper(&u, b)
			if err != nil {
				return err
			}
		}
		for r := 0; r < b.NumRows(); r++ {
			var u user
			if err := mapper.Scan(rowmap.NewRow(b, r), &u); err != nil {
				return err
			}
			count++
		}
	}
	fmt.Printf("[%d] fetched %d rows\n", i, count)
	return nil
}
