// Command chinsert streams synthetic rows into a table over the native
// protocol, rendering live progress with a small Bubble Tea UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	fs := flag.NewFlagSet("chinsert", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "chinsert — stream rows into a table and watch progress\n\nUsage:\n  chinsert [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	host := fs.String("host", "localhost", "server host")
	port := fs.Int("port", 9000, "server port")
	database := fs.String("database", "default", "database name")
	user := fs.String("user", "default", "username")
	password := fs.String("password", "", "password")
	table := fs.String("table", "users", "destination table")
	rows := fs.Int("rows", 100_000, "number of rows to insert")
	batch := fs.Int("batch", 10_000, "rows per batch")
	timeout := fs.Duration("timeout", 30*time.Second, "connect/read/write timeout")

	_ = fs.Parse(os.Args[1:])

	cfg := insertConfig{
		host:     *host,
		port:     *port,
		database: *database,
		user:     *user,
		password: *password,
		table:    *table,
		rows:     *rows,
		batch:    *batch,
		timeout:  *timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newModel(ctx, cfg)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chinsert: %v\n", err)
		os.Exit(1)
	}
}
