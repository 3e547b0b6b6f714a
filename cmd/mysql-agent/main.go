package main

import (
	"context"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sqltoolkit/mysql-agent/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
