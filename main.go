package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Devenc042/MyZeDeDup/cli"
	"github.com/Devenc042/MyZeDeDup/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog uses LogValue for command errors
		os.Exit(1)
	}
}
