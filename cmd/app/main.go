package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"review-transformer/internal/bootstrap"
	"review-transformer/internal/logging"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	human := flag.Bool("human", false, "human-friendly console logs")
	flag.Parse()

	logging.Init(*debug, *human)

	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("run app: %v", err)
	}
}
