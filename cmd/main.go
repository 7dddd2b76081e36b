package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/qrcodes-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		a.Log.Error("Failed to start background workers", "error", err)
		return
	}
	if err := a.Run(ctx); err != nil {
		a.Log.Error("Server exited", "error", err)
		return
	}
	a.Log.Info("Server stopped")
}
