package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsdevblog/shortkit/internal/app"
	"github.com/fsdevblog/shortkit/internal/config"
)

func main() {
	appConf, confErr := config.LoadConfig()
	if confErr != nil {
		panic(confErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.Must(app.New(ctx, appConf))
	a.Logger.WithField("db", appConf.DBType).Info("shortkit core started")

	<-ctx.Done()

	a.Logger.Info("shutting down")
	if err := a.Close(); err != nil {
		a.Logger.WithError(err).Error("shutdown finished with errors")
	}
}
