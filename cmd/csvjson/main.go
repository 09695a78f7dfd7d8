package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reoring/csvjson/internal/httpapi"
)

func main() {
	var (
		port    = flag.Int("port", 0, "listen port (overrides the config file)")
		cfgPath = flag.String("config", "", "path to a YAML config file")
	)
	flag.Parse()

	cfg := httpapi.DefaultConfig()
	if *cfgPath != "" {
		var err error
		cfg, err = httpapi.LoadConfig(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *port != 0 {
		cfg.Listen = fmt.Sprintf(":%d", *port)
	}

	e := httpapi.New(cfg)
	go func() {
		e.Logger.Infof("listening on %s", cfg.Listen)
		if err := e.Start(cfg.Listen); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
