package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/funvibe/argbind/internal/config"
	"github.com/funvibe/argbind/internal/history"
	"github.com/funvibe/argbind/internal/server"
	"github.com/funvibe/argbind/pkg/argbind"
)

const usage = "usage: argbind-server [-c config] [-g grpc-addr] [-H http-addr]\n"

func main() {
	log.SetOutput(os.Stderr)
	os.Exit(run(os.Args))
}

func run(args []string) int {
	opts, optind, err := getopt.Getopts(args, "c:g:H:h")
	if err != nil || optind < len(args) {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	var configPath, grpcAddr, httpAddr string
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			configPath = opt.Value
		case 'g':
			grpcAddr = opt.Value
		case 'H':
			httpAddr = opt.Value
		case 'h':
			fmt.Print(usage)
			return 0
		}
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if grpcAddr == "" {
		grpcAddr = cfg.Server.GRPC
	}
	if httpAddr == "" {
		httpAddr = cfg.Server.HTTP
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			log.Printf("history: %v", err)
			return 1
		}
		defer store.Close()

		pruner := history.NewPruner(store, cfg.History.RetentionDuration())
		if err := pruner.Start(cfg.History.PruneInterval()); err != nil {
			log.Printf("history: %v", err)
			return 1
		}
		defer pruner.Stop()
		log.Printf("Recording history in %q (retention %s)", cfg.History.Path, cfg.History.Retention)
	}

	binder := argbind.New(argbind.WithReserved(cfg.Reserved...))
	srv, err := server.New(server.NewService(binder, store))
	if err != nil {
		log.Printf("server: %v", err)
		return 1
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(grpcAddr, httpAddr) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			log.Printf("serve: %v", err)
			return 1
		}
	case sig := <-quit:
		log.Printf("Received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		<-errc
	}
	return 0
}
