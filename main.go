package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Moongates/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/moongates.toml", "path to TOML config")
	addr := flag.String("addr", "", "override address to listen on (e.g., 127.0.0.1:8080)")
	savePath := flag.String("save", "", "override save file path")
	hookPath := flag.String("hook", "", "override traversal hook script path")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *savePath != "" {
		cfg.Persistence.Path = *savePath
	}
	if *hookPath != "" {
		cfg.Scripting.HookPath = *hookPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.StartApp(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
