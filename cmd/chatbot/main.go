package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"stock-trading-chatbot/internal/api"
	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	ask := flag.String("ask", "", "answer a single question and exit")
	interactive := flag.Bool("i", false, "read questions from stdin instead of serving HTTP")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg := loadConfig(ctx, *configPath)
	fallback := initializeFallback(ctx, cfg)
	session, eng := initializeEngine(cfg, fallback)

	if *ask != "" {
		fmt.Println(eng.Answer(ctx, *ask))
		return
	}
	if *interactive {
		runREPL(ctx, eng)
		return
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := api.NewServer(addr, eng, session)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()
	logger.Info(ctx, "Chatbot started", "addr", addr, "session", session.ID())

	select {
	case err := <-errc:
		logger.ErrorWithErr(ctx, "Server stopped", err)
		os.Exit(1)
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn(ctx, "Shutdown was not clean", "error", err)
		}
	}
}

func runREPL(ctx context.Context, eng interfaces.Engine) {
	fmt.Println("Ask me about the trade logs (empty line to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return
		}
		fmt.Println(eng.Answer(ctx, question))
	}
}
