package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	var model string
	var port int
	var healthyAfter int
	var listen bool
	var ignoreTerm bool
	var exitCode int
	// Accept the subset of vLLM api_server flags used by the supervisor
	flag.StringVar(&model, "model", "", "model id")
	flag.IntVar(&port, "port", 0, "port")
	flag.IntVar(&healthyAfter, "healthy-after", 0, "answer 503 to this many /health requests first")
	flag.BoolVar(&listen, "listen", true, "serve HTTP; when false just block until signalled")
	flag.BoolVar(&ignoreTerm, "ignore-sigterm", false, "ignore SIGTERM so only SIGKILL stops the process")
	flag.IntVar(&exitCode, "exit", -1, "exit immediately with this code")
	flag.Parse()

	fmt.Printf("fake vllm: model=%s port=%d\n", model, port)
	if exitCode >= 0 {
		fmt.Fprintln(os.Stderr, "fake vllm: exiting early")
		os.Exit(exitCode)
	}

	sigCh := make(chan os.Signal, 1)
	if ignoreTerm {
		signal.Ignore(syscall.SIGTERM)
		signal.Notify(sigCh, syscall.SIGINT)
	} else {
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	}

	var srv *http.Server
	if listen {
		var hits atomic.Int64
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) <= int64(healthyAfter) {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		srv = &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("server error: %v", err)
			}
		}()
	}

	<-sigCh
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
