// Package main provides the judging service's worker daemon entry
// point: N long-running consumers draining the job queue.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BV-BRC/cwe-judge/internal/config"
	"github.com/BV-BRC/cwe-judge/internal/events"
	"github.com/BV-BRC/cwe-judge/internal/judge"
	"github.com/BV-BRC/cwe-judge/internal/queue"
	"github.com/BV-BRC/cwe-judge/internal/sandbox"
	"github.com/BV-BRC/cwe-judge/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := queue.Connect(queue.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer client.Close()

	sandboxCfg := sandbox.Config{
		IsolateBinary:   cfg.Sandbox.IsolateBinary,
		PathEnv:         cfg.Sandbox.PathEnv,
		HomeEnv:         cfg.Sandbox.HomeEnv,
		CompileWallTime: cfg.Sandbox.CompileWallTime,
	}
	executor := sandbox.NewExecutor(sandboxCfg, client, judge.Key)

	poolCfg := worker.Config{
		Concurrency:       cfg.Worker.Concurrency,
		QueueName:         cfg.Queue.JobsQueueName,
		PopTimeout:        cfg.Worker.PopTimeout,
		MaxAttempts:       cfg.Worker.MaxAttempts,
		QueueErrorBackoff: cfg.Worker.QueueErrorBackoff,
	}
	pool := worker.New(poolCfg, client, executor).
		WithNotifier(events.NewPublisher(client.Redis()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()

	log.Printf("Judge worker pool started with concurrency %d", poolCfg.Concurrency)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker pool...")
	cancel()
	<-done

	log.Println("Worker pool stopped")
}
