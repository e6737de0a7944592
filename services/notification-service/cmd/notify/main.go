package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Synapsr/Louez-sub002/pkg/config"
	"github.com/Synapsr/Louez-sub002/pkg/mq"
	"github.com/Synapsr/Louez-sub002/pkg/obs"
	"github.com/Synapsr/Louez-sub002/services/notification-service/internal/events"
	"github.com/Synapsr/Louez-sub002/services/notification-service/internal/notifier"
	"github.com/Synapsr/Louez-sub002/services/notification-service/internal/worker"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())

	shutdownTracer := obs.InitTracer("notification-worker")
	defer func() { _ = shutdownTracer(context.Background()) }()

	cons := must(mq.NewConsumer(cfg.RabbitURL, cfg.NotifyExchange, cfg.NotifyQueue, events.Keys()))
	defer cons.Close()

	w := worker.New(cons, notifier.NewConsole())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	log.Println("[notify] worker started")
	if err := w.Run(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("[notify] stopped")
}
