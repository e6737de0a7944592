package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Synapsr/Louez-sub002/pkg/config"
	"github.com/Synapsr/Louez-sub002/pkg/db"
	"github.com/Synapsr/Louez-sub002/pkg/mq"
	"github.com/Synapsr/Louez-sub002/pkg/obs"

	httpx "github.com/Synapsr/Louez-sub002/services/payment-service/internal/http"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/notifier"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/processor"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/repository"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/service"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())

	shutdownTracer := obs.InitTracer("payment-reconciler")
	defer func() { _ = shutdownTracer(context.Background()) }()

	// Ledger store
	gdb := db.Open(cfg.PGLedgerDSN)
	repo := repository.NewLedgerRepo(gdb)
	must(0, repo.Migrate())

	// Notification side channel (best-effort; engine runs without it)
	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.NotifyExchange))
	defer pub.Close()
	dispatcher := notifier.New(pub)

	svc := service.NewReconcileSvc(repo, dispatcher)
	router := must(processor.NewRouter(svc.Routes()))

	engine := gin.New()
	engine.Use(gin.Recovery())
	httpx.NewWebhookServer(router, cfg.WebhookSecret, cfg.ConnectWebhookSecret).Register(engine)

	srv := &http.Server{Addr: cfg.WebhookHTTPAddr, Handler: engine}
	go func() {
		log.Println("[payments] webhook http listening on", cfg.WebhookHTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Println("[payments] stopped")
}
