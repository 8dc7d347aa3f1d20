package main

import (
	"log"
	"os"

	"github.com/ankitx1357-boop/infralith-architecture/internal/api"
	"github.com/ankitx1357-boop/infralith-architecture/internal/config"
	"github.com/ankitx1357-boop/infralith-architecture/internal/dispatch"
	"github.com/ankitx1357-boop/infralith-architecture/internal/pipeline"
	"github.com/ankitx1357-boop/infralith-architecture/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("infralith: starting",
		"listen_addr", cfg.ListenAddr,
		"max_pipelines", cfg.MaxPipelines,
	)

	st := store.NewMemoryStore()
	defer st.Close()

	broker := dispatch.NewBroker()
	notify := func(id, tag, msg string) {
		broker.Publish(id, dispatch.Event{Tag: tag, Msg: msg})
	}

	sessions := pipeline.NewSessionPipeline(st, logger, pipeline.WithNotify(notify))
	renders := pipeline.NewRenderPipeline(st, logger, pipeline.WithNotify(notify))
	dispatcher := dispatch.NewDispatcher(sessions, renders, broker, logger, cfg.MaxPipelines)

	srv := api.NewServer(cfg.ListenAddr, st, dispatcher, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}

	// The server has stopped accepting requests; let dispatched pipelines
	// run to their terminal state before exiting.
	logger.Info("draining in-flight pipelines")
	dispatcher.Wait()
	logger.Info("infralith: stopped")
}
