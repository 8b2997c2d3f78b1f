package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/yuchinlin/line-gemini-bot/internal/config"
	"github.com/yuchinlin/line-gemini-bot/internal/handler"
	"github.com/yuchinlin/line-gemini-bot/internal/service/ai"
	"github.com/yuchinlin/line-gemini-bot/internal/service/dispatch"
	"github.com/yuchinlin/line-gemini-bot/internal/service/weather"
	"github.com/yuchinlin/line-gemini-bot/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("failed to load .env file: %v", err)
		logrus.Info("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize history store
	db, err := sql.Open("sqlite3", cfg.Store.Path)
	if err != nil {
		logrus.Fatalf("failed to open history database: %v", err)
	}
	defer db.Close()

	historyStore := store.NewHistoryStore(db)
	if err := historyStore.Init(ctx); err != nil {
		logrus.Fatalf("failed to initialize history schema: %v", err)
	}

	// Initialize AI responder
	var responder dispatch.Responder
	if cfg.Gemini.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.Gemini)
		if err != nil {
			logrus.Warnf("failed to initialize Gemini service: %v", err)
			logrus.Info("continuing without AI functionality")
		} else {
			defer aiService.Close()
			responder = aiService
			logrus.Info("Gemini service initialized successfully")
		}
	} else {
		logrus.Info("GEMINI_API_KEY 未設定，跳過 AI 功能初始化")
	}

	weatherService := weather.NewService(cfg.Weather, nil)
	dispatcher := dispatch.NewService(historyStore, weatherService, responder)

	replyClient, err := messaging_api.NewMessagingApiAPI(cfg.Line.ChannelToken)
	if err != nil {
		logrus.Fatalf("failed to create LINE messaging client: %v", err)
	}

	router := handler.NewRouter(cfg.Line.ChannelSecret, replyClient, dispatcher, historyStore)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logrus.Infof("line-gemini-bot listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
