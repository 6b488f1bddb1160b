package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabrielG71/online-chat/global"
	"github.com/GabrielG71/online-chat/logger"
	mid "github.com/GabrielG71/online-chat/middleware"
	"github.com/GabrielG71/online-chat/module/chat/message"
	"github.com/GabrielG71/online-chat/module/user"
	"github.com/GabrielG71/online-chat/service/chat"
	"github.com/GabrielG71/online-chat/service/storage"
	"github.com/GabrielG71/online-chat/tools/safe"
)

func main() {
	cfgPath := os.Getenv("CHAT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := global.LoadConfig(cfgPath)
	if err != nil {
		logger.Errorf("[main] load config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := global.ConfigAll(ctx, cfg); err != nil {
		logger.Errorf("[main] init: %v", err)
		os.Exit(1)
	}

	srv := chat.NewServer(chat.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		MaxStreamLifetime: cfg.MaxStreamLifetime,
		PresenceTTL:       cfg.PresenceTTL,
		NodeID:            "node-" + strconv.FormatInt(cfg.NodeID, 10),
	})

	userSvc := user.NewService(user.NewStore(), cfg.AuthTTL)
	userHandler := user.NewHandler(userSvc)

	msgSvc := message.NewService(message.NewStore(), srv.Dispatcher())
	msgHandler := message.NewHandler(msgSvc)

	r := gin.New()
	r.Use(gin.Recovery(), mid.Origin())

	mid.POST(r, "/api/register", userHandler.PostRegister, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/login", userHandler.PostLogin, mid.RouteOpt{IsAuth: false})
	mid.GET(r, "/api/users", userHandler.GetUsers, mid.RouteOpt{IsAuth: true})

	mid.POST(r, "/api/messages", msgHandler.PostMessage, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/messages", msgHandler.GetMessages, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/api/typing", msgHandler.PostTyping, mid.RouteOpt{IsAuth: true})

	mid.GET(r, "/api/chat/sse", srv.HandleSSE, mid.RouteOpt{IsAuth: true})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	safe.SafeGo(func() {
		logger.Infof("[HTTP] listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("[HTTP] server failed: %v", err)
			stop()
		}
	})

	<-ctx.Done()
	logger.Info("[main] shutting down")

	srv.Close()

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Warnf("[main] shutdown: %v", err)
	}
	storage.ClosePostgres()
}
