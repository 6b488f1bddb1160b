package global

import (
	"context"

	"github.com/GabrielG71/online-chat/logger"
	"github.com/GabrielG71/online-chat/service/storage"
	"github.com/GabrielG71/online-chat/tools/ids"
)

var appConfig *AppConfig

// ConfigAll bootstraps process-wide collaborators from the loaded config.
// Created once at startup, never recreated.
func ConfigAll(ctx context.Context, cfg *AppConfig) error {
	appConfig = cfg

	ConfigIds(cfg)

	if err := ConfigRedis(cfg); err != nil {
		// Presence bookkeeping degrades to a no-op without redis.
		logger.Warnf("redis unavailable, presence disabled: %v", err)
	}

	if cfg.PostgresDSN != "" {
		if err := storage.InitPostgres(ctx, cfg.PostgresDSN); err != nil {
			return err
		}
		if err := storage.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	return nil
}

func ConfigIds(cfg *AppConfig) {
	ids.SetNodeID(cfg.NodeID)
}

func ConfigRedis(cfg *AppConfig) error {
	if cfg.RedisAddr == "" {
		return nil
	}
	return storage.InitRedis(storage.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// GetJwtSecret returns the HMAC key used for session tokens.
func GetJwtSecret() []byte {
	if appConfig == nil || appConfig.JWTSecret == "" {
		// dev fallback, overridden by CHAT_JWT_SECRET in any real deployment
		return []byte("mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=")
	}
	return []byte(appConfig.JWTSecret)
}

// Config returns the active AppConfig (nil before ConfigAll).
func Config() *AppConfig {
	return appConfig
}
