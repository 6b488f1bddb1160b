package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GabrielG71/online-chat/logger"
	midsec "github.com/GabrielG71/online-chat/middleware/security"
	"github.com/GabrielG71/online-chat/service/storage"
)

// HandleSSE serves the long-lived event stream for the authenticated user.
//
// Lifecycle per stream: register the sink and confirm the handshake with a
// connected event, then drive the heartbeat loop until one of three exits
// fires: transport abort, a failed heartbeat write, or the maximum stream
// lifetime (which first emits a timeout event so the client reconnects
// instead of treating the close as an error). Every exit path unregisters
// and closes; teardown is idempotent.
func (s *Server) HandleSSE(c *gin.Context) {
	userID := midsec.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	// The sink's close hook cancels this context, so a replacement stream
	// (last-connection-wins) or a dispatcher eviction wakes the loop below
	// without waiting for the next tick.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sink := NewStreamSink(c.Writer, c.Writer, cancel)
	s.reg.Register(userID, sink)
	defer func() {
		s.reg.UnregisterSink(userID, sink)
		if _, ok := s.reg.Lookup(userID); !ok {
			if err := storage.PresenceOffline(userID); err != nil {
				logger.Warnf("[stream] presence offline user=%s err=%v", userID, err)
			}
		}
	}()

	if err := sink.WriteEvent(NewConnectedEvent(userID)); err != nil {
		logger.Warnf("[stream] handshake write failed user=%s err=%v", userID, err)
		return
	}
	if err := storage.PresenceOnline(userID, s.conf.NodeID, s.conf.PresenceTTL); err != nil {
		logger.Warnf("[stream] presence online user=%s err=%v", userID, err)
	}

	heartbeat := time.NewTicker(s.conf.HeartbeatInterval)
	defer heartbeat.Stop()
	lifetime := time.NewTimer(s.conf.MaxStreamLifetime)
	defer lifetime.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client abort, replacement, or eviction.
			logger.Infof("[stream] closed user=%s", userID)
			return

		case <-heartbeat.C:
			if err := sink.WriteEvent(NewPingEvent()); err != nil {
				logger.Infof("[stream] heartbeat failed user=%s err=%v", userID, err)
				return
			}
			if err := storage.PresenceOnline(userID, s.conf.NodeID, s.conf.PresenceTTL); err != nil {
				logger.Warnf("[stream] presence renew user=%s err=%v", userID, err)
			}

		case <-lifetime.C:
			// Graceful forced closure: tell the client to reconnect.
			_ = sink.WriteEvent(NewTimeoutEvent())
			logger.Infof("[stream] lifetime reached user=%s", userID)
			return
		}
	}
}
