package chat

import (
	"time"
)

// Config carries the stream lifecycle policy knobs.
type Config struct {
	// HeartbeatInterval must stay below any upstream idle-connection
	// timeout in front of the service.
	HeartbeatInterval time.Duration
	// MaxStreamLifetime is the platform-imposed ceiling on one response.
	// The stream emits a timeout event and closes when it is reached.
	MaxStreamLifetime time.Duration
	// PresenceTTL bounds how long a user reads as online without a
	// heartbeat renewing the presence key.
	PresenceTTL time.Duration
	// NodeID identifies this process in presence values.
	NodeID string
}

func (c *Config) norm() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.MaxStreamLifetime <= 0 {
		c.MaxStreamLifetime = 4 * time.Minute
	}
	if c.PresenceTTL <= 0 {
		c.PresenceTTL = 2 * c.HeartbeatInterval
	}
	if c.NodeID == "" {
		c.NodeID = "node-1"
	}
}

// Server owns the connection registry and the fan-out dispatcher for this
// process. Constructed once at startup; Close tears down every live stream.
type Server struct {
	conf Config
	reg  *Registry
	disp *Dispatcher
}

func NewServer(conf Config) *Server {
	conf.norm()
	reg := NewRegistry()
	return &Server{
		conf: conf,
		reg:  reg,
		disp: NewDispatcher(reg),
	}
}

func (s *Server) Registry() *Registry     { return s.reg }
func (s *Server) Dispatcher() *Dispatcher { return s.disp }

func (s *Server) Close() {
	s.reg.CloseAll()
}
