package calc

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/calcctl/internal/transport/sshd"
)

var (
	ErrNoListeners       = errors.New("calc: no listen or ssh address configured")
	ErrInvalidLineLimit  = errors.New("calc: invalid max line length")
	ErrInvalidQueueDepth = errors.New("calc: invalid queue depth")
)

// ServiceConfig configures the calcctl daemon runtime.
type ServiceConfig struct {
	// ListenAddr is the raw TCP calculator endpoint.
	ListenAddr string
	// AdminAddr serves the HTTP admin surface when non-empty.
	AdminAddr string
	// SSHAddr serves calculator sessions over SSH when non-empty.
	SSHAddr string
	// SSHHostKeyPath points at a PEM host key; empty generates an
	// ephemeral key at startup.
	SSHHostKeyPath string
	// Session shapes every accepted session.
	Session SessionConfig
}

// Daemon defaults: TCP on :4017, no admin or SSH endpoint.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ListenAddr: ":4017",
		Session:    DefaultSessionConfig(),
	}
}

// Service runs calculator listeners and the admin surface as one process.
type Service struct {
	cfg       ServiceConfig
	registry  *SessionRegistry
	startedAt time.Time
	wg        sync.WaitGroup
}

func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig())
}

func NewServiceWithConfig(cfg ServiceConfig) *Service {
	return &Service{
		cfg:       cfg,
		registry:  NewSessionRegistry(),
		startedAt: time.Now(),
	}
}

func (s *Service) Registry() *SessionRegistry {
	return s.registry
}

// Run blocks until process signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.validate(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Service) validate() error {
	if s.cfg.ListenAddr == "" && s.cfg.SSHAddr == "" {
		return ErrNoListeners
	}
	// Zero session values mean "use defaults"; only explicit bad bounds fail.
	if s.cfg.Session.MaxLineLen != 0 && s.cfg.Session.MaxLineLen < 2 {
		return ErrInvalidLineLimit
	}
	if s.cfg.Session.QueueDepth < 0 {
		return ErrInvalidQueueDepth
	}
	return nil
}

// Serve runs every configured listener until ctx is done.
func (s *Service) Serve(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return err
	}

	if s.cfg.ListenAddr != "" {
		ln, err := net.Listen("tcp", s.cfg.ListenAddr)
		if err != nil {
			return err
		}
		log.Info().Str("addr", ln.Addr().String()).Msg("calc listener up")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.acceptLoop(ctx, ln)
		}()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			<-ctx.Done()
			_ = ln.Close()
		}()
	}

	if s.cfg.SSHAddr != "" {
		sshServer, err := sshd.NewServer(sshd.Config{
			Addr:        s.cfg.SSHAddr,
			HostKeyPath: s.cfg.SSHHostKeyPath,
		}, s.sshHandler())
		if err != nil {
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := sshServer.ListenAndServe(ctx); err != nil {
				log.Error().Err(err).Msg("ssh listener stopped")
			}
		}()
	}

	if s.cfg.AdminAddr != "" {
		admin := &http.Server{
			Addr:    s.cfg.AdminAddr,
			Handler: s.AdminRouter(),
		}
		log.Info().Str("addr", s.cfg.AdminAddr).Msg("admin listener up")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("admin listener stopped")
			}
		}()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = admin.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	s.wg.Wait()
	log.Info().Msg("calc service stopped")
	return nil
}

func (s *Service) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			// Shutdown unblocks the session's pending Read.
			stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
			defer stop()
			s.HandleStream(ctx, conn, conn.RemoteAddr().String(), "tcp")
		}()
	}
}

// HandleStream serves one calculator session over rw with the service
// session policy. Reused by the TCP accept loop, the SSH channel handler,
// and stdio mode.
func (s *Service) HandleStream(ctx context.Context, rw io.ReadWriter, remote, transport string) {
	cfg := s.cfg.Session
	cfg.Transport = transport

	session := NewSession(rw, remote, cfg)
	s.registry.Add(session)
	defer s.registry.Remove(session.ID())

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("session", session.ID()).Msg("session ended with error")
	}
}

func (s *Service) sshHandler() sshd.Handler {
	return func(ctx context.Context, channel io.ReadWriter, remote string) {
		s.HandleStream(ctx, channel, remote, "ssh")
	}
}
