package sshd

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

var (
	ErrMissingAddr    = errors.New("sshd: missing listen address")
	ErrMissingHandler = errors.New("sshd: missing stream handler")
)

// Handler serves one accepted session channel as a plain byte stream.
type Handler func(ctx context.Context, channel io.ReadWriter, remote string)

// Config configures the SSH endpoint.
type Config struct {
	Addr string
	// HostKeyPath points at a PEM private key. Empty generates an
	// ephemeral ed25519 key, so host identity changes across restarts.
	HostKeyPath string
}

// Server accepts SSH connections and hands each session channel to the
// configured Handler. No client auth: the served protocol is public and
// read-only beyond its own arithmetic.
type Server struct {
	cfg       Config
	handler   Handler
	sshConfig *ssh.ServerConfig
}

func NewServer(cfg Config, handler Handler) (*Server, error) {
	if cfg.Addr == "" {
		return nil, ErrMissingAddr
	}
	if handler == nil {
		return nil, ErrMissingHandler
	}

	signer, err := hostKeySigner(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ServerConfig{NoClientAuth: true}
	sshConfig.AddHostKey(signer)

	return &Server{
		cfg:       cfg,
		handler:   handler,
		sshConfig: sshConfig,
	}, nil
}

func hostKeySigner(path string) (ssh.Signer, error) {
	if path == "" {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("sshd: generate host key: %w", err)
		}
		signer, err := ssh.NewSignerFromKey(priv)
		if err != nil {
			return nil, fmt.Errorf("sshd: host key signer: %w", err)
		}
		return signer, nil
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sshd: read host key (%s): %w", path, err)
	}
	signer, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, fmt.Errorf("sshd: parse host key (%s): %w", path, err)
	}
	return signer, nil
}

// ListenAndServe accepts connections until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. It owns ln and closes
// it on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Info().Str("addr", ln.Addr().String()).Msg("ssh listener up")

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sshConn, channels, requests, err := ssh.NewServerConn(conn, s.sshConfig)
	if err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("ssh handshake failed")
		return
	}
	defer sshConn.Close()
	go ssh.DiscardRequests(requests)

	for newChannel := range channels {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "only session channels are served")
			continue
		}
		channel, channelRequests, err := newChannel.Accept()
		if err != nil {
			log.Debug().Err(err).Msg("ssh channel accept failed")
			continue
		}
		go serviceChannelRequests(channelRequests)
		go func() {
			defer channel.Close()
			s.handler(ctx, channel, sshConn.RemoteAddr().String())
		}()
	}
}

// serviceChannelRequests accepts the requests an interactive terminal sends
// (pty-req, shell, env, window-change) and refuses everything else, exec
// included.
func serviceChannelRequests(in <-chan *ssh.Request) {
	for req := range in {
		accepted := false
		switch req.Type {
		case "pty-req", "shell", "env", "window-change":
			accepted = true
		}
		if req.WantReply {
			_ = req.Reply(accepted, nil)
		}
	}
}
