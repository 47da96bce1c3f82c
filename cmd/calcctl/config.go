package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/calcctl/internal/calc"
)

type fileConfig struct {
	ListenAddr string `toml:"listen_addr"`
	AdminAddr  string `toml:"admin_addr"`
	SSHAddr    string `toml:"ssh_addr"`
	SSHHostKey string `toml:"ssh_host_key"`
	MaxLineLen int    `toml:"max_line_len"`
	QueueDepth int    `toml:"queue_depth"`
	Echo       bool   `toml:"echo"`
	Banner     bool   `toml:"banner"`
}

// loadServiceConfig overlays explicitly-set file keys onto the daemon
// defaults; keys absent from the file keep their default values.
func loadServiceConfig(path string) (calc.ServiceConfig, error) {
	cfg := calc.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return calc.ServiceConfig{}, fmt.Errorf("load calcctl config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("ssh_addr") {
		cfg.SSHAddr = strings.TrimSpace(raw.SSHAddr)
	}
	if meta.IsDefined("ssh_host_key") {
		cfg.SSHHostKeyPath = strings.TrimSpace(raw.SSHHostKey)
	}
	if meta.IsDefined("max_line_len") {
		if raw.MaxLineLen < 2 {
			return calc.ServiceConfig{}, fmt.Errorf("parse max_line_len: must be at least 2, got %d", raw.MaxLineLen)
		}
		cfg.Session.MaxLineLen = raw.MaxLineLen
	}
	if meta.IsDefined("queue_depth") {
		if raw.QueueDepth < 1 {
			return calc.ServiceConfig{}, fmt.Errorf("parse queue_depth: must be at least 1, got %d", raw.QueueDepth)
		}
		cfg.Session.QueueDepth = raw.QueueDepth
	}
	if meta.IsDefined("echo") {
		cfg.Session.Echo = raw.Echo
	}
	if meta.IsDefined("banner") {
		cfg.Session.Banner = raw.Banner
	}

	return cfg, nil
}
