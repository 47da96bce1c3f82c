package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/calcctl/internal/calc"
	"github.com/danmuck/calcctl/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to calcctl config.toml")
	stdio := flag.Bool("stdio", false, "serve one session over stdin/stdout and exit at EOF")
	flag.Parse()

	logging.ConfigureRuntime("calcctl")

	cfg := calc.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load calcctl config")
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded calcctl config")
	}

	if *stdio {
		if err := runStdio(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "calcctl: %v\n", err)
			os.Exit(1)
		}
		return
	}

	svc := calc.NewServiceWithConfig(cfg)
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "calcctl: %v\n", err)
		os.Exit(1)
	}
}

// runStdio serves exactly one session over stdin/stdout. Byte echo stays
// off: cooked-mode terminals already echo locally and piped input must not
// be re-emitted into the output stream. The banner shows only on a real
// terminal so piped runs produce nothing but results.
func runStdio(cfg calc.ServiceConfig) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	scfg := cfg.Session
	scfg.Transport = "stdio"
	scfg.Echo = false
	scfg.Banner = interactive

	session := calc.NewSession(stdioStream{}, "stdio", scfg)
	return session.Run(context.Background())
}

type stdioStream struct{}

func (stdioStream) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioStream) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
