package main

import (
	"errors"
	"io/fs"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lox/pushfold/cmd/pushfold/shared"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Debug    bool             `help:"enable debug logging"`
	JSONLogs bool             `name:"json-logs" help:"emit structured JSON logs"`

	Train TrainCmd `cmd:"" help:"solve the push/fold game and write a chart"`
	Show  ShowCmd  `cmd:"" help:"render a saved chart"`
	Eval  EvalCmd  `cmd:"" help:"simulate a chart against itself or an opponent"`
}

// Globals is bound into every command's Run method.
type Globals struct {
	Logger zerolog.Logger
	Debug  bool
}

func main() {
	// A missing .env is normal; anything else is worth knowing about.
	envErr := godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pushfold"),
		kong.Description("Heads-up push/fold equilibrium solver"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	logger := shared.SetupLogger(cli.Debug)
	if cli.JSONLogs {
		logger = shared.SetupStructuredLogger(cli.Debug)
	}
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("failed to load .env")
	}

	if err := ctx.Run(&Globals{Logger: logger, Debug: cli.Debug}); err != nil {
		logger.Fatal().Err(err).Msgf("%s failed", ctx.Command())
	}
}
