// Package cli wires up the samplegen commands.
package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/config"
)

var logger *zap.Logger

func initLogger(c *cli.Context) error {
	var cfg zap.Config
	switch c.String("log-level") {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	var err error
	logger, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}

// New assembles the samplegen application. Environment variables seed the
// global flag defaults; flags given on the command line win.
func New(version, commit, date string) *cli.App {
	env, envErr := config.LoadEnv()

	v := fmt.Sprintf("v%v-%v (%v)", version, commit, date)
	app := &cli.App{
		Name:    "samplegen",
		Usage:   "A tool to generate normally distributed samples across concurrent workers, reproducibly or not",
		Version: v,
		Flags:   getGlobalFlags(env),
		Commands: []*cli.Command{
			genRunCommand(env),
			genCompareCommand(),
			genVerifyCommand(),
			genStreamCommand(),
			genHistoryCommand(),
		},
		Before: func(c *cli.Context) error {
			if err := initLogger(c); err != nil {
				return err
			}
			if envErr != nil {
				logger.Warn("ignoring invalid environment", zap.Error(envErr))
			}
			if path := c.String("profile-file"); path != "" {
				if err := config.LoadProfiles(path); err != nil {
					return err
				}
				logger.Debug("loaded profiles", zap.String("path", path))
			}
			return nil
		},
	}

	app.EnableBashCompletion = true

	return app
}
