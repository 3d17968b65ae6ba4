package cli

import (
	"errors"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"

	"github.com/statmix/samplegen/internal/config"
)

func getGlobalFlags(env config.Env) []cli.Flag {
	return []cli.Flag{
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level used by the logger, one of: debug, info, warn, error",
			Value: env.LogLevel,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "service-name",
			Usage:   "service name reported in telemetry",
			Aliases: []string{"s"},
			Value:   env.ServiceName,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "telemetry",
			Usage: "telemetry output, one of: none, terminal, or an OTLP endpoint",
			Value: env.Telemetry,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "protocol",
			Usage:   "the OTLP transport protocol, one of: grpc, http",
			Aliases: []string{"p"},
			Value:   "grpc",
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:    "insecure",
			Usage:   "whether to disable client transport security",
			Aliases: []string{"i"},
			Value:   false,
		}),
		altsrc.NewStringSliceFlag(&cli.StringSliceFlag{
			Name:  "header",
			Usage: "additional OTLP headers in 'key=value' format",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "temporality",
			Usage: "exported metrics temporality, one of: delta, cumulative",
			Value: "cumulative",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "db",
			Usage: "path of the SQLite run log (empty disables recording)",
			Value: env.DB,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "profile-file",
			Usage: "YAML file with additional run profiles",
		}),
	}
}

// parseHeaders parses the headers from the command line and returns a map
// of string.
func parseHeaders(c *cli.Context) (map[string]string, error) {
	headers := make(map[string]string)
	for _, h := range c.StringSlice("header") {
		kv := strings.SplitN(h, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("value should be of the format key=value")
		}
		headers[kv[0]] = kv[1]
	}
	return headers, nil
}
