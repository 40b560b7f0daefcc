// Command finquery-routes prints the command tree of the demo platform
// as JSON: the route listing, or the full schema description of one
// route when a path is given.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"

	"github.com/finquery/finquery/internal/demo"
	"github.com/finquery/finquery/pkg/slogx"
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log := zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

func main() {
	p, err := demo.NewPlatform()
	if err != nil {
		slog.Error("failed to build platform", slogx.Error(err))
		os.Exit(1)
	}
	rt := p.Router()

	var payload any
	switch {
	case len(os.Args) > 1 && os.Args[1] == "providers":
		payload = p.ListProviders()
	case len(os.Args) > 1:
		desc, err := rt.Describe(os.Args[1])
		if err != nil {
			slog.Error("describe failed", slogx.Route(os.Args[1]), slogx.Error(err))
			os.Exit(1)
		}
		payload = desc
	default:
		payload = rt.Routes()
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		slog.Error("failed to render output", slogx.Error(err))
		os.Exit(1)
	}
	fmt.Println(string(out))
}
