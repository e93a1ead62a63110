// cmd/tokscrape/main.go
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/tokscrape/internal/cli"
)

func main() {
	// replaced by the configured logger once flags are parsed
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cli.Execute()
}
