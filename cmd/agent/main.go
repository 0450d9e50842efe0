package main

import (
	"github.com/rs/zerolog/log"

	"github.com/involex/involex/pkg/agent"
)

func main() {
	a, err := agent.NewAgent()
	if err != nil {
		log.Fatal().Err(err).Msg("error creating agent")
	}

	a.Start()
	log.Info().Msg("agent stopped")
}
