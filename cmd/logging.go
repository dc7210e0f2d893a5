package cmd

import (
	"github.com/achilleasa/raytra/log"
	"github.com/urfave/cli"
)

var logger = log.New("raytra")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
