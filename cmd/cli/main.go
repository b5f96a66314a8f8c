package main

import (
	"context"
	"log"
	"os"

	"github.com/kinganjia/backend/internal/buildinfo"
	"github.com/kinganjia/backend/internal/client/cli"
	"github.com/kinganjia/backend/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
