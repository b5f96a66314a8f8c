package main

import (
	"context"
	"log"
	"os"

	"github.com/kinganjia/backend/internal/buildinfo"
	"github.com/kinganjia/backend/internal/server"
	"github.com/kinganjia/backend/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
