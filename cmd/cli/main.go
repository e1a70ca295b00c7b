package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/tenantdb/internal/buildinfo"
	"github.com/dmitrijs2005/tenantdb/internal/cli"
	"github.com/dmitrijs2005/tenantdb/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	err = app.Run(ctx, os.Args[1:])

	if cerr := app.Close(ctx); cerr != nil {
		log.Printf("%v", cerr)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}

}
