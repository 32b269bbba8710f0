package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avolkovs/teamcomp/internal/tcctl"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tcctl [-server URL] <command> [args]")
	fmt.Fprintln(os.Stderr, "commands: ingest, summary, leaderboard, reset, catalog <file.json>")
}

func main() {

	serverURL := flag.String("server", "http://localhost:8080", "base URL of the competition server")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	app := tcctl.NewApp(*serverURL)

	if err := app.Run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}
