// Command reeltide runs the ReelTide API server. Besides the default serve
// mode it exposes the indexes and seed maintenance subcommands; see
// internal/app for the dispatch.
package main

import (
	"context"
	"log"
	"os"

	"github.com/reeltide/backend/internal/app"
)

func main() {
	ctx := context.Background()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
