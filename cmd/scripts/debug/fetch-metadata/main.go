package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/openlibrary"
)

func main() {
	log := logger.New()

	var opts struct {
		BaseURL string        `short:"b" long:"base-url" description:"Catalog origin author keys are resolved against" default:"https://openlibrary.org"`
		Timeout time.Duration `short:"t" long:"timeout" description:"Deadline for each request" default:"5s"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/fetch-metadata <https://openlibrary.org/books/OL...M.json>")
		os.Exit(1)
	}

	client := openlibrary.NewClient(openlibrary.Options{BaseURL: opts.BaseURL, Timeout: opts.Timeout})
	ctx := context.Background()

	doc, err := client.FetchJSON(ctx, args[0])
	if err != nil {
		log.Err(err).Fatal("book fetch error")
	}
	title, hasTitle := doc.String("title")
	fmt.Printf("Title: %s (present: %v)\n", title, hasTitle)

	key, ok := doc.FirstAuthorKey()
	if !ok {
		fmt.Println("Author: <none>")
		return
	}
	authorDoc, err := client.FetchJSON(ctx, client.ResolveKey(key))
	if err != nil {
		log.Err(err).Warn("author fetch error")
		return
	}
	name, _ := authorDoc.String("name")
	fmt.Printf("Author: %s (%s)\n", name, key)
}
