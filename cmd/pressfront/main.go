package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/eringen/pressfront"
	"github.com/eringen/pressfront/content"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "check":
		err = runCheck()
	case "slugs":
		err = runSlugs()
	case "subscribers":
		err = runSubscribers()
	case "version":
		fmt.Printf("pressfront %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg := pressfront.LoadConfig()
	app := pressfront.New(cfg)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func repository() (*content.Repository, error) {
	cfg := pressfront.LoadConfig()
	f, err := pressfront.NewBackend(cfg, pressfront.NewLogger(cfg.Debug, os.Stderr))
	if err != nil {
		return nil, err
	}
	return content.NewRepository(f), nil
}

// runCheck verifies the content store is reachable.
func runCheck() error {
	repo, err := repository()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	counts, err := repo.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d published posts, %d categories\n", counts.Posts, counts.Categories)
	return nil
}

func runSlugs() error {
	repo, err := repository()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	posts, err := repo.PostSlugs(ctx)
	if err != nil {
		return err
	}
	cats, err := repo.CategorySlugs(ctx)
	if err != nil {
		return err
	}
	for _, s := range posts {
		fmt.Println("/blog/" + s)
	}
	for _, s := range cats {
		fmt.Println("/categories/" + s)
	}
	return nil
}

func runSubscribers() error {
	cfg := pressfront.LoadConfig()
	store, err := pressfront.NewSubscriberStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	subs, err := store.List(context.Background())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tSOURCE\tSUBSCRIBED")
	for _, s := range subs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Email, s.Source, s.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func printUsage() {
	fmt.Println(`pressfront - Server-rendered blog front end for a headless CMS

Usage:
  pressfront [command]

Commands:
  serve         Start the web server (default)
  check         Verify the content store is reachable
  slugs         Print every post and category path
  subscribers   List newsletter subscribers
  version       Print the pressfront version
  help          Show this help message

Configuration is read from the environment and an optional .env file.`)
}
