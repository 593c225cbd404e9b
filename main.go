package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"gopkg.in/alecthomas/kingpin.v2"

	"ppcalc/cache"
	"ppcalc/calc"
)

func main() {
	kingpin.Version("0.3.0")
	kingpin.Parse()

	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := collectPaths(*Paths)
	if err != nil {
		return err
	}

	load := calc.DecodeFile
	if *CachePath != "" {
		c, err := cache.Open(*CachePath)
		if err != nil {
			return err
		}
		defer c.Close()
		if *PruneCache {
			n, err := c.Prune()
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			log.Printf("pruned %d cache entries", n)
		}
		load = c.Load
	}

	table := !*Plain && isTerminal(os.Stdout)

	rows := evaluateAll(paths, cfg, load, *Jobs)
	printRows(os.Stdout, rows, table)

	failed := 0
	for _, row := range rows {
		if row.Err != nil {
			failed++
			Fail(*FailDir, row.Path, row.Err)
		}
	}

	if *Watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		errs := make(chan error, 1)
		Run("watch", func() {
			errs <- watch(ctx, paths, cfg, load, os.Stdout, table)
		})
		if err := <-errs; err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d beatmaps failed", failed, len(rows))
	}
	return nil
}
