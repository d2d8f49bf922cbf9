/*
Copyright 2015 Workiva

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/carlmjohnson/versioninfo"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jfuentes/concurrent-trees/radix"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "radix-stress",
		Usage:   "drive a concurrent radix tree from many goroutines and check it afterwards",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"RADIX_LOG_LEVEL"},
			},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		dumpCmd,
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cctx.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "insert (and optionally delete) disjoint keys concurrently, then verify",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "writers",
			Value: 8,
		},
		&cli.IntFlag{
			Name:  "readers",
			Value: 2,
		},
		&cli.IntFlag{
			Name:  "keys",
			Usage: "keys per writer",
			Value: 10_000,
		},
		&cli.BoolFlag{
			Name:  "deletes",
			Usage: "delete every other key after inserting",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Value: 1,
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "serve Prometheus metrics on this address while running",
			EnvVars: []string{"RADIX_METRICS_ADDR"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}

		writers := cctx.Int("writers")
		readers := cctx.Int("readers")
		perWriter := cctx.Int("keys")
		deletes := cctx.Bool("deletes")
		seed := cctx.Int64("seed")
		if writers < 1 || perWriter < 1 {
			return fmt.Errorf("writers and keys must be positive")
		}

		tree := radix.New[int](&radix.Config{Name: "stress", Logger: logger})

		if addr := cctx.String("metrics-addr"); addr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(radix.NewCollector(tree))
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(addr, mux); err != nil {
					logger.Error("metrics listener failed", "addr", addr, "err", err)
				}
			}()
			logger.Info("serving metrics", "addr", addr)
		}

		keys := generateKeys(seed, writers, perWriter)
		removed := func(i int) bool { return deletes && i%2 == 0 }

		logger.Info("starting", "writers", writers, "readers", readers, "keys", writers*perWriter, "deletes", deletes)
		start := time.Now()

		done := make(chan struct{})
		var rg errgroup.Group
		for r := range readers {
			rg.Go(func() error {
				faker := gofakeit.New(seed + int64(r) + 1)
				for {
					select {
					case <-done:
						return nil
					default:
					}
					w := faker.Number(0, writers-1)
					i := faker.Number(0, perWriter-1)
					if v, ok := tree.Get(keys[w][i]); ok && v != w*perWriter+i {
						return fmt.Errorf("get %q: got %d, want %d", keys[w][i], v, w*perWriter+i)
					}
				}
			})
		}

		var wg errgroup.Group
		for w := range writers {
			wg.Go(func() error {
				for i, key := range keys[w] {
					if _, replaced := tree.Put(key, w*perWriter+i); replaced {
						return fmt.Errorf("put %q: key already present", key)
					}
				}
				for i, key := range keys[w] {
					if removed(i) && !tree.Delete(key) {
						return fmt.Errorf("delete %q: key not found", key)
					}
				}
				return nil
			})
		}
		werr := wg.Wait()
		close(done)
		if err := rg.Wait(); err != nil {
			return err
		}
		if werr != nil {
			return werr
		}
		elapsed := time.Since(start)

		for w := range writers {
			for i, key := range keys[w] {
				v, ok := tree.Get(key)
				switch {
				case removed(i) && ok:
					return fmt.Errorf("get %q: deleted key still present", key)
				case !removed(i) && !ok:
					return fmt.Errorf("get %q: lost update", key)
				case ok && v != w*perWriter+i:
					return fmt.Errorf("get %q: got %d, want %d", key, v, w*perWriter+i)
				}
			}
		}
		if err := tree.Validate(); err != nil {
			return err
		}

		stats := tree.Stats()
		ops := stats.Commits
		fmt.Printf("%s edits in %s (%s/s), %s keys stored\n",
			humanize.Comma(ops), elapsed.Round(time.Millisecond),
			humanize.Comma(int64(float64(ops)/elapsed.Seconds())),
			humanize.Comma(int64(tree.Len())))
		fmt.Printf("helps %s, aborts %s, restarts %s\n",
			humanize.Comma(stats.Helps), humanize.Comma(stats.Aborts), humanize.Comma(stats.Restarts))
		return nil
	},
}

// generateKeys returns perWriter keys for each writer. Keys are random words
// made unique by a writer and sequence suffix, so writers share prefixes but
// never keys.
func generateKeys(seed int64, writers, perWriter int) [][]string {
	faker := gofakeit.New(seed)
	keys := make([][]string, writers)
	for w := range keys {
		keys[w] = make([]string, perWriter)
		for i := range keys[w] {
			keys[w][i] = faker.Word() + "/" + strconv.Itoa(i) + "/" + strconv.Itoa(w)
		}
	}
	return keys
}

var dumpCmd = &cli.Command{
	Name:  "dump",
	Usage: "insert random words and print the resulting tree",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "words",
			Value: 20,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Value: 1,
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}
		tree := radix.New[int](&radix.Config{Name: "dump", Logger: logger})
		faker := gofakeit.New(cctx.Int64("seed"))
		for i := range cctx.Int("words") {
			tree.Put(faker.Word(), i)
		}
		if err := tree.Dump(os.Stdout); err != nil {
			return err
		}
		fmt.Printf("%s keys\n", humanize.Comma(int64(tree.Len())))
		return tree.Validate()
	},
}
