// Command b64bench times the base64 encode kernels available on this CPU
// against encoding/base64 and cristalhq/base64.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	cbase64 "github.com/cristalhq/base64"
	"github.com/urfave/cli/v3"
	"github.com/zeebo/xxh3"
	"golang.org/x/sys/cpu"

	"github.com/mnightingale/rapidbase64"
	"github.com/mnightingale/rapidbase64/internal/bench"
	"github.com/mnightingale/rapidbase64/internal/logger"
)

func main() {
	if err := command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:  "b64bench",
		Usage: "Time base64 encode kernels against encoding/base64",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "size",
				Aliases: []string{"s"},
				Value:   64 << 20,
				Usage:   fmt.Sprintf("Input size in bytes, rounded down to a multiple of %d", sizeUnit),
				Sources: cli.EnvVars("B64BENCH_SIZE"),
			},
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "Runs per implementation; the fastest is reported",
				Sources: cli.EnvVars("B64BENCH_ITERATIONS"),
			},
			&cli.StringSliceFlag{
				Name:    "kernels",
				Aliases: []string{"k"},
				Usage:   "Kernels to measure (default: every kernel usable on this CPU)",
				Sources: cli.EnvVars("B64BENCH_KERNELS"),
			},
			&cli.StringFlag{
				Name:    "alphabet",
				Value:   "std",
				Usage:   "Alphabet, std or url",
				Sources: cli.EnvVars("B64BENCH_ALPHABET"),
			},
			&cli.IntFlag{
				Name:    "parts",
				Value:   0,
				Usage:   "Also measure a concurrent encode split in this many parts (0 skips it)",
				Sources: cli.EnvVars("B64BENCH_PARTS"),
			},
			&cli.Uint64Flag{
				Name:    "seed",
				Value:   0xBAADF00D,
				Usage:   "Seed for the random input",
				Sources: cli.EnvVars("B64BENCH_SEED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("B64BENCH_LOG_LEVEL", "LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "dev",
				Usage:   "dev, text or json",
				Sources: cli.EnvVars("B64BENCH_LOG_FORMAT", "LOG_HANDLER"),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	lvl, err := logger.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(cmd.String("log-format"))
	if err != nil {
		return err
	}
	log := logger.New(logger.WithLevel(lvl), logger.WithFormat(format))

	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	logCPU(log)

	return measure(logger.WithContext(ctx, log), cfg, bench.NewRunner(cfg.iterations, os.Stdout, bench.WithLogger(log)))
}

func measure(ctx context.Context, cfg *config, runner *bench.Runner) error {
	log := logger.From(ctx)

	enc, std, fast := rapidbase64.StdEncoding, base64.StdEncoding, cbase64.StdEncoding
	if cfg.alphabet == "url" {
		enc, std, fast = rapidbase64.URLEncoding, base64.URLEncoding, cbase64.URLEncoding
	}

	log.Info("generating input", "bytes", cfg.size, "seed", cfg.seed)
	src := make([]byte, cfg.size)
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(cfg.seed >> (8 * (i % 8)))
	}
	_, _ = rand.NewChaCha8(seed).Read(src)
	log.Debug("input ready", "xxh3", xxh3.Hash(src))

	want := make([]byte, std.EncodedLen(len(src)))
	runner.Measure("encoding/base64", std.Encode, src, want)
	log.Debug("baseline output", "xxh3", xxh3.Hash(want))

	var errs []error
	check := func(name string, got []byte) {
		if err := bench.Verify(name, want, got); err != nil {
			log.Error("output mismatch", "name", name, "err", err)
			errs = append(errs, err)
			return
		}
		log.Debug("output verified", "name", name, "xxh3", xxh3.Hash(got))
	}

	got := make([]byte, len(want))
	runner.Measure("cristalhq/base64", fast.Encode, src, got)
	check("cristalhq/base64", got)

	// Full Encode path: kernel prefix plus scalar tail
	name := "rapidbase64/" + enc.Kernel().Name
	got = make([]byte, len(want))
	runner.Measure(name, enc.Encode, src, got)
	check(name, got)

	for _, k := range cfg.kernels {
		got := make([]byte, len(want))
		a := enc.Alphabet()
		runner.Measure(k.Name, func(dst, src []byte) {
			k.EncodeBlocks(dst, src, a)
		}, src, got)
		check(k.Name, got)
	}

	if cfg.parts > 0 {
		name := fmt.Sprintf("concurrent/%s/%d", enc.Kernel().Name, cfg.parts)
		got := make([]byte, len(want))
		var encErr error
		runner.Measure(name, func(dst, src []byte) {
			if err := enc.EncodeConcurrent(ctx, dst, src, cfg.parts); err != nil {
				encErr = err
			}
		}, src, got)
		if encErr != nil {
			return fmt.Errorf("%s: %w", name, encErr)
		}
		check(name, got)
	}

	for _, r := range runner.Results() {
		log.Info("result",
			"name", r.Name,
			"min", r.Min,
			"mib_per_sec", fmt.Sprintf("%.1f", r.Throughput()),
			"speedup", r.Speedup,
		)
	}

	return errors.Join(errs...)
}

func logCPU(log *slog.Logger) {
	log.Info("cpu",
		"avx2", cpu.X86.HasAVX2,
		"avx512f", cpu.X86.HasAVX512F,
		"avx512bw", cpu.X86.HasAVX512BW,
		"avx512vbmi", cpu.X86.HasAVX512VBMI,
		"asimd", cpu.ARM64.HasASIMD,
		"kernel", rapidbase64.EncodeKernel(),
		"version", rapidbase64.Version(),
	)
}
