package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mnightingale/rapidbase64"
)

// sizeUnit is the smallest input every kernel consumes without a tail.
const sizeUnit = 48

type config struct {
	size       int
	iterations int
	kernels    []rapidbase64.Kernel
	alphabet   string
	parts      int
	seed       uint64
}

var (
	errSizeTooSmall = fmt.Errorf("size must be at least %d bytes", sizeUnit)
	errIterations   = errors.New("iterations must be positive")
)

func configFromCommand(cmd *cli.Command) (*config, error) {
	c := &config{
		size:       cmd.Int("size") / sizeUnit * sizeUnit,
		iterations: cmd.Int("iterations"),
		alphabet:   strings.ToLower(cmd.String("alphabet")),
		parts:      cmd.Int("parts"),
		seed:       cmd.Uint64("seed"),
	}

	if c.size < sizeUnit {
		return nil, errSizeTooSmall
	}
	if c.iterations < 1 {
		return nil, errIterations
	}
	switch c.alphabet {
	case "std", "url":
	default:
		return nil, fmt.Errorf("unknown alphabet %q, want std or url", c.alphabet)
	}

	names := cmd.StringSlice("kernels")
	if len(names) == 0 {
		c.kernels = rapidbase64.Kernels()
		return c, nil
	}
	for _, name := range names {
		k, ok := rapidbase64.LookupKernel(name)
		if !ok {
			return nil, fmt.Errorf("kernel %q is not available on this CPU (have %s)", name, strings.Join(kernelNames(), ", "))
		}
		c.kernels = append(c.kernels, k)
	}

	return c, nil
}

func kernelNames() []string {
	var names []string
	for _, k := range rapidbase64.Kernels() {
		names = append(names, k.Name)
	}
	return names
}
