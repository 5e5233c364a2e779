package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/simaogato/fundreport-ingest/internal/adapter/supabase"
	"github.com/simaogato/fundreport-ingest/internal/config"
)

const extractsUsage = "<geral.csv> <ativo.csv> <complemento.csv>"

type ingestCmd struct {
	config string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "derive fund metrics from monthly extracts and publish them" }
func (*ingestCmd) Usage() string {
	return `ingest [-config <file>] ` + extractsUsage + `

  Reads the three monthly report extracts, keeps the latest version of every
  fund and period, derives snapshots, valuations and dividends, and publishes
  them to the ingestion API.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "YAML config file (defaults to environment variables)")
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintf(os.Stderr, "Error: expected 3 extracts, got %d\n", f.NArg())
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx, c.config, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		a.logger.Error("failed to build ingest service", zap.Error(err))
		return subcommands.ExitFailure
	}

	extracts, sources, err := a.readExtracts(f.Args())
	if err != nil {
		a.logger.Error("failed to read extracts", zap.Error(err))
		return subcommands.ExitFailure
	}

	_, runErr := svc.Run(ctx, extracts, sources)

	if err := a.metrics.Push(context.WithoutCancel(ctx), a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
		a.logger.Warn("metrics not pushed", zap.Error(err))
	}

	if runErr != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type deriveCmd struct {
	config     string
	noRegistry bool
}

func (*deriveCmd) Name() string     { return "derive" }
func (*deriveCmd) Synopsis() string { return "print the derived batch as JSON without publishing" }
func (*deriveCmd) Usage() string {
	return `derive [-config <file>] [-no-registry] ` + extractsUsage + `

  Runs the pipeline and prints the payloads that ingest would publish.
`
}

func (c *deriveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "YAML config file (defaults to environment variables)")
	f.BoolVar(&c.noRegistry, "no-registry", false, "skip the ticker registry and keep every fund")
}

func (c *deriveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintf(os.Stderr, "Error: expected 3 extracts, got %d\n", f.NArg())
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx, c.config, c.noRegistry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if c.noRegistry {
		a.cfg.Registry.Source = config.RegistryNone
	}

	svc, err := a.service()
	if err != nil {
		a.logger.Error("failed to build ingest service", zap.Error(err))
		return subcommands.ExitFailure
	}

	extracts, _, err := a.readExtracts(f.Args())
	if err != nil {
		a.logger.Error("failed to read extracts", zap.Error(err))
		return subcommands.ExitFailure
	}

	prepared, err := svc.Preview(ctx, extracts)
	if err != nil {
		a.logger.Error("failed to derive batch", zap.Error(err))
		return subcommands.ExitFailure
	}

	out, err := supabase.MarshalBatch(prepared.Batch)
	if err != nil {
		a.logger.Error("failed to encode batch", zap.Error(err))
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}

type registryCmd struct {
	config string
}

func (*registryCmd) Name() string     { return "registry" }
func (*registryCmd) Synopsis() string { return "print the CNPJ to ticker registry" }
func (*registryCmd) Usage() string {
	return `registry [-config <file>]

  Prints every registered fund as "<cnpj>\t<ticker>", sorted by CNPJ.
`
}

func (c *registryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "YAML config file (defaults to environment variables)")
}

func (c *registryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx, c.config, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	registry, err := a.registry()
	if err != nil {
		a.logger.Error("failed to build registry", zap.Error(err))
		return subcommands.ExitFailure
	}
	if registry == nil {
		fmt.Fprintln(os.Stderr, "Error: registry.source is none")
		return subcommands.ExitUsageError
	}

	tickers, err := registry.Tickers(ctx)
	if err != nil {
		a.logger.Error("failed to load registry", zap.Error(err))
		return subcommands.ExitFailure
	}

	cnpjs := make([]string, 0, len(tickers))
	for cnpj := range tickers {
		cnpjs = append(cnpjs, cnpj)
	}
	sort.Strings(cnpjs)
	for _, cnpj := range cnpjs {
		fmt.Printf("%s\t%s\n", cnpj, tickers[cnpj])
	}
	fmt.Fprintf(os.Stderr, "%d funds\n", len(tickers))
	return subcommands.ExitSuccess
}
