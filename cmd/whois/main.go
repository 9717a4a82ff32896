package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"
	"whoislookup/internal/config"
	"whoislookup/internal/service"
	"whoislookup/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	servers     string
	timeout     time.Duration
	readTimeout time.Duration
	partial     bool
	jsonOutput  bool
	proxy       string
	resolver    string
	backend     string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:          "whois [flags] <target>...",
		Short:        "Look up domains and IP addresses in WHOIS",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args)
		},
	}
	cmd.Flags().StringVar(&flags.servers, "servers", envOr("SERVERS_FILE", "servers.json"), "server list (.json or .yaml)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 5*time.Second, "connect timeout per server")
	cmd.Flags().DurationVar(&flags.readTimeout, "read-timeout", 0, "overall deadline per server query, 0 for none")
	cmd.Flags().BoolVar(&flags.partial, "partial", false, "keep replies from servers that answered when others fail")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&flags.proxy, "proxy", os.Getenv("WHOIS_PROXY"), "SOCKS5 proxy URL")
	cmd.Flags().StringVar(&flags.resolver, "resolver", os.Getenv("DNS_RESOLVER"), "DNS server used to resolve whois hosts")
	cmd.Flags().StringVar(&flags.backend, "backend", config.BackendSocket, "query backend: socket or likexian")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log queries to stderr")
	return cmd
}

func run(cmd *cobra.Command, flags rootFlags, args []string) error {
	if flags.verbose {
		utils.InitLogger("")
	} else {
		utils.Log = zap.NewNop()
	}

	dir, err := config.LoadDirectory(flags.servers)
	if err != nil {
		return err
	}
	engine, err := service.BuildEngine(&config.Config{
		Backend:          flags.backend,
		WhoisPort:        43,
		WhoisTimeout:     flags.timeout,
		WhoisReadTimeout: flags.readTimeout,
		PartialResults:   flags.partial,
		Proxy:            flags.proxy,
		DNSResolver:      flags.resolver,
	}, dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, target := range args {
		res, err := engine.Lookup(cmd.Context(), target)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		if flags.jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, utils.FormatResult(res))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
