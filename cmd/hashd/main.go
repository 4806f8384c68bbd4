// main.go - hashd serves and computes the Poseidon2 sponge hash over BN254.
//
// Usage:
//
//	hashd serve --config hashd.yaml
//	hashd hash --out-len 2 0x01 0x02
//	hashd selftest
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"honkdrop/field"
	"honkdrop/internal/hashsvc"
	"honkdrop/poseidon2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hashd",
		Short:        "Poseidon2 (BN254, t=4) sponge hash service",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newHashCmd(), newSelfTestCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP hashing service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return errors.WrapPrefix(err, "invalid configuration", 0)
			}

			logger, err := NewLogger(cfg.LogLevel, cfg.LogFile, cfg.auditPath())
			if err != nil {
				return err
			}
			defer logger.Close()
			poseidon2.SetLogger(logger.Zerolog())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "hashd.yaml", "configuration file (.json, .yaml or .yml)")
	return cmd
}

// serve runs the service until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg *Config, logger *Logger) error {
	if err := poseidon2.SelfTest(); err != nil {
		logger.Error("self test failed: %v", err)
		return err
	}

	svc, err := hashsvc.New(cfg.Options(version), logger.Zerolog())
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      svc.Handler(),
		ReadTimeout:  seconds(cfg.ReadTimeoutSeconds),
		WriteTimeout: seconds(cfg.WriteTimeoutSeconds),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening on %s (parameter set %s)", cfg.ListenAddr, poseidon2.ParameterSetVersion)
		logger.Audit("server_started", map[string]interface{}{"addr": cfg.ListenAddr, "version": version})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.WrapPrefix(err, "http server failed", 0)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.ShutdownTimeoutSeconds))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed: %v", err)
			return err
		}
		return nil
	})

	err = g.Wait()
	var served float64
	for _, m := range svc.Metrics().GetAllMetrics() {
		if m.Name == hashsvc.MetricRequestCount {
			served += m.Value
		}
	}
	logger.Audit("server_stopped", map[string]interface{}{"requests": served, "error": fmt.Sprint(err)})
	return err
}

func newHashCmd() *cobra.Command {
	var (
		outLen   int
		variable bool
		reduce   bool
		asJSON   bool
		asCBOR   bool
	)
	cmd := &cobra.Command{
		Use:   "hash <hex>...",
		Short: "Hash field elements given as hex integers",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]field.Element, len(args))
			for i, arg := range args {
				var err error
				if reduce {
					inputs[i], err = field.FromHexReduced(arg)
				} else {
					inputs[i], err = field.FromHex(arg)
				}
				if err != nil {
					return errors.WrapPrefix(err, fmt.Sprintf("input %d", i), 0)
				}
			}

			out, err := poseidon2.Hash(inputs, outLen, variable)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asCBOR {
				return field.NewCBOREncoder(w).Encode(hashsvc.HashResponse{Digest: out})
			}
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(hashsvc.HashResponse{Digest: out})
			}
			for _, e := range out {
				fmt.Fprintln(w, e.Hex())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&outLen, "out-len", "n", 1, "number of output elements")
	cmd.Flags().BoolVar(&variable, "variable", false, "variable-length mode (absorbs a trailing 1)")
	cmd.Flags().BoolVar(&reduce, "reduce", false, "reduce inputs modulo the field instead of rejecting them")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the digest as JSON")
	cmd.Flags().BoolVar(&asCBOR, "cbor", false, "write the digest as CBOR")
	cmd.MarkFlagsMutuallyExclusive("json", "cbor")
	return cmd
}

func newSelfTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Check the hash against its known answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := poseidon2.SelfTest(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", poseidon2.ParameterSetVersion)
			return nil
		},
	}
}
