package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecocompute/control-plane/app"
	"github.com/ecocompute/control-plane/config"
	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/routes"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecocompute",
		Short: "Execution control plane for cost/latency/carbon-aware AI routing",
		Long: `ecocompute routes inference requests to the best provider for a given
optimization objective, falls back to demo mode on failure, and records a
structured trace of every decision.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(providersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the control plane HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			deps, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			srv := &http.Server{
				Addr:         cfg.Server.Address(),
				Handler:      routes.Setup(deps),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				deps.Logger.Info("control plane listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				deps.Logger.Info("shutting down", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func execCmd() *cobra.Command {
	var (
		taskFlag       string
		objectiveFlag  string
		credentialFlag string
		preferFlag     string
		fallbackFlag   []string
		maxCostFlag    float64
		maxLatencyFlag int
	)

	cmd := &cobra.Command{
		Use:   "exec [prompt]",
		Short: "Run one execution and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			deps, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			task := models.TaskType(taskFlag)
			if !task.Valid() {
				return fmt.Errorf("unknown task type %q (valid: %s)", taskFlag, joinTaskTypes())
			}
			objective := models.Objective(objectiveFlag)
			if !objective.Valid() {
				return fmt.Errorf("unknown objective %q", objectiveFlag)
			}

			constraints := models.ExecutionConstraints{
				PreferredProvider: preferFlag,
				FallbackProviders: fallbackFlag,
			}
			if cmd.Flags().Changed("max-cost") {
				constraints.MaxCostUSD = &maxCostFlag
			}
			if cmd.Flags().Changed("max-latency") {
				constraints.MaxLatencyMS = &maxLatencyFlag
			}

			credential := credentialFlag
			if credential == "" {
				credential = cfg.Providers.DefaultCredential
			}

			result := deps.Executor.Execute(cmd.Context(), &models.ExecutionRequest{
				Input: models.ExecutionInput{
					TaskType: task,
					Prompt:   args[0],
				},
				Objective:   objective,
				Constraints: constraints,
			}, credential)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&taskFlag, "task", string(models.TaskGeneral), "task type")
	cmd.Flags().StringVar(&objectiveFlag, "objective", string(models.ObjectiveBalanced), "optimization objective")
	cmd.Flags().StringVar(&credentialFlag, "credential", "", "provider API credential (default: ECO_API_KEY)")
	cmd.Flags().StringVar(&preferFlag, "prefer", "", "preferred provider id")
	cmd.Flags().StringSliceVar(&fallbackFlag, "fallback", nil, "fallback provider ids")
	cmd.Flags().Float64Var(&maxCostFlag, "max-cost", 0, "max projected cost in USD")
	cmd.Flags().IntVar(&maxLatencyFlag, "max-latency", 0, "max declared latency in ms")

	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and their capability declarations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			deps, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tQUALITY\tCOST/1K\tLATENCY\tVISION\tENERGY")
			for _, p := range deps.Registry.All() {
				for _, c := range p.Capabilities() {
					fmt.Fprintf(w, "%s\t%s\t%.2f\t$%.5f\t%dms\t%t\t%s\n",
						c.Provider, c.Model, c.QualityScore, c.CostPer1KTokens,
						c.AvgLatencyMS, c.SupportsVision, c.EnergyProfile)
				}
			}
			return w.Flush()
		},
	}
}

func joinTaskTypes() string {
	all := models.AllTaskTypes()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
