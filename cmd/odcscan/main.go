package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/odcscan/odcscan/internal/config"
	"github.com/odcscan/odcscan/internal/discovery"
	"github.com/odcscan/odcscan/internal/output"
	"github.com/odcscan/odcscan/internal/pipeline"
	"github.com/odcscan/odcscan/internal/toolchain"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
)

func main() {
	// Cancelling the context kills a running scan's whole process group.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "odcscan [flags] <directory>",
		Short: "Scan Maven and npm projects with OWASP Dependency-Check",
		Long: `odcscan walks a directory tree, finds Maven (pom.xml) and npm (package.json)
projects, runs OWASP Dependency-Check against each one and prints a severity
summary of the JSON report.

A project's subtree is never searched for further projects. A failed scan is
reported and the run continues with the next project.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.InitConfig(cfgFile)
		},
		RunE: runScan,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/odcscan/config.yaml)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Stream scanner output while it runs")
	rootCmd.Flags().BoolP("quiet", "q", false, "Only print banners and results (default)")
	rootCmd.Flags().String("only", "", "Only scan projects of this kind: maven or node")
	rootCmd.Flags().Bool("json", false, "Write per-project results as JSON to stdout")
	rootCmd.Flags().String("color", "", "Colour output: auto, always or never")
	rootCmd.Flags().String("report-dir", "", "Keep a copy of every JSON report in this directory")
	rootCmd.Flags().Duration("timeout", 0, "Per-project scan timeout (0 = none)")
	rootCmd.PersistentFlags().String("maven", "", "Maven executable")
	rootCmd.PersistentFlags().String("dependency-check", "", "Dependency-Check CLI executable")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	viper.BindPFlag("output.verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("scan.only", rootCmd.Flags().Lookup("only"))
	viper.BindPFlag("output.json", rootCmd.Flags().Lookup("json"))
	viper.BindPFlag("output.color", rootCmd.Flags().Lookup("color"))
	viper.BindPFlag("output.report_dir", rootCmd.Flags().Lookup("report-dir"))
	viper.BindPFlag("scan.timeout", rootCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("tools.maven", rootCmd.PersistentFlags().Lookup("maven"))
	viper.BindPFlag("tools.dependency_check", rootCmd.PersistentFlags().Lookup("dependency-check"))

	// klog's -v is exposed as --log-level to avoid clashing with --verbose.
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	if v := klogFlags.Lookup("v"); v != nil {
		logLevel := *v
		logLevel.Name = "log-level"
		logLevel.Usage = "Diagnostic log verbosity (klog)"
		rootCmd.PersistentFlags().AddGoFlag(&logLevel)
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDoctorCmd())

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if err := cfg.Validate(); err != nil {
		return err
	}

	// In JSON mode stdout carries only the JSON document.
	humanOut := cmd.OutOrStdout()
	humanFile := os.Stdout
	if cfg.Output.JSON {
		humanOut = cmd.ErrOrStderr()
		humanFile = os.Stderr
	}
	palette := output.NewPalette(output.ColorMode(cfg.GetColor()), humanFile)
	printer := output.NewPrinter(humanOut, palette)

	p := pipeline.New(pipeline.Options{
		Discovery: discovery.Options{
			IgnoreDirs:  cfg.GetIgnoreDirs(),
			IgnorePaths: cfg.GetIgnorePaths(),
			Only:        cfg.GetOnly(),
		},
		Tools:     cfg.GetTools(),
		Verbose:   cfg.Output.Verbose,
		Timeout:   cfg.Scan.Timeout,
		ReportDir: cfg.Output.ReportDir,
	}, printer)

	run, err := p.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if cfg.Output.JSON {
		return output.PrintJSON(cmd.OutOrStdout(), run.Outcomes)
	}

	output.PrintTable(humanOut, run.Outcomes)
	if failed := run.Failed(); failed > 0 {
		printer.Warn("%d of %d project scans did not complete; see messages above", failed, len(run.Outcomes))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "odcscan version %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", BuildTime)
		},
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the scanning tools can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := config.Get()

			hostInfo, err := toolchain.GetHostInfo()
			if err != nil {
				klog.V(1).Infof("%v", err)
			}
			fmt.Fprintf(out, "Host:   %s\n", hostInfo)

			missing := 0
			for _, status := range toolchain.Detect(cfg.GetTools()) {
				if status.Found {
					fmt.Fprintf(out, "  [ok]      %-16s %s (%s)\n", status.Role, status.Path, status.UsedFor)
					continue
				}
				missing++
				fmt.Fprintf(out, "  [missing] %-16s %s: %s\n", status.Role, status.Name, status.Error)
			}

			if missing > 0 {
				return fmt.Errorf("%d required tool(s) not found on PATH", missing)
			}
			return nil
		},
	}
}
