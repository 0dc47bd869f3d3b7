package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/discovery"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/metrics/server"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
	"github.com/ricardomolendijk/cupcake/internal/backup"
	"github.com/ricardomolendijk/cupcake/internal/config"
	"github.com/ricardomolendijk/cupcake/internal/controller"
	"github.com/ricardomolendijk/cupcake/internal/dispatcher"
	"github.com/ricardomolendijk/cupcake/internal/preflight"
	"github.com/ricardomolendijk/cupcake/internal/state"
)

// Version information variables (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// NewServeCommand creates a new serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cupcake controller manager",
		Long:  "Start the cupcake operator, reconciling DirectUpdate, ScheduledUpdate, and UpdateSchedule resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	return cmd
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build commit, and build time information",
		Run: func(cmd *cobra.Command, args []string) {
			runVersion()
		},
	}

	return cmd
}

// NewRootCommand assembles the cupcake-operator CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "cupcake-operator",
		Short:        "Orchestrates in-place Kubernetes node upgrades",
		SilenceUsage: true,
	}

	root.AddCommand(NewServeCommand())
	root.AddCommand(NewVersionCommand())

	return root
}

// runVersion displays version information
func runVersion() {
	fmt.Printf("cupcake-operator\n")
	fmt.Printf("Version: %s\n", Version)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Build Time: %s\n", BuildTime)
}

// runServe builds the controller-runtime manager, wires every reconciler's
// dependencies, and blocks until the process is signaled to stop.
func runServe(ctx context.Context) error {
	logger := newLogger()
	cfg := config.Load()

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return fmt.Errorf("failed to register client-go scheme: %w", err)
	}
	if err := cupcakev1.AddToScheme(scheme); err != nil {
		return fmt.Errorf("failed to register cupcake scheme: %w", err)
	}

	restConfig := ctrl.GetConfigOrDie()

	mgrOptions := ctrl.Options{
		Scheme:                 scheme,
		LeaderElection:         cfg.LeaderElectionEnabled,
		LeaderElectionID:       config.DefaultLeaderElectionName,
		HealthProbeBindAddress: ":8081",
	}
	if cfg.MetricsEnabled {
		mgrOptions.Metrics = server.Options{BindAddress: ":" + cfg.MetricsPort}
	} else {
		mgrOptions.Metrics = server.Options{BindAddress: "0"}
	}

	mgr, err := ctrl.NewManager(restConfig, mgrOptions)
	if err != nil {
		return fmt.Errorf("failed to construct controller manager: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthCheck(logger)); err != nil {
		return fmt.Errorf("failed to register health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("failed to register readiness check: %w", err)
	}

	var discoveryClient discovery.DiscoveryInterface
	if dc, err := discovery.NewDiscoveryClientForConfig(restConfig); err != nil {
		logger.WithError(err).Warn("failed to construct discovery client, version comparisons will be skipped")
	} else {
		discoveryClient = dc
	}

	directReconciler := &controller.DirectUpdateReconciler{
		Client:     mgr.GetClient(),
		Logger:     logger,
		Discovery:  discoveryClient,
		State:      state.New(mgr.GetClient(), logger),
		Preflight:  preflight.New(mgr.GetClient(), logger),
		Backup:     backup.New(mgr.GetClient(), logger, cfg),
		Dispatcher: dispatcher.New(mgr.GetClient(), logger),
	}
	if err := directReconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("failed to register DirectUpdate controller: %w", err)
	}

	scheduledReconciler := &controller.ScheduledUpdateReconciler{
		Client: mgr.GetClient(),
		Logger: logger,
	}
	if err := scheduledReconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("failed to register ScheduledUpdate controller: %w", err)
	}

	updateScheduleReconciler := &controller.UpdateScheduleReconciler{
		Client: mgr.GetClient(),
		Logger: logger,
	}
	if err := updateScheduleReconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("failed to register UpdateSchedule controller: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"namespace":      cfg.Namespace,
		"leaderElection": cfg.LeaderElectionEnabled,
	}).Info("starting cupcake-operator")

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("controller manager exited with error: %w", err)
	}
	return nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// healthCheck mirrors the node agent's health probe, which reports the
// current UTC timestamp rather than performing any dependency check: the
// manager being able to serve this endpoint at all is the signal.
func healthCheck(logger *logrus.Logger) healthz.Checker {
	return func(*http.Request) error {
		logger.WithField("checkedAt", time.Now().UTC().Format(time.RFC3339)).Debug("health probe")
		return nil
	}
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
