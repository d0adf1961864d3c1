package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/farms/config"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/malbeclabs/farms/tools/farms/internal/monitor"
	"github.com/malbeclabs/farms/tools/solana/pkg/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
)

const (
	defaultInterval = 1 * time.Minute
	defaultCacheTTL = 10 * time.Second
)

var (
	env          = flag.StringP("env", "e", config.EnvMainnetBeta, "the environment to monitor (mainnet-beta, devnet, localnet)")
	rpcURL       = flag.String("rpc-url", "", "override the Solana RPC URL of the environment")
	rpcHeaders   = flag.StringArray("rpc-header", nil, "extra \"Name: value\" header sent with every RPC request (repeatable)")
	rpcTimeout   = flag.Duration("rpc-timeout", 30*time.Second, "timeout of a single RPC request")
	programID    = flag.String("program-id", "", "override the farms program ID of the environment")
	watchPath    = flag.String("watch", "watch.yaml", "path to the YAML list of farms and users to monitor")
	interval     = flag.Duration("interval", defaultInterval, "interval between monitor ticks")
	concurrency  = flag.Int("concurrency", 4, "number of user positions read concurrently")
	slotDuration = flag.Duration("slot-duration", 400*time.Millisecond, "assumed slot duration for runways of slot-based farms")
	metricsAddr  = flag.String("metrics-addr", ":8080", "Address to listen on for prometheus metrics")
	verbose      = flag.BoolP("verbose", "v", false, "enable verbose logging")
	showVersion  = flag.Bool("version", false, "Print the version of the farms-monitor and exit")

	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	networkConfig, err := config.NetworkConfigForEnv(*env)
	if err != nil {
		log.Error("Failed to get network config", "error", err)
		flag.Usage()
		os.Exit(1)
	}
	if *rpcURL != "" {
		networkConfig.SolanaRPCURL = *rpcURL
	}
	if *programID != "" {
		networkConfig.ProgramID, err = solana.PublicKeyFromBase58(*programID)
		if err != nil {
			log.Error("Failed to parse program id", "error", err)
			flag.Usage()
			os.Exit(1)
		}
	}

	headers, err := rpc.ParseHeaders(*rpcHeaders)
	if err != nil {
		log.Error("Failed to parse rpc headers", "error", err)
		flag.Usage()
		os.Exit(1)
	}

	watch, err := monitor.LoadWatchList(*watchPath)
	if err != nil {
		log.Error("Failed to load watch list", "path", *watchPath, "error", err)
		os.Exit(1)
	}

	rpcClient := rpc.New(networkConfig.SolanaRPCURL, rpc.Options{Headers: headers, Timeout: *rpcTimeout})
	client, err := farms.New(log, rpcClient, networkConfig.ProgramID,
		farms.WithCacheTTL(defaultCacheTTL),
	)
	if err != nil {
		log.Error("Failed to create farms client", "error", err)
		os.Exit(1)
	}

	metrics := monitor.NewMetrics()
	metrics.Register(prometheus.DefaultRegisterer)
	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
	go func() {
		listener, err := net.Listen("tcp", *metricsAddr)
		if err != nil {
			log.Error("Failed to start prometheus metrics server listener", "error", err)
			return
		}
		log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
		http.Handle("/metrics", promhttp.Handler())
		if err := http.Serve(listener, nil); err != nil {
			log.Error("Failed to start prometheus metrics server", "error", err)
		}
	}()

	m, err := monitor.New(&monitor.Config{
		Logger:       log,
		Clock:        clockwork.NewRealClock(),
		Client:       client,
		Metrics:      metrics,
		Interval:     *interval,
		Watch:        watch,
		Concurrency:  *concurrency,
		SlotDuration: *slotDuration,
	})
	if err != nil {
		log.Error("Failed to create monitor", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("Starting farms monitor", "env", networkConfig.Moniker, "program", networkConfig.ProgramID, "farms", len(watch.Farms), "users", len(watch.Users))
	if err := m.Run(ctx); err != nil {
		log.Error("Failed to run monitor", "error", err)
		os.Exit(1)
	}
}
