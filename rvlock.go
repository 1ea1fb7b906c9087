// Spinlock exercise: logical threads incrementing a shared counter under a
// compare-and-swap spinlock, reporting through a polled UART.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.uber.org/zap"

	"example.com/rvlock/base/logbase"
	"example.com/rvlock/base/zaplog"

	"example.com/rvlock/benchmark"

	"example.com/rvlock/core/config"
	"example.com/rvlock/core/critsec"
	"example.com/rvlock/core/sched"

	"example.com/rvlock/driver/netconsole"
	"example.com/rvlock/driver/uart"
)

var (
	log *zap.Logger
)

func initLogger(verbose bool) {
	var err error
	log, err = logbase.New(verbose)
	if err != nil {
		panic(err)
	}
	zaplog.SetLogger(log)
}

func runMonitor(log *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, mux)
	log.Fatal("failed to serve metrics", zap.Error(err))
}

func loadConfig(configFile string) config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.String("file", configFile), zap.Error(err))
	}
	return cfg
}

// openConsole returns the UART selected by cfg and a function releasing the
// underlying device.
func openConsole(cfg config.Config) (*uart.UART, func() error, error) {
	switch cfg.Console {
	case config.ConsoleStdout:
		regs := uart.NewFileRegisters(int(os.Stdout.Fd()))
		return uart.New(regs), func() error { return nil }, nil
	case config.ConsoleMMIO:
		regs, err := uart.OpenMMIO(cfg.MMIODevice, cfg.MMIOBase)
		if err != nil {
			return nil, nil, err
		}
		return uart.New(regs), regs.Close, nil
	case config.ConsoleNetconsole:
		regs, err := netconsole.Dial(log, cfg.NetconsoleLocal, cfg.NetconsoleRemote)
		if err != nil {
			return nil, nil, err
		}
		return uart.New(regs), regs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown console %q", cfg.Console)
	}
}

func closeConsoleOrLog(closeConsole func() error) {
	err := closeConsole()
	if err != nil {
		log.Info("failed to close console", zap.Error(err))
	}
}

func runProgram(ctx context.Context, cfg config.Config, out *uart.UART) uint32 {
	r := &critsec.Runner{
		Log:    log,
		Shared: &critsec.Shared{},
		Sink:   out,
	}
	p := sched.Plan{
		Labels:     cfg.Threads,
		Rounds:     cfg.Rounds,
		Concurrent: cfg.Concurrent,
	}
	v := sched.Run(ctx, log, r, out, p)
	if cfg.HeartbeatIntervalMS > 0 {
		sched.Heartbeat(ctx, out, cfg.HeartbeatInterval())
	}
	return v
}

func runDemo() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	out, closeConsole, err := openConsole(cfg)
	if err != nil {
		log.Fatal("failed to open console", zap.Error(err))
	}
	defer closeConsoleOrLog(closeConsole)
	runProgram(ctx, cfg, out)
}

func runConfigured(configFile string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig(configFile)
	if cfg.MetricsAddr != "" {
		go runMonitor(log, cfg.MetricsAddr)
	}
	out, closeConsole, err := openConsole(cfg)
	if err != nil {
		log.Fatal("failed to open console", zap.String("console", cfg.Console), zap.Error(err))
	}
	defer closeConsoleOrLog(closeConsole)
	runProgram(ctx, cfg, out)
}

func runStress(numThread, numRound int) {
	if numThread <= 0 || numRound <= 0 {
		exitWithUsage()
	}
	labels := make([]string, numThread)
	for i := range labels {
		labels[i] = fmt.Sprintf("T%d", i+1)
	}
	e := &uart.Emulator{}
	r := &critsec.Runner{
		Log:    log,
		Shared: &critsec.Shared{},
		Sink:   uart.New(e),
	}
	p := sched.Plan{Labels: labels, Rounds: numRound, Concurrent: true}
	n := sched.Dispatch(context.Background(), r, p)
	v := r.Shared.Value()
	if int(v) != p.Activations() || n != p.Activations() {
		log.Fatal("lost updates",
			zap.Int("activations", n), zap.Uint32("counter", v), zap.Int("expected", p.Activations()))
	}
	log.Info("stress run passed",
		zap.Int("threads", numThread),
		zap.Int("rounds", numRound),
		zap.Uint32("counter", v),
		zap.Int("trace bytes", len(e.Bytes())),
	)
}

func runBenchmark(w io.Writer, numGoroutine, numAcquire int) {
	res, err := benchmark.RunContention(log, numGoroutine, numAcquire)
	if err != nil {
		log.Fatal("benchmark failed", zap.Error(err))
	}
	err = res.Print(w)
	if err != nil {
		log.Fatal("failed to print benchmark results", zap.Error(err))
	}
}

func exitWithUsage() {
	fmt.Println("<usage>")
	os.Exit(1)
}

func main() {
	var (
		verbose      bool
		configFile   string
		numThread    int
		numRound     int
		numGoroutine int
		numAcquire   int
	)

	demoFlags := flag.NewFlagSet("demo", flag.ExitOnError)
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	stressFlags := flag.NewFlagSet("stress", flag.ExitOnError)
	benchmarkFlags := flag.NewFlagSet("benchmark", flag.ExitOnError)

	demoFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")

	runFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	runFlags.StringVar(&configFile, "config", "", "Config file")

	stressFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	stressFlags.IntVar(&numThread, "threads", 4, "Number of logical threads")
	stressFlags.IntVar(&numRound, "rounds", 250, "Activations per thread")

	benchmarkFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	benchmarkFlags.IntVar(&numGoroutine, "goroutines", 8, "Number of contending goroutines")
	benchmarkFlags.IntVar(&numAcquire, "acquisitions", 100_000, "Acquisitions per goroutine")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	switch os.Args[1] {
	case demoFlags.Name():
		err := demoFlags.Parse(os.Args[2:])
		if err != nil || demoFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runDemo()
	case runFlags.Name():
		err := runFlags.Parse(os.Args[2:])
		if err != nil || runFlags.NArg() != 0 {
			exitWithUsage()
		}
		if configFile == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runConfigured(configFile)
	case stressFlags.Name():
		err := stressFlags.Parse(os.Args[2:])
		if err != nil || stressFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runStress(numThread, numRound)
	case benchmarkFlags.Name():
		err := benchmarkFlags.Parse(os.Args[2:])
		if err != nil || benchmarkFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runBenchmark(os.Stdout, numGoroutine, numAcquire)
	default:
		exitWithUsage()
	}
}
