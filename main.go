package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
)

// stringSlice collects a flag that may be given more than once, e.g.
// --serial /dev/ttyUSB0 --serial /dev/ttyUSB1 for a multi-receiver
// deployment (spec.md §3: "the design admits several").
type stringSlice []string

func (s *stringSlice) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		bind         = flag.String("bind", "", "TCP bind address, e.g. :60128")
		daemonFlag   = flag.Bool("daemon", false, "detach and run in the background")
		logPath      = flag.String("log", "", "log file path (default: stderr)")
		socket       = flag.String("socket", "", "UNIX domain socket path")
		configPath   = flag.String("config", "", "optional YAML config file (multi-receiver/listener)")
		metricsBind  = flag.String("metrics-bind", "", "optional Prometheus /metrics bind address")
		serialDevice stringSlice
	)
	flag.Var(&serialDevice, "serial", "serial device path (repeatable)")
	flag.Parse()

	if *daemonFlag {
		if err := daemonize(); err != nil {
			log.Fatalf("daemonize: %v", err)
		}
		// daemonize() exits this process on success. The detached child is
		// a fresh exec of this binary without --daemon, so it skips this
		// block and runs the startup below as a foreground process would.
	}

	logger, err := setupLogger(*logPath)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}

	cfg := &Config{}
	if *configPath != "" {
		fileCfg, err := loadConfig(*configPath)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		cfg = fileCfg
	}
	mergeFlags(cfg, serialDevice, *bind, *socket)
	if err := cfg.validate(); err != nil {
		logger.Fatalf("%v", err)
	}

	var metrics *Metrics
	if *metricsBind != "" {
		metrics = NewMetrics()
		serveMetrics(*metricsBind)
	}

	d := newDaemon(logger, metrics)

	for _, rc := range cfg.Receivers {
		port, err := openReceiverPort(rc.Device)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		d.receivers = append(d.receivers, newReceiver(rc.Device, port))
		logger.Printf("opened receiver on %s", rc.Device)
	}

	for _, lc := range cfg.Listeners {
		l, err := openListener(lc)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		d.listeners = append(d.listeners, l)
		logger.Printf("listening on %s", l.addr)
	}

	if err := d.setupSignals(); err != nil {
		logger.Fatalf("setup signals: %v", err)
	}

	runErr := d.Run()
	d.teardown()
	if runErr != nil {
		logger.Printf("reactor exited: %v", runErr)
		os.Exit(1)
	}
	os.Exit(0)
}

func setupLogger(path string) (*log.Logger, error) {
	if path == "" {
		return log.New(os.Stderr, "", log.LstdFlags), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return log.New(f, "", log.LstdFlags), nil
}

// openListener implements the two socket kinds spec.md §3/§6 call for.
func openListener(lc ListenerConfig) (*Listener, error) {
	if lc.Socket != "" {
		os.Remove(lc.Socket)
		ln, err := net.Listen("unix", lc.Socket)
		if err != nil {
			return nil, fmt.Errorf("listen unix %s: %w", lc.Socket, err)
		}
		return &Listener{kind: listenerUnix, addr: lc.Socket, ln: ln}, nil
	}
	ln, err := net.Listen("tcp", lc.Bind)
	if err != nil {
		return nil, fmt.Errorf("listen tcp %s: %w", lc.Bind, err)
	}
	return &Listener{kind: listenerTCP, addr: lc.Bind, ln: ln}, nil
}
