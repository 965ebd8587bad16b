package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"topomon/internal/config"
	"topomon/internal/handler"
	"topomon/internal/hub"
	"topomon/internal/inventory"
	"topomon/internal/probe"
	"topomon/internal/repository/sqlite"
	"topomon/internal/service"
	"topomon/internal/topology"
)

func main() {
	configPath := flag.String("config", "", "config file path (overrides discovery)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting topomon server...")

	// Load configuration
	var cfg *config.Config
	var loadedFrom string
	var err error
	if *configPath != "" {
		cfg, loadedFrom, err = config.LoadFromPath(*configPath)
	} else {
		cfg, loadedFrom, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if loadedFrom != "" {
		log.Printf("Config loaded from %s", loadedFrom)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Device inventory: config devices win; persist them so the set
	// survives a config wipe, otherwise fall back to the stored set
	devices := cfg.Devices
	if len(devices) > 0 {
		if err := repo.SaveDevices(context.Background(), devices); err != nil {
			log.Printf("Failed to persist device inventory: %v", err)
		}
	} else {
		devices, err = repo.ListDevices(context.Background())
		if err != nil {
			log.Fatalf("Failed to load device inventory: %v", err)
		}
	}
	inv, err := inventory.NewStaticSource(devices)
	if err != nil {
		log.Fatalf("Invalid device inventory: %v", err)
	}
	log.Printf("Inventory: %d devices", len(devices))

	// Assemble discovery probes
	probes, err := buildProbes(cfg)
	if err != nil {
		log.Fatalf("Failed to set up probes: %v", err)
	}
	if len(probes) == 0 {
		log.Println("No probes configured, topology will only contain inventory nodes")
	}

	aggregator := probe.NewAggregator(probes,
		probe.WithWorkers(cfg.Discovery.Workers),
		probe.WithTimeout(cfg.Discovery.ProbeTimeout.Duration()),
	)

	store := topology.NewSnapshotStore(
		topology.NewBuilder(inv, aggregator),
		topology.WithUpdateInterval(cfg.Topology.UpdateInterval.Duration()),
		topology.WithChangeArchive(repo),
	)

	eventBus := service.NewEventBus()
	svc := service.NewTopologyService(store, eventBus,
		cfg.Topology.MaxPathDepth, cfg.Topology.MaxPaths)

	// Periodic update loop; the store's interval gate does the pacing
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go svc.RunUpdateLoop(loopCtx, time.Minute)

	sseHub := hub.New(eventBus)
	go sseHub.Run(loopCtx)

	// HTTP surface
	mux := http.NewServeMux()
	handler.NewTopologyHandler(svc).Register(mux)
	mux.Handle("GET /events", sseHub)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	stopLoop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// buildProbes assembles the probe list the config enables
func buildProbes(cfg *config.Config) ([]probe.Probe, error) {
	var probes []probe.Probe

	if cfg.Discovery.RecordsPath != "" {
		static, err := probe.NewStaticProbe(cfg.Discovery.RecordsPath)
		if err != nil {
			return nil, err
		}
		probes = append(probes, static)
		log.Printf("Static records probe enabled: %s", cfg.Discovery.RecordsPath)
	}

	if cfg.Discovery.SSH.Enabled {
		creds := probe.SSHCredentials{
			Username:   cfg.Discovery.SSH.Username,
			Password:   cfg.Discovery.SSH.Password,
			Passphrase: cfg.Discovery.SSH.Passphrase,
		}
		if cfg.Discovery.SSH.KeyPath != "" {
			key, err := os.ReadFile(cfg.Discovery.SSH.KeyPath)
			if err != nil {
				return nil, err
			}
			creds.PrivateKey = string(key)
		}
		ssh, err := probe.NewSSHProbe(creds, cfg.Discovery.SSH.Port, cfg.Discovery.ProbeTimeout.Duration())
		if err != nil {
			return nil, err
		}
		probes = append(probes, ssh)
		log.Println("SSH neighbor probe enabled")
	}

	if cfg.Discovery.Traceroute.Enabled {
		origin := cfg.Discovery.Traceroute.Origin
		if origin == "" {
			origin, _ = os.Hostname()
		}
		probes = append(probes, probe.NewTracerouteProbe(origin))
		log.Printf("Traceroute probe enabled (origin=%s)", origin)
	}

	return probes, nil
}
