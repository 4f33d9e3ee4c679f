package discovery

import (
	"fmt"
	"os"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/hashicorp/go-hclog"

	"coffeechat-scheduler/internal/config"
)

type Registration struct {
	client    *consulapi.Client
	serviceID string
	logger    hclog.Logger
}

// ServiceID falls back to "<name>-<hostname>" when none is configured.
func ServiceID(cfg config.ConsulConfig) string {
	if cfg.ServiceID != "" {
		return cfg.ServiceID
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return cfg.ServiceName + "-" + host
}

// Register announces the service with an HTTP check against /health.
func Register(cfg config.ConsulConfig, host string, port int, logger hclog.Logger) (*Registration, error) {
	consulCfg := consulapi.DefaultConfig()
	consulCfg.Address = cfg.Address

	client, err := consulapi.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	checkHost := host
	if checkHost == "" {
		checkHost = "localhost"
	}

	id := ServiceID(cfg)
	registration := &consulapi.AgentServiceRegistration{
		ID:   id,
		Name: cfg.ServiceName,
		Port: port,
		Tags: []string{"scheduling", "http"},
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", checkHost, port),
			Interval:                       cfg.CheckInterval,
			DeregisterCriticalServiceAfter: cfg.DeregisterCriticalServiceAfter,
		},
	}
	if host != "" {
		registration.Address = host
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	logger.Info("registered with Consul", "service_id", id, "address", cfg.Address)
	return &Registration{client: client, serviceID: id, logger: logger}, nil
}

func (r *Registration) Deregister() {
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		r.logger.Error("failed to deregister from Consul", "service_id", r.serviceID, "error", err)
		return
	}
	r.logger.Info("deregistered from Consul", "service_id", r.serviceID)
}
