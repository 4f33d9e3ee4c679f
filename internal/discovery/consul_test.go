package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/hashicorp/go-hclog"

	"coffeechat-scheduler/internal/config"
)

func TestServiceID(t *testing.T) {
	if got := ServiceID(config.ConsulConfig{ServiceName: "coffeechat", ServiceID: "fixed"}); got != "fixed" {
		t.Errorf("ServiceID = %q, want fixed", got)
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	want := "coffeechat-" + host
	if got := ServiceID(config.ConsulConfig{ServiceName: "coffeechat"}); got != want {
		t.Errorf("ServiceID = %q, want %q", got, want)
	}
}

// fakeAgent records the agent endpoints the client calls.
type fakeAgent struct {
	mu           sync.Mutex
	registered   *consulapi.AgentServiceRegistration
	deregistered []string
	fail         bool
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, "agent unavailable", http.StatusInternalServerError)
		return
	}
	const deregisterPrefix = "/v1/agent/service/deregister/"
	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/v1/agent/service/register":
		var reg consulapi.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.registered = &reg
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, deregisterPrefix):
		f.deregistered = append(f.deregistered, strings.TrimPrefix(r.URL.Path, deregisterPrefix))
	default:
		http.NotFound(w, r)
	}
}

func TestRegisterAndDeregister(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	defer srv.Close()

	cfg := config.ConsulConfig{
		Address:                        srv.URL,
		ServiceName:                    "coffeechat-scheduler",
		ServiceID:                      "coffeechat-1",
		CheckInterval:                  "10s",
		DeregisterCriticalServiceAfter: "1m",
	}
	reg, err := Register(cfg, "10.0.0.5", 8080, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got := agent.registered
	if got == nil {
		t.Fatal("agent saw no registration")
	}
	if got.ID != "coffeechat-1" || got.Name != "coffeechat-scheduler" || got.Port != 8080 || got.Address != "10.0.0.5" {
		t.Errorf("registration = %+v", got)
	}
	if got.Check == nil {
		t.Fatal("registration has no check")
	}
	if got.Check.HTTP != "http://10.0.0.5:8080/health" {
		t.Errorf("check url = %q", got.Check.HTTP)
	}
	if got.Check.Interval != "10s" || got.Check.DeregisterCriticalServiceAfter != "1m" {
		t.Errorf("check timings = %q/%q", got.Check.Interval, got.Check.DeregisterCriticalServiceAfter)
	}

	reg.Deregister()
	if len(agent.deregistered) != 1 || agent.deregistered[0] != "coffeechat-1" {
		t.Errorf("deregistered = %v", agent.deregistered)
	}
}

func TestRegisterWithoutHost(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	defer srv.Close()

	cfg := config.ConsulConfig{Address: srv.URL, ServiceName: "coffeechat-scheduler", ServiceID: "coffeechat-1"}
	if _, err := Register(cfg, "", 9000, hclog.NewNullLogger()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if agent.registered.Address != "" {
		t.Errorf("address = %q, want empty so the agent fills it in", agent.registered.Address)
	}
	if agent.registered.Check.HTTP != "http://localhost:9000/health" {
		t.Errorf("check url = %q", agent.registered.Check.HTTP)
	}
}

func TestRegisterAgentError(t *testing.T) {
	srv := httptest.NewServer(&fakeAgent{fail: true})
	defer srv.Close()

	cfg := config.ConsulConfig{Address: srv.URL, ServiceName: "coffeechat-scheduler", ServiceID: "coffeechat-1"}
	if _, err := Register(cfg, "", 9000, hclog.NewNullLogger()); err == nil {
		t.Fatal("expected an error when the agent rejects the registration")
	}
}
