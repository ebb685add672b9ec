package servers

import (
	"errors"
	"sync"
	"testing"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

func testServers() []model.Server {
	return []model.Server{
		{Name: "Центр", Address: "center.iiko.it"},
		{Name: "Парк", Address: "park.iiko.it:443"},
	}
}

func TestNewRegistryValidates(t *testing.T) {
	if _, err := NewRegistry(nil); !errors.Is(err, ErrNoServers) {
		t.Fatalf("expected ErrNoServers, got %v", err)
	}
	dup := []model.Server{{Name: "a", Address: "x"}, {Name: "a", Address: "y"}}
	if _, err := NewRegistry(dup); err == nil {
		t.Fatal("expected duplicate name error")
	}
	if _, err := NewRegistry([]model.Server{{Name: " ", Address: "x"}}); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestCurrentDefaultsToFirst(t *testing.T) {
	registry, err := NewRegistry(testServers())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if got := registry.Current(); got.Name != "Центр" {
		t.Fatalf("expected first server, got %+v", got)
	}
	names := registry.Names()
	if len(names) != 2 || names[0] != "Центр" || names[1] != "Парк" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestSwitch(t *testing.T) {
	registry, _ := NewRegistry(testServers())

	server, err := registry.Switch("Парк")
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if server.Address != "park.iiko.it:443" || registry.Current().Name != "Парк" {
		t.Fatalf("unexpected current after switch: %+v", registry.Current())
	}

	if _, err := registry.Switch("Склад"); !errors.Is(err, ErrUnknownServer) {
		t.Fatalf("expected ErrUnknownServer, got %v", err)
	}
	if registry.Current().Name != "Парк" {
		t.Fatal("failed switch must keep the current server")
	}
}

func TestConcurrentSwitchAndRead(t *testing.T) {
	registry, _ := NewRegistry(testServers())
	names := registry.Names()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = registry.Switch(names[i%len(names)])
		}(i)
		go func() {
			defer wg.Done()
			current := registry.Current()
			if _, err := registry.Lookup(current.Name); err != nil {
				t.Errorf("current %q not in registry", current.Name)
			}
		}()
	}
	wg.Wait()
}
