// Package discovery announces the designer service on the local network
// and finds running instances for the CLI.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_roomdesigner._tcp"

// ErrNoInstance is returned by First when nothing answered in time.
var ErrNoInstance = errors.New("no designer instance found")

// Instance is one designer service seen on the network.
type Instance struct {
	Name string            `json:"name"`
	Host string            `json:"host"`
	Addr string            `json:"addr"`
	Port int               `json:"port"`
	Info map[string]string `json:"info,omitempty"`
}

// URL is the HTTP base address of the instance.
func (i Instance) URL() string {
	return "http://" + net.JoinHostPort(i.Addr, fmt.Sprint(i.Port))
}

// ============================================================
// Advertise
// ============================================================

// Advertiser keeps the mDNS responder alive until Shutdown.
type Advertiser struct {
	server *mdns.Server
}

// Advertise announces the service on port. info entries become TXT records
// in key=value form.
func Advertise(port int, info map[string]string) (*Advertiser, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, txtRecords(info))
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// ============================================================
// Browse
// ============================================================

// Browse collects every instance that answers within timeout. Entries
// without an IPv4 address or port are skipped.
func Browse(ctx context.Context, timeout time.Duration) ([]Instance, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	seen := make(map[string]Instance)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range entries {
			if inst, ok := fromEntry(e); ok {
				seen[inst.URL()] = inst
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() { errc <- mdns.Query(params) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
		// the query stops on its own once timeout elapses
		<-errc
	}
	close(entries)
	<-done

	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}

	out := make([]Instance, 0, len(seen))
	for _, inst := range seen {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// First returns the first instance Browse finds.
func First(ctx context.Context, timeout time.Duration) (Instance, error) {
	found, err := Browse(ctx, timeout)
	if err != nil {
		return Instance{}, err
	}
	if len(found) == 0 {
		return Instance{}, ErrNoInstance
	}
	return found[0], nil
}

func fromEntry(e *mdns.ServiceEntry) (Instance, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Instance{}, false
	}
	return Instance{
		Name: strings.TrimSuffix(e.Name, "."+ServiceType+".local."),
		Host: e.Host,
		Addr: e.AddrV4.String(),
		Port: e.Port,
		Info: parseTXT(e.InfoFields),
	}, true
}

func txtRecords(info map[string]string) []string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+info[k])
	}
	return out
}

func parseTXT(fields []string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, _ := strings.Cut(f, "=")
		if k != "" {
			out[k] = v
		}
	}
	return out
}
