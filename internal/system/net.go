package system

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	gnet "github.com/shirou/gopsutil/v4/net"

	"github.com/peterxing/exo/internal/model"
)

// NetworkInterfaces lists one descriptor per address of every non-loopback
// interface, in the order the OS enumerates them.
func NetworkInterfaces(ctx context.Context) ([]model.NetworkInterfaceInfo, error) {
	ifaces, err := gnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	return interfaceInfos(ifaces), nil
}

func interfaceInfos(ifaces gnet.InterfaceStatList) []model.NetworkInterfaceInfo {
	out := make([]model.NetworkInterfaceInfo, 0, len(ifaces))
	for _, iface := range ifaces {
		if shouldSkipInterface(iface) {
			continue
		}
		for _, a := range iface.Addrs {
			ip, ok := parseInterfaceAddr(a.Addr)
			if !ok || ip.IsLoopback() {
				continue
			}
			out = append(out, model.NetworkInterfaceInfo{Name: iface.Name, IPAddress: ip.String()})
		}
	}
	return out
}

func shouldSkipInterface(iface gnet.InterfaceStat) bool {
	name := strings.TrimSpace(iface.Name)
	if name == "" || name == "lo" || name == "lo0" {
		return true
	}
	return slices.Contains(iface.Flags, "loopback")
}

// parseInterfaceAddr accepts CIDR ("10.0.0.2/24") and bare addresses,
// including zoned IPv6 ("fe80::1%en0/64").
func parseInterfaceAddr(raw string) (netip.Addr, bool) {
	host, _, _ := strings.Cut(strings.TrimSpace(raw), "/")
	a, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return a, true
}

// NetworkLister adapts NetworkInterfaces to the collector's interface.
type NetworkLister struct{}

func (NetworkLister) NetworkInterfaces(ctx context.Context) ([]model.NetworkInterfaceInfo, error) {
	return NetworkInterfaces(ctx)
}
