package system

import (
	"reflect"
	"testing"

	gnet "github.com/shirou/gopsutil/v4/net"

	"github.com/peterxing/exo/internal/model"
)

func TestInterfaceInfos(t *testing.T) {
	ifaces := gnet.InterfaceStatList{
		{Name: "lo", Flags: []string{"up", "loopback"}, Addrs: gnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
		{Name: "en0", Flags: []string{"up", "broadcast"}, Addrs: gnet.InterfaceAddrList{
			{Addr: "192.168.1.20/24"},
			{Addr: "fe80::1c2d:3eff:fe4f:5a6b%en0/64"},
		}},
		{Name: "utun3", Flags: []string{"up"}, Addrs: gnet.InterfaceAddrList{{Addr: "::1/128"}, {Addr: "bogus"}}},
		{Name: "bridge0", Flags: []string{"up"}, Addrs: gnet.InterfaceAddrList{{Addr: "10.0.0.1"}}},
	}

	got := interfaceInfos(ifaces)
	want := []model.NetworkInterfaceInfo{
		{Name: "en0", IPAddress: "192.168.1.20"},
		{Name: "en0", IPAddress: "fe80::1c2d:3eff:fe4f:5a6b%en0"},
		{Name: "bridge0", IPAddress: "10.0.0.1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("interfaceInfos =\n%+v\nwant\n%+v", got, want)
	}
}

func TestInterfaceInfosEmpty(t *testing.T) {
	got := interfaceInfos(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("interfaceInfos(nil) = %#v, want empty non-nil slice", got)
	}
}
