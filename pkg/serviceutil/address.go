// Package serviceutil identifies the responding service instance. Every
// successful read attaches this address so the composite can report which
// instances served the aggregate.
package serviceutil

import (
	"fmt"
	"net"
	"os"
)

// AddressResolver yields the network address of the running instance.
type AddressResolver struct {
	port    string
	address string
}

// NewAddressResolver builds a resolver for the given listen port.
func NewAddressResolver(port string) *AddressResolver {
	return &AddressResolver{port: port}
}

// ServiceAddress returns "hostname/ip:port" for this instance. The value is
// computed once and reused.
func (r *AddressResolver) ServiceAddress() string {
	if r.address == "" {
		r.address = fmt.Sprintf("%s/%s:%s", hostname(), hostIP(), r.port)
	}
	return r.address
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	return name
}

func hostIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "unknown-ip"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "unknown-ip"
}
