package oracle

import (
	"errors"
	"net"

	lru "github.com/hashicorp/golang-lru"
)

// hostCheckCacheSize bounds how many distinct hostnames' SSRF verdicts
// are remembered. resolveAndCheck still resolves the host on every call;
// a remembered verdict for the host is used in place of checking the
// freshly resolved address.
const hostCheckCacheSize = 256

var hostCheckCache, _ = lru.New(hostCheckCacheSize) // Never errors for positive size.

// errSSRFForbidden is returned by resolveAndCheck (and, via the dialer,
// surfaces through http.Client.Do) when the resolved address falls
// inside a reserved or non-global range. Process checks for it
// explicitly with errors.Is so a blocked host is reported as Forbidden
// rather than falling through to the generic ErrorCode branch.
var errSSRFForbidden = errors.New("resolved address is not a global unicast address")

// reservedCIDRs is a list of ip addresses for private networks.
// https://tools.ietf.org/html/rfc6890
var reservedCIDRs = []string{
	// IPv4
	"10.0.0.0/8",
	"100.64.0.0/10",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	// IPv6
	"fc00::/7",
}

var privateNets = make([]net.IPNet, 0, len(reservedCIDRs))

func init() {
	for i := range reservedCIDRs {
		_, ipNet, err := net.ParseCIDR(reservedCIDRs[i])
		if err != nil {
			panic(err)
		}
		privateNets = append(privateNets, *ipNet)
	}
}

func resolveAndCheck(network string, address string) (*net.IPAddr, error) {
	ip, err := net.ResolveIPAddr(network, address)
	if err != nil {
		return nil, err
	}
	if cached, ok := hostCheckCache.Get(address); ok {
		if !cached.(bool) {
			return nil, errSSRFForbidden
		}
		return ip, nil
	}
	allowed := !isReserved(ip.IP)
	hostCheckCache.Add(address, allowed)
	if !allowed {
		return nil, errSSRFForbidden
	}
	return ip, nil
}

func isReserved(ip net.IP) bool {
	if !ip.IsGlobalUnicast() {
		return true
	}
	for i := range privateNets {
		if privateNets[i].Contains(ip) {
			return true
		}
	}
	return false
}
