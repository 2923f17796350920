package iputils

import (
	"crypto/rand"
	"fmt"
	"net"
	"strings"
)

// IPToUint32 converts a net.IP to its big-endian uint32 value, so that
// numeric order matches address order. Non-IPv4 addresses map to 0.
func IPToUint32(ip net.IP) uint32 {
	ipv4 := ip.To4()
	if ipv4 == nil {
		return 0
	}
	return uint32(ipv4[0])<<24 | uint32(ipv4[1])<<16 | uint32(ipv4[2])<<8 | uint32(ipv4[3])
}

// Uint32ToIP converts a uint32 back to net.IP
func Uint32ToIP(ip uint32) net.IP {
	return net.IPv4(byte(ip>>24), byte(ip>>16), byte(ip>>8), byte(ip))
}

// ParseIPv4 parses a dotted quad into its uint32 value.
func ParseIPv4(s string) (uint32, error) {
	if strings.IndexByte(s, ':') >= 0 {
		return 0, fmt.Errorf("not an IPv4 address: %q", s)
	}
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return 0, fmt.Errorf("not an IPv4 address: %q", s)
	}
	return IPToUint32(ip), nil
}

// LooksLikeIPv4 reports whether s has the shape of a dotted quad. It is a
// cheap pre-check; ParseIPv4 does the validation.
func LooksLikeIPv4(s string) bool {
	return strings.Count(s, ".") == 3 && strings.IndexByte(s, ':') < 0
}

// RandomIPsFromRange generates random IP addresses within a CIDR range
func RandomIPsFromRange(cidr string, count int) ([]net.IP, error) {
	ipList := make([]net.IP, 0, count)

	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}

	_, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("only IPv4 is supported")
	}

	baseIP := IPToUint32(ipnet.IP)
	lastIP := IPToUint32(lastIPInRange(ipnet))

	for len(ipList) < count {
		randomOffset, err := randUint32Range(1, lastIP-baseIP) // skip network and broadcast
		if err != nil {
			return nil, err
		}
		ipList = append(ipList, Uint32ToIP(baseIP+randomOffset))
	}

	return ipList, nil
}

// randUint32Range generates a random uint32 in the range [min, max)
func randUint32Range(min, max uint32) (uint32, error) {
	if min >= max {
		return 0, fmt.Errorf("invalid range")
	}
	r := make([]byte, 4)
	if _, err := rand.Read(r); err != nil {
		return 0, err
	}
	randomValue := uint32(r[0])<<24 | uint32(r[1])<<16 | uint32(r[2])<<8 | uint32(r[3])
	return min + randomValue%(max-min), nil
}

// lastIPInRange returns the last IP in a CIDR range
func lastIPInRange(ipnet *net.IPNet) net.IP {
	ip := make(net.IP, len(ipnet.IP))
	copy(ip, ipnet.IP)
	for i := range ip {
		ip[i] |= ^ipnet.Mask[i]
	}
	return ip
}
