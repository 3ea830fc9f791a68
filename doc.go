// Package ospf3 implements OSPFv3 (OSPF for IPv6) as described in RFC5340.
package ospf3

//go:generate stringer -type=FloodingScope,LSType -output=string.go
