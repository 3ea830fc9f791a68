// Package config provides the typed, validated configuration surface
// iface, area, and process build their runtime state from.
package config

import (
	"fmt"
	"time"

	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/iface"
)

// Interface is the validated source for iface.Params plus the identifying
// fields (name, link type) iface.New needs.
type Interface struct {
	Name            string
	Type            iface.LinkType
	FloodingMode    iface.FloodingMode
	AdjConnectivity int
	LSAFullness     iface.LSAFullness
	Cost            uint16
	Bandwidth       uint64 // bits/sec; if set and Cost is zero, Cost = RefBandwidth/Bandwidth.
	RefBandwidth    uint64
	IfMTU           uint16
	LinkMTU         uint16
	MTUIgnore       bool
	HelloInterval   time.Duration
	DeadInterval    time.Duration
	RxmtInterval    time.Duration
	TransmitDelay   time.Duration
	Priority        uint8
	Passive         bool
	InstanceID      uint8
	AckInterval      time.Duration
	PushbackInterval time.Duration
}

// Validate checks an Interface configuration: IfMTU must not exceed the
// link MTU; a non-MANET interface may not select an MDR/MPR flooding mode;
// unless Passive, the hello interval must be positive and the dead interval
// must exceed it; AdjConnectivity must be 0, 1, or 2. The other timers are
// not checked.
func (c Interface) Validate() error {
	if c.IfMTU > c.LinkMTU && c.LinkMTU != 0 {
		return fmt.Errorf("config: interface %s: ifmtu %d exceeds link mtu %d", c.Name, c.IfMTU, c.LinkMTU)
	}
	if (c.FloodingMode == iface.MPRSDCDS || c.FloodingMode == iface.MDRSICDS) && c.Type != iface.MANETLink {
		return fmt.Errorf("config: interface %s: %s flooding mode requires a MANET interface", c.Name, c.FloodingMode)
	}
	if !c.Passive {
		if c.HelloInterval <= 0 {
			return fmt.Errorf("config: interface %s: hello interval must be positive", c.Name)
		}
		if c.DeadInterval <= c.HelloInterval {
			return fmt.Errorf("config: interface %s: dead interval must exceed hello interval", c.Name)
		}
	}
	if c.AdjConnectivity != 0 && c.AdjConnectivity != 1 && c.AdjConnectivity != 2 {
		return fmt.Errorf("config: interface %s: adjconnectivity must be 1, 2, or 0 (unlimited)", c.Name)
	}
	return nil
}

// ResolvedCost resolves the configured cost, computing RefBandwidth/Bandwidth
// when Cost is unset.
func (c Interface) ResolvedCost() uint16 {
	if c.Cost != 0 {
		return c.Cost
	}
	if c.Bandwidth == 0 || c.RefBandwidth == 0 {
		return 1
	}
	cost := c.RefBandwidth / c.Bandwidth
	if cost == 0 {
		cost = 1
	}
	if cost > 0xffff {
		cost = 0xffff
	}
	return uint16(cost)
}

// ToParams converts a validated Interface configuration into iface.Params.
func (c Interface) ToParams() iface.Params {
	return iface.Params{
		FloodingMode:     c.FloodingMode,
		AdjConnectivity:  c.AdjConnectivity,
		LSAFullness:      c.LSAFullness,
		Cost:             c.ResolvedCost(),
		IfMTU:            c.IfMTU,
		MTUIgnore:        c.MTUIgnore,
		HelloInterval:    c.HelloInterval,
		DeadInterval:     c.DeadInterval,
		RxmtInterval:     c.RxmtInterval,
		TransmitDelay:    c.TransmitDelay,
		Priority:         c.Priority,
		Passive:          c.Passive,
		InstanceID:       c.InstanceID,
		AckInterval:      c.AckInterval,
		PushbackInterval: c.PushbackInterval,
	}
}

// VirtualLink is one `area A virtual-link R` configuration entry.
type VirtualLink struct {
	TransitArea   [4]byte
	RemoteRouter  [4]byte
	HelloInterval time.Duration
	DeadInterval  time.Duration
	RxmtInterval  time.Duration
	TransmitDelay time.Duration
}

// FilterDirection is the in/out direction of an `area A filter-list`
// configuration entry.
type FilterDirection int

// Possible FilterDirection values.
const (
	FilterIn FilterDirection = iota
	FilterOut
)

// FilterList is one `area A filter-list prefix NAME {in,out}` entry.
type FilterList struct {
	Name      string
	Direction FilterDirection
}

// RangeEntry is one `area A range P/L` configuration entry.
type RangeEntry struct {
	Prefix    string // netip.Prefix text form; parsed by the caller building rtable.RangeTable.
	Advertise bool
}

// Area is the validated source for area.Area's static configuration: flags,
// ranges, filters, and NSSA/stub parameters.
type Area struct {
	ID                              [4]byte
	Stub                            bool
	NSSA                            bool
	NoSummary                       bool
	DefaultCost                     uint32
	Ranges                          []RangeEntry
	Filters                         []FilterList
	VirtualLinks                    []VirtualLink
	NSSATranslatorStabilityInterval time.Duration
	NSSATranslateAlways             bool
	NSSATranslateNever              bool
	NSSANoPropagate                 bool
	NSSANoRedistribution            bool
	NSSADefaultMetricType           int // 1 or 2.
}

// Validate checks an Area configuration: Stub and NSSA are mutually
// exclusive, the backbone may not be Stub or NSSA, and DefaultMetricType
// must be 1 or 2 when NSSA is set.
func (c Area) Validate() error {
	if c.Stub && c.NSSA {
		return fmt.Errorf("config: area %v: stub and nssa are mutually exclusive", c.ID)
	}
	if c.ID == ([4]byte{0, 0, 0, 0}) && (c.Stub || c.NSSA) {
		return fmt.Errorf("config: area %v: the backbone may not be stub or nssa", c.ID)
	}
	if c.NSSA && c.NSSADefaultMetricType != 1 && c.NSSADefaultMetricType != 2 {
		return fmt.Errorf("config: area %v: nssa default-metric-type must be 1 or 2", c.ID)
	}
	return nil
}

// Flags converts the validated booleans into area.Flags bits.
func (c Area) Flags() area.Flags {
	var f area.Flags
	if c.Stub {
		f |= area.Stub
	}
	if c.NSSA {
		f |= area.NSSA
	}
	if c.NoSummary {
		f |= area.NoSummary
	}
	return f
}
