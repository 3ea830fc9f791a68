// Command ospf6d runs a single OSPFv3 process over the interfaces named on
// the command line.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv6"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/config"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/metrics"
	"github.com/ospf6d/ospf6/process"
	"github.com/ospf6d/ospf6/sched"
)

func main() {
	var (
		routerID   = flag.String("router-id", "", "router ID in dotted-quad form (required)")
		interfaces = flag.String("interfaces", "", "comma-separated interface names to enable")
		areaID     = flag.String("area", "0.0.0.0", "area ID the interfaces join")
		manetMode  = flag.String("flooding", "classic", "flooding mode: classic, mpr-sdcds, or mdr-sicds")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("component", "main")

	rid, ok := parseID(*routerID)
	if !ok {
		log.Fatal("a valid -router-id is required")
	}
	aid, ok := parseID(*areaID)
	if !ok {
		log.Fatalf("invalid -area %q", *areaID)
	}

	s := sched.New(time.Now)
	p := process.New(rid, s, nil, nil)
	a := p.Area(aid, 0)

	prometheus.MustRegister(metrics.New(p))

	mode, typ := flooding(*manetMode)

	sources := make(map[string]process.PacketSource)
	ifcs := make(map[string]*iface.Interface)
	for _, name := range strings.Split(*interfaces, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		ifi, err := net.InterfaceByName(name)
		if err != nil {
			log.WithField("interface", name).WithError(err).Fatal("no such interface")
		}

		cfg := config.Interface{
			Name:          name,
			Type:          typ,
			FloodingMode:  mode,
			LinkMTU:       uint16(ifi.MTU),
			IfMTU:         uint16(ifi.MTU),
			HelloInterval: 10 * time.Second,
			DeadInterval:  40 * time.Second,
			RxmtInterval:  5 * time.Second,
			TransmitDelay: time.Second,
			Priority:      1,
			AckInterval:   time.Second,
			PushbackInterval: 2 * time.Second,
		}
		if err := cfg.Validate(); err != nil {
			log.WithError(err).Fatal("invalid interface configuration")
		}

		conn, err := ospf3.Listen(ifi)
		if err != nil {
			log.WithField("interface", name).WithError(err).Fatal("failed to open OSPFv3 socket")
		}

		ifc := iface.New(name, typ, rid, cfg.ToParams())
		p.RegisterInterface(a, ifc, conn)
		sources[name] = conn
		ifcs[name] = ifc

		log.WithFields(logrus.Fields{
			"interface": name,
			"mtu":       ifi.MTU,
			"flooding":  mode,
		}).Info("interface enabled")
	}

	if len(sources) == 0 {
		log.Fatal("no interfaces enabled; pass -interfaces")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatch := func(name string, m ospf3.Message, cm *ipv6.ControlMessage, src *net.IPAddr) {
		ifc, ok := ifcs[name]
		if !ok {
			return
		}
		mcast := cm != nil && cm.Dst != nil && cm.Dst.IsMulticast()
		p.HandleMessage(time.Now(), a, ifc, m, mcast)
	}

	err := p.Run(ctx, sources, dispatch)
	if err != nil && err != context.Canceled {
		log.WithError(err).Fatal("process exited")
	}
}

// parseID parses a dotted-quad router or area ID.
func parseID(s string) ([4]byte, bool) {
	ip := net.ParseIP(s)
	if ip == nil {
		return [4]byte{}, false
	}
	v4 := ip.To4()
	if v4 == nil {
		return [4]byte{}, false
	}
	return [4]byte{v4[0], v4[1], v4[2], v4[3]}, true
}

func flooding(mode string) (iface.FloodingMode, iface.LinkType) {
	switch mode {
	case "mpr-sdcds":
		return iface.MPRSDCDS, iface.MANETLink
	case "mdr-sicds":
		return iface.MDRSICDS, iface.MANETLink
	default:
		return iface.Classic, iface.Broadcast
	}
}
