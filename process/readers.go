package process

import (
	"context"
	"net"

	"golang.org/x/net/ipv6"
	"golang.org/x/sync/errgroup"

	ospf3 "github.com/ospf6d/ospf6"
)

// A PacketSource is the read side of one interface's raw OSPFv3 socket,
// satisfied by *ospf3.Conn.
type PacketSource interface {
	ReadFrom() (ospf3.Message, *ipv6.ControlMessage, *net.IPAddr, error)
	Close() error
}

// A Dispatch handles one received packet. It always runs on the scheduler
// goroutine, so it may mutate LSDBs and neighbor tables freely.
type Dispatch func(ifcName string, m ospf3.Message, cm *ipv6.ControlMessage, src *net.IPAddr)

// Run drives the process: the scheduler loop plus one reader goroutine per
// interface socket, all funneling into dispatch on the scheduler
// goroutine. Run blocks until ctx is canceled or a reader fails
// permanently, then closes every source.
func (p *Process) Run(ctx context.Context, sources map[string]PacketSource, dispatch Dispatch) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return p.Sched.Run(ctx)
	})

	for name, src := range sources {
		name, src := name, src
		eg.Go(func() error {
			<-ctx.Done()
			return src.Close()
		})
		eg.Go(func() error {
			for {
				m, cm, from, err := src.ReadFrom()
				if err != nil {
					select {
					case <-ctx.Done():
						return nil
					default:
					}
					p.log.WithField("interface", name).WithError(err).Warn("socket read failed")
					return err
				}
				p.Sched.AddEvent(func() {
					dispatch(name, m, cm, from)
				})
			}
		})
	}

	return eg.Wait()
}
