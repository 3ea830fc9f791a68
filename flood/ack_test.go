package flood

import (
	"testing"

	"github.com/ospf6d/ospf6/iface"
)

func TestPolicyBDRSendsDirectUnicast(t *testing.T) {
	ifc := iface.New("eth0", iface.Broadcast, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{InterfaceIsBDR: true})
	if kind != AckDirectUnicast {
		t.Fatalf("Policy = %v, want AckDirectUnicast", kind)
	}
}

func TestPolicyAllOtherDelaysMulticast(t *testing.T) {
	ifc := iface.New("eth0", iface.Broadcast, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{})
	if kind != AckDelayedMulticast {
		t.Fatalf("Policy = %v, want AckDelayedMulticast", kind)
	}
}

func TestPolicyAllOtherDuplicateSendsDirect(t *testing.T) {
	ifc := iface.New("eth0", iface.Broadcast, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{Duplicate: true})
	if kind != AckDirectUnicast {
		t.Fatalf("Policy = %v, want AckDirectUnicast", kind)
	}
}

func TestPolicyMANETMDRSendsImmediateMulticast(t *testing.T) {
	ifc := iface.New("eth0", iface.MANETLink, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{MDRRole: RoleMDR})
	if kind != AckImmediateMulticast {
		t.Fatalf("Policy = %v, want AckImmediateMulticast", kind)
	}
}

func TestPolicyMANETSuppressesDirectForMulticastDuplicate(t *testing.T) {
	ifc := iface.New("eth0", iface.MANETLink, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{Duplicate: true, ReceivedMulticast: true, MDRRole: RoleOther})
	if kind != AckDelayedMulticast {
		t.Fatalf("Policy = %v, want AckDelayedMulticast (direct ack suppressed on MANET multicast duplicate)", kind)
	}
}

func TestPolicyMANETUnicastDuplicateSendsDirect(t *testing.T) {
	ifc := iface.New("eth0", iface.MANETLink, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{Duplicate: true, ReceivedMulticast: false, MDRRole: RoleOther})
	if kind != AckDirectUnicast {
		t.Fatalf("Policy = %v, want AckDirectUnicast (unicast duplicate still acked directly)", kind)
	}
}

func TestPolicyImpliedNonDuplicateNeedsNoAck(t *testing.T) {
	ifc := iface.New("eth0", iface.Broadcast, [4]byte{1, 1, 1, 1}, iface.Params{})
	kind := Policy(ifc, AckContext{ImpliedAck: true, Duplicate: false})
	if kind != AckNone {
		t.Fatalf("Policy = %v, want AckNone", kind)
	}
}
