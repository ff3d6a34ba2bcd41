package protocol

import (
	"net"
	"strconv"
	"strings"
)

// mDNS/DNS-SD identifiers under which stokerd daemons advertise themselves.
const (
	ServiceType = "_stokerd._tcp"
	Domain      = "local."
)

// Operation is a lifecycle action the daemon performs on the managed server.
type Operation string

const (
	OperationStart   Operation = "start"
	OperationStop    Operation = "stop"
	OperationRestart Operation = "restart"
)

// Verb returns the operation as a lowercase verb for user-facing messages.
func (o Operation) Verb() string {
	return string(o)
}

// ProcessStateKind classifies the managed server process.
type ProcessStateKind string

const (
	ProcessStarted ProcessStateKind = "started"
	ProcessStopped ProcessStateKind = "stopped"
)

// ExitOutcome records how a stopped server exited, when known.
type ExitOutcome string

const (
	ExitUnknown ExitOutcome = ""
	ExitSuccess ExitOutcome = "success"
	ExitFailure ExitOutcome = "failure"
)

// ProcessState is the daemon's authoritative view of the managed server
// process. Exit is only meaningful while Kind is ProcessStopped.
type ProcessState struct {
	Kind ProcessStateKind `json:"kind"`
	Exit ExitOutcome      `json:"exit,omitempty"`
}

// ServerInfo is the raw descriptor for one discovered daemon, as carried in
// a discovery snapshot. Address order is whatever the resolver reported.
type ServerInfo struct {
	Addresses []string `json:"addresses"`
	Port      int      `json:"port"`
}

// Server is a discovered daemon with its snapshot identity attached.
type Server struct {
	FullName  string
	Addresses []string
	Port      int
}

// DisplayName derives a short human name from the service identity: the
// substring before the first dot of the full service instance name.
func (s Server) DisplayName() string {
	if i := strings.IndexByte(s.FullName, '.'); i >= 0 {
		return s.FullName[:i]
	}
	return s.FullName
}

// PrimaryAddress returns the first address of the snapshot entry. The source
// does not guarantee address order, so this pick is deliberate nondeterminism
// rather than a contract.
func (s Server) PrimaryAddress() string {
	if len(s.Addresses) == 0 {
		return ""
	}
	return s.Addresses[0]
}

// SocketAddrs returns every advertised address joined with the service port,
// in snapshot order, suitable for dialing.
func (s Server) SocketAddrs() []string {
	addrs := make([]string, 0, len(s.Addresses))
	for _, a := range s.Addresses {
		addrs = append(addrs, JoinHostPort(a, s.Port))
	}
	return addrs
}

// JoinHostPort formats host and a numeric port for dialing, bracketing IPv6
// hosts as needed.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
