package acme

import (
	"errors"
	"net"
	"os"
	"syscall"
)

// Capability is the explicit probe result the resolver consults before
// attempting the ACME path, replacing environment duck-typing at decision
// time. The challenge client itself is linked into the binary, so the only
// environmental precondition left is the privilege to bind the challenge
// port.
type Capability struct {
	// Privileged reports whether the process may bind the low challenge
	// port.
	Privileged bool
}

// ProbeCapability computes the capability once at startup. Root is always
// privileged; otherwise a test bind against the port decides: a permission
// error means no, anything else (including the port being busy) means the
// privilege itself is there.
func ProbeCapability(port int) Capability {
	if os.Geteuid() == 0 {
		return Capability{Privileged: true}
	}

	ln, err := net.Listen("tcp", addrForPort(port))
	if err == nil {
		_ = ln.Close()
		return Capability{Privileged: true}
	}
	if isPermissionError(err) {
		return Capability{Privileged: false}
	}
	return Capability{Privileged: true}
}

func isPermissionError(err error) bool {
	return errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) || os.IsPermission(err)
}
