package singleinstance

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

// PortEnvVar moves the guard off its default loopback ports.
const PortEnvVar = "SCREENSHOT_OCR_PORT"

const (
	defaultBasePort = 49600
	portSpan        = 10
	minPort         = 1024
	maxPort         = 65535
)

// portRange is the inclusive run of loopback ports a resident may hold. The
// resident binds base; a second launch probes the whole run.
type portRange struct {
	base, last int
}

func newPortRange(base int) portRange { return portRange{base: base, last: base + portSpan} }

// parsePorts reads a base port from v.
func parsePorts(v string) (portRange, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return portRange{}, fmt.Errorf("%s=%q: not a port number", PortEnvVar, v)
	}
	if n < minPort || n+portSpan > maxPort {
		return portRange{}, fmt.Errorf("%s=%d: must be within %d-%d", PortEnvVar, n, minPort, maxPort-portSpan)
	}
	return newPortRange(n), nil
}

// resolvePorts returns the configured range, or the default one together with
// the reason the configured value was rejected.
func resolvePorts() (portRange, error) {
	v := os.Getenv(PortEnvVar)
	if v == "" {
		return newPortRange(defaultBasePort), nil
	}
	r, err := parsePorts(v)
	if err != nil {
		return newPortRange(defaultBasePort), err
	}
	return r, nil
}

func (r portRange) addr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}
