package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"
)

// detectResident scans r and returns the address of the first resident that
// answers PING.
func detectResident(ctx context.Context, r portRange) (string, bool) {
	timeout := dialTimeout(ctx, 300*time.Millisecond)
	for port := r.base; port <= r.last; port++ {
		addr := r.addr(port)
		if resp, err := roundTrip(addr, pingRequest, timeout); err == nil && resp == pongResponse {
			return addr, true
		}
	}
	return "", false
}

func raise(ctx context.Context, addr string) error {
	resp, err := roundTrip(addr, raiseRequest, dialTimeout(ctx, 2*time.Second))
	if err != nil {
		return err
	}
	if resp != okResponse {
		return fmt.Errorf("unexpected response %q", resp)
	}
	return nil
}

func dialTimeout(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < def {
			return d
		}
	}
	return def
}

// roundTrip sends one request line and reads one response line.
func roundTrip(addr, req string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(req); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return bufio.NewReader(conn).ReadString('\n')
}
