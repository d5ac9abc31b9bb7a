package singleinstance

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	raiseRequest = "RAISE\n"
	okResponse   = "OK\n"
	errResponse  = "ERROR\n"
)

// Guard owns the loopback endpoint for the lifetime of the session.
type Guard struct {
	lis     net.Listener
	port    int
	onRaise func()
	logger  *slog.Logger
	wg      sync.WaitGroup
	once    sync.Once
}

func newGuard(onRaise func(), logger *slog.Logger) *Guard {
	return &Guard{onRaise: onRaise, logger: logger}
}

// listen binds only the base port of r; an occupied base port is an error.
func (g *Guard) listen(r portRange) error {
	addr := r.addr(r.base)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("singleinstance: failed to bind %s: %w", addr, err)
	}
	g.lis = lis
	g.port = r.base
	g.logger.Debug("singleinstance listening", "addr", addr)
	g.wg.Add(1)
	go g.acceptLoop()
	return nil
}

// Port returns the bound port.
func (g *Guard) Port() int { return g.port }

func (g *Guard) acceptLoop() {
	defer g.wg.Done()
	for {
		c, err := g.lis.Accept()
		if err != nil {
			return
		}
		g.serve(c)
	}
}

func (g *Guard) serve(c net.Conn) {
	defer c.Close()
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, _ := bufio.NewReader(c).ReadString('\n')
	bw := bufio.NewWriter(c)
	switch line {
	case pingRequest:
		_, _ = bw.WriteString(pongResponse)
	case raiseRequest:
		g.logger.Info("second launch detected, raising dialog", "remote", remote)
		if g.onRaise != nil {
			g.onRaise()
		}
		_, _ = bw.WriteString(okResponse)
	default:
		g.logger.Warn("singleinstance: unknown request", "remote", remote, "request", line)
		_, _ = bw.WriteString(errResponse)
	}
	_ = bw.Flush()
}

// Close releases the port and waits for the accept loop to exit.
func (g *Guard) Close() error {
	var err error
	g.once.Do(func() {
		err = g.lis.Close()
		g.wg.Wait()
	})
	return err
}
