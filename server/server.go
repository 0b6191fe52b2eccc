// Package server owns the accept loops: one per protocol listener,
// each handing accepted sockets to the HTTP probe and then to a
// conn.Connection. The signal-handling and listener-loop shape is the
// teacher's server.Server generalized from one listener/handler pair
// to two protocol listeners sharing one store.
package server

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lovelydayss/shardcache/conn"
	"github.com/lovelydayss/shardcache/lib/pool"
	"github.com/lovelydayss/shardcache/log"
	"github.com/lovelydayss/shardcache/store"
)

// Server owns both protocol listeners and the store they dispatch
// commands through.
type Server struct {
	runOnce  sync.Once
	stopOnce sync.Once

	store *store.Store
	stopc chan struct{}
}

// NewServer returns a Server dispatching through st.
func NewServer(st *store.Store) *Server {
	return &Server{
		store: st,
		stopc: make(chan struct{}),
	}
}

// Serve opens the RESP and memcache listeners and blocks until both
// accept loops have exited (on Stop, a signal, or a fatal accept error)
// and every connection they accepted has finished. On Stop or a signal
// the open connections are closed as well.
func (s *Server) Serve(respAddress, memcacheAddress string) error {
	var err error
	s.runOnce.Do(func() {
		respListener, lerr := net.Listen("tcp", respAddress)
		if lerr != nil {
			err = lerr
			return
		}
		mcListener, lerr := net.Listen("tcp", memcacheAddress)
		if lerr != nil {
			err = lerr
			return
		}

		exitWords := []os.Signal{syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT}
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, exitWords...)

		ctx, cancel := context.WithCancel(context.Background())
		pool.Submit(func() {
			select {
			case <-sigc:
				log.Warnf("[server] signal received, shutting down...")
			case <-s.stopc:
				log.Warnf("[server] stop requested, shutting down...")
			}
			cancel()
			_ = respListener.Close()
			_ = mcListener.Close()
		})

		var wg sync.WaitGroup
		wg.Add(2)
		pool.Submit(func() {
			defer wg.Done()
			s.listenAndServe(ctx, respListener, conn.RESP)
		})
		pool.Submit(func() {
			defer wg.Done()
			s.listenAndServe(ctx, mcListener, conn.Memcache)
		})
		wg.Wait()
	})
	return err
}

// Stop signals both accept loops to exit.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopc)
	})
}

func (s *Server) listenAndServe(ctx context.Context, listener net.Listener, protocol conn.Protocol) {
	log.Warnf("[server] listening on %s (%s)", listener.Addr().String(), protocolName(protocol))

	var wg sync.WaitGroup
	for {
		netConn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			select {
			case <-ctx.Done():
			default:
				log.Warnf("[server] accept err: %s", err.Error())
			}
			break
		}

		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			stop := context.AfterFunc(ctx, func() { _ = netConn.Close() })
			defer stop()
			s.handleAccepted(netConn, protocol)
		})
	}
	wg.Wait()
}

// handleAccepted runs the HTTP probe (spec.md §6) before handing the
// socket to a protocol Connection; an HTTP request is answered with a
// minimal not-implemented response and closed, since the full admin
// console is out of scope.
func (s *Server) handleAccepted(netConn net.Conn, protocol conn.Protocol) {
	wrapped, isHTTP := probeHTTP(netConn)
	if isHTTP {
		_, _ = netConn.Write([]byte("HTTP/1.1 501 Not Implemented\r\nContent-Length: 0\r\n\r\n"))
		_ = netConn.Close()
		return
	}

	c := conn.New(wrapped, protocol, s.store)
	c.Serve()
}

func protocolName(p conn.Protocol) string {
	if p == conn.Memcache {
		return "memcache"
	}
	return "resp"
}
