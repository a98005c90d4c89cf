// transport/tcp.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package transport

import (
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/arids/modeling-simulation/log"
)

// TCPMesh runs one rank per OS process over a full mesh of TCP
// connections. Frames are msgpack-encoded; per-pair ordering follows from
// TCP. Collectives are built on point-to-point messages with rank 0 (or
// the reduction root) acting as coordinator.
type TCPMesh struct {
	rank, size int
	lg         *log.Logger

	listener net.Listener
	peers    []*peerConn

	inbox     *inbox
	arriveCh  chan frame
	releaseCh chan frame
	resultCh  chan frame

	done      chan struct{}
	closeOnce sync.Once
}

type peerConn struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *msgpack.Encoder
}

type frame struct {
	Kind   int     `msgpack:"k"`
	Source int     `msgpack:"s"`
	Vec    []int64 `msgpack:"v,omitempty"`
}

const (
	frameHello = iota + 1
	frameData
	frameBarrierArrive
	frameBarrierRelease
	frameReduceArrive
	frameReduceResult
)

const dialTimeout = 30 * time.Second

// NewTCPMesh listens on addrs[rank] and connects the full mesh: each rank
// dials every lower rank (retrying while peers start up) and accepts a
// connection from every higher one. It returns once all links are up.
func NewTCPMesh(rank int, addrs []string, lg *log.Logger) (*TCPMesh, error) {
	size := len(addrs)
	if rank < 0 || rank >= size {
		return nil, fmt.Errorf("rank %d of %d: %w", rank, size, ErrInvalidRank)
	}

	m := &TCPMesh{
		rank:      rank,
		size:      size,
		lg:        lg,
		peers:     make([]*peerConn, size),
		inbox:     makeInbox(),
		arriveCh:  make(chan frame, 2*size),
		releaseCh: make(chan frame, 2),
		resultCh:  make(chan frame, 2),
		done:      make(chan struct{}),
	}

	var err error
	if m.listener, err = net.Listen("tcp", addrs[rank]); err != nil {
		return nil, err
	}

	// Dial the lower-numbered ranks, identifying ourselves with a hello
	// frame.
	for peer := 0; peer < rank; peer++ {
		conn, err := dialRetry(addrs[peer])
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("rank %d: %w", peer, err)
		}
		pc := &peerConn{conn: conn, enc: msgpack.NewEncoder(conn)}
		if err := pc.enc.Encode(frame{Kind: frameHello, Source: rank}); err != nil {
			m.Close()
			return nil, err
		}
		m.peers[peer] = pc
	}

	// Accept one connection from each higher-numbered rank.
	for n := 0; n < size-1-rank; n++ {
		conn, err := m.listener.Accept()
		if err != nil {
			m.Close()
			return nil, err
		}
		dec := msgpack.NewDecoder(conn)
		var hello frame
		if err := dec.Decode(&hello); err != nil {
			m.Close()
			return nil, err
		}
		if hello.Kind != frameHello || hello.Source <= rank || hello.Source >= size {
			m.Close()
			return nil, fmt.Errorf("hello kind %d source %d: %w", hello.Kind, hello.Source, ErrMalformedFrame)
		}
		if m.peers[hello.Source] != nil {
			m.Close()
			return nil, fmt.Errorf("rank %d connected twice: %w", hello.Source, ErrMalformedFrame)
		}
		m.peers[hello.Source] = &peerConn{conn: conn, enc: msgpack.NewEncoder(conn)}
		go m.read(hello.Source, dec)
	}

	// Readers for the dialed links start only now, after the mesh is
	// complete.
	for peer := 0; peer < rank; peer++ {
		go m.read(peer, msgpack.NewDecoder(m.peers[peer].conn))
	}

	lg.Infof("rank %d: mesh of %d connected", rank, size)
	return m, nil
}

func dialRetry(addr string) (net.Conn, error) {
	deadline := time.Now().Add(dialTimeout)
	for {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// read decodes frames from one peer and routes them: data to the inbox,
// collective traffic to the matching channel.
func (m *TCPMesh) read(src int, dec *msgpack.Decoder) {
	for {
		var fr frame
		if err := dec.Decode(&fr); err != nil {
			select {
			case <-m.done:
			default:
				m.lg.Errorf("rank %d: read from %d: %v", m.rank, src, err)
				m.Close()
			}
			return
		}
		if fr.Source != src {
			m.lg.Errorf("rank %d: frame source %d on link %d", m.rank, fr.Source, src)
			m.Close()
			return
		}

		switch fr.Kind {
		case frameData:
			m.inbox.push(envelope{source: src, vec: fr.Vec})
		case frameBarrierArrive, frameReduceArrive:
			m.arriveCh <- fr
		case frameBarrierRelease:
			m.releaseCh <- fr
		case frameReduceResult:
			m.resultCh <- fr
		default:
			m.lg.Errorf("rank %d: frame kind %d from %d", m.rank, fr.Kind, src)
			m.Close()
			return
		}
	}
}

func (m *TCPMesh) Rank() int { return m.rank }
func (m *TCPMesh) Size() int { return m.size }

func (m *TCPMesh) send(dest int, fr frame) error {
	if dest < 0 || dest >= m.size || dest == m.rank {
		return fmt.Errorf("send to %d from %d: %w", dest, m.rank, ErrInvalidRank)
	}
	pc := m.peers[dest]
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.enc.Encode(fr)
}

func (m *TCPMesh) Send(dest int, vec []int64) error {
	return m.send(dest, frame{Kind: frameData, Source: m.rank, Vec: vec})
}

func (m *TCPMesh) RecvAny() ([]int64, int, error) {
	env, err := m.inbox.pop()
	if err != nil {
		return nil, 0, err
	}
	return env.vec, env.source, nil
}

// collectArrivals consumes one arrival frame of the expected kind from
// every other rank.
func (m *TCPMesh) collectArrivals(kind int, each func(frame) error) error {
	for n := 0; n < m.size-1; n++ {
		select {
		case fr := <-m.arriveCh:
			if fr.Kind != kind {
				return fmt.Errorf("arrival kind %d, want %d: %w", fr.Kind, kind, ErrMalformedFrame)
			}
			if each != nil {
				if err := each(fr); err != nil {
					return err
				}
			}
		case <-m.done:
			return ErrClosed
		}
	}
	return nil
}

func (m *TCPMesh) Barrier() error {
	if m.rank == 0 {
		if err := m.collectArrivals(frameBarrierArrive, nil); err != nil {
			return err
		}
		for peer := 1; peer < m.size; peer++ {
			if err := m.send(peer, frame{Kind: frameBarrierRelease, Source: 0}); err != nil {
				return err
			}
		}
		return nil
	}

	if err := m.send(0, frame{Kind: frameBarrierArrive, Source: m.rank}); err != nil {
		return err
	}
	select {
	case <-m.releaseCh:
		return nil
	case <-m.done:
		return ErrClosed
	}
}

func (m *TCPMesh) reduceAt(vec []int64, root int) ([]int64, error) {
	if m.rank != root {
		return nil, m.send(root, frame{Kind: frameReduceArrive, Source: m.rank, Vec: vec})
	}

	acc := slices.Clone(vec)
	err := m.collectArrivals(frameReduceArrive, func(fr frame) error {
		if len(fr.Vec) != len(acc) {
			return fmt.Errorf("%d vs %d elements from %d: %w", len(fr.Vec), len(acc), fr.Source, ErrLengthMismatch)
		}
		for i, v := range fr.Vec {
			acc[i] += v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (m *TCPMesh) AllReduceSum(vec []int64) ([]int64, error) {
	sum, err := m.reduceAt(vec, 0)
	if err != nil {
		return nil, err
	}
	if m.rank == 0 {
		for peer := 1; peer < m.size; peer++ {
			if err := m.send(peer, frame{Kind: frameReduceResult, Source: 0, Vec: sum}); err != nil {
				return nil, err
			}
		}
		return sum, nil
	}

	select {
	case fr := <-m.resultCh:
		return fr.Vec, nil
	case <-m.done:
		return nil, ErrClosed
	}
}

func (m *TCPMesh) ReduceSum(vec []int64, root int) ([]int64, error) {
	if root < 0 || root >= m.size {
		return nil, fmt.Errorf("reduction root %d: %w", root, ErrInvalidRank)
	}
	return m.reduceAt(vec, root)
}

func (m *TCPMesh) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.inbox.close()
		if m.listener != nil {
			m.listener.Close()
		}
		for _, pc := range m.peers {
			if pc != nil {
				pc.conn.Close()
			}
		}
	})
	return nil
}
