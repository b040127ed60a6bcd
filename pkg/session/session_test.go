package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// fakeBridge accepts one connection and replies to StartSessionRequest
// (and, optionally, further requests) the way a real bridge would.
type fakeBridge struct {
	ln               net.Listener
	startStatus      uint8
	onEnvelope       func(conn net.Conn, req wire.Envelope)
}

func newFakeBridge(t *testing.T, startStatus uint8) *fakeBridge {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return &fakeBridge{ln: ln, startStatus: startStatus}
}

func (b *fakeBridge) addr() string { return b.ln.Addr().String() }

func (b *fakeBridge) serveOnce(t *testing.T) {
	t.Helper()
	go func() {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			payload, err := wire.ReadFrame(conn, wire.DefaultMaxFrameSize)
			if err != nil {
				return
			}
			env, err := wire.Decode(payload)
			if err != nil {
				continue
			}
			switch env.Tag {
			case ventbridge.OpStartSessionRequest:
				reply := wire.Envelope{
					Tag:     ventbridge.OpStartSessionConfirm,
					RefId:   env.RefId,
					Payload: encodeStatusForTest(b.startStatus),
				}
				_ = wire.WriteFrame(conn, wire.Encode(reply))
			case ventbridge.OpKeepAlive:
				// no reply expected
			case ventbridge.OpCloseSessionRequest:
				return
			default:
				if b.onEnvelope != nil {
					b.onEnvelope(conn, env)
				}
			}
		}
	}()
}

func encodeStatusForTest(status uint8) []byte {
	// mirrors wire's private fieldStatus=1 varint encoding
	return []byte{0x08, status}
}

func TestConnectReachesActiveOnSuccessfulHandshake(t *testing.T) {
	bridge := newFakeBridge(t, wire.StartSessionOK)
	bridge.serveOnce(t)

	var transitions []State
	sess := New(Config{
		Addr:       bridge.addr(),
		LocalUUID:  ventbridge.NewUUID(),
		BridgeUUID: ventbridge.NewUUID(),
	}, func(from, to State, reason error) {
		transitions = append(transitions, to)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Connect(ctx))
	assert.Equal(t, Active, sess.State())
	assert.Contains(t, transitions, Connecting)
	assert.Contains(t, transitions, Starting)
	assert.Contains(t, transitions, Active)
}

func TestConnectFailsWithNotRegistered(t *testing.T) {
	bridge := newFakeBridge(t, wire.StartSessionNotRegistered)
	bridge.serveOnce(t)

	sess := New(Config{
		Addr:       bridge.addr(),
		LocalUUID:  ventbridge.NewUUID(),
		BridgeUUID: ventbridge.NewUUID(),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sess.Connect(ctx)
	assert.ErrorIs(t, err, ventbridge.ErrNotRegistered)
	assert.Equal(t, Disconnected, sess.State())
}

func TestDisconnectTransitionsToClosingThenDisconnected(t *testing.T) {
	bridge := newFakeBridge(t, wire.StartSessionOK)
	bridge.serveOnce(t)

	sess := New(Config{
		Addr:       bridge.addr(),
		LocalUUID:  ventbridge.NewUUID(),
		BridgeUUID: ventbridge.NewUUID(),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Connect(ctx))

	require.NoError(t, sess.Disconnect(ctx))
	assert.Equal(t, Disconnected, sess.State())
}

// reconnectingBridge accepts connections in a loop (rather than one
// fakeBridge.serveOnce shot) and records the pdid of every CnRpdoRequest
// it observes, so a test can confirm a subscription survives a dropped
// connection and reappears on the next one (spec.md §8 scenario 6).
type reconnectingBridge struct {
	ln    net.Listener
	conns chan net.Conn
	rpdo  chan uint32
}

func newReconnectingBridge(t *testing.T) *reconnectingBridge {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	b := &reconnectingBridge{ln: ln, conns: make(chan net.Conn, 4), rpdo: make(chan uint32, 4)}
	go b.acceptLoop()
	return b
}

func (b *reconnectingBridge) addr() string { return b.ln.Addr().String() }

func (b *reconnectingBridge) acceptLoop() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		b.conns <- conn
		go b.serve(conn)
	}
}

func (b *reconnectingBridge) serve(conn net.Conn) {
	defer conn.Close()
	for {
		payload, err := wire.ReadFrame(conn, wire.DefaultMaxFrameSize)
		if err != nil {
			return
		}
		env, err := wire.Decode(payload)
		if err != nil {
			continue
		}
		switch env.Tag {
		case ventbridge.OpStartSessionRequest:
			reply := wire.Envelope{
				Tag:     ventbridge.OpStartSessionConfirm,
				RefId:   env.RefId,
				Payload: encodeStatusForTest(wire.StartSessionOK),
			}
			_ = wire.WriteFrame(conn, wire.Encode(reply))
		case ventbridge.OpCnRpdoRequest:
			if pdid, ok := decodeRpdoPdidForTest(env.Payload); ok {
				b.rpdo <- pdid
			}
			reply := wire.Envelope{Tag: ventbridge.OpCnRpdoConfirm, RefId: env.RefId}
			_ = wire.WriteFrame(conn, wire.Encode(reply))
		case ventbridge.OpKeepAlive, ventbridge.OpCloseSessionRequest:
		default:
		}
	}
}

// decodeRpdoPdidForTest pulls the pdid (field 1) out of a CnRpdoRequest
// payload, mirroring wire's private field numbering for this test's
// server-side double.
func decodeRpdoPdidForTest(raw []byte) (uint32, bool) {
	b := raw
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, false
		}
		b = b[n:]
		if num == protowire.Number(1) {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, false
			}
			return uint32(v), true
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return 0, false
		}
		b = b[n:]
	}
	return 0, false
}

func TestReconnectResubscribesBeforeFurtherRequestsProceed(t *testing.T) {
	bridge := newReconnectingBridge(t)

	sess := New(Config{
		Addr:          bridge.addr(),
		LocalUUID:     ventbridge.NewUUID(),
		BridgeUUID:    ventbridge.NewUUID(),
		AutoReconnect: true,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Connect(ctx))

	reg := sess.PDO()
	require.NotNil(t, reg)
	require.NoError(t, reg.Subscribe(ctx, 65, wire.TypeUint8, func(uint32, any) {}, false))

	select {
	case pdid := <-bridge.rpdo:
		assert.Equal(t, uint32(65), pdid)
	case <-time.After(time.Second):
		t.Fatal("initial subscribe request never arrived")
	}

	var firstConn net.Conn
	select {
	case firstConn = <-bridge.conns:
	case <-time.After(time.Second):
		t.Fatal("no connection observed by the fake bridge")
	}
	require.NoError(t, firstConn.Close())

	select {
	case <-bridge.conns:
	case <-time.After(5 * time.Second):
		t.Fatal("bridge never saw a reconnect")
	}

	select {
	case pdid := <-bridge.rpdo:
		assert.Equal(t, uint32(65), pdid)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription for pdid 65 was not reinstalled after reconnect")
	}

	assert.Equal(t, 1, reg.Count())
	assert.Same(t, reg, sess.PDO())
}

func TestDisconnectDoesNotTriggerReconnect(t *testing.T) {
	bridge := newFakeBridge(t, wire.StartSessionOK)
	bridge.serveOnce(t)

	sess := New(Config{
		Addr:          bridge.addr(),
		LocalUUID:     ventbridge.NewUUID(),
		BridgeUUID:    ventbridge.NewUUID(),
		AutoReconnect: true,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Connect(ctx))
	require.NoError(t, sess.Disconnect(ctx))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, Disconnected, sess.State())
}
