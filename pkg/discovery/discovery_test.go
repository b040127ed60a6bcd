package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func encodeGatewayResponseForTest(ip string, uuid ventbridge.UUID, version string) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldGatewayIP, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte(ip))
	buf = protowire.AppendTag(buf, fieldGatewayUUID, protowire.BytesType)
	buf = protowire.AppendBytes(buf, uuid[:])
	buf = protowire.AppendTag(buf, fieldGatewayVersion, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte(version))
	return buf
}

func TestDecodeSearchGatewayResponseRoundTrip(t *testing.T) {
	u := ventbridge.NewUUID()
	raw := encodeGatewayResponseForTest("192.168.1.50", u, "1.2.3")
	resp, err := DecodeSearchGatewayResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.50", resp.IP)
	assert.Equal(t, u, resp.UUID)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestDecodeSearchGatewayResponseMissingUUIDErrors(t *testing.T) {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldGatewayIP, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte("10.0.0.1"))
	_, err := DecodeSearchGatewayResponse(buf)
	assert.Error(t, err)
}

// TestDiscoverCollectsUnicastReplies exercises the collection loop
// against a plain UDP peer on loopback (not a real broadcast) since
// sandboxed test environments cannot rely on broadcast delivery.
func TestDiscoverCollectsUnicastReplies(t *testing.T) {
	serverConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer serverConn.Close()

	bridgeUUID := ventbridge.NewUUID()
	go func() {
		buf := make([]byte, 1024)
		_, from, err := serverConn.ReadFrom(buf)
		if err != nil {
			return
		}
		reply := encodeGatewayResponseForTest("127.0.0.1", bridgeUUID, "2.0.0")
		_, _ = serverConn.WriteTo(reply, from)
	}()

	addr := serverConn.LocalAddr().(*net.UDPAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results, err := Discover(ctx, "127.0.0.1", addr.Port, 500*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, bridgeUUID, results[0].UUID)
}

func TestDiscoverDedupesRepliesBySameUUID(t *testing.T) {
	serverConn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer serverConn.Close()

	bridgeUUID := ventbridge.NewUUID()
	go func() {
		buf := make([]byte, 1024)
		for i := 0; i < 2; i++ {
			_, from, err := serverConn.ReadFrom(buf)
			if err != nil {
				return
			}
			reply := encodeGatewayResponseForTest("127.0.0.1", bridgeUUID, "2.0.0")
			_, _ = serverConn.WriteTo(reply, from)
			_, _ = serverConn.WriteTo(reply, from)
		}
	}()

	addr := serverConn.LocalAddr().(*net.UDPAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results, err := Discover(ctx, "127.0.0.1", addr.Port, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
