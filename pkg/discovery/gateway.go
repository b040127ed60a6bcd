package discovery

import (
	"fmt"

	"github.com/airnode/ventbridge"
	"google.golang.org/protobuf/encoding/protowire"
)

// SearchGatewayResponse field numbers (spec.md §4.7: "{ip, uuid,
// version}"), a standalone UDP datagram with no outer frame and no
// operation header.
const (
	fieldGatewayIP      = protowire.Number(1)
	fieldGatewayUUID    = protowire.Number(2)
	fieldGatewayVersion = protowire.Number(3)
)

type searchGatewayResponse struct {
	IP      string
	UUID    ventbridge.UUID
	Version string
}

// DecodeSearchGatewayResponse parses one UDP reply datagram.
func DecodeSearchGatewayResponse(raw []byte) (searchGatewayResponse, error) {
	var resp searchGatewayResponse
	b := raw
	var haveUUID bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return resp, fmt.Errorf("%w: bad gateway response tag", ventbridge.ErrMalformedEnvelope)
		}
		b = b[n:]
		switch num {
		case fieldGatewayIP:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return resp, fmt.Errorf("%w: bad gateway response ip", ventbridge.ErrMalformedEnvelope)
			}
			resp.IP = string(v)
			b = b[n:]
		case fieldGatewayUUID:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 || len(v) != 16 {
				return resp, fmt.Errorf("%w: bad gateway response uuid", ventbridge.ErrMalformedEnvelope)
			}
			copy(resp.UUID[:], v)
			haveUUID = true
			b = b[n:]
		case fieldGatewayVersion:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return resp, fmt.Errorf("%w: bad gateway response version", ventbridge.ErrMalformedEnvelope)
			}
			resp.Version = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return resp, fmt.Errorf("%w: unknown gateway response field", ventbridge.ErrMalformedEnvelope)
			}
			b = b[n:]
		}
	}
	if !haveUUID {
		return resp, fmt.Errorf("%w: gateway response missing uuid", ventbridge.ErrMalformedEnvelope)
	}
	return resp, nil
}
