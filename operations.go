package ventbridge

// OperationTag names one of the ~16 operation types carried by an
// envelope's header. The numeric values follow the vendor's fixed
// protobuf schema (spec.md §3); an implementer MUST round-trip these
// unchanged.
type OperationTag uint16

const (
	OpSetAddressRequest OperationTag = iota + 1
	OpSetAddressConfirm
	OpRegisterAppRequest
	OpRegisterAppConfirm
	OpStartSessionRequest
	OpStartSessionConfirm
	OpCloseSessionRequest
	OpListRegisteredAppsRequest
	OpListRegisteredAppsConfirm
	OpDeregisterAppRequest
	OpDeregisterAppConfirm
	OpChangePinRequest
	OpChangePinConfirm
	OpGetRemoteAccessIdRequest
	OpGetRemoteAccessIdConfirm
	OpSetRemoteAccessIdRequest
	OpSetRemoteAccessIdConfirm
	OpGetSupportIdRequest
	OpGetSupportIdConfirm
	OpSetSupportIdRequest
	OpSetSupportIdConfirm
	OpGetWebIdRequest
	OpGetWebIdConfirm
	OpSetWebIdRequest
	OpSetWebIdConfirm
	OpCnTimeRequest
	OpCnTimeConfirm
	OpCnNodeNotification
	OpCnRmiRequest
	OpCnRmiResponse
	OpCnRmiAsync
	OpCnRmiAsyncConfirm
	OpCnRpdoRequest
	OpCnRpdoConfirm
	OpCnRpdoNotification
	OpKeepAlive
	OpGatewayNotification
	OpCloseSessionNotification
	OpVersionRequest
	OpVersionConfirm
)

var operationNames = map[OperationTag]string{
	OpSetAddressRequest:         "SetAddressRequest",
	OpSetAddressConfirm:         "SetAddressConfirm",
	OpRegisterAppRequest:        "RegisterAppRequest",
	OpRegisterAppConfirm:        "RegisterAppConfirm",
	OpStartSessionRequest:       "StartSessionRequest",
	OpStartSessionConfirm:       "StartSessionConfirm",
	OpCloseSessionRequest:       "CloseSessionRequest",
	OpListRegisteredAppsRequest: "ListRegisteredAppsRequest",
	OpListRegisteredAppsConfirm: "ListRegisteredAppsConfirm",
	OpDeregisterAppRequest:      "DeregisterAppRequest",
	OpDeregisterAppConfirm:      "DeregisterAppConfirm",
	OpChangePinRequest:          "ChangePinRequest",
	OpChangePinConfirm:          "ChangePinConfirm",
	OpGetRemoteAccessIdRequest:  "GetRemoteAccessIdRequest",
	OpGetRemoteAccessIdConfirm:  "GetRemoteAccessIdConfirm",
	OpSetRemoteAccessIdRequest:  "SetRemoteAccessIdRequest",
	OpSetRemoteAccessIdConfirm:  "SetRemoteAccessIdConfirm",
	OpGetSupportIdRequest:       "GetSupportIdRequest",
	OpGetSupportIdConfirm:       "GetSupportIdConfirm",
	OpSetSupportIdRequest:       "SetSupportIdRequest",
	OpSetSupportIdConfirm:       "SetSupportIdConfirm",
	OpGetWebIdRequest:           "GetWebIdRequest",
	OpGetWebIdConfirm:           "GetWebIdConfirm",
	OpSetWebIdRequest:           "SetWebIdRequest",
	OpSetWebIdConfirm:           "SetWebIdConfirm",
	OpCnTimeRequest:             "CnTimeRequest",
	OpCnTimeConfirm:             "CnTimeConfirm",
	OpCnNodeNotification:        "CnNodeNotification",
	OpCnRmiRequest:              "CnRmiRequest",
	OpCnRmiResponse:             "CnRmiResponse",
	OpCnRmiAsync:                "CnRmiAsync",
	OpCnRmiAsyncConfirm:         "CnRmiAsyncConfirm",
	OpCnRpdoRequest:             "CnRpdoRequest",
	OpCnRpdoConfirm:             "CnRpdoConfirm",
	OpCnRpdoNotification:        "CnRpdoNotification",
	OpKeepAlive:                 "KeepAlive",
	OpGatewayNotification:       "GatewayNotification",
	OpCloseSessionNotification:  "CloseSessionNotification",
	OpVersionRequest:            "VersionRequest",
	OpVersionConfirm:            "VersionConfirm",
}

func (t OperationTag) String() string {
	if name, ok := operationNames[t]; ok {
		return name
	}
	return "Unknown"
}

// IsNotification reports whether an operation is a server-initiated,
// unsolicited message that never carries a reference id matching an
// outstanding request (spec.md §4.3).
func (t OperationTag) IsNotification() bool {
	switch t {
	case OpCnRpdoNotification, OpCnNodeNotification, OpCloseSessionNotification, OpGatewayNotification:
		return true
	default:
		return false
	}
}

// Well-known ports, spec.md §6.
const (
	DiscoveryPort = 56747
	BridgePort    = 56747
)
