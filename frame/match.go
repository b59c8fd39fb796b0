package frame

// Equal reports whether two Messages are the wire-equivalent of each
// other: same variant, same device, same body. Used both for the read
// handler's duplicate-retransmission check and as the fallback rule in
// MatchesResponse.
func Equal(a, b Message) bool {
	return a.Kind == b.Kind && a.Device == b.Device && a.Body == b.Body
}

// MatchesResponse reports whether inbound is the designated response to
// pending:
//
//   - an inbound Ack matches any pending Message for the same device — an
//     LLAP ACK carries no correlation id, only the device, so the host
//     cannot tell which outstanding command it acknowledges and must
//     retire the oldest one up for that device (the caller scans the
//     pending list in insertion order and stops at the first match).
//   - a pending Sleep matches an inbound Sleeping from the same device.
//   - a pending bodiless query (Battery, FirmwareVersion, ProtocolVersion)
//     matches any inbound Message of the same variant from the same
//     device, regardless of the reported value.
//   - otherwise, match requires full (variant, device, body) equality.
func MatchesResponse(pending, inbound Message) bool {
	if inbound.Kind == KindAck {
		return pending.Device == inbound.Device
	}

	if pending.Kind == KindSleep && inbound.Kind == KindSleeping {
		return pending.Device == inbound.Device
	}

	switch pending.Kind {
	case KindBattery, KindFirmwareVersion, KindProtocolVersion:
		if inbound.Kind == pending.Kind {
			return pending.Device == inbound.Device
		}
	}

	return Equal(pending, inbound)
}
