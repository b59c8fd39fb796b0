// Package frame implements the LLAP wire format: encoding and decoding of
// fixed-width 12-byte ASCII frames into typed Messages, and the
// response-matching rules the engine package uses to pair a pending
// outbound Message with its reply.
package frame

import (
	"strconv"
	"time"
)

// Kind tags the semantic variant of a Message. Go has no tagged unions, so
// a single struct carries every variant's payload and dispatch happens on
// Kind rather than on runtime type assertions.
type Kind int

const (
	KindAck Kind = iota
	KindAwake
	KindBattery
	KindBatteryLow
	KindFirmwareVersion
	KindProtocolVersion
	KindHello
	KindReboot
	KindSleep
	KindSleeping
	KindStarted
	KindWake
	KindWakeCount
	KindButtonPress
	KindButtonDoor
	KindButtonSwitch
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindAck:
		return "Ack"
	case KindAwake:
		return "Awake"
	case KindBattery:
		return "Battery"
	case KindBatteryLow:
		return "BatteryLow"
	case KindFirmwareVersion:
		return "FirmwareVersion"
	case KindProtocolVersion:
		return "ProtocolVersion"
	case KindHello:
		return "Hello"
	case KindReboot:
		return "Reboot"
	case KindSleep:
		return "Sleep"
	case KindSleeping:
		return "Sleeping"
	case KindStarted:
		return "Started"
	case KindWake:
		return "Wake"
	case KindWakeCount:
		return "WakeCount"
	case KindButtonPress:
		return "ButtonPress"
	case KindButtonDoor:
		return "ButtonDoor"
	case KindButtonSwitch:
		return "ButtonSwitch"
	case KindOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// Message is the semantic content of one Frame, plus the tracking fields
// the engine's write/retry handlers attach to outbound commands.
type Message struct {
	Kind   Kind
	Device string
	Body   string // raw body as it appears on the wire (before fill padding)

	// Variant-specific payload. Only the fields relevant to Kind are set.
	Voltage         string // Battery report; empty for a bodiless query
	FirmwareVersion string // FirmwareVersion report; empty for a bodiless query
	ProtocolVersion string // ProtocolVersion report; empty for a bodiless query
	Count           int    // WakeCount
	Label           string // button label prefix (may be empty)
	Input           string // "A" or "B" for ButtonPress/ButtonDoor
	State           bool   // ON/OFF for ButtonDoor/ButtonSwitch

	// EnqueuedAt and Retries are outbound tracking, meaningful only for
	// Messages placed in the pending or unanswered lists, and zero-valued
	// on freshly decoded inbound Messages. RequiresAck is set per variant
	// by the constructors, for inbound and outbound Messages alike.
	EnqueuedAt  time.Time
	Retries     int
	RequiresAck bool
}

// Ack builds an acknowledgement Message for device.
func Ack(device string) Message {
	return Message{Kind: KindAck, Device: device, Body: "ACK"}
}

// Awake builds the "device just woke up" announcement.
func Awake(device string) Message {
	return Message{Kind: KindAwake, Device: device, Body: "AWAKE"}
}

// Battery builds a battery query (voltage == "") or report.
func Battery(device, voltage string) Message {
	body := "BATT" + voltage
	return Message{Kind: KindBattery, Device: device, Body: body, Voltage: voltage}
}

// BatteryLow builds a low-battery warning. Requires an ACK.
func BatteryLow(device string) Message {
	return Message{Kind: KindBatteryLow, Device: device, Body: "BATTLOW", RequiresAck: true}
}

// FirmwareVersionMessage builds a firmware-version query (version == "") or report.
func FirmwareVersionMessage(device, version string) Message {
	body := "FVER" + version
	return Message{Kind: KindFirmwareVersion, Device: device, Body: body, FirmwareVersion: version}
}

// ProtocolVersionMessage builds a protocol-version query (version == "") or report.
func ProtocolVersionMessage(device, version string) Message {
	body := "APVER" + version
	return Message{Kind: KindProtocolVersion, Device: device, Body: body, ProtocolVersion: version}
}

// Hello builds the device-introduction Message.
func Hello(device string) Message {
	return Message{Kind: KindHello, Device: device, Body: "HELLO"}
}

// Reboot builds a reboot command or announcement. Per the wire table its
// decode does not itself require an ACK; a pending Reboot command is still
// retried until an Ack arrives, since the pending list's retry loop does
// not consult RequiresAck (see MatchesResponse).
func Reboot(device string) Message {
	return Message{Kind: KindReboot, Device: device, Body: "REBOOT"}
}

// Sleep builds a sleep command. Requires an ACK; its designated response
// is Sleeping, though an Ack from the same device also clears it (see
// MatchesResponse).
func Sleep(device string) Message {
	return Message{Kind: KindSleep, Device: device, Body: "SLEEP", RequiresAck: true}
}

// Sleeping builds the device's confirmation that it has gone to sleep.
func Sleeping(device string) Message {
	return Message{Kind: KindSleeping, Device: device, Body: "SLEEPING"}
}

// Started builds the device-has-booted announcement. Requires an ACK.
func Started(device string) Message {
	return Message{Kind: KindStarted, Device: device, Body: "STARTED", RequiresAck: true}
}

// Wake builds a wake command sent to a sleeping device.
func Wake(device string) Message {
	return Message{Kind: KindWake, Device: device, Body: "WAKE"}
}

// WakeCount builds a wake-count report: the device's wake cycle counter.
func WakeCount(device string, count int) Message {
	return Message{Kind: KindWakeCount, Device: device, Body: "WAKEC" + zeroPad3(count), Count: count}
}

// ButtonPress builds a button-press event.
func ButtonPress(device, label, input string) Message {
	return Message{Kind: KindButtonPress, Device: device, Body: label + input, Label: label, Input: input, RequiresAck: true}
}

// ButtonDoor builds a door-sensor event.
func ButtonDoor(device, label, input string, state bool) Message {
	return Message{Kind: KindButtonDoor, Device: device, Body: label + input + onOff(state), Label: label, Input: input, State: state, RequiresAck: true}
}

// ButtonSwitch builds a switch event.
func ButtonSwitch(device, label string, state bool) Message {
	return Message{Kind: KindButtonSwitch, Device: device, Body: label + onOff(state), Label: label, State: state, RequiresAck: true}
}

// Opaque builds a Message for a body that did not classify as any known
// variant. Per spec, unknown bodies require an ACK.
func Opaque(device, body string) Message {
	return Message{Kind: KindOpaque, Device: device, Body: body, RequiresAck: true}
}

func onOff(state bool) string {
	if state {
		return "ON"
	}
	return "OFF"
}

func zeroPad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
