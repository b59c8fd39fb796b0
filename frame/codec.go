package frame

import (
	"fmt"
	"regexp"
	"strings"
)

// Wire format constants.
const (
	FrameLen  = 12
	StartByte = 'a'
	Fill      = '-'

	// Broadcast is the reserved device identifier for broadcast/unknown.
	Broadcast = "--"
)

// Encode renders m as a 12-byte LLAP frame. It fails if Device is not
// exactly 2 ASCII bytes or the assembled start+device+body prefix would
// not fit within FrameLen.
func Encode(m Message) (string, error) {
	if len(m.Device) != 2 {
		return "", fmt.Errorf("frame: device %q must be exactly 2 bytes", m.Device)
	}
	prefix := string(StartByte) + m.Device + m.Body
	if len(prefix) > FrameLen {
		return "", fmt.Errorf("frame: body %q too long for device %q (frame would be %d bytes)", m.Body, m.Device, len(prefix))
	}
	return prefix + strings.Repeat(string(Fill), FrameLen-len(prefix)), nil
}

var (
	batteryPattern = regexp.MustCompile(`^(\d\.\d\d)$`)
	fverPattern    = regexp.MustCompile(`^(\d\.\d\d.)$`)
	apverPattern   = regexp.MustCompile(`^(\d\.\d\d?)$`)
	buttonDoor     = regexp.MustCompile(`^(.*)(A|B)(ON|OFF)$`)
	buttonSwitch   = regexp.MustCompile(`^(.*)(ON|OFF)$`)
	buttonPress    = regexp.MustCompile(`^(.*)(A|B)$`)
	wakeCount      = regexp.MustCompile(`^WAKEC(\d{3})$`)
)

// Decode parses a 12-byte frame into a Message. It returns ok == false if
// the frame is malformed (wrong length or bad start byte) — the caller
// must treat that as "unparseable", not as an error value, since
// resynchronisation (not error propagation) is the recovery path.
//
// Pattern matching is most-specific-first: ButtonDoor is tried before
// ButtonSwitch before ButtonPress, since a door body like "doorAON"
// would otherwise also match the looser switch pattern.
func Decode(raw string) (Message, bool) {
	if len(raw) != FrameLen {
		return Message{}, false
	}
	if raw[0] != StartByte {
		return Message{}, false
	}

	device := raw[1:3]
	body := strings.TrimRight(raw[3:], string(Fill))

	switch {
	case body == "ACK":
		return Ack(device), true
	case body == "AWAKE":
		return Awake(device), true
	case body == "HELLO":
		return Hello(device), true
	case body == "REBOOT":
		return Reboot(device), true
	case body == "SLEEP":
		return Sleep(device), true
	case body == "SLEEPING":
		return Sleeping(device), true
	case body == "STARTED":
		return Started(device), true
	case body == "WAKE":
		return Wake(device), true
	}

	if body == "BATTLOW" {
		return BatteryLow(device), true
	}
	if strings.HasPrefix(body, "BATT") {
		if body == "BATT" {
			return Battery(device, ""), true
		}
		if m := batteryPattern.FindStringSubmatch(body[len("BATT"):]); m != nil {
			return Battery(device, m[1]), true
		}
	}

	if strings.HasPrefix(body, "FVER") {
		if body == "FVER" {
			return FirmwareVersionMessage(device, ""), true
		}
		if m := fverPattern.FindStringSubmatch(body[len("FVER"):]); m != nil {
			return FirmwareVersionMessage(device, m[1]), true
		}
	}

	if strings.HasPrefix(body, "APVER") {
		if body == "APVER" {
			return ProtocolVersionMessage(device, ""), true
		}
		if m := apverPattern.FindStringSubmatch(body[len("APVER"):]); m != nil {
			return ProtocolVersionMessage(device, m[1]), true
		}
	}

	if m := wakeCount.FindStringSubmatch(body); m != nil {
		count := 0
		for _, c := range m[1] {
			count = count*10 + int(c-'0')
		}
		return WakeCount(device, count), true
	}

	if m := buttonDoor.FindStringSubmatch(body); m != nil {
		return ButtonDoor(device, m[1], m[2], m[3] == "ON"), true
	}
	if m := buttonSwitch.FindStringSubmatch(body); m != nil {
		return ButtonSwitch(device, m[1], m[2] == "ON"), true
	}
	if m := buttonPress.FindStringSubmatch(body); m != nil {
		return ButtonPress(device, m[1], m[2]), true
	}

	return Opaque(device, body), true
}
