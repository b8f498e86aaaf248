package device

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"
)

// keyboardCodes must all be advertised under EV_KEY; power buttons, lid
// switches and mice with a few key codes do not qualify
var keyboardCodes = []int{evdev.KEY_A, evdev.KEY_Z, evdev.KEY_SPACE}

// isKeyboard reports whether dev emits key events for letters and space
func isKeyboard(dev *evdev.InputDevice) bool {
	for typ, codes := range dev.Capabilities {
		if typ.Type != evdev.EV_KEY {
			continue
		}
		have := make(map[int]bool, len(codes))
		for _, c := range codes {
			have[c.Code] = true
		}
		for _, want := range keyboardCodes {
			if !have[want] {
				return false
			}
		}
		return true
	}
	return false
}

// nodeSeat resolves the seat of an event node ("event3") through its sysfs
// device number and the udev database
func nodeSeat(opts Options, node string) string {
	dev, err := os.ReadFile(filepath.Join(opts.SysDir, node, "dev"))
	if err != nil {
		return DefaultSeat
	}
	if seat := udevSeat(opts.UdevDataDir, strings.TrimSpace(string(dev))); seat != "" {
		return seat
	}
	return DefaultSeat
}

// udevSeat looks up ID_SEAT in the udev database entry for a character
// device "major:minor"; empty when the entry or property is missing
func udevSeat(dataDir, majorMinor string) string {
	if majorMinor == "" {
		return ""
	}
	f, err := os.Open(filepath.Join(dataDir, "c"+majorMinor))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if v, ok := strings.CutPrefix(scanner.Text(), "E:ID_SEAT="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
