//go:build linux

package hotkeys

import "github.com/BurntSushi/xgb/xproto"

// X11 keycodes are evdev codes offset by 8. Evdev matches set-1 for the
// main block; the extended keys below differ.
const evdevOffset = 8

var evdevToScancode = map[uint32]uint32{
	97:  ScanLeftCtrl, // right ctrl
	99:  0x54,         // sysrq
	100: ScanAlt,      // right alt
	102: 0x47,         // home
	103: 0x48,         // up
	104: 0x49,         // page up
	105: 0x4b,         // left
	106: 0x4d,         // right
	107: 0x4f,         // end
	108: 0x50,         // down
	109: 0x51,         // page down
	110: 0x52,         // insert
	111: 0x53,         // delete
	125: ScanLeftWin,
	126: ScanRightWin,
	127: 0x5d, // compose/menu
}

var scancodeToEvdev = func() map[uint32]uint32 {
	m := make(map[uint32]uint32, len(evdevToScancode))
	for evdev, sc := range evdevToScancode {
		// Right ctrl/alt share a scancode with the left keys.
		if sc == ScanLeftCtrl || sc == ScanAlt {
			continue
		}
		m[sc] = evdev
	}
	return m
}()

func scancodeFromKeycode(keycode xproto.Keycode) uint32 {
	evdev := uint32(keycode) - evdevOffset
	if sc, ok := evdevToScancode[evdev]; ok {
		return sc
	}
	return evdev
}

func keycodeFromScancode(scancode uint32) (xproto.Keycode, bool) {
	evdev, ok := scancodeToEvdev[scancode]
	if !ok {
		evdev = scancode
	}
	keycode := evdev + evdevOffset
	if keycode > 255 {
		return 0, false
	}
	return xproto.Keycode(keycode), true
}
