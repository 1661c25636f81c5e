package hotkeys

import (
	"fmt"
	"strings"

	"github.com/1broseidon/wincycle/internal/command"
)

// Scancodes are PC set-1 make codes, the values Windows reports in
// KBDLLHOOKSTRUCT.scanCode. X11 keycodes are translated to them.
const (
	ScanEscape     uint32 = 0x01
	ScanTab        uint32 = 0x0f
	ScanLeftCtrl   uint32 = 0x1d
	ScanLeftShift  uint32 = 0x2a
	ScanGrave      uint32 = 0x29
	ScanRightShift uint32 = 0x36
	ScanAlt        uint32 = 0x38
	ScanLeftWin    uint32 = 0x5b
	ScanRightWin   uint32 = 0x5c
)

// Modifier names a binding's hold key.
type Modifier string

const (
	ModAlt  Modifier = "alt"
	ModCtrl Modifier = "ctrl"
	ModWin  Modifier = "win"
)

var modifierScancodes = map[Modifier][]uint32{
	ModAlt:  {ScanAlt},
	ModCtrl: {ScanLeftCtrl},
	ModWin:  {ScanLeftWin, ScanRightWin},
}

// ReverseScancodes are the keys that flip a step's direction.
var ReverseScancodes = []uint32{ScanLeftShift, ScanRightShift}

// keyNames lists the accepted accelerator names per US-layout set-1 scancode.
var keyNames = map[uint32][]string{
	0x01: {"esc", "escape"},
	0x02: {"1", "!"},
	0x03: {"2", "@"},
	0x04: {"3", "#"},
	0x05: {"4", "$"},
	0x06: {"5", "%"},
	0x07: {"6", "^"},
	0x08: {"7", "&"},
	0x09: {"8", "*"},
	0x0a: {"9", "("},
	0x0b: {"0", ")"},
	0x0c: {"-", "_", "oem_minus"},
	0x0d: {"+", "=", "oem_plus"},
	0x0e: {"bs", "backspace"},
	0x0f: {"tab"},
	0x10: {"q"},
	0x11: {"w"},
	0x12: {"e"},
	0x13: {"r"},
	0x14: {"t"},
	0x15: {"y"},
	0x16: {"u"},
	0x17: {"i"},
	0x18: {"o"},
	0x19: {"p"},
	0x1a: {"{", "[", "oem_4"},
	0x1b: {"}", "]", "oem_6"},
	0x1c: {"enter", "return"},
	0x1e: {"a"},
	0x1f: {"s"},
	0x20: {"d"},
	0x21: {"f"},
	0x22: {"g"},
	0x23: {"h"},
	0x24: {"j"},
	0x25: {"k"},
	0x26: {"l"},
	0x27: {":", ";", "oem_1"},
	0x28: {`"`, "'", "oem_7"},
	0x29: {"~", "`", "oem_3"},
	0x2b: {"|", "\\", "oem_5"},
	0x2c: {"z"},
	0x2d: {"x"},
	0x2e: {"c"},
	0x2f: {"v"},
	0x30: {"b"},
	0x31: {"n"},
	0x32: {"m"},
	0x33: {"<", ",", "oem_comma"},
	0x34: {">", ".", "oem_period"},
	0x35: {"?", "/", "oem_2"},
	0x39: {"space"},
	0x3a: {"capslock"},
	0x3b: {"f1"},
	0x3c: {"f2"},
	0x3d: {"f3"},
	0x3e: {"f4"},
	0x3f: {"f5"},
	0x40: {"f6"},
	0x41: {"f7"},
	0x42: {"f8"},
	0x43: {"f9"},
	0x44: {"f10"},
	0x45: {"numlock"},
	0x46: {"scrolllock"},
	0x47: {"home"},
	0x48: {"up"},
	0x49: {"pageup"},
	0x4b: {"left"},
	0x4d: {"right"},
	0x4f: {"end"},
	0x50: {"down"},
	0x51: {"pagedown"},
	0x52: {"insert"},
	0x53: {"delete"},
	0x54: {"prtsc", "printscreen"},
	0x56: {"oem_102"},
	0x57: {"f11"},
	0x58: {"f12"},
	0x5d: {"menu"},
}

var keyScancodes = func() map[string]uint32 {
	m := make(map[string]uint32)
	for code, names := range keyNames {
		for _, name := range names {
			m[name] = code
		}
	}
	return m
}()

// Binding is one parsed hotkey gesture. Bindings are immutable once built.
type Binding struct {
	ID          command.BindingID
	Modifier    Modifier
	Modifiers   []uint32
	Accelerator uint32
	// Picker bindings show a selection that Escape can cancel.
	Picker     bool
	normalized string
}

// String returns the canonical "modifier+key" form.
func (b Binding) String() string {
	return b.normalized
}

// IsModifier reports whether scancode is one of the binding's hold keys.
func (b Binding) IsModifier(scancode uint32) bool {
	for _, m := range b.Modifiers {
		if m == scancode {
			return true
		}
	}
	return false
}

// ParseBinding parses a hotkey such as "alt + `" or "win+tab". Case,
// whitespace and a "vk_" prefix are ignored.
func ParseBinding(id command.BindingID, hotkey string) (Binding, error) {
	value := strings.ToLower(hotkey)
	value = strings.Join(strings.Fields(value), "")
	value = strings.ReplaceAll(value, "vk_", "")

	modName, key, ok := strings.Cut(value, "+")
	if !ok || modName == "" || key == "" {
		return Binding{}, fmt.Errorf("invalid hotkey %q: expected <modifier> + <key>", hotkey)
	}

	mod := Modifier(modName)
	mods, ok := modifierScancodes[mod]
	if !ok {
		return Binding{}, fmt.Errorf("invalid hotkey %q: unknown modifier %q (use alt, ctrl or win)", hotkey, modName)
	}
	code, ok := keyScancodes[key]
	if !ok {
		return Binding{}, fmt.Errorf("invalid hotkey %q: unknown key %q", hotkey, key)
	}

	return Binding{
		ID:          id,
		Modifier:    mod,
		Modifiers:   append([]uint32(nil), mods...),
		Accelerator: code,
		normalized:  modName + "+" + key,
	}, nil
}
