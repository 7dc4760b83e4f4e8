package wininput

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	vkBACK     uint16 = 0x08
	vkTAB      uint16 = 0x09
	vkRETURN   uint16 = 0x0D
	vkSHIFT    uint16 = 0x10
	vkCONTROL  uint16 = 0x11
	vkMENU     uint16 = 0x12
	vkPAUSE    uint16 = 0x13
	vkCAPITAL  uint16 = 0x14
	vkESCAPE   uint16 = 0x1B
	vkSPACE    uint16 = 0x20
	vkPRIOR    uint16 = 0x21
	vkNEXT     uint16 = 0x22
	vkEND      uint16 = 0x23
	vkHOME     uint16 = 0x24
	vkLEFT     uint16 = 0x25
	vkUP       uint16 = 0x26
	vkRIGHT    uint16 = 0x27
	vkDOWN     uint16 = 0x28
	vkSNAPSHOT uint16 = 0x2C
	vkINSERT   uint16 = 0x2D
	vkDELETE   uint16 = 0x2E
	vk0        uint16 = 0x30
	vkA        uint16 = 0x41
	vkLWIN     uint16 = 0x5B
	vkAPPS     uint16 = 0x5D
	vkF1       uint16 = 0x70

	vkOEM1      uint16 = 0xBA
	vkOEMPLUS   uint16 = 0xBB
	vkOEMCOMMA  uint16 = 0xBC
	vkOEMMINUS  uint16 = 0xBD
	vkOEMPERIOD uint16 = 0xBE
	vkOEM2      uint16 = 0xBF
	vkOEM3      uint16 = 0xC0
	vkOEM4      uint16 = 0xDB
	vkOEM5      uint16 = 0xDC
	vkOEM6      uint16 = 0xDD
	vkOEM7      uint16 = 0xDE
)

var nameToVK = map[string]uint16{
	"ctrl":        vkCONTROL,
	"control":     vkCONTROL,
	"alt":         vkMENU,
	"shift":       vkSHIFT,
	"win":         vkLWIN,
	"super":       vkLWIN,
	"enter":       vkRETURN,
	"return":      vkRETURN,
	"esc":         vkESCAPE,
	"escape":      vkESCAPE,
	"tab":         vkTAB,
	"space":       vkSPACE,
	"backspace":   vkBACK,
	"delete":      vkDELETE,
	"del":         vkDELETE,
	"insert":      vkINSERT,
	"home":        vkHOME,
	"end":         vkEND,
	"pageup":      vkPRIOR,
	"pagedown":    vkNEXT,
	"up":          vkUP,
	"down":        vkDOWN,
	"left":        vkLEFT,
	"right":       vkRIGHT,
	"menu":        vkAPPS,
	"pause":       vkPAUSE,
	"capslock":    vkCAPITAL,
	"printscreen": vkSNAPSHOT,

	";": vkOEM1, "=": vkOEMPLUS, ",": vkOEMCOMMA, "-": vkOEMMINUS, ".": vkOEMPERIOD,
	"/": vkOEM2, "`": vkOEM3, "[": vkOEM4, "\\": vkOEM5, "]": vkOEM6, "'": vkOEM7,
}

// VKForKey maps a dispatcher key name to a Windows virtual-key code.
func VKForKey(name string) (uint16, bool) {
	token := strings.ToLower(strings.TrimSpace(name))
	if vk, ok := nameToVK[token]; ok {
		return vk, true
	}
	if len(token) == 1 {
		c := token[0]
		switch {
		case c >= 'a' && c <= 'z':
			return vkA + uint16(c-'a'), true
		case c >= '0' && c <= '9':
			return vk0 + uint16(c-'0'), true
		}
	}
	if strings.HasPrefix(token, "f") && len(token) > 1 {
		if n, err := strconv.Atoi(token[1:]); err == nil && n >= 1 && n <= 24 {
			return vkF1 + uint16(n-1), true
		}
	}
	return 0, false
}

func isExtendedVK(vk uint16) bool {
	switch vk {
	case vkDELETE, vkINSERT, vkHOME, vkEND, vkPRIOR, vkNEXT,
		vkLEFT, vkUP, vkRIGHT, vkDOWN, vkLWIN, vkAPPS, vkSNAPSHOT:
		return true
	default:
		return false
	}
}

// unicodeUnits returns the UTF-16 code units sent with KEYEVENTF_UNICODE.
// Line breaks are not delivered as characters by most controls, so they are
// reported as the Return key instead.
func unicodeUnits(ch rune) (units []uint16, vk uint16) {
	switch ch {
	case '\n', '\r':
		return nil, vkRETURN
	case '\t':
		return nil, vkTAB
	}
	return utf16.Encode([]rune{ch}), 0
}
