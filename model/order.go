package model

import "strings"

type SideType string

// signal side
const (
	SideTypeBuy  SideType = "buy"
	SideTypeSell SideType = "sell"
)

// MarketPrefix : exchange prefix for a bare six digit code
func MarketPrefix(code string) string {
	switch {
	case strings.HasPrefix(code, "6"), strings.HasPrefix(code, "8"):
		return "sh"
	case strings.HasPrefix(code, "3"), strings.HasPrefix(code, "0"), strings.HasPrefix(code, "1"):
		return "sz"
	case strings.HasPrefix(code, "4"), strings.HasPrefix(code, "9"):
		return "bj"
	default:
		return "sh"
	}
}

// NormalizeCode : "600000" -> "sh.600000", codes already carrying a prefix pass through
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.Contains(code, ".") {
		return code
	}
	return MarketPrefix(code) + "." + code
}
