package utils

import (
	"strings"      // Cookie value splitting
	"unicode/utf8" // Message truncation

	"github.com/gin-gonic/gin" // Gin web framework
)

// Flash categories
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const flashCookie = "flash"

// maxFlashBytes keeps the escaped cookie under the 4096 byte browser limit
const maxFlashBytes = 1200

// Flash is a one-shot notice shown on the next rendered page
type Flash struct {
	Category string
	Message  string
}

// SetFlash stores a notice for the next request
func SetFlash(c *gin.Context, category, message string) {
	message = truncate(message, maxFlashBytes)
	c.SetCookie(flashCookie, category+"|"+message, 60, "/", "", false, true)
}

// PopFlash returns and clears the pending notice, if any
func PopFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true) // Clear after reading
	category, message, ok := strings.Cut(raw, "|")
	if !ok {
		return &Flash{Category: FlashInfo, Message: raw}
	}
	return &Flash{Category: category, Message: message}
}

// truncate cuts s to at most n bytes on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
