package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/chromedp/chromedp"
)

var (
	ErrClosed          = errors.New("browser connection closed")
	ErrElementNotFound = errors.New("element not found")
	ErrAttrIndex       = errors.New("attribute index out of range")
	ErrDownloadTimeout = errors.New("download timed out")
	ErrDownloadFailed  = errors.New("download canceled by browser")
)

var closedMarkers = []string{
	"websocket: close",
	"use of closed network connection",
	"connection reset by peer",
	"broken pipe",
	"target closed",
}

// IsClosed reports whether err means the browser transport is gone, as
// opposed to a failure of one particular request.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, chromedp.ErrInvalidContext) ||
		errors.Is(err, chromedp.ErrChannelClosed) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range closedMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}

	return false
}
