package inference

import (
	"regexp"
	"runtime"
)

var mobileUA = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// IsMobileUserAgent reports whether ua looks like a phone or tablet browser.
func IsMobileUserAgent(ua string) bool {
	return ua != "" && mobileUA.MatchString(ua)
}

// hostConstrained is swapped in tests.
var hostConstrained = isConstrainedHost

// isConstrainedHost approximates a device that should prefer the graph
// runtime: mobile operating systems, 32-bit targets and small CPU counts.
func isConstrainedHost() bool {
	switch runtime.GOOS {
	case "android", "ios":
		return true
	}
	switch runtime.GOARCH {
	case "arm", "386", "mips", "mipsle":
		return true
	}
	return runtime.NumCPU() <= 2
}

// constrained resolves the device class for candidate ordering.
func (s *Service) constrained() bool {
	switch s.device {
	case DeviceConstrained:
		return true
	case DeviceStandard:
		return false
	}
	return hostConstrained()
}

// lightModeActive reports whether model loading should be skipped.
func (s *Service) lightModeActive() bool {
	return s.lightMode || IsMobileUserAgent(s.userAgent)
}
