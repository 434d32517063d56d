// modules/debugtoolbar/useragent.go
//
// User-Agent parsing for the request panel.  Isolates the uasurfer API so
// the rest of the package never sees its enums.

package debugtoolbar

import (
	"fmt"
	"strconv"

	surfer "github.com/avct/uasurfer"
)

// UserAgent is the parsed User-Agent header.
//
// Example (Chrome on macOS):
//
//	Browser   "BrowserChrome"
//	Version   "125.0.6422"
//	OS        "OSMacOSX"
//	OSVersion "14.4"
//	Device    "Desktop"
//
// Device is one of "Desktop", "Mobile", "Tablet", or "Other".
type UserAgent struct {
	Raw       string `json:"raw"`
	Browser   string `json:"browser"`
	Version   string `json:"version,omitempty"`
	OS        string `json:"os"`
	OSVersion string `json:"os_version,omitempty"`
	Platform  string `json:"platform"`
	Device    string `json:"device"`
	IsBot     bool   `json:"is_bot"`
}

func parseUserAgent(raw string) UserAgent {
	ua := surfer.Parse(raw)

	out := UserAgent{
		Raw:       raw,
		Browser:   ua.Browser.Name.String(),
		Version:   versionString(ua.Browser.Version),
		OS:        ua.OS.Name.String(),
		OSVersion: versionString(ua.OS.Version),
		Platform:  ua.OS.Platform.String(),
		IsBot:     ua.IsBot(),
	}

	switch ua.DeviceType {
	case surfer.DeviceComputer:
		out.Device = "Desktop"
	case surfer.DeviceTablet:
		out.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionString renders a version while trimming trailing zeros, e.g.
// 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}
