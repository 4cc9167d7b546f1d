package probe

import (
	"math/rand"
	"strings"
)

// agent is one entry in the fixed six-browser pool from spec §4.4 step 1.
type agent struct {
	userAgent string
	chromium  bool
	platform  string // Sec-CH-UA-Platform value
	mobile    bool
}

var pool = []agent{
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		chromium:  true, platform: "Windows",
	},
	{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		chromium:  true, platform: "macOS",
	},
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edg/124.0.0.0",
		chromium:  true, platform: "Windows",
	},
	{
		userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
		chromium:  false, platform: "Linux",
	},
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
		chromium:  false, platform: "Windows",
	},
	{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		chromium:  false, platform: "macOS",
	},
}

func randomAgent() agent { return pool[rand.Intn(len(pool))] }

// secCHUABrand renders a plausible Sec-CH-UA header value for a Chromium UA,
// reading the browser name/major version out of the UA string itself.
func (a agent) secCHUABrand() string {
	brand := "Chromium"
	version := "124"
	switch {
	case strings.Contains(a.userAgent, "Edg/"):
		brand = "Microsoft Edge"
		if v := versionAfter(a.userAgent, "Edg/"); v != "" {
			version = v
		}
	case strings.Contains(a.userAgent, "Chrome/"):
		brand = "Google Chrome"
		if v := versionAfter(a.userAgent, "Chrome/"); v != "" {
			version = v
		}
	}
	return `"Not/A)Brand";v="8", "Chromium";v="` + version + `", "` + brand + `";v="` + version + `"`
}

func versionAfter(ua, marker string) string {
	i := strings.Index(ua, marker)
	if i < 0 {
		return ""
	}
	rest := ua[i+len(marker):]
	end := strings.IndexByte(rest, '.')
	if end < 0 {
		end = len(rest)
	}
	return rest[:end]
}
