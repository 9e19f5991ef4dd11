package dashboard

import (
	"os"
	"strings"
)

// envEChartsCDN overrides the default assets host (e.g., to point at a self-hosted bucket).
const envEChartsCDN = "GO_DASHBOARD_ECHARTS_CDN"

// ResolveEChartsAssetsHost returns the configured host, then GO_DASHBOARD_ECHARTS_CDN, then the public CDN.
func ResolveEChartsAssetsHost(configured string) string {
	if host := strings.TrimSpace(configured); host != "" {
		return ensureTrailingSlash(host)
	}
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

// EChartsScriptURLs lists the scripts a page needs for the given theme.
func EChartsScriptURLs(host, theme string) []string {
	host = ResolveEChartsAssetsHost(host)
	urls := []string{host + "echarts.min.js"}
	if theme != "" && theme != "white" {
		urls = append(urls, host+"themes/"+theme+".js")
	}
	return urls
}
