package models

// Language selects the locale for UI strings and generated text.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageZH Language = "ZH"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEN || l == LanguageZH
}

// Page is a view of the mobile client.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageScan      Page = "scan"
	PageUpload    Page = "upload"
	PageAnalysis  Page = "analysis"
	PageReport    Page = "report"
	PageSettings  Page = "settings"
)

var validPages = map[Page]bool{
	PageDashboard: true,
	PageScan:      true,
	PageUpload:    true,
	PageAnalysis:  true,
	PageReport:    true,
	PageSettings:  true,
}

// Valid reports whether p names a known page.
func (p Page) Valid() bool {
	return validPages[p]
}
