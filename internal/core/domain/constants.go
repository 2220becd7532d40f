package domain

import "time"

// SearchEngine is a selectable search provider. URL holds a %s placeholder
// for the query.
type SearchEngine struct {
	URL         string `json:"url"`
	Recommended bool   `json:"recommended"`
}

// Themes maps theme keys to their display names.
var Themes = map[string]string{
	"light": "Hell",
}

var Grades = []string{"-", "1", "2", "3", "4", "5", "6"}

var Languages = []string{"de", "en", "fr", "it", "es", "-"}

var SearchEngines = map[string]SearchEngine{
	"DuckDuckGo":        {URL: "https://duckduckgo.com/?q=%s", Recommended: true},
	"BraveSearch":       {URL: "https://search.brave.com/search?q=%s", Recommended: true},
	"Ecosia":            {URL: "https://www.ecosia.org/search?method=index&q=%s", Recommended: true},
	"Startpage":         {URL: "https://www.startpage.com/sp/search?query=%s", Recommended: true},
	"SearXNG":           {URL: "https://search.gcomm.ch/search?q=%s&language=de-CH", Recommended: true},
	"WolframAlpha":      {URL: "https://www.wolframalpha.com/input?i=%s", Recommended: true},
	"Google":            {URL: "https://www.google.com/search?q=%s", Recommended: false},
	"Bing":              {URL: "https://www.bing.com/search?q=%s", Recommended: false},
	"DuckDuckGo[Lite]":  {URL: "https://lite.duckduckgo.com/lite/?q=%s", Recommended: true},
	"DuckDuckGo[TOR]":   {URL: "https://duckduckgogg42xjoc72x3sjasowoarfbgcmvfimaftt6twagswzczad.onion/?q=%s", Recommended: true},
	"Brave Search[TOR]": {URL: "https://search.brave4u7jddbv7cyviptqjc7jusxh72uik7zt6adtckl5f4nwy2v72qd.onion/search?q=%s", Recommended: true},
	"SearXNG[TOR]":      {URL: "http://searx3aolosaf3urwnhpynlhuokqsgz47si4pzz5hvb7uuzyjncl2tid.onion/search?q=%s", Recommended: true},
}

const (
	DefaultTheme        = "light"
	DefaultSearchEngine = "Startpage"
	DefaultGrade        = "-"
	DefaultClass        = "-"
)

// NeverPaid is the payment expiry of accounts that never bought premium.
var NeverPaid = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ListDelimiter joins classes and ban reasons in flat storage; class names
// must not contain it.
const ListDelimiter = ", "

// FavoriteSeparator splits a favorite line into URL and label.
const FavoriteSeparator = " | "

// DefaultFavorites seeds the favorites of every new account.
var DefaultFavorites = []string{
	"https://schulnetz.lu.ch/ksalp | Schulnetz",
	"https://outlook.office.com/mail/ | @sluz Mail",
	"https://microsoft365.com/ | Microsoft 365",
	"https://ksalpenquai.lu.ch/ | Kantonsschule Alpenquai Luzern",
	"https://ksalpenquai.lu.ch/service/so | Schüler*innen-organisation (SO)",
	"https://duden.de/ | Duden",
	"https://mentor.duden.de/ | Duden Mentor",
	"https://deepl.com/translator | DeepL Übersetzer",
	"https://www.wolframalpha.com/ | WolframAlpha Rechner",
	"https://www.geo.lu.ch/map/basisplan | Karte Luzern",
	"https://openstreetmap.org | Karte International",
}
