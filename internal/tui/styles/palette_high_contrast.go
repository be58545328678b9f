package styles

// HighContrastTheme trades subtlety for legibility on washed-out terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	BorderStyle: "sharp",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Message: MessageColors{
		User:  "51",
		AI:    "231",
		Error: "196",
	},
	Confidence: ConfidenceColors{
		High:   "46",
		Medium: "226",
		Low:    "196",
	},
	Chrome: ChromeColors{
		Header:       "21",
		Footer:       "18",
		SelectedItem: "51",
	},
}
