package styles

// DefaultTheme is the baseline dark palette for the HUMINT TUI.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Message: MessageColors{
		User:  "81",
		AI:    "252",
		Error: "203",
	},
	Confidence: ConfidenceColors{
		High:   "41",
		Medium: "220",
		Low:    "203",
	},
	Chrome: ChromeColors{
		Header:       "111",
		Footer:       "110",
		SelectedItem: "75",
	},
}
