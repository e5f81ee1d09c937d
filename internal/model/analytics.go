package model

// ResponseTimes summarizes reply latency in hours. All fields are zero
// when no reply pairs were found.
type ResponseTimes struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// HourCount is the number of messages sent in a given hour of day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// ContactCount is the number of messages received from a sender.
type ContactCount struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

// DayCount is the number of messages on a calendar day (YYYY-MM-DD).
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// CommunicationPatterns holds the volume views computed over a message set.
// PeakHours and FrequentContacts are truncated top-N views; DailyVolume keeps
// every day in chronological order.
type CommunicationPatterns struct {
	PeakHours        []HourCount    `json:"peak_hours"`
	FrequentContacts []ContactCount `json:"frequent_contacts"`
	DailyVolume      []DayCount     `json:"daily_volume"`
}
