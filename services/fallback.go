package services

import "time"

// FallbackWords is used when the word API is unavailable. The order is part
// of the contract: a given day of the year always maps to the same word.
var FallbackWords = []string{
	"ASSET", "BRAVE", "CHARM", "DREAM", "EARTH", "FAITH", "GLORY", "HAPPY", "IDEAL", "JOYCE",
	"KNIFE", "LIGHT", "MAGIC", "NIGHT", "OCEAN", "PEACE", "QUIET", "RADIO", "SPACE", "TRUTH",
	"UNITY", "VOICE", "WATER", "YOUTH", "ZEBRA",
}

// FallbackWord picks a word from the day of the year (1 for January 1st).
func FallbackWord(day time.Time) string {
	return FallbackWords[day.YearDay()%len(FallbackWords)]
}
