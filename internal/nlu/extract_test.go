package nlu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railvoice-backend/internal/types"
)

func TestExtractCities(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		source  string
		dest    string
	}{
		{"both in order", "trains from mumbai to delhi", "Mumbai", "Delhi"},
		{"order of appearance", "delhi to mumbai", "Delhi", "Mumbai"},
		{"aliases", "bombay to calcutta please", "Mumbai", "Kolkata"},
		{"multiword alias", "book new delhi to pune", "Delhi", "Pune"},
		{"single after from", "from bangalore", "Bangalore", ""},
		{"single is destination", "i want to go to chennai", "", "Chennai"},
		{"bare city is destination", "hyderabad", "", "Hyderabad"},
		{"no cities", "book me a train", "", ""},
		{"substring is not a city", "pun intended", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := ExtractCities(tt.text)
			assert.Equal(t, tt.source, src)
			assert.Equal(t, tt.dest, dst)
		})
	}
}

func TestExtractDate(t *testing.T) {
	// 2026-03-10 is a Tuesday.
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"default is today", "trains from mumbai to delhi", today},
		{"today", "travel today", today},
		{"tomorrow", "leaving tomorrow", today.AddDate(0, 0, 1)},
		{"day after tomorrow", "day after tomorrow", today.AddDate(0, 0, 2)},
		{"day after beats tomorrow", "the day after tomorrow please", today.AddDate(0, 0, 2)},
		{"weekday ahead", "on friday", time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC)},
		{"same weekday means next week", "on tuesday", time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC)},
		{"two weekdays resolve to the earliest listed", "monday or tuesday", time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)},
		{"in n days", "in 5 days", today.AddDate(0, 0, 5)},
		{"day month", "on 15th march", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"month day", "on march 22", time.Date(2026, time.March, 22, 0, 0, 0, 0, time.UTC)},
		{"invalid literal falls back", "on 31st february", today},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDate(tt.text, now))
		})
	}
}

func TestFindDate(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

	_, ok := FindDate("trains from mumbai to delhi", now)
	assert.False(t, ok, "a dateless utterance must not report a date")

	d, ok := FindDate("tomorrow", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), d)
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"book 1", 1, true},
		{"the second one", 2, true},
		{"take number 6", 6, true},
		{"option three", 3, true},
		{"book 7", 0, false},
		{"no choice here", 0, false},
	}
	for _, tt := range tests {
		n, ok := ExtractNumber(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, n, tt.text)
	}
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"i am 25", 25, true},
		{"25", 25, true},
		{"twenty five", 25, true},
		{"forty", 40, true},
		{"eighteen", 18, true},
		{"age is 121", 0, false},
		{"no age here", 0, false},
	}
	for _, tt := range tests {
		n, ok := ExtractAge(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, n, tt.text)
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"my name is rahul sharma", "Rahul Sharma", true},
		{"i am priya", "Priya", true},
		{"call me anil", "Anil", true},
		{"rahul sharma", "Rahul Sharma", true},
		{"i am 25", "", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractName(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"9876543210", "9876543210", true},
		{"my number is 98765 43210", "9876543210", true},
		{"nine eight seven six five four three two one zero", "9876543210", true},
		{"98765", "", false},
		{"98765432101", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractPhone(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestExtractPNR(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"check pnr 1234567890", "1234567890", true},
		{"status of 12345 67890", "1234567890", true},
		{"one two three four five six seven eight nine zero", "1234567890", true},
		{"12345678901 is too long", "", false},
		{"123456789", "", false},
		{"no digits", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractPNR(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestExtractDigitsHomophones(t *testing.T) {
	digits := ExtractDigits("to for tree won ate niner")
	assert.Equal(t, []string{"2", "4", "3", "1", "8", "9"}, digits)

	digits = ExtractDigits("123 then oh five")
	assert.Equal(t, []string{"1", "2", "3", "0", "5"}, digits)

	assert.Empty(t, ExtractDigits("nothing numeric here"))
}

func TestExtractGender(t *testing.T) {
	g, ok := ExtractGender("male")
	require.True(t, ok)
	assert.Equal(t, types.GenderMale, g)

	// "female" must not word-match "male".
	g, ok = ExtractGender("i am female")
	require.True(t, ok)
	assert.Equal(t, types.GenderFemale, g)

	g, ok = ExtractGender("other")
	require.True(t, ok)
	assert.Equal(t, types.GenderOther, g)

	_, ok = ExtractGender("none of these")
	assert.False(t, ok)
}

func TestExtractClass(t *testing.T) {
	tests := []struct {
		text string
		want types.TravelClass
		ok   bool
	}{
		{"sleeper please", types.ClassSleeper, true},
		{"ac 2", types.ClassAC2, true},
		{"third tier", types.ClassAC3, true},
		{"first class", types.ClassAC1, true},
		{"chair car", types.ClassChairCar, true},
		{"just ac", types.ClassAC3, true},
		{"economy", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractClass(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestIsTicketCancellation(t *testing.T) {
	assert.True(t, IsTicketCancellation("cancel my ticket"))
	assert.True(t, IsTicketCancellation("delete my booking"))
	assert.True(t, IsTicketCancellation("cancel 1234567890"))
	// A bare abort keyword is not a ticket cancellation.
	assert.False(t, IsTicketCancellation("cancel"))
	assert.False(t, IsTicketCancellation("cancel that"))
	assert.False(t, IsTicketCancellation("my booking"))
}

func TestAffirmativeNegativeAbort(t *testing.T) {
	assert.True(t, IsAffirmative("yes please"))
	assert.True(t, IsAffirmative("okay"))
	assert.False(t, IsAffirmative("nope"))

	assert.True(t, IsNegative("no"))
	assert.True(t, IsNegative("wrong"))
	assert.False(t, IsNegative("yes"))

	assert.True(t, IsAbort("stop"))
	assert.True(t, IsAbort("forget it"))
	assert.False(t, IsAbort("keep going"))
}
