// Package quotes serves the built-in encouragement quotes: one per day,
// chosen deterministically from the date, plus the full set for browsing.
package quotes

import "hash/fnv"

// Quote is one encouragement entry.
type Quote struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

var quotes = []Quote{
	{ID: "q1", Text: "One day at a time.", Author: ""},
	{ID: "q2", Text: "You can't go back and change the beginning, but you can start where you are and change the ending.", Author: "C.S. Lewis"},
	{ID: "q3", Text: "Rock bottom became the solid foundation on which I rebuilt my life.", Author: "J.K. Rowling"},
	{ID: "q4", Text: "The chains of habit are too light to be felt until they are too heavy to be broken.", Author: "Warren Buffett"},
	{ID: "q5", Text: "Recovery is not a race. You don't have to feel guilty if it takes you longer than you thought it would.", Author: ""},
	{ID: "q6", Text: "Fall seven times, stand up eight.", Author: "Japanese proverb"},
	{ID: "q7", Text: "It does not matter how slowly you go as long as you do not stop.", Author: "Confucius"},
	{ID: "q8", Text: "The best time to plant a tree was twenty years ago. The second best time is now.", Author: ""},
	{ID: "q9", Text: "Courage isn't having the strength to go on; it is going on when you don't have strength.", Author: "Napoleon Bonaparte"},
	{ID: "q10", Text: "Every moment is a fresh beginning.", Author: "T.S. Eliot"},
	{ID: "q11", Text: "You are not your relapse. You are your recovery.", Author: ""},
	{ID: "q12", Text: "What lies behind us and what lies before us are tiny matters compared to what lies within us.", Author: "Ralph Waldo Emerson"},
}

// All returns the full quote set in stable order.
func All() []Quote {
	out := make([]Quote, len(quotes))
	copy(out, quotes)
	return out
}

// ByID returns the quote with the given ID, or false if unknown.
func ByID(id string) (Quote, bool) {
	for _, q := range quotes {
		if q.ID == id {
			return q, true
		}
	}
	return Quote{}, false
}

// QuoteOfDay picks the quote for a YYYY-MM-DD date string. The same date
// always yields the same quote.
func QuoteOfDay(date string) Quote {
	h := fnv.New32a()
	h.Write([]byte(date))
	return quotes[int(h.Sum32())%len(quotes)]
}
