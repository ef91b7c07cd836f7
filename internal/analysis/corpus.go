package analysis

import (
	"fmt"
)

// ReferenceCorpus maps words to their relative frequency in a fixed reference
// sample of English. Rates are fractions of total corpus tokens.
type ReferenceCorpus struct {
	id    string
	rates map[string]float64
}

// NewReferenceCorpus loads the corpus with the given identifier.
func NewReferenceCorpus(id string) (*ReferenceCorpus, error) {
	switch id {
	case "", "general_english":
		return &ReferenceCorpus{id: "general_english", rates: generalEnglishRates}, nil
	default:
		return nil, fmt.Errorf("unknown reference corpus: %s", id)
	}
}

// ID returns the corpus identifier.
func (c *ReferenceCorpus) ID() string { return c.id }

// Rate returns the relative frequency of the word, or 0 when the word is not
// in the corpus.
func (c *ReferenceCorpus) Rate(word string) float64 {
	return c.rates[word]
}

// Contains reports whether the word appears in the corpus.
func (c *ReferenceCorpus) Contains(word string) bool {
	_, ok := c.rates[word]
	return ok
}

// Words iterates the corpus entries.
func (c *ReferenceCorpus) Words(fn func(word string, rate float64)) {
	for w, r := range c.rates {
		fn(w, r)
	}
}

// generalEnglishRates approximates word rates in general written English.
// Function-word rates follow standard frequency tables; content-word rates
// are order-of-magnitude estimates sufficient for log-likelihood contrasts.
var generalEnglishRates = map[string]float64{
	// function words
	"the": 0.0700, "be": 0.0400, "to": 0.0400, "of": 0.0300, "and": 0.0300,
	"a": 0.0300, "in": 0.0200, "that": 0.0150, "have": 0.0150, "i": 0.0150,
	"it": 0.0150, "for": 0.0150, "not": 0.0120, "on": 0.0120, "with": 0.0120,
	"as": 0.0110, "you": 0.0110, "do": 0.0100, "at": 0.0100, "this": 0.0100,
	"but": 0.0090, "his": 0.0090, "by": 0.0090, "from": 0.0080, "they": 0.0080,
	"we": 0.0080, "say": 0.0080, "her": 0.0080, "she": 0.0080, "or": 0.0080,
	"an": 0.0070, "will": 0.0070, "my": 0.0070, "one": 0.0070, "all": 0.0070,
	"would": 0.0060, "there": 0.0060, "their": 0.0060, "what": 0.0060,
	"so": 0.0060, "up": 0.0060, "out": 0.0060, "if": 0.0060, "about": 0.0060,
	"who": 0.0050, "which": 0.0050, "me": 0.0050, "when": 0.0050, "can": 0.0050,
	// common content words
	"time": 0.0018, "people": 0.0016, "year": 0.0014, "way": 0.0013,
	"day": 0.0012, "man": 0.0011, "thing": 0.0011, "woman": 0.0010,
	"life": 0.0010, "child": 0.0009, "world": 0.0009, "school": 0.0008,
	"state": 0.0008, "family": 0.0008, "student": 0.0007, "group": 0.0007,
	"country": 0.0007, "problem": 0.0007, "hand": 0.0007, "part": 0.0007,
	"place": 0.0007, "case": 0.0006, "week": 0.0006, "company": 0.0006,
	"system": 0.0006, "program": 0.0006, "question": 0.0006, "work": 0.0006,
	"government": 0.0006, "number": 0.0006, "night": 0.0005, "point": 0.0005,
	"home": 0.0005, "water": 0.0005, "room": 0.0005, "mother": 0.0005,
	"area": 0.0005, "money": 0.0005, "story": 0.0005, "fact": 0.0005,
	"month": 0.0005, "right": 0.0005, "study": 0.0004, "book": 0.0004,
	"eye": 0.0004, "job": 0.0004, "word": 0.0004, "business": 0.0004,
	"issue": 0.0004, "side": 0.0004, "kind": 0.0004, "head": 0.0004,
	"house": 0.0004, "friend": 0.0004, "father": 0.0004, "power": 0.0004,
	"hour": 0.0004, "game": 0.0004, "line": 0.0004, "end": 0.0004,
	"member": 0.0004, "law": 0.0004, "car": 0.0004, "city": 0.0004,
	"community": 0.0003, "name": 0.0003, "president": 0.0003, "team": 0.0003,
	"minute": 0.0003, "idea": 0.0003, "body": 0.0003, "information": 0.0003,
	"back": 0.0003, "parent": 0.0003, "face": 0.0003, "others": 0.0003,
	"level": 0.0003, "office": 0.0003, "door": 0.0003, "health": 0.0003,
	"person": 0.0003, "art": 0.0003, "war": 0.0003, "history": 0.0003,
	"party": 0.0003, "result": 0.0003, "change": 0.0003, "morning": 0.0003,
	"reason": 0.0003, "research": 0.0002, "girl": 0.0002, "guy": 0.0002,
	"moment": 0.0002, "air": 0.0002, "teacher": 0.0002, "force": 0.0002,
	"education": 0.0002, "foot": 0.0002, "boy": 0.0002, "age": 0.0002,
	"policy": 0.0002, "music": 0.0002, "market": 0.0002, "sense": 0.0002,
	"nation": 0.0002, "plan": 0.0002, "college": 0.0002, "interest": 0.0002,
	"death": 0.0002, "experience": 0.0002, "effect": 0.0002, "use": 0.0002,
	"class": 0.0002, "control": 0.0002, "care": 0.0002, "field": 0.0002,
	"development": 0.0002, "role": 0.0002, "effort": 0.0002, "rate": 0.0002,
	"heart": 0.0002, "drug": 0.0002, "show": 0.0002, "leader": 0.0002,
	"light": 0.0002, "voice": 0.0002, "wife": 0.0002, "police": 0.0002,
	"mind": 0.0002, "price": 0.0002, "report": 0.0002, "decision": 0.0002,
	"son": 0.0002, "view": 0.0002, "relationship": 0.0002, "town": 0.0002,
	"road": 0.0002, "arm": 0.0002, "difference": 0.0002, "value": 0.0002,
	"building": 0.0001, "action": 0.0001, "model": 0.0001, "season": 0.0001,
	"society": 0.0001, "tax": 0.0001, "director": 0.0001, "position": 0.0001,
	"player": 0.0001, "record": 0.0001, "paper": 0.0001, "space": 0.0001,
	"ground": 0.0001, "form": 0.0001, "event": 0.0001, "matter": 0.0001,
	"center": 0.0001, "couple": 0.0001, "site": 0.0001, "project": 0.0001,
	"activity": 0.0001, "star": 0.0001, "table": 0.0001, "court": 0.0001,
	"american": 0.0001, "oil": 0.0001, "situation": 0.0001, "cost": 0.0001,
	"industry": 0.0001, "figure": 0.0001, "street": 0.0001, "image": 0.0001,
	"phone": 0.0001, "data": 0.0001, "picture": 0.0001, "practice": 0.0001,
	"piece": 0.0001, "land": 0.0001, "product": 0.0001, "doctor": 0.0001,
	"wall": 0.0001, "patient": 0.0001, "worker": 0.0001, "news": 0.0001,
	"test": 0.0001, "movie": 0.0001, "north": 0.0001, "love": 0.0001,
}
