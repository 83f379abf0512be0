// Package grammar holds the fixed Portuguese grammar tables the scraper works
// against: the canonical person ordering, the mode/tense whitelist and the
// gold-standard matrix used for completeness checks.
package grammar

// Persons is the canonical person table. A person's index is its sort order.
var Persons = [6]string{"eu", "tu", "ele/ela/você", "nós", "vós", "eles/elas/vocês"}

// ModeImperativo is the mode whose affirmative form lacks "eu".
const ModeImperativo = "Imperativo"

// PersonForm pairs a scraped form with its index into Persons.
type PersonForm struct {
	Index int
	Value string
}

// Person returns the canonical label of the form's person.
func (p PersonForm) Person() string { return Persons[p.Index] }

// MapPersons assigns forms to person indices in order. A five-form Imperativo
// list starts at "tu". Forms past the last person are dropped.
func MapPersons(forms []string, mode string) []PersonForm {
	offset := 0
	if len(forms) == 5 && mode == ModeImperativo {
		offset = 1
	}
	out := make([]PersonForm, 0, len(forms))
	for i, f := range forms {
		idx := i + offset
		if idx >= len(Persons) {
			break
		}
		out = append(out, PersonForm{Index: idx, Value: f})
	}
	return out
}
