package grammar

// Entry is a (mode, tense) pair.
type Entry struct {
	Mode  string
	Tense string
}

// GoldStandard lists the combinations every fully scraped verb should have,
// each with all six persons.
var GoldStandard = []Entry{
	{"Indicativo", "Presente"},
	{"Indicativo", "Pretérito Perfeito"},
	{"Indicativo", "Pretérito Imperfeito"},
	{"Indicativo", "Pretérito Mais-que-perfeito"},
	{"Indicativo", "Futuro do Presente"},
	{"Indicativo", "Futuro do Pretérito"},
	{"Subjuntivo", "Presente"},
	{"Subjuntivo", "Pretérito Imperfeito"},
	{"Subjuntivo", "Futuro"},
}

// Tasks expands verbs against entries, verb-major.
func Tasks(verbs []string, entries []Entry) []Task {
	out := make([]Task, 0, len(verbs)*len(entries))
	for _, v := range verbs {
		for _, e := range entries {
			out = append(out, Task{Verb: v, Mode: e.Mode, Tense: e.Tense})
		}
	}
	return out
}
