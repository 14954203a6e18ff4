package models

// UnknownHorse names a record that references no horse.
const UnknownHorse = "Desconhecido"

// HorseLookup resolves horse ids to display names.
type HorseLookup map[string]string

// NewHorseLookup indexes the roster by id.
func NewHorseLookup(horses []Horse) HorseLookup {
	lookup := make(HorseLookup, len(horses))
	for _, horse := range horses {
		lookup[string(horse.ID)] = horse.Name
	}
	return lookup
}

// Name returns the horse name, or a #id placeholder for ids missing from the roster.
func (l HorseLookup) Name(horseID string) string {
	if name, ok := l[horseID]; ok && name != "" {
		return name
	}
	if horseID == "" {
		return UnknownHorse
	}
	return "#" + horseID
}
