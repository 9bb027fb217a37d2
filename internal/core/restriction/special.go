package restriction

import "strings"

// SpecialSets 三組特殊排除清單，名稱皆為小寫
type SpecialSets map[Kind]map[string]struct{}

// NewSpecialSets 由名稱清單建立，名稱會轉小寫
func NewSpecialSets(lists map[Kind][]string) SpecialSets {
	sets := make(SpecialSets, len(lists))
	for kind, names := range lists {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
		}
		sets[kind] = set
	}
	return sets
}

// Contains lower 必須已轉為小寫
func (s SpecialSets) Contains(kind Kind, lower string) bool {
	_, ok := s[kind][lower]
	return ok
}

// DefaultSpecialSets 內建的堅果、茄科與高 FODMAP 清單
func DefaultSpecialSets() SpecialSets {
	return NewSpecialSets(map[Kind][]string{
		Nuts: {
			"almond", "walnut", "pecan", "cashew", "pistachio",
			"hazelnut", "macadamia", "pine nut", "brazil nut", "peanut",
		},
		Nightshades: {
			"tomato", "potato", "eggplant", "bell pepper", "chili pepper",
			"jalapeno", "paprika", "cayenne", "goji berry", "tomatillo",
		},
		Fodmap: {
			"garlic", "onion", "shallot", "leek", "wheat", "apple",
			"pear", "mango", "watermelon", "cauliflower", "mushroom",
			"honey", "milk", "beans", "lentils", "chickpea", "asparagus", "cherry",
		},
	})
}
