package utils

import (
	"fmt"
	"math/rand"
	"strings"
)

// firstNames is a curated list of common first names for demo users
var firstNames = []string{
	"Emma", "Olivia", "Sophia", "Isabella", "Mia", "Charlotte", "Amelia", "Harper", "Evelyn", "Abigail",
	"Emily", "Elizabeth", "Sofia", "Avery", "Ella", "Scarlett", "Grace", "Victoria", "Riley", "Aria",
	"Lily", "Aubrey", "Zoey", "Penelope", "Lillian", "Addison", "Layla", "Natalie", "Camila", "Hannah",
	"Liam", "Noah", "Oliver", "William", "Elijah", "James", "Benjamin", "Lucas", "Mason", "Ethan",
	"Alexander", "Henry", "Jacob", "Michael", "Daniel", "Logan", "Jackson", "Sebastian", "Jack", "Aiden",
	"Owen", "Samuel", "Matthew", "Joseph", "Levi", "Mateo", "David", "John", "Wyatt", "Carter",
	"Alex", "Jordan", "Taylor", "Casey", "Quinn", "River", "Rowan",
	"Charlie", "Finley", "Emery", "Parker", "Blake", "Hayden", "Reese", "Cameron", "Drew", "Skylar",
}

// lastNames is a curated list of common last names for demo users
var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
	"Walker", "Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell", "Carter", "Roberts",
	"Gomez", "Phillips", "Evans", "Turner", "Diaz", "Parker", "Cruz", "Edwards", "Collins", "Reyes",
	"Stewart", "Morris", "Morales", "Murphy", "Cook", "Rogers", "Gutierrez", "Ortiz", "Morgan", "Cooper",
}

// GenerateFriendlyName combines a random first and last name
func GenerateFriendlyName() string {
	first := firstNames[rand.Intn(len(firstNames))]
	last := lastNames[rand.Intn(len(lastNames))]
	return first + " " + last
}

// IsNameAvailable reports whether name is not already in use, ignoring case
func IsNameAvailable(name string, existing []string) bool {
	lower := strings.ToLower(name)
	for _, e := range existing {
		if strings.ToLower(e) == lower {
			return false
		}
	}
	return true
}

// GenerateUniqueName generates a friendly name that does not conflict with
// existing names. After maxAttempts random tries it falls back to appending
// a counter suffix.
func GenerateUniqueName(existing []string, maxAttempts int) string {
	if maxAttempts < 1 {
		maxAttempts = 50
	}

	for i := 0; i < maxAttempts; i++ {
		name := GenerateFriendlyName()
		if IsNameAvailable(name, existing) {
			return name
		}
	}

	base := GenerateFriendlyName()
	for counter := 1; counter < 100; counter++ {
		candidate := fmt.Sprintf("%s %d", base, counter)
		if IsNameAvailable(candidate, existing) {
			return candidate
		}
	}
	return base
}
