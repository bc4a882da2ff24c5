package utils

import (
	"strings"
)

// Canonical specialty slugs. Instructor profiles and search filters both
// pass through here so "Motorway Driving", "motorway" and "highway" all
// land on the same slug.
var specialtyAliases = map[string]string{
	"motorway":          "motorway-driving",
	"motorway driving":  "motorway-driving",
	"highway":           "motorway-driving",
	"highway driving":   "motorway-driving",
	"night":             "night-driving",
	"night driving":     "night-driving",
	"automatic":         "automatic",
	"auto":              "automatic",
	"manual":            "manual",
	"stick":             "manual",
	"test prep":         "test-preparation",
	"test preparation":  "test-preparation",
	"mock test":         "test-preparation",
	"nervous drivers":   "nervous-drivers",
	"anxious drivers":   "nervous-drivers",
	"refresher":         "refresher",
	"refresher lessons": "refresher",
	"intensive":         "intensive",
	"intensive course":  "intensive",
	"pass plus":         "pass-plus",
	"parking":           "parking",
	"parallel parking":  "parking",
	"city":              "city-driving",
	"city driving":      "city-driving",
	"urban driving":     "city-driving",
	"rural":             "rural-driving",
	"rural driving":     "rural-driving",
	"country driving":   "rural-driving",
	"eco driving":       "eco-driving",
	"defensive driving": "defensive-driving",
}

// NormalizeSpecialty maps a free-form specialty label onto its canonical
// slug. Unknown labels are slugified rather than rejected, so new
// specialties still filter consistently.
func NormalizeSpecialty(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	if cleaned == "" {
		return ""
	}
	if canonical, ok := specialtyAliases[cleaned]; ok {
		return canonical
	}
	return strings.ReplaceAll(strings.Join(strings.Fields(cleaned), " "), " ", "-")
}

// NormalizeSpecialties normalizes a list, dropping empties and
// duplicates while keeping first-seen order.
func NormalizeSpecialties(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		slug := NormalizeSpecialty(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
	}
	return out
}
