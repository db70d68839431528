package pairing

import (
	"fmt"

	"cellar/internal/domain"
)

// UnknownTypeBaseline is the rule score for wines with no known style.
const UnknownTypeBaseline = 40.0

// affinity is the static base score for each dish category and wine style.
var affinity = map[domain.FoodCategory]map[domain.WineType]float64{
	domain.FoodRedMeat: {
		domain.WineTypeRed: 90, domain.WineTypeWhite: 35, domain.WineTypeRose: 50,
		domain.WineTypeSparkling: 40, domain.WineTypeDessert: 15, domain.WineTypeFortified: 45,
	},
	domain.FoodPoultry: {
		domain.WineTypeRed: 65, domain.WineTypeWhite: 80, domain.WineTypeRose: 70,
		domain.WineTypeSparkling: 65, domain.WineTypeDessert: 20, domain.WineTypeFortified: 30,
	},
	domain.FoodSeafood: {
		domain.WineTypeRed: 25, domain.WineTypeWhite: 90, domain.WineTypeRose: 70,
		domain.WineTypeSparkling: 85, domain.WineTypeDessert: 15, domain.WineTypeFortified: 25,
	},
	domain.FoodPasta: {
		domain.WineTypeRed: 80, domain.WineTypeWhite: 70, domain.WineTypeRose: 65,
		domain.WineTypeSparkling: 55, domain.WineTypeDessert: 15, domain.WineTypeFortified: 25,
	},
	domain.FoodCheese: {
		domain.WineTypeRed: 75, domain.WineTypeWhite: 70, domain.WineTypeRose: 55,
		domain.WineTypeSparkling: 65, domain.WineTypeDessert: 70, domain.WineTypeFortified: 85,
	},
	domain.FoodDessert: {
		domain.WineTypeRed: 25, domain.WineTypeWhite: 35, domain.WineTypeRose: 35,
		domain.WineTypeSparkling: 65, domain.WineTypeDessert: 95, domain.WineTypeFortified: 85,
	},
	domain.FoodVegetarian: {
		domain.WineTypeRed: 60, domain.WineTypeWhite: 80, domain.WineTypeRose: 75,
		domain.WineTypeSparkling: 70, domain.WineTypeDessert: 20, domain.WineTypeFortified: 25,
	},
	domain.FoodSpicy: {
		domain.WineTypeRed: 45, domain.WineTypeWhite: 80, domain.WineTypeRose: 75,
		domain.WineTypeSparkling: 70, domain.WineTypeDessert: 45, domain.WineTypeFortified: 30,
	},
	domain.FoodOther: {
		domain.WineTypeRed: 60, domain.WineTypeWhite: 60, domain.WineTypeRose: 60,
		domain.WineTypeSparkling: 60, domain.WineTypeDessert: 40, domain.WineTypeFortified: 40,
	},
}

var categoryPhrase = map[domain.FoodCategory]string{
	domain.FoodRedMeat:    "red meat dishes",
	domain.FoodPoultry:    "poultry",
	domain.FoodSeafood:    "seafood",
	domain.FoodPasta:      "pasta and rice dishes",
	domain.FoodCheese:     "cheese",
	domain.FoodDessert:    "desserts",
	domain.FoodVegetarian: "vegetable dishes",
	domain.FoodSpicy:      "spicy food",
	domain.FoodOther:      "this dish",
}

var typePhrase = map[domain.WineType]string{
	domain.WineTypeRed:       "red",
	domain.WineTypeWhite:     "white",
	domain.WineTypeRose:      "rosé",
	domain.WineTypeSparkling: "sparkling",
	domain.WineTypeDessert:   "dessert",
	domain.WineTypeFortified: "fortified",
}

// baseRule looks up the affinity table and returns the base score and the
// sentence describing the matched rule.
func baseRule(cat domain.FoodCategory, wineType domain.WineType) (float64, string) {
	row, ok := affinity[cat]
	if !ok {
		row = affinity[domain.FoodOther]
		cat = domain.FoodOther
	}
	score, ok := row[wineType]
	if !ok {
		return UnknownTypeBaseline, fmt.Sprintf("Unknown style: no classic rule applies to %s", categoryPhrase[cat])
	}

	kind := typePhrase[wineType]
	food := categoryPhrase[cat]
	switch {
	case score >= 80:
		return score, fmt.Sprintf("Classic pairing: %s wine complements %s", kind, food)
	case score >= 60:
		return score, fmt.Sprintf("Good match: %s wine works well with %s", kind, food)
	case score >= 40:
		return score, fmt.Sprintf("Reasonable choice: %s wine is a safe option for %s", kind, food)
	default:
		return score, fmt.Sprintf("Unconventional: %s wine rarely suits %s", kind, food)
	}
}

type adjustment struct {
	factor string
	value  float64
	note   string
}

// secondaryRules applies the enrichment-driven bonuses and penalties.
func secondaryRules(cat domain.FoodCategory, e *domain.EnrichmentPayload) []adjustment {
	if e == nil {
		return nil
	}
	var out []adjustment
	add := func(factor string, value float64, note string) {
		out = append(out, adjustment{factor: factor, value: value, note: note})
	}

	food := categoryPhrase[cat]
	if v := sweetnessBonus(cat, e.Sweetness); v != 0 {
		add(domain.FactorSweetness, v, pick(v,
			fmt.Sprintf("%s style balances %s", e.Sweetness, food),
			fmt.Sprintf("%s style clashes with %s", e.Sweetness, food)))
	}
	if v := bodyBonus(cat, e.Body); v != 0 {
		add(domain.FactorBody, v, pick(v,
			fmt.Sprintf("%s body suits %s", e.Body, food),
			fmt.Sprintf("%s body is a poor match for %s", e.Body, food)))
	}
	if v := acidityBonus(cat, e.Acidity); v != 0 {
		add(domain.FactorAcidity, v, pick(v,
			fmt.Sprintf("%s acidity lifts %s", e.Acidity, food),
			fmt.Sprintf("%s acidity feels flat with %s", e.Acidity, food)))
	}
	if v := tanninBonus(cat, e.Tannin); v != 0 {
		add(domain.FactorTannin, v, pick(v,
			fmt.Sprintf("firm tannins stand up to %s", food),
			fmt.Sprintf("firm tannins clash with %s", food)))
	}

	return out
}

func sweetnessBonus(cat domain.FoodCategory, sweetness string) float64 {
	switch cat {
	case domain.FoodDessert:
		switch sweetness {
		case "sweet":
			return 10
		case "medium":
			return 5
		case "dry":
			return -10
		}
	case domain.FoodSpicy:
		switch sweetness {
		case "off-dry":
			return 8
		case "medium":
			return 5
		case "sweet":
			return 4
		}
	case domain.FoodCheese:
		if sweetness == "sweet" {
			return 5
		}
	default:
		if sweetness == "sweet" {
			return -5
		}
	}
	return 0
}

func pick(v float64, positive, negative string) string {
	if v > 0 {
		return positive
	}
	return negative
}

func bodyBonus(cat domain.FoodCategory, body string) float64 {
	switch cat {
	case domain.FoodRedMeat, domain.FoodCheese:
		switch body {
		case "full":
			return 8
		case "light":
			return -8
		}
	case domain.FoodSeafood, domain.FoodVegetarian:
		switch body {
		case "light":
			return 6
		case "full":
			return -6
		}
	case domain.FoodPasta, domain.FoodPoultry:
		if body == "medium" {
			return 4
		}
	}
	return 0
}

func acidityBonus(cat domain.FoodCategory, acidity string) float64 {
	switch cat {
	case domain.FoodSeafood, domain.FoodPasta, domain.FoodCheese:
		switch acidity {
		case "high":
			return 5
		case "low":
			if cat == domain.FoodSeafood {
				return -3
			}
		}
	}
	return 0
}

func tanninBonus(cat domain.FoodCategory, tannin string) float64 {
	if tannin != "high" {
		return 0
	}
	switch cat {
	case domain.FoodRedMeat:
		return 5
	case domain.FoodSeafood:
		return -10
	case domain.FoodSpicy:
		return -5
	}
	return 0
}
