package pairing

import (
	"cellar/internal/adapter/analyzer"
	"cellar/internal/domain"
)

// categoryPriority breaks ties when a dish hits several categories equally.
var categoryPriority = []domain.FoodCategory{
	domain.FoodSpicy,
	domain.FoodDessert,
	domain.FoodSeafood,
	domain.FoodRedMeat,
	domain.FoodPoultry,
	domain.FoodCheese,
	domain.FoodPasta,
	domain.FoodVegetarian,
}

// Keywords are singular and accent-free; dish tokens are folded the same way.
var categoryKeywords = map[domain.FoodCategory][]string{
	domain.FoodRedMeat: {
		"steak", "beef", "lamb", "venison", "veal", "burger", "brisket", "ribeye",
		"sirloin", "filet", "rib", "bbq", "barbecue", "meatball", "oxtail", "boar",
		"mutton", "goulash", "bourguignon", "tenderloin", "game", "chop",
	},
	domain.FoodPoultry: {
		"chicken", "turkey", "duck", "quail", "goose", "pheasant", "hen", "poultry",
		"coq", "wing",
	},
	domain.FoodSeafood: {
		"fish", "salmon", "tuna", "cod", "halibut", "trout", "shrimp", "prawn",
		"lobster", "crab", "oyster", "mussel", "clam", "scallop", "squid", "calamari",
		"octopus", "sushi", "sashimi", "seafood", "anchovy", "sardine", "bass",
		"ceviche", "bouillabaisse", "snapper", "sole",
	},
	domain.FoodPasta: {
		"pasta", "spaghetti", "linguine", "penne", "lasagna", "lasagne", "ravioli",
		"fettuccine", "tagliatelle", "gnocchi", "risotto", "carbonara", "bolognese",
		"pizza", "noodle", "macaroni", "tortellini", "pappardelle", "orecchiette",
	},
	domain.FoodCheese: {
		"cheese", "brie", "camembert", "cheddar", "gouda", "parmesan", "roquefort",
		"gorgonzola", "stilton", "manchego", "comte", "fondue", "raclette", "gruyere",
		"feta", "chevre", "pecorino", "charcuterie",
	},
	domain.FoodDessert: {
		"dessert", "cake", "chocolate", "tart", "tiramisu", "brulee", "pudding",
		"cookie", "mousse", "cheesecake", "sorbet", "pastry", "cobbler", "crumble",
		"macaron", "custard", "caramel", "panna", "cotta", "souffle", "baklava",
		"brownie", "gelato",
	},
	domain.FoodVegetarian: {
		"vegetable", "veggie", "vegetarian", "vegan", "salad", "mushroom", "tofu",
		"eggplant", "aubergine", "zucchini", "lentil", "bean", "chickpea", "falafel",
		"quinoa", "asparagus", "spinach", "ratatouille", "halloumi",
	},
	domain.FoodSpicy: {
		"spicy", "curry", "chili", "chilli", "jalapeno", "sriracha", "szechuan",
		"sichuan", "vindaloo", "thai", "kimchi", "harissa", "cajun", "tikka",
		"masala", "habanero", "gochujang",
	},
}

var keywordIndex = buildKeywordIndex()

// buildKeywordIndex also indexes each keyword under the form its plural
// folds to ("cookies" -> "cooky"), since Singularize cannot tell
// "cookies" from "berries".
func buildKeywordIndex() map[string]domain.FoodCategory {
	idx := make(map[string]domain.FoodCategory)
	for cat, words := range categoryKeywords {
		for _, w := range words {
			idx[w] = cat
		}
	}
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if folded := analyzer.Singularize(w + "s"); folded != w {
				if _, taken := idx[folded]; !taken {
					idx[folded] = cat
				}
			}
		}
	}
	return idx
}

// Classifier derives a FoodCategory from dish text.
type Classifier struct {
	tokenizer *analyzer.Tokenizer
}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{tokenizer: analyzer.NewTokenizer(true)}
}

// Classify returns the category with the most keyword hits, falling back
// to FoodOther. Equal hit counts resolve by categoryPriority.
func (c *Classifier) Classify(dish string) domain.FoodCategory {
	counts := make(map[domain.FoodCategory]int)
	for _, tok := range c.Tokens(dish) {
		if cat, ok := keywordIndex[tok]; ok {
			counts[cat]++
		}
	}

	best := domain.FoodOther
	bestCount := 0
	for _, cat := range categoryPriority {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}

// Tokens returns the accent-folded, singularized tokens of dish.
func (c *Classifier) Tokens(dish string) []string {
	return c.tokenizer.Tokenize(analyzer.FoldAccents(dish))
}
