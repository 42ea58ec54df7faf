package intent

// Keywords are the phrase families the classifier matches against
// normalized (lowercased, accent-folded) question text. The families
// overlap on purpose in places; the rule order in resolver.go decides
// priority. They are tunable data, not a closed grammar: configuration
// may append phrases per family.
type Keywords struct {
	Why       []string            // causal question words -> day_why
	Dimension map[string][]string // dimension name -> phrases, for day_dimension_detail
	Lookup    []string            // "on what date is X" openers -> event_lookup
	Worst     []string            // avoid / worst phrasing -> worst_days
	Patterns  []string            // recurring-structure questions -> patterns
	Filter    []string            // constraint phrasing -> filter_days
	Tradeoff  []string            // conflicting-criteria phrasing -> combined_tradeoff
	Driver    []string            // "what drives the score" -> primary_driver
	Best      []string            // superlative phrasing -> top_days
	FirstBest []string            // anaphora: "the best one", "the first one"
	NextDay   []string            // anaphora: "the day after"
}

// DefaultKeywords is the keyword configuration observed to work for
// French venue-operator questions.
func DefaultKeywords() Keywords {
	return Keywords{
		Why: []string{
			"pourquoi", "pour quelle raison", "qu'est-ce qui explique",
			"comment ca se fait", "explique",
		},
		Dimension: map[string][]string{
			"weather": {
				"meteo", "pluie", "vent", "temps qu'il fera", "alerte",
			},
			"competition": {
				"concurrence", "concurrent", "concurrents",
				"evenements autour", "autres evenements",
			},
			"calendar": {
				"calendrier", "ferie", "vacances", "week-end", "weekend",
			},
		},
		Lookup: []string{
			"quelle date", "a quelle date", "quand a lieu", "quand est",
			"quand se passe", "c'est quand", "quel jour a lieu",
		},
		Worst: []string{
			"pires", "pire", "a eviter", "eviter", "mauvais jours",
			"moins bons", "moins bon", "deconseille",
		},
		Patterns: []string{
			"tendance", "tendances", "motif", "recurrent", "habituellement",
			"en general", "quel type de jour", "quels types de jours",
		},
		Filter: []string{
			"sans concurrence", "sans pluie", "sans alerte", "uniquement",
			"seulement les jours", "hors week-end", "en semaine", "filtre",
			"qui evitent",
		},
		Tradeoff: []string{
			"compromis", "malgre", "quitte a", "meme si", "equilibre",
			"arbitrage", "balance entre",
		},
		Driver: []string{
			"facteur principal", "principal facteur", "qu'est-ce qui pese",
			"qu'est-ce qui influence", "qu'est ce qui influence",
			"quel critere", "plus determinant",
		},
		Best: []string{
			"meilleurs jours", "meilleur jour", "meilleures dates",
			"meilleure date", "top", "ideal", "ideaux", "plus favorable",
			"plus favorables", "bons jours",
		},
		FirstBest: []string{
			"le premier", "la premiere", "le meilleur", "la meilleure",
			"celui-la", "celle-la", "ce jour-la",
		},
		NextDay: []string{
			"le lendemain", "le jour suivant", "le jour d'apres",
		},
	}
}

// Merge appends user-supplied phrases to the matching families. Unknown
// family names are ignored so older configs keep loading.
func (k Keywords) Merge(overrides map[string][]string) Keywords {
	for family, phrases := range overrides {
		switch family {
		case "why":
			k.Why = append(k.Why, phrases...)
		case "weather", "competition", "calendar":
			if k.Dimension == nil {
				k.Dimension = make(map[string][]string)
			}
			k.Dimension[family] = append(k.Dimension[family], phrases...)
		case "lookup":
			k.Lookup = append(k.Lookup, phrases...)
		case "worst":
			k.Worst = append(k.Worst, phrases...)
		case "patterns":
			k.Patterns = append(k.Patterns, phrases...)
		case "filter":
			k.Filter = append(k.Filter, phrases...)
		case "tradeoff":
			k.Tradeoff = append(k.Tradeoff, phrases...)
		case "driver":
			k.Driver = append(k.Driver, phrases...)
		case "best":
			k.Best = append(k.Best, phrases...)
		case "first_best":
			k.FirstBest = append(k.FirstBest, phrases...)
		case "next_day":
			k.NextDay = append(k.NextDay, phrases...)
		}
	}
	return k
}
