package facts

import "fmt"

// TemplatesFor returns the built-in table for a locale tag. Only "fr"
// ships; an unknown locale is a configuration error, not a silent
// fallback.
func TemplatesFor(locale string) (TemplateTable, error) {
	switch locale {
	case "fr":
		return FrenchTemplates, nil
	default:
		return nil, fmt.Errorf("no built-in templates for locale %q", locale)
	}
}

// FrenchTemplates is the built-in locale table for the reference
// deployment. Identifiers are stable; configuration may extend or
// override entries but never removes the fallback-to-label behavior.
var FrenchTemplates = TemplateTable{
	// Headlines.
	"headline.top_days":   `Meilleures dates : {{.Params.dates}}.`,
	"headline.worst_days": `Dates à éviter : {{.Params.dates}}.`,
	"headline.day":        `Le {{.Params.date}} : {{.Params.verdict}}.`,
	"headline.compare":    `Entre {{.Params.dates}}, privilégiez le {{.Params.winner}}.`,
	"headline.lookup":     `{{.Params.event}} : {{.Params.dates}}.`,

	// Facts.
	"fact.score":       `Le {{.Params.date}} : score d'opportunité {{.Params.score}} (régime {{.Params.regime}}).`,
	"fact.signal":      `{{(index .Facts 0).Label}}`,
	"fact.unavailable": `Aucune donnée de prévision pour le {{.Params.date}}.`,

	// Implications.
	"implication.driver": `Facteur déterminant : {{.Params.driver}}.`,
	"implication.tie":    `Plusieurs dates sont équivalentes au regard des critères ; le choix peut se faire librement.`,

	// Caveats.
	"caveat.excluded":   `{{.Params.count}} date(s) écartée(s) d'office ({{.Params.reason}}).`,
	"caveat.incomplete": `Certaines dimensions sont sans données pour {{.Params.date}} ; l'analyse est partielle.`,
	"caveat.no_compare": `Il faut au moins deux dates valides pour comparer.`,

	// Actions.
	"action.refine": `Précisez une date ou un critère pour affiner.`,
}
