package facts

import (
	"fmt"
	"strings"

	"github.com/ppiankov/coasterscan/internal/model"
)

// LanguageLabel maps a short language code to the name used in prompts
func LanguageLabel(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "nl":
		return "Dutch"
	case "de":
		return "German"
	case "fr":
		return "French"
	default:
		return "English"
	}
}

const extractionSystem = "You extract factual data about amusement parks and roller coaster manufacturers " +
	"from web text. Answer with a single JSON object and nothing else. Use null for unknown values. " +
	"Never invent names, dates or places that are not in the text."

func factsSchema(kind model.Kind) string {
	if kind == model.KindManufacturer {
		return `{
  "name": string or null,
  "location_country": string or null,
  "opening_year": integer or null (founding year),
  "keywords": [up to 20 short strings],
  "ride_types": [up to 20 ride or coaster types],
  "notable_coasters": [up to 30 coaster names],
  "notable_parks": [up to 30 park names]
}`
	}
	return `{
  "name": string or null,
  "location_country": string or null,
  "location_city": string or null,
  "opening_year": integer or null,
  "keywords": [up to 20 short strings],
  "mentioned_coasters": [up to 30 coaster names]
}`
}

func factsPrompt(kind model.Kind, text, lang string) string {
	return fmt.Sprintf("Extract facts about this %s from the text below. Keywords should be in %s.\n"+
		"Return JSON with exactly this shape:\n%s\n\nTEXT:\n%s",
		kind, LanguageLabel(lang), factsSchema(kind), text)
}

func structuredPrompt(kind model.Kind, name string, body string) string {
	dateHint := `"opening_year": integer or null, "opening_month": integer 1-12 or null, "opening_day": integer 1-31 or null,
  "latitude": number or null, "longitude": number or null,`
	if kind == model.KindManufacturer {
		dateHint = `"opening_year": integer or null (founding year),`
	}
	return fmt.Sprintf("The sources below describe the %s %q. Combine them into one record.\n"+
		"Return JSON with exactly this shape:\n{\n  \"name\": string or null,\n  \"country_code\": ISO 3166-1 alpha-2 string or null,\n  %s\n  \"website_url\": string or null\n}\n\n%s",
		kind, name, dateHint, body)
}

func summarySystem(kind model.Kind) string {
	focus := "Mention the park's location, its role in the amusement industry (for example its size, theme or history) and, when the sources name them, one or two notable roller coasters."
	if kind == model.KindManufacturer {
		focus = "Describe what the company builds and, when the sources name them, the coaster types or signature models it is known for."
	}
	return "You write clear, neutral descriptions for a database of roller coaster parks and manufacturers. " +
		"Avoid marketing language and subjective wording. Output 2-4 sentences of plain prose without headings, " +
		"bullet points or markdown. Only use facts present in the sources; do not invent ride names or models. " +
		focus
}

func summaryPrompt(name string, kind model.Kind, lang string, body string) string {
	return fmt.Sprintf("Write a short description of the %s %q in %s, based only on these sources. "+
		"Do not mention the sources or these instructions.\n\n%s",
		kind, name, LanguageLabel(lang), body)
}
