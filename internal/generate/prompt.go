// Package generate produces free-text answers for queries the curated data
// cannot answer, walking an ordered list of generative providers.
package generate

import (
	"strconv"
	"strings"

	"github.com/kerala-navigator/navigator/internal/geo"
	"github.com/kerala-navigator/navigator/internal/lang"
)

// Request is one citizen query headed for the generative chain.
type Request struct {
	Message  string
	Language lang.Language
	Location *geo.Location
}

const malayalamDirective = `CRITICAL LANGUAGE INSTRUCTION: You MUST respond ENTIRELY in Malayalam (മലയാളം) script. 
Every single word, heading, and sentence MUST be in Malayalam. 
Do NOT use any English words except proper nouns like website URLs, office names like "UIDAI", or amounts like "₹50".
Use simple, everyday Malayalam that a common village citizen can understand easily.
Do NOT use complex or literary Malayalam.`

const englishDirective = "Respond in clear, simple English that any citizen can understand easily."

// BuildPrompt assembles the single instruction payload sent to every tier.
// The raw citizen message always comes last.
func BuildPrompt(r Request) string {
	l := r.Language
	return strings.Join([]string{
		"You are Kerala Government Service Navigator AI - helping non-technical citizens understand government services in " +
			lang.Pick(l, "English", "Malayalam") + ".",
		lang.Pick(l, englishDirective, malayalamDirective),
		lifeEventHint(l),
		styleLine(l),
		locationLine(r.Location),
		"Citizen query: " + r.Message,
	}, "\n")
}

func lifeEventHint(l lang.Language) string {
	var b strings.Builder
	b.WriteString("LIFE EVENT DETECTION: If the citizen describes a life event or milestone (such as getting married, having a baby, turning 18, retiring, losing a family member, buying property, starting a business, getting a job, moving to a new place, divorce, accident, disability, child school admission, etc.), respond with a STRUCTURED CHECKLIST of ALL relevant government services they need. Format it like this:\n\n")
	b.WriteString("📋 " + lang.Pick(l, "LIFE EVENT", "ജീവിത ഇവന്റ്") + ": [Event Name]\n")
	b.WriteString("[Brief description]\n\n")
	b.WriteString(lang.Pick(l, "STEPS", "ഘട്ടങ്ങൾ") + ":\n")
	b.WriteString("1. [Service/Task Name]\n")
	b.WriteString("   • " + lang.Pick(l, "Where", "സ്ഥലം") + ": [Office name]\n")
	b.WriteString("   • " + lang.Pick(l, "Documents", "രേഖകൾ") + ": [Required documents]\n")
	b.WriteString("   • " + lang.Pick(l, "Fee", "ഫീസ്") + ": [Amount or Free]\n")
	b.WriteString("   • " + lang.Pick(l, "Timeline", "സമയം") + ": [Processing time]\n")
	b.WriteString("2. [Next service]\n")
	b.WriteString("   ...\n\n")
	b.WriteString("Include ALL government registrations, applications, and updates the citizen needs. Be thorough: cover every service relevant to that life stage in Kerala/India.")
	return b.String()
}

func styleLine(l lang.Language) string {
	sections := lang.Pick(l,
		"Service | What You Need | How to Apply | Fees | Timeline | Where to Go | Pro Tips",
		"സേവനം | ആവശ്യമായ രേഖകൾ | എങ്ങനെ അപേക്ഷിക്കാം | ഫീസ് | സമയം | എവിടെ പോകണം | നുറുങ്ങുകൾ")
	return "Format response with clear sections using this structure:\n" +
		"## Main heading\n\n" +
		"**Subheading**: brief clarification\n" +
		"- Bullet list for steps/points\n" +
		"- Keep language simple for common citizens\n\n" +
		"Use these sections if relevant: " + sections + "."
}

func locationLine(loc *geo.Location) string {
	if loc == nil {
		return "User location not provided. Suggest nearby offices in Kerala district-level terms."
	}
	return "User location coordinates: " + coord(loc.Lat) + ", " + coord(loc.Lng) +
		". Use this to suggest nearby offices in Kerala."
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
