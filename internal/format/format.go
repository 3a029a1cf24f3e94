// Package format renders curated service records and life events as
// display-ready markdown in the resolved language.
package format

import (
	"fmt"
	"strings"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/lang"
)

const defaultBestVisitTime = "10:00 AM - 11:30 AM"

var stepMarkers = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

type serviceLabels struct {
	applyAt, requiredDocs, steps, fee, processingTime, validity, note string
	extras, nearestAkshaya, workingHours, viewOnMap                  string
	visitGuidance, bestTime, avoidTime                               string
	followUps, checkStatus, moreServices                             string
	contactOffice, noneSpecified, feeVaries                          string
}

var englishLabels = serviceLabels{
	applyAt:        "Apply At",
	requiredDocs:   "Required Documents",
	steps:          "Steps",
	fee:            "Fee",
	processingTime: "Processing Time",
	validity:       "Validity",
	note:           "Note",
	extras:         "Citizen Assistance Extras",
	nearestAkshaya: "Nearest Akshaya Center",
	workingHours:   "Working Hours",
	viewOnMap:      "View on Map",
	visitGuidance:  "Visit Time Guidance",
	bestTime:       "Best time to visit",
	avoidTime:      "Avoid 1:00 PM - 2:00 PM (Lunch break peak)",
	followUps:      "Smart Follow-ups",
	checkStatus:    "Check online status tracking on the e-District portal.",
	moreServices:   "Visit https://edistrict.kerala.gov.in for more services.",
	contactOffice:  "Contact office for steps",
	noneSpecified:  "None specified",
	feeVaries:      "Varies",
}

var malayalamLabels = serviceLabels{
	applyAt:        "അപേക്ഷിക്കേണ്ട സ്ഥലം",
	requiredDocs:   "ആവശ്യമായ രേഖകൾ",
	steps:          "ഘട്ടങ്ങൾ",
	fee:            "ഫീസ്",
	processingTime: "പ്രോസസ്സിംഗ് സമയം",
	validity:       "കാലാവധി",
	note:           "കുറിപ്പ്",
	extras:         "പൗര സഹായ അധിക വിവരങ്ങൾ",
	nearestAkshaya: "അടുത്തുള്ള അക്ഷയ കേന്ദ്രം",
	workingHours:   "പ്രവൃത്തി സമയം",
	viewOnMap:      "മാപ്പിൽ കാണുക",
	visitGuidance:  "സന്ദർശന സമയ മാർഗ്ഗനിർദ്ദേശം",
	bestTime:       "സന്ദർശിക്കാൻ ഏറ്റവും നല്ല സമയം",
	avoidTime:      "ഉച്ചഭക്ഷണ സമയം ഒഴിവാക്കുക (1:00 PM - 2:00 PM)",
	followUps:      "സ്മാർട്ട് ഫോളോ-അപ്പുകൾ",
	checkStatus:    "e-District പോർട്ടലിൽ ഓൺലൈൻ സ്റ്റാറ്റസ് ട്രാക്കിംഗ് പരിശോധിക്കുക.",
	moreServices:   "കൂടുതൽ സേവനങ്ങൾക്ക് https://edistrict.kerala.gov.in സന്ദർശിക്കുക.",
	contactOffice:  "ഘട്ടങ്ങൾക്ക് ഓഫീസിൽ ബന്ധപ്പെടുക",
	noneSpecified:  "ഒന്നും നിർണ്ണയിച്ചിട്ടില്ല",
	feeVaries:      "വ്യത്യാസപ്പെടും",
}

// ServiceView is a service record projected onto one language, with the
// display defaults applied where the record is silent.
type ServiceView struct {
	Name           string
	ApplyAt        string
	ProcessingTime string
	Validity       string
	BestVisitTime  string
	Notes          string
	Fee            string
	Documents      []string
	Steps          []string
}

// Project resolves every bilingual field of rec for l.
func Project(rec *catalog.ServiceRecord, l lang.Language) ServiceView {
	labels := labelsFor(l)
	fee := rec.Fee.String()
	if fee == "" {
		fee = labels.feeVaries
	}
	return ServiceView{
		Name:           rec.Name.In(l),
		ApplyAt:        orDefault(rec.ApplyAt.In(l), "N/A"),
		ProcessingTime: orDefault(rec.ProcessingTime.In(l), "N/A"),
		Validity:       orDefault(rec.Validity.In(l), "N/A"),
		BestVisitTime:  orDefault(rec.BestVisitTime.In(l), defaultBestVisitTime),
		Notes:          orDefault(rec.Notes.In(l), "N/A"),
		Fee:            fee,
		Documents:      rec.RequiredDocuments.In(l),
		Steps:          rec.Steps.In(l),
	}
}

// Service renders rec as the full service card, including the static
// assistance extras block.
func Service(rec *catalog.ServiceRecord, l lang.Language) string {
	v := Project(rec, l)
	labels := labelsFor(l)

	docs := make([]string, len(v.Documents))
	for i, d := range v.Documents {
		docs[i] = "✅ " + d
	}
	docsText := strings.Join(docs, "\n")
	if docsText == "" {
		docsText = labels.noneSpecified
	}

	steps := make([]string, len(v.Steps))
	for i, s := range v.Steps {
		steps[i] = stepMarker(i) + " " + s
	}
	stepsText := strings.Join(steps, "\n")
	if stepsText == "" {
		stepsText = labels.contactOffice
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📄 **%s**\n\n", v.Name)
	fmt.Fprintf(&b, "🏢 **%s:** %s\n\n", labels.applyAt, v.ApplyAt)
	fmt.Fprintf(&b, "📑 **%s:**\n%s\n\n", labels.requiredDocs, docsText)
	fmt.Fprintf(&b, "📝 **%s:**\n%s\n\n", labels.steps, stepsText)
	fmt.Fprintf(&b, "💰 **%s:** %s\n", labels.fee, v.Fee)
	fmt.Fprintf(&b, "⏱️ **%s:** %s\n", labels.processingTime, v.ProcessingTime)
	fmt.Fprintf(&b, "⏳ **%s:** %s\n", labels.validity, v.Validity)
	fmt.Fprintf(&b, "💡 **%s:** %s\n\n", labels.note, v.Notes)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "⭐ **%s** ⭐\n\n", labels.extras)
	fmt.Fprintf(&b, "📍 **%s:**\n", labels.nearestAkshaya)
	b.WriteString("  • Akshaya e-Kendra\n")
	fmt.Fprintf(&b, "  • %s: 9:30 AM - 5:00 PM\n", labels.workingHours)
	fmt.Fprintf(&b, "  • 🗺️ [%s](https://maps.google.com/?q=Akshaya+Center+near+me)\n\n", labels.viewOnMap)
	fmt.Fprintf(&b, "⏰ **%s:**\n", labels.visitGuidance)
	fmt.Fprintf(&b, "  • %s: %s\n", labels.bestTime, v.BestVisitTime)
	fmt.Fprintf(&b, "  • 🛑 %s\n\n", labels.avoidTime)
	fmt.Fprintf(&b, "🔗 **%s:**\n", labels.followUps)
	fmt.Fprintf(&b, "  • %s\n", labels.checkStatus)
	fmt.Fprintf(&b, "  • %s", labels.moreServices)
	return b.String()
}

// LifeEvent renders ev as a numbered checklist.
func LifeEvent(ev *catalog.LifeEvent, l lang.Language) string {
	lines := []string{
		"📋 " + lang.Pick(l, "LIFE EVENT", "ജീവിത ഇവന്റ്"),
		ev.Name.In(l),
		"",
		ev.Description.In(l),
		"",
		lang.Pick(l, "STEPS", "ഘട്ടങ്ങൾ") + ":",
	}

	unspecified := lang.Pick(l, "As specified", "നിർവ്വചിത")
	for i, step := range ev.Checklist {
		office := step.Office
		if office == "" {
			office = lang.Pick(l, "office", "ഓഫീസ്")
		}
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, step.Task.In(l)),
			fmt.Sprintf("   • %s: %s", lang.Pick(l, "Location", "സ്ഥലം"), office),
			fmt.Sprintf("   • %s: %s", lang.Pick(l, "Fee", "ഫീസ്"), orDefault(step.Fee, unspecified)),
			fmt.Sprintf("   • %s: %s", lang.Pick(l, "Time", "സമയം"), orDefault(step.ProcessingTime, unspecified)),
		)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stepMarker(i int) string {
	if i < len(stepMarkers) {
		return stepMarkers[i]
	}
	return fmt.Sprintf("%d.", i+1)
}

func labelsFor(l lang.Language) serviceLabels {
	if l.IsMalayalam() {
		return malayalamLabels
	}
	return englishLabels
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
