package prompt

import (
	"fmt"
	"strings"

	"agent-sim-be/pkg/catalog"
	"agent-sim-be/pkg/convo/slots"
	"agent-sim-be/pkg/store"
)

// messages holds every canned system line per locale. Arabic falls back to
// English for any key that is missing, so new keys degrade gracefully.
var messages = map[string]map[string]string{
	"en": {
		"greeting":         "Hi! Tell me about the idea you want to simulate and I'll help you set everything up.",
		"ask_idea":         "Could you describe the idea you want to explore?",
		"ask_country":      "Which country should the simulation run in?",
		"ask_city":         "Which city should we focus on?",
		"ask_location":     "I found a few possible locations. Please pick one by number:",
		"ask_category":     "Which category fits your idea best?",
		"ask_audience":     "Who is the target audience? You can pick several.",
		"ask_goals":        "What do you want the simulation to answer? Pick one or more goals.",
		"ask_maturity":     "How far along is the idea? (optional)",
		"review":           "Here is the configuration so far. Reply \"yes\" to start the simulation, or tell me what to change.",
		"start_ok":         "The simulation is starting. I'll let you know as results come in.",
		"start_failed":     "I couldn't start the simulation. Nothing was changed; you can try again or adjust the configuration.",
		"update_confirm":   "A simulation is already running. Apply this as an update and restart it? (yes/no)",
		"update_applied":   "Got it. I've applied the update and restarted the simulation.",
		"update_discarded": "Okay, I've discarded that change. The simulation keeps running as before.",
		"research_notice":  "Heads up: I couldn't gather background research this time, so I'll proceed without it.",
		"yes_or_no":        "Please answer yes or no.",
		"choice_retry":     "I didn't catch that. Pick one of the numbered locations, or describe the location again.",
		"discuss_fallback": "I don't have research on that yet, but I'm happy to talk through the idea.",
		"discuss_prefix":   "Based on what I found:",
		"sim_completed":    "The simulation finished. Ask me about the results, or send an update to run it again.",
		"sim_failed":       "The simulation stopped with an error. You can adjust the configuration and start it again.",
	},
	"ar": {
		"greeting":         "مرحبا! أخبرني عن الفكرة التي تريد محاكاتها وسأساعدك في إعداد كل شيء.",
		"ask_idea":         "هل يمكنك وصف الفكرة التي تريد استكشافها؟",
		"ask_country":      "في أي دولة يجب أن تعمل المحاكاة؟",
		"ask_city":         "على أي مدينة نركز؟",
		"ask_location":     "وجدت عدة مواقع محتملة. الرجاء اختيار واحد بالرقم:",
		"ask_category":     "ما الفئة الأنسب لفكرتك؟",
		"ask_audience":     "من هو الجمهور المستهدف؟ يمكنك اختيار أكثر من واحد.",
		"ask_goals":        "ما الذي تريد أن تجيب عنه المحاكاة؟ اختر هدفا أو أكثر.",
		"ask_maturity":     "ما مدى تقدم الفكرة؟ (اختياري)",
		"review":           "هذه هي الإعدادات حتى الآن. أجب بـ\"نعم\" لبدء المحاكاة، أو أخبرني بما تريد تغييره.",
		"start_ok":         "المحاكاة قيد البدء. سأعلمك عند وصول النتائج.",
		"start_failed":     "تعذر بدء المحاكاة. لم يتغير شيء؛ يمكنك المحاولة مجددا أو تعديل الإعدادات.",
		"update_confirm":   "هناك محاكاة قيد التشغيل بالفعل. هل أطبق هذا كتحديث وأعيد التشغيل؟ (نعم/لا)",
		"update_applied":   "تم. طبقت التحديث وأعدت تشغيل المحاكاة.",
		"update_discarded": "حسنا، تجاهلت هذا التغيير. تستمر المحاكاة كما كانت.",
		"research_notice":  "تنبيه: لم أتمكن من جمع بحث خلفي هذه المرة، لذا سأتابع بدونه.",
		"yes_or_no":        "الرجاء الإجابة بنعم أو لا.",
		"choice_retry":     "لم أفهم ذلك. اختر أحد المواقع المرقمة، أو صف الموقع مجددا.",
		"discuss_fallback": "ليس لدي بحث عن ذلك بعد، لكن يسعدني مناقشة الفكرة.",
		"discuss_prefix":   "بناء على ما وجدت:",
		"sim_completed":    "انتهت المحاكاة. اسألني عن النتائج، أو أرسل تحديثا لتشغيلها مجددا.",
		"sim_failed":       "توقفت المحاكاة بسبب خطأ. يمكنك تعديل الإعدادات وبدئها مجددا.",
	},
}

var fieldLabels = map[string]map[slots.Field]string{
	"en": {
		slots.FieldIdea:           "Idea",
		slots.FieldCategory:       "Category",
		slots.FieldTargetAudience: "Target audience",
		slots.FieldCountry:        "Country",
		slots.FieldCity:           "City",
		slots.FieldRiskAppetite:   "Risk appetite",
		slots.FieldIdeaMaturity:   "Idea maturity",
		slots.FieldGoals:          "Goals",
	},
	"ar": {
		slots.FieldIdea:           "الفكرة",
		slots.FieldCategory:       "الفئة",
		slots.FieldTargetAudience: "الجمهور المستهدف",
		slots.FieldCountry:        "الدولة",
		slots.FieldCity:           "المدينة",
		slots.FieldRiskAppetite:   "درجة المخاطرة",
		slots.FieldIdeaMaturity:   "نضج الفكرة",
		slots.FieldGoals:          "الأهداف",
	},
}

// Builder renders all system-authored conversation text. It is stateless;
// every method takes the locale explicitly.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// Text returns the canned line for a key in the given locale.
func (b *Builder) Text(key, locale string) string {
	if m, ok := messages[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages["en"][key]
}

// AskFor returns the question that solicits one missing slot.
func (b *Builder) AskFor(field slots.Field, locale string) string {
	switch field {
	case slots.FieldIdea:
		return b.Text("ask_idea", locale)
	case slots.FieldCountry:
		return b.Text("ask_country", locale)
	case slots.FieldCity:
		return b.Text("ask_city", locale)
	case slots.FieldCategory:
		return b.Text("ask_category", locale)
	case slots.FieldTargetAudience:
		return b.Text("ask_audience", locale)
	case slots.FieldGoals:
		return b.Text("ask_goals", locale)
	case slots.FieldIdeaMaturity:
		return b.Text("ask_maturity", locale)
	}
	return b.Text("ask_idea", locale)
}

// OptionPrompt builds the chip list for an enumerable slot. Category and
// maturity are single-select; audience and goals are multi-select.
func (b *Builder) OptionPrompt(field slots.Field, locale string) *store.OptionPrompt {
	var entries []catalog.Entry
	kind := store.PromptSingle
	switch field {
	case slots.FieldCategory:
		entries = catalog.Categories()
	case slots.FieldIdeaMaturity:
		entries = catalog.Maturities()
	case slots.FieldTargetAudience:
		entries = catalog.Audiences()
		kind = store.PromptMulti
	case slots.FieldGoals:
		entries = catalog.Goals()
		kind = store.PromptMulti
	default:
		return nil
	}

	p := &store.OptionPrompt{Field: field, Kind: kind}
	for _, e := range entries {
		p.Items = append(p.Items, store.OptionItem{
			Value:       e.Key,
			Label:       e.LabelFor(locale),
			Description: e.DescriptionFor(locale),
		})
	}
	return p
}

// LocationChoices renders the numbered pick list for an ambiguous location.
func (b *Builder) LocationChoices(choices []store.LocationChoice, locale string) string {
	var sb strings.Builder
	sb.WriteString(b.Text("ask_location", locale))
	for i, c := range choices {
		sb.WriteString(fmt.Sprintf("\n%d. %s, %s", i+1, c.City, c.Country))
	}
	return sb.String()
}

// Summary renders the filled slots as a review block, one line per field,
// with catalog values localized.
func (b *Builder) Summary(s *slots.State, locale string) string {
	labels, ok := fieldLabels[locale]
	if !ok {
		labels = fieldLabels["en"]
	}

	var lines []string
	add := func(f slots.Field, value string) {
		if value == "" {
			return
		}
		lines = append(lines, fmt.Sprintf("%s: %s", labels[f], value))
	}

	add(slots.FieldIdea, s.Idea)
	add(slots.FieldCategory, catalogLabel(catalog.Categories(), s.Category, locale))
	add(slots.FieldTargetAudience, joinLabels(catalog.Audiences(), s.TargetAudience, locale))
	add(slots.FieldCountry, s.Country)
	add(slots.FieldCity, s.City)
	add(slots.FieldRiskAppetite, fmt.Sprintf("%d/100", s.RiskAppetite))
	add(slots.FieldIdeaMaturity, catalogLabel(catalog.Maturities(), s.IdeaMaturity, locale))
	add(slots.FieldGoals, joinLabels(catalog.Goals(), s.Goals, locale))

	return b.Text("review", locale) + "\n\n" + strings.Join(lines, "\n")
}

// Discuss wraps a research-backed (or research-less) discussion reply.
func (b *Builder) Discuss(research store.ResearchContext, locale string) string {
	if research.Empty() {
		return b.Text("discuss_fallback", locale)
	}
	return b.Text("discuss_prefix", locale) + " " + research.Summary
}

func catalogLabel(entries []catalog.Entry, key, locale string) string {
	if key == "" {
		return ""
	}
	if e, ok := catalog.Find(entries, key); ok {
		return e.LabelFor(locale)
	}
	return key
}

func joinLabels(entries []catalog.Entry, keys []string, locale string) string {
	if len(keys) == 0 {
		return ""
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, catalogLabel(entries, k, locale))
	}
	return strings.Join(out, ", ")
}
