package quiz

// Persona carries the static result copy for one persona type.
type Persona struct {
	Tag      Tag
	Name     string // display name with emoji, e.g. "⚡ 領航型（Navigator）"
	Identity string // one-line identity statement
	Pain     string // the pain point this persona hits first
	Hook     string // the offer hook this persona responds to
	Traits   []string
	Blind    string // blind-spot reminder
	Next     string // next-step suggestion
	CTA      string // call-to-action keyword for the chat follow-up
}

var personas = map[Tag]Persona{
	TagA: {
		Tag:      TagA,
		Name:     "⚡ 領航型（Navigator）",
		Identity: "你是領航型：越亂你越敢先走第一步。",
		Pain:     "你最容易被「雜務＋反覆溝通」拖慢，忙到沒時間做真正的佈局。",
		Hook:     "你會需要「引流自動化」：先把人流聚起來，讓你只做高價值決策與帶隊。",
		Traits:   []string{"快狠準", "敢賭敢試", "帶頭衝第一波"},
		Blind:    "太快＝容易分心/分散",
		Next:     "把引流交給系統，你只要挑對的人。",
		CTA:      "A1",
	},
	TagB: {
		Tag:      TagB,
		Name:     "🧠 軍師型（Strategist）",
		Identity: "你是軍師型：你不是靠熱血，你靠方法。",
		Pain:     "流程不一致、資料分散，會讓你的方法「無法複製放大」。",
		Hook:     "你會喜歡「一套可複製 SOP」：陌生人→分類→交棒，全流程模板化。",
		Traits:   []string{"系統控", "會拆解", "重視可驗證"},
		Blind:    "想太久＝容易慢半拍",
		Next:     "先套模板跑起來，再慢慢優化到極致。",
		CTA:      "B1",
	},
	TagC: {
		Tag:      TagC,
		Name:     "🤝 社群型（Connector）",
		Identity: "你是社群型：你一開口，人就願意靠近你。",
		Pain:     "你常卡在：要顧很多人、要產內容、要維持熱度，最後累到轉化不成比例。",
		Hook:     "你會需要「先分層再陪伴」：漏斗把人分類，你只把力氣用在對的人。",
		Traits:   []string{"高共感", "會經營", "信任感強"},
		Blind:    "太在乎＝容易耗能/內耗",
		Next:     "先分層再陪伴，關係會更穩、更有效。",
		CTA:      "C1",
	},
	TagD: {
		Tag:      TagD,
		Name:     "🛡️ 守護型（Guardian）",
		Identity: "你是守護型：你不求快，你求穩且不翻車。",
		Pain:     "資訊太雜、風險不清楚，你就會寧可慢也不敢衝。",
		Hook:     "你會喜歡「透明可控」：流程每一步都看得懂，覺得安全才敢放大。",
		Traits:   []string{"穩健", "可靠", "風險意識強"},
		Blind:    "太保守＝容易錯過窗口",
		Next:     "用安全版本先跑一輪，你會越來越敢放大。",
		CTA:      "D1",
	},
}

// PersonaFor returns the persona copy for a tag. Unknown tags fall back to
// the Navigator persona so a result page can always render.
func PersonaFor(tag Tag) Persona {
	if p, ok := personas[tag]; ok {
		return p
	}
	return personas[TagA]
}

// PersonaName returns the display name for a tag, or the raw tag when the
// tag is unknown.
func PersonaName(tag Tag) string {
	if p, ok := personas[tag]; ok {
		return p.Name
	}
	return string(tag)
}

// ResultLabel renders the persona headline for a scoring result, joining
// tied personas with a separator, e.g. "⚡ 領航型（Navigator） × 🧠 軍師型（Strategist）".
func ResultLabel(r Result) string {
	if r.Secondary == "" {
		return PersonaName(r.Primary)
	}
	return PersonaName(r.Primary) + " × " + PersonaName(r.Secondary)
}
