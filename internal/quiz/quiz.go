// Package quiz holds the quiz definition, persona scoring, and the
// per-visitor session state machine. It is pure domain logic: no HTTP,
// no storage, no clocks.
package quiz

// Tag identifies the persona letter an option maps to.
type Tag string

const (
	TagA Tag = "A"
	TagB Tag = "B"
	TagC Tag = "C"
	TagD Tag = "D"
)

// CanonicalTags lists every tag in the fixed scan order used to break
// scoring ties. The order is part of the scoring contract.
var CanonicalTags = [4]Tag{TagA, TagB, TagC, TagD}

// ValidTag reports whether tag is one of the four persona letters.
func ValidTag(tag Tag) bool {
	for _, t := range CanonicalTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Option is one selectable answer on a question.
type Option struct {
	Label string
	Tag   Tag
}

// Question is one quiz step with its four options.
type Question struct {
	Prompt  string
	Options [4]Option
}

// Total is the fixed number of questions in the funnel quiz.
const Total = 10

// Questions returns the ordered quiz definition. Step ordinals are 1-based:
// Questions()[step-1] is the question shown at that step.
func Questions() [Total]Question {
	return questions
}

var questions = [Total]Question{
	{
		Prompt: "① AI 起風了，你會？",
		Options: [4]Option{
			{Label: "🚀 先衝先卡位", Tag: TagA},
			{Label: "🧠 先做一套方法", Tag: TagB},
			{Label: "🤝 先找對的人一起", Tag: TagC},
			{Label: "🛡️ 先確認不會翻車", Tag: TagD},
		},
	},
	{
		Prompt: "② 你想要的「有錢」是？",
		Options: [4]Option{
			{Label: "✨ 人生自由選擇", Tag: TagA},
			{Label: "💤 睡覺也進帳", Tag: TagB},
			{Label: "❤️ 顧家也能助人", Tag: TagC},
			{Label: "🏦 穩穩變富安心", Tag: TagD},
		},
	},
	{
		Prompt: "③ 機會來了，你會？",
		Options: [4]Option{
			{Label: "⚡ 先出手再優化", Tag: TagA},
			{Label: "📊 先算勝率再做", Tag: TagB},
			{Label: "👥 先組隊再放大", Tag: TagC},
			{Label: "🧯 先看最壞情況", Tag: TagD},
		},
	},
	{
		Prompt: "④ 你的天賦底牌是？",
		Options: [4]Option{
			{Label: "🧭 抓趨勢定方向", Tag: TagA},
			{Label: "🧩 拆解系統化", Tag: TagB},
			{Label: "🌿 連結信任感", Tag: TagC},
			{Label: "🧱 穩住抗風險", Tag: TagD},
		},
	},
	{
		Prompt: "⑤ 你最受不了的是？",
		Options: [4]Option{
			{Label: "🐢 慢到錯過風口", Tag: TagA},
			{Label: "🌀 沒邏輯亂做", Tag: TagB},
			{Label: "🧊 冷冰冰沒連結", Tag: TagC},
			{Label: "🎢 太冒險不穩", Tag: TagD},
		},
	},
	{
		Prompt: "⑥ 你下決策最靠？",
		Options: [4]Option{
			{Label: "🔮 趨勢直覺", Tag: TagA},
			{Label: "🧾 數據計算", Tag: TagB},
			{Label: "🫶 圈層建議", Tag: TagC},
			{Label: "📌 穩定經驗", Tag: TagD},
		},
	},
	{
		Prompt: "⑦ 你卡關時會？",
		Options: [4]Option{
			{Label: "🌪️ 換路找新風口", Tag: TagA},
			{Label: "🔧 回頭修流程", Tag: TagB},
			{Label: "☎️ 找人聊再出發", Tag: TagC},
			{Label: "🧊 縮風險先守住", Tag: TagD},
		},
	},
	{
		Prompt: "⑧ 你帶新人第一步？",
		Options: [4]Option{
			{Label: "🔥 先點燃願景", Tag: TagA},
			{Label: "🗂️ 先定 SOP 節奏", Tag: TagB},
			{Label: "🤗 先建立信任感", Tag: TagC},
			{Label: "🧷 先畫底線規則", Tag: TagD},
		},
	},
	{
		Prompt: "⑨ 你說服人最自然？",
		Options: [4]Option{
			{Label: "🌅 講未來藍圖", Tag: TagA},
			{Label: "🧠 講步驟做法", Tag: TagB},
			{Label: "🫂 先懂他再帶他", Tag: TagC},
			{Label: "🛡️ 講風險怎麼控", Tag: TagD},
		},
	},
	{
		Prompt: "⑩ 三年後你最想？",
		Options: [4]Option{
			{Label: "🌊 抓浪潮大跳躍", Tag: TagA},
			{Label: "⚙️ 打造自動化引擎", Tag: TagB},
			{Label: "🌸 做出溫暖強團隊", Tag: TagC},
			{Label: "🏰 穩住成果更踏實", Tag: TagD},
		},
	},
}

// Segments lists the status choices offered on the intro screen.
var Segments = []string{
	"想增加收入",
	"想轉型/第二收入",
	"想建立團隊",
	"想更懂AI工具",
	"其他",
}
