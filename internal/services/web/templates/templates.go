// Package templates renders the funnel pages as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/leadfunnel/personaquiz/internal/partner"
	"github.com/leadfunnel/personaquiz/internal/quiz"
	"github.com/leadfunnel/personaquiz/internal/services/web/platform/flash"
	"github.com/leadfunnel/personaquiz/internal/services/web/routepath"
	"github.com/leadfunnel/personaquiz/internal/storage"
)

// siteTitle is the hero headline shown on every page.
const siteTitle = "2026 AI 財富人格診斷"

const siteSubtitle = "你會拿到：人格類型＋卡關點＋下一步建議"

// InterestChoices lists the contact-interest options on the result page.
var InterestChoices = []string{
	"🔥 想馬上了解",
	"🙂 先看看資料",
	"⏳ 之後再說",
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// Layout wraps body in the shared page shell: stylesheet, hero header,
// progress bar, and an optional one-time notice.
func Layout(progress float64, notice flash.Notice, hasNotice bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html><html lang=\"zh-Hant\"><head>")
		b.WriteString("<meta charset=\"utf-8\">")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		b.WriteString("<title>" + esc(siteTitle) + "</title>")
		b.WriteString("<link rel=\"stylesheet\" href=\"" + routepath.StaticPrefix + "styles.css\">")
		b.WriteString("</head><body><main class=\"shell\">")
		b.WriteString("<header class=\"hero\"><h1 class=\"hero-title\">" + esc(siteTitle) + "</h1>")
		b.WriteString("<p class=\"hero-subtitle\">" + esc(siteSubtitle) + "</p></header>")
		fmt.Fprintf(&b, "<div class=\"progress\"><div class=\"progress-fill\" style=\"width:%.0f%%\"></div></div>", progress*100)
		if hasNotice {
			b.WriteString("<div class=\"notice notice-" + esc(string(notice.Kind)) + "\">" + esc(notice.Message) + "</div>")
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}

// PartnerCard shows the resolved operator at the top of each screen. Debug
// mode surfaces the referral key being served.
func PartnerCard(operator partner.Record, debug bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<section class=\"partner-card\">")
		if operator.ImageURL != "" {
			b.WriteString("<img class=\"partner-avatar\" src=\"" + esc(operator.ImageURL) + "\" alt=\"" + esc(operator.Name) + "\">")
		}
		b.WriteString("<div class=\"partner-meta\"><span class=\"partner-name\">" + esc(operator.Name) + "</span>")
		if operator.Title != "" {
			b.WriteString("<span class=\"partner-title\">" + esc(operator.Title) + "</span>")
		}
		b.WriteString("</div>")
		if debug {
			b.WriteString("<span class=\"debug-ref\">ref=" + esc(operator.Ref) + "</span>")
		}
		b.WriteString("</section>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// WithPartnerCard stacks the operator card above a screen body so the
// operator stays visible through the whole funnel.
func WithPartnerCard(operator partner.Record, debug bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := PartnerCard(operator, debug).Render(ctx, w); err != nil {
			return err
		}
		return body.Render(ctx, w)
	})
}

// Intro renders the name and segment form that starts the quiz.
func Intro(operator partner.Record, name, segment string, debug bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := PartnerCard(operator, debug).Render(ctx, w); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString("<form class=\"card\" method=\"post\" action=\"" + routepath.Start + "\">")
		b.WriteString("<label for=\"name\">你的名字／暱稱</label>")
		b.WriteString("<input id=\"name\" name=\"name\" value=\"" + esc(name) + "\" placeholder=\"怎麼稱呼你？\">")
		b.WriteString("<label for=\"segment\">你現在的狀態比較像？</label>")
		b.WriteString("<select id=\"segment\" name=\"segment\">")
		for _, choice := range quiz.Segments {
			b.WriteString("<option value=\"" + esc(choice) + "\"")
			if choice == segment {
				b.WriteString(" selected")
			}
			b.WriteString(">" + esc(choice) + "</option>")
		}
		b.WriteString("</select>")
		b.WriteString("<button type=\"submit\" class=\"primary\">開始測驗 🚀</button>")
		b.WriteString("</form>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Question renders one quiz step with the previous choice pre-selected.
func Question(step int, question quiz.Question, selected quiz.Tag) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<form class=\"card\" method=\"post\" action=\"" + routepath.Answer + "\">")
		fmt.Fprintf(&b, "<p class=\"step-count\">第 %d / %d 題</p>", step, quiz.Total)
		b.WriteString("<h2 class=\"prompt\">" + esc(question.Prompt) + "</h2>")
		b.WriteString("<div class=\"options\" role=\"radiogroup\">")
		for _, option := range question.Options {
			b.WriteString("<label><input type=\"radio\" name=\"pick\" value=\"" + esc(string(option.Tag)) + "\"")
			if option.Tag == selected {
				b.WriteString(" checked")
			}
			b.WriteString("><span>" + esc(option.Label) + "</span></label>")
		}
		b.WriteString("</div><div class=\"nav\">")
		b.WriteString("<button type=\"submit\" name=\"direction\" value=\"prev\" class=\"ghost\">⬅ 上一題</button>")
		b.WriteString("<button type=\"submit\" name=\"direction\" value=\"next\" class=\"primary\">下一題 ➡</button>")
		b.WriteString("</div></form>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ResultView carries everything the result page needs.
type ResultView struct {
	Name         string
	Label        string // persona headline, possibly two types joined
	Persona      quiz.Persona
	Interest     string
	Recorded     bool
	AddFriendURL string
	StoreWarning bool
	StoreDetail  string // shown only in debug mode
	Debug        bool
}

// Result renders the persona copy, the interest gate, the add-friend link,
// and the restart control.
func Result(view ResultView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<section class=\"card result\">")
		b.WriteString("<h2>" + esc(view.Name) + " 的測驗結果</h2>")
		b.WriteString("<h3 class=\"persona\">類型：" + esc(view.Label) + "</h3>")
		b.WriteString("<p class=\"traits\">特質： " + esc(strings.Join(view.Persona.Traits, "｜")) + "</p>")
		b.WriteString("<h4>🏆 你的強項</h4><p>" + esc(view.Persona.Identity) + "</p>")
		b.WriteString("<h4>⚠️ 你最容易卡的點</h4><p>" + esc(view.Persona.Pain) + "</p>")
		b.WriteString("<h4>🔍 你會對這個特別有感（關鍵）</h4><p>" + esc(view.Persona.Hook) + "</p>")
		b.WriteString("<h4>🧭 下一步</h4>")
		b.WriteString("<p>盲點提醒：" + esc(view.Persona.Blind) + "</p>")
		b.WriteString("<p>下一步：" + esc(view.Persona.Next) + "</p>")
		b.WriteString("</section>")

		if view.StoreWarning {
			b.WriteString("<div class=\"notice notice-warning\">名單已產生，但寫入或推播暫時失敗，稍後會自動重試。</div>")
			if view.Debug && view.StoreDetail != "" {
				b.WriteString("<pre class=\"debug-detail\">" + esc(view.StoreDetail) + "</pre>")
			}
		}

		b.WriteString("<section class=\"card\">")
		b.WriteString("<h4>✅ 想領取「1頁專屬解析＋你適合的引流方式」</h4>")
		if view.Recorded {
			b.WriteString("<p class=\"interest-locked\">你的意願：" + esc(view.Interest) + "</p>")
		} else {
			b.WriteString("<form method=\"post\" action=\"" + routepath.Interest + "\">")
			b.WriteString("<div class=\"options\" role=\"radiogroup\">")
			for _, choice := range InterestChoices {
				b.WriteString("<label><input type=\"radio\" name=\"interest\" value=\"" + esc(choice) + "\"")
				if choice == view.Interest {
					b.WriteString(" checked")
				}
				b.WriteString("><span>" + esc(choice) + "</span></label>")
			}
			b.WriteString("</div>")
			b.WriteString("<button type=\"submit\" class=\"primary\">送出並領取</button>")
			b.WriteString("</form>")
		}
		b.WriteString("<p>加 LINE 後回覆關鍵字：</p>")
		b.WriteString("<code class=\"keyword\">" + esc(view.Persona.CTA) + "</code>")
		if view.AddFriendURL != "" {
			b.WriteString("<a class=\"primary button\" href=\"" + esc(view.AddFriendURL) + "\">💬 加 LINE 領取解析</a>")
		} else {
			b.WriteString("<p class=\"muted\">（尚未設定加好友連結）</p>")
		}
		b.WriteString("</section>")

		b.WriteString("<form method=\"post\" action=\"" + routepath.Restart + "\">")
		b.WriteString("<button type=\"submit\" class=\"ghost\">重新測驗</button>")
		b.WriteString("</form>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AdminLogin renders the report password form.
func AdminLogin() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<form class=\"card\" method=\"post\" action=\"" + routepath.Admin + "\">")
		b.WriteString("<label for=\"password\">🔐 管理授權碼</label>")
		b.WriteString("<input id=\"password\" name=\"password\" type=\"password\">")
		b.WriteString("<button type=\"submit\" class=\"primary\">查看名單</button>")
		b.WriteString("</form>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AdminReport renders the lead table visible to the grant's subject.
func AdminReport(heading string, table storage.Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<section class=\"card report\">")
		b.WriteString("<h2>" + esc(heading) + "</h2>")
		if len(table.Rows) == 0 {
			b.WriteString("<p class=\"muted\">目前沒有名單。</p>")
		} else {
			b.WriteString("<table><thead><tr>")
			for _, col := range table.Columns {
				b.WriteString("<th>" + esc(col) + "</th>")
			}
			b.WriteString("</tr></thead><tbody>")
			for _, row := range table.Rows {
				b.WriteString("<tr>")
				for _, cell := range row {
					b.WriteString("<td>" + esc(cell) + "</td>")
				}
				b.WriteString("</tr>")
			}
			b.WriteString("</tbody></table>")
		}
		b.WriteString("</section>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
