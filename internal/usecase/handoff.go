package usecase

import (
	"html"
	"net/url"
	"strings"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

const separatorText = "--------------------------------"

// Text is the plain payload shared by the chat and email links. Emphasis is
// written with the chat apps' *bold* markers.
func Text(m domain.Message) string {
	out := make([]string, 0, len(m.Lines))
	for _, l := range m.Lines {
		switch l.Kind {
		case domain.LineEmphasis:
			out = append(out, "*"+l.Text+"*")
		case domain.LineSeparator:
			out = append(out, separatorText)
		default:
			out = append(out, l.Text)
		}
	}
	return strings.Join(out, "\n")
}

// HTML is the escaped preview; emphasis becomes <strong>.
func HTML(m domain.Message) string {
	out := make([]string, 0, len(m.Lines))
	for _, l := range m.Lines {
		switch l.Kind {
		case domain.LineEmphasis:
			out = append(out, "<strong>"+html.EscapeString(l.Text)+"</strong>")
		case domain.LineSeparator:
			out = append(out, separatorText)
		default:
			out = append(out, html.EscapeString(l.Text))
		}
	}
	return strings.Join(out, "\n")
}

// Handoff addresses the two external channels.
type Handoff struct {
	ChatContact  string
	EmailTo      string
	EmailSubject string
}

func (h Handoff) ChatURL(text string) string {
	return "https://wa.me/" + h.ChatContact + "?text=" + EncodeURIComponent(text)
}

func (h Handoff) EmailURL(text string) string {
	return "mailto:" + h.EmailTo +
		"?subject=" + EncodeURIComponent(h.EmailSubject) +
		"&body=" + EncodeURIComponent(text)
}

var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	return uriComponentFixups.Replace(url.QueryEscape(s))
}
