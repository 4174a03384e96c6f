// Package prompt renders the instructions sent to the language model.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
)

const jaTemplate = `あなたは優秀な日記ライターです。以下のユーザーの簡潔なメモから、自然で読みやすい日記を生成してください。

【日付】
{{.Date}}

【ユーザーのメモ】
{{.Note}}

【生成条件】
- 500文字から800文字の範囲で生成してください
- ユーザーのメモの内容を基に、具体的で詳細な日記に膨らませてください
- 自然な日本語の文章で、過度に形式的にならないようにしてください
- 一人称視点で書いてください
- ユーザーのメモにない情報を創作しないでください。メモに基づいた範囲で描写を豊かにしてください
- 段落分けを適切に行い、読みやすい文章にしてください
- 絵文字や顔文字は使用しないでください

生成した日記のみを出力してください。説明や前置きは不要です。`

const enTemplate = `You are a skilled diary writer. Turn the user's short note below into a natural, readable diary entry.

[Date]
{{.Date}}

[User's note]
{{.Note}}

[Requirements]
- Write between 500 and 800 characters
- Expand on the note with concrete, detailed description
- Use natural prose that is not overly formal
- Write in the first person
- Do not invent anything that is not in the note; enrich only what the note supports
- Split the text into paragraphs so it reads easily
- Do not use emoji or emoticons

Output only the diary itself, with no explanation or preamble.`

var jaWeekdays = [...]string{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"}

type locale struct {
	tmpl       *template.Template
	formatDate func(time.Time) string
}

var supported = []language.Tag{language.Japanese, language.English}

var locales = []locale{
	{
		tmpl: template.Must(template.New("ja").Parse(jaTemplate)),
		formatDate: func(t time.Time) string {
			return fmt.Sprintf("%d年%d月%d日%s", t.Year(), int(t.Month()), t.Day(), jaWeekdays[t.Weekday()])
		},
	},
	{
		tmpl: template.Must(template.New("en").Parse(enTemplate)),
		formatDate: func(t time.Time) string {
			return t.Format("Monday, January 2, 2006")
		},
	},
}

var matcher = language.NewMatcher(supported)

// Builder renders prompts for one locale. The zero value is not usable; use NewBuilder.
type Builder struct {
	tag    language.Tag
	locale locale
}

// NewBuilder picks the closest supported locale for a BCP 47 tag. Unknown or
// malformed tags fall back to Japanese.
func NewBuilder(tag string) *Builder {
	_, idx, _ := matcher.Match(language.Make(tag))
	return &Builder{tag: supported[idx], locale: locales[idx]}
}

func (b *Builder) Tag() language.Tag { return b.tag }

// Build is deterministic. The note is interpolated verbatim and may be empty.
func (b *Builder) Build(userNote string, date time.Time) string {
	var sb strings.Builder
	data := struct {
		Date string
		Note string
	}{
		Date: b.locale.formatDate(date),
		Note: userNote,
	}
	// Execution over two plain strings cannot fail once the template parsed.
	_ = b.locale.tmpl.Execute(&sb, data)
	return sb.String()
}

var defaultBuilder = NewBuilder("ja")

func BuildPrompt(userNote string, date time.Time) string {
	return defaultBuilder.Build(userNote, date)
}
