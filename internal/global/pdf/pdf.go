// Package pdf 生成打卡承诺书
package pdf

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"cohort-checkin/config"

	"github.com/go-pdf/fpdf"
)

//go:embed commitment.tmpl
var defaultTemplate string

// Letter 模板字段
type Letter struct {
	Name       string
	StudentID  string
	StartDate  string
	EndDate    string
	WindowDays int
	PassDays   int
	IssuedAt   string
}

type Renderer struct {
	tmpl     *template.Template
	fontPath string
}

// New 未配置 template_path 时使用内置英文模板
func New(cfg config.PDF) (*Renderer, error) {
	text := defaultTemplate
	if cfg.TemplatePath != "" {
		b, err := os.ReadFile(cfg.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("读取承诺书模板失败: %w", err)
		}
		text = string(b)
	}
	return NewFromTemplate(text, cfg.FontPath)
}

func NewFromTemplate(text, fontPath string) (*Renderer, error) {
	tmpl, err := template.New("commitment").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("解析承诺书模板失败: %w", err)
	}
	return &Renderer{tmpl: tmpl, fontPath: fontPath}, nil
}

// Render 第一行作为标题，其余按空行分段排版
func (r *Renderer) Render(l Letter) ([]byte, error) {
	var text bytes.Buffer
	if err := r.tmpl.Execute(&text, l); err != nil {
		return nil, fmt.Errorf("渲染承诺书失败: %w", err)
	}
	title, content, _ := strings.Cut(strings.TrimSpace(text.String()), "\n")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(25, 30, 25)
	doc.AddPage()

	family := "Helvetica"
	tr := doc.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		family = "body"
		doc.AddUTF8Font(family, "", r.fontPath)
		tr = func(s string) string { return s }
	}

	doc.SetFont(family, "", 18)
	doc.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	doc.Ln(6)

	doc.SetFont(family, "", 12)
	for _, para := range strings.Split(strings.TrimSpace(content), "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		doc.MultiCell(0, 7, tr(para), "", "L", false)
		doc.Ln(4)
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	return out.Bytes(), nil
}
