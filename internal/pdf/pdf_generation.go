package pdf

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tracker/internal/models"
)

// Renderer: интерфейс, удобно мокать в тестах
type Renderer interface {
	RenderExport(w io.Writer, exp *models.Export) error
}

// ExportGenerator lays the data export out as an A4 report.
type ExportGenerator struct {
	// FontPath is an optional TTF with wide Unicode coverage. Without it the
	// core Helvetica font is used and non-Latin-1 text is approximated.
	FontPath string
}

func NewExportGenerator(fontPath string) *ExportGenerator {
	return &ExportGenerator{FontPath: fontPath}
}

type page struct {
	*gofpdf.Fpdf
	font string
	tr   func(string) string
}

func (g *ExportGenerator) RenderExport(w io.Writer, exp *models.Export) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Tracker export", true)
	doc.SetAuthor("tracker", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)

	p := g.newPage(doc)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(p.font, "", 9)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont(p.font, "B", 18)
	doc.CellFormat(0, 10, "Data export", "", 1, "C", false, 0, "")
	doc.SetFont(p.font, "", 11)
	doc.CellFormat(0, 7, exp.ExportDate.UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
	p.hr()

	p.sectionTitle("Account")
	p.kvLine("ID", exp.User.ID)
	p.kvLine("Name", orDash(exp.User.Name))
	p.kvLine("Email", orDash(exp.User.Email))
	p.hr()

	p.sectionTitle(fmt.Sprintf("Tasks (%d)", len(exp.Data.Tasks)))
	for _, t := range exp.Data.Tasks {
		line := fmt.Sprintf("[%s] %s  (%s, %s tracked)", t.Status, t.Title, t.Priority, formatMs(t.ElapsedTime))
		if t.DueDate != nil {
			line += ", due " + t.DueDate.Format("2006-01-02")
		}
		p.bullet(line)
	}
	p.hr()

	p.sectionTitle(fmt.Sprintf("Goals (%d)", len(exp.Data.Goals)))
	for _, gl := range exp.Data.Goals {
		p.bullet(fmt.Sprintf("%s  [%s] %d%%", gl.Title, gl.Status, gl.Progress))
		for _, st := range gl.Subtasks {
			mark := "[ ]"
			if st.Completed {
				mark = "[x]"
			}
			p.indented(mark + " " + st.Title)
		}
	}
	p.hr()

	p.sectionTitle(fmt.Sprintf("Watchlist (%d)", len(exp.Data.Watchlist)))
	for _, it := range exp.Data.Watchlist {
		line := fmt.Sprintf("%s (%s) [%s]", it.Title, it.Type, it.Status)
		if it.Rating != nil {
			line += fmt.Sprintf(" %.1f/10", *it.Rating)
		}
		p.bullet(line)
	}
	p.hr()

	p.sectionTitle(fmt.Sprintf("History (%d)", len(exp.Data.History)))
	for _, a := range exp.Data.History {
		p.bullet(fmt.Sprintf("%s  %s  %s", a.CreatedAt.UTC().Format("2006-01-02 15:04"), a.Action, a.Details.Title))
	}

	return doc.Output(w)
}

func (g *ExportGenerator) newPage(doc *gofpdf.Fpdf) *page {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			// AddUTF8Font принимает путь до TTF
			doc.AddUTF8Font("Unicode", "", g.FontPath)
			doc.AddUTF8Font("Unicode", "B", g.FontPath)
			return &page{Fpdf: doc, font: "Unicode", tr: func(s string) string { return s }}
		}
	}
	return &page{Fpdf: doc, font: "Helvetica", tr: doc.UnicodeTranslatorFromDescriptor("")}
}

func (p *page) sectionTitle(s string) {
	p.SetFont(p.font, "B", 12)
	p.CellFormat(0, 8, p.tr(s), "", 1, "L", false, 0, "")
	p.SetFont(p.font, "", 10)
}

func (p *page) kvLine(key, val string) {
	p.SetFont(p.font, "B", 10)
	p.CellFormat(30, 6, p.tr(key+":"), "", 0, "L", false, 0, "")
	p.SetFont(p.font, "", 10)
	p.CellFormat(0, 6, p.tr(val), "", 1, "L", false, 0, "")
}

func (p *page) bullet(s string) {
	p.SetFont(p.font, "", 10)
	p.MultiCell(0, 5, p.tr("- "+s), "", "L", false)
}

func (p *page) indented(s string) {
	p.SetX(28)
	p.SetFont(p.font, "", 9)
	p.MultiCell(0, 5, p.tr(s), "", "L", false)
}

func (p *page) hr() {
	y := p.GetY() + 1.5
	p.SetLineWidth(0.2)
	p.Line(20, y, 190, y)
	p.SetY(y + 3)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// formatMs renders milliseconds as h:mm:ss.
func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
