package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Label is the printable cover slip attached to one physical deck.
type Label struct {
	QRCode       string
	Title        string
	CourseCode   string
	CourseName   string
	ProgramName  string
	School       string
	Semester     string
	Room         string
	Packet       string
	Rack         string
	StudentCount int
	Evaluator    string
	ExamDate     string
	ExamTime     string
}

const (
	labelCols   = 2
	labelRows   = 3
	labelWidth  = 95.0
	labelHeight = 90.0
	labelMargin = 7.5
	qrSizeMM    = 32.0
	qrSizePx    = 256
)

// LabelRenderer lays deck labels out six to an A4 page, each with a QR
// image of the deck's scannable identifier.
type LabelRenderer struct {
	level qrcode.RecoveryLevel
}

// NewLabelRenderer constructs a renderer with medium QR error correction.
func NewLabelRenderer() *LabelRenderer {
	return &LabelRenderer{level: qrcode.Medium}
}

// Render returns the PDF bytes for labels.
func (r *LabelRenderer) Render(labels []Label) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(labelMargin, labelMargin, labelMargin)
	pdf.SetAutoPageBreak(false, 0)

	perPage := labelCols * labelRows
	for i, label := range labels {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
		}
		x := labelMargin + float64(slot%labelCols)*labelWidth
		y := labelMargin + float64(slot/labelCols)*labelHeight
		if err := r.drawLabel(pdf, i, label, x, y); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render labels pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *LabelRenderer) drawLabel(pdf *gofpdf.Fpdf, idx int, label Label, x, y float64) error {
	if label.QRCode == "" {
		return fmt.Errorf("label %d has no qr code", idx)
	}
	png, err := qrcode.Encode(label.QRCode, r.level, qrSizePx)
	if err != nil {
		return fmt.Errorf("encode qr for label %d: %w", idx, err)
	}

	name := fmt.Sprintf("qr-%d", idx)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("register qr for label %d: %w", idx, err)
	}

	pdf.Rect(x, y, labelWidth-2, labelHeight-2, "D")
	pdf.ImageOptions(name, x+labelWidth-qrSizeMM-5, y+3, qrSizeMM, qrSizeMM, false, opts, 0, "")

	pdf.SetXY(x+3, y+4)
	pdf.SetFont("Arial", "B", 11)
	title := label.Title
	if title == "" {
		title = "Answer Sheet Deck"
	}
	pdf.MultiCell(labelWidth-qrSizeMM-10, 5, title, "", "L", false)

	lines := [][2]string{
		{"Course", fmt.Sprintf("%s - %s", label.CourseCode, label.CourseName)},
		{"Program", label.ProgramName},
		{"School", label.School},
		{"Semester", label.Semester},
		{"Date", label.ExamDate},
		{"Time", label.ExamTime},
		{"Room", label.Room},
		{"Packet", label.Packet},
		{"Rack", label.Rack},
		{"Students", fmt.Sprintf("%d", label.StudentCount)},
		{"Evaluator", label.Evaluator},
	}

	cursor := y + qrSizeMM + 6
	for _, line := range lines {
		pdf.SetXY(x+3, cursor)
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(20, 4.5, line[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(labelWidth-26, 4.5, truncate(line[1], 60), "", 0, "L", false, 0, "")
		cursor += 4.5
	}

	pdf.SetXY(x+3, y+labelHeight-8)
	pdf.SetFont("Courier", "", 6)
	pdf.CellFormat(labelWidth-8, 4, truncate(label.QRCode, 90), "", 0, "L", false, 0, "")
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
