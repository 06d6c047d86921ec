package resume

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
	"github.com/pkg/errors"
)

// File types.
const (
	FileTypePDF  = "PDF"
	FileTypeDOCX = "DOCX"
)

// Info describes a resume file.
type Info struct {
	Name      string `json:"name"`
	FileType  string `json:"fileType"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"sizeLabel"`
	Pages     int    `json:"pages,omitempty"`
	Words     int    `json:"words"`
}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// Inspect reports the type, size, page count (PDF) and word count of a resume.
func Inspect(name string, data []byte) (info Info, err error) {
	info = Info{
		Name:      name,
		FileType:  DetectType(name, data),
		Size:      int64(len(data)),
		SizeLabel: HumanSize(int64(len(data))),
	}

	var text string
	switch info.FileType {
	case FileTypePDF:
		info.Pages, text, err = readPDF(data)
	case FileTypeDOCX:
		text, err = readDOCX(data)
	default:
		text = string(data)
	}

	if err != nil {
		return info, err
	}

	info.Words = len(strings.Fields(text))
	return info, err
}

// DetectType uses the file extension, then the PDF magic number.
func DetectType(name string, data []byte) (fileType string) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		fileType = FileTypePDF
	case ".docx":
		fileType = FileTypeDOCX
	default:
		if bytes.HasPrefix(data, []byte("%PDF-")) {
			fileType = FileTypePDF
			return fileType
		}
		fileType = strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
	}
	return fileType
}

// ContentType returns the MIME type for a resume file type.
func ContentType(fileType string) (mime string) {
	switch fileType {
	case FileTypePDF:
		mime = "application/pdf"
	case FileTypeDOCX:
		mime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		mime = "application/octet-stream"
	}
	return mime
}

// HumanSize formats a byte count like "245 KB" or "1.2 MB".
func HumanSize(n int64) (label string) {
	switch {
	case n >= 1<<20:
		label = fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		label = fmt.Sprintf("%d KB", n/(1<<10))
	default:
		label = fmt.Sprintf("%d B", n)
	}
	return label
}

// Enrich fills resume metadata the portfolio document left blank.
func Enrich(res portfolio.Resume, info Info) (enriched portfolio.Resume) {
	enriched = res
	if enriched.FileSize == "" {
		enriched.FileSize = info.SizeLabel
	}
	if enriched.FileType == "" {
		enriched.FileType = info.FileType
	}
	return enriched
}

func readPDF(data []byte) (pages int, text string, err error) {
	var reader *pdf.Reader
	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrap(err, "failed to read pdf")
		return pages, text, err
	}

	pages = reader.NumPage()

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, _ := page.GetPlainText(nil)
		b.WriteString(pageText)
		b.WriteString(" ")
	}

	text = b.String()
	return pages, text, err
}

func readDOCX(data []byte) (text string, err error) {
	var doc *docx.ReplaceDocx
	doc, err = docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrap(err, "failed to parse docx")
		return text, err
	}
	defer doc.Close()

	text = xmlTag.ReplaceAllString(doc.Editable().GetContent(), " ")
	return text, err
}
