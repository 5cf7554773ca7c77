package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractorService turns uploaded CV/job files into plain text. Supported
// formats: PDF, DOCX, and plain text (.txt/.md). Failures surface as
// EXTRACTION_FAILED pipeline errors.
type ExtractorService interface {
	ExtractFile(path string) (string, error)
	ExtractBytes(filename string, data []byte) (string, error)
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

// ExtractFile implements ExtractorService.
func (e *extractorService) ExtractFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", errExtractionFailed(fmt.Errorf("file does not exist: %s", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errExtractionFailed(fmt.Errorf("failed to read file: %w", err))
	}

	return e.ExtractBytes(filepath.Base(path), data)
}

// ExtractBytes implements ExtractorService.
func (e *extractorService) ExtractBytes(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md":
		text = string(data)
	default:
		return "", errExtractionFailed(fmt.Errorf("unsupported file extension: %s", ext))
	}

	if err != nil {
		return "", errExtractionFailed(err)
	}

	text = CleanText(text)
	if text == "" {
		return "", errExtractionFailed(fmt.Errorf("no text content found in %s", filename))
	}

	return text, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads the text runs out of word/document.xml. A .docx file is
// a zip archive; text lives in <w:t> elements, paragraphs end with </w:p>.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("no word/document.xml in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var textBuilder strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("failed to decode text run: %w", err)
				}
				textBuilder.WriteString(text)
			case "br", "cr":
				textBuilder.WriteString("\n")
			case "tab":
				textBuilder.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				textBuilder.WriteString("\n")
			}
		}
	}

	return textBuilder.String(), nil
}

// CleanText trims every line and drops empty ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
