package docx

import (
	"archive/zip"
	"bytes"
	"sync"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// The page mirrors the self-contained PDF layout: A4 with 2.7cm side
// margins, 3.6cm top and 2.6cm bottom.
const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:rFonts w:ascii="Tahoma" w:hAnsi="Tahoma" w:cs="Tahoma"/><w:b/><w:color w:val="C00000"/><w:sz w:val="40"/></w:rPr><w:t>LOOKING BACK</w:t></w:r></w:p>
<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:rFonts w:ascii="Tahoma" w:hAnsi="Tahoma" w:cs="Tahoma"/><w:sz w:val="24"/></w:rPr><w:t>B2</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:rFonts w:ascii="Tahoma" w:hAnsi="Tahoma" w:cs="Tahoma"/><w:b/><w:color w:val="C00000"/><w:sz w:val="24"/></w:rPr><w:t>Discussion</w:t></w:r></w:p>
<w:p><w:pPr><w:ind w:left="400"/></w:pPr><w:r><w:rPr><w:rFonts w:ascii="Tahoma" w:hAnsi="Tahoma" w:cs="Tahoma"/><w:sz w:val="24"/></w:rPr><w:t xml:space="preserve">1. What do you remember most about your first school?</w:t></w:r></w:p>
<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="2041" w:right="1531" w:bottom="1474" w:left="1531" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>
</w:body>
</w:document>`

var (
	defaultOnce sync.Once
	defaultDocx []byte
)

// DefaultTemplate returns a minimal worksheet with a LOOKING BACK title, a
// B2 level line, the Discussion heading and one example question.
func DefaultTemplate() []byte {
	defaultOnce.Do(func() {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		for _, part := range []struct{ name, data string }{
			{"[Content_Types].xml", contentTypesXML},
			{"_rels/.rels", relsXML},
			{documentPart, documentXML},
		} {
			w, err := zw.Create(part.name)
			if err != nil {
				panic(err)
			}
			if _, err := w.Write([]byte(part.data)); err != nil {
				panic(err)
			}
		}
		if err := zw.Close(); err != nil {
			panic(err)
		}
		defaultDocx = buf.Bytes()
	})
	out := make([]byte, len(defaultDocx))
	copy(out, defaultDocx)
	return out
}
