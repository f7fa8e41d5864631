package docx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// TitleMarker is replaced by the unit title.
const TitleMarker = "LOOKING BACK"

const (
	discussionMarker = "Discussion"
	questionFont     = "Tahoma"
	questionHalfPts  = "24"
)

var (
	// Longest first so "B1+" is not read as "B1".
	levelTokenRe = regexp.MustCompile(`B1\+|A1|A2|B1|B2|C1|C2`)
	firstItemRe  = regexp.MustCompile(`^\s*(1[.)]\s+)`)
)

// Fill writes c into the template: title and level above the Discussion
// heading, then one numbered paragraph per question in place of the
// template's example list.
func Fill(template []byte, c Content) ([]byte, error) {
	a, err := open(template)
	if err != nil {
		return nil, err
	}
	body := a.body()
	paras := a.paragraphs()

	disc := -1
	for i, p := range paras {
		if strings.TrimSpace(paragraphText(p)) == discussionMarker {
			disc = i
			break
		}
	}
	if disc < 0 {
		return nil, ErrNoDiscussion
	}

	for _, p := range paras[:disc+1] {
		replaceHeader(p, c)
	}

	prefix, style := "1. ", ""
	first := -1
	for i := disc + 1; i < len(paras); i++ {
		if m := firstItemRe.FindStringSubmatch(paragraphText(paras[i])); m != nil {
			first = i
			prefix = m[1]
			style = paragraphStyle(paras[i])
			break
		}
	}
	if first < 0 {
		first = disc + 1
		if first < len(paras) {
			style = paragraphStyle(paras[first])
		}
	}
	for _, p := range paras[first:] {
		body.RemoveChild(p)
	}

	sep := ")"
	if strings.Contains(prefix, ". ") {
		sep = "."
	}
	space := " "
	if _, after, ok := strings.Cut(prefix, sep); ok && after != "" {
		space = after
	}

	sectPr := body.SelectElement("w:sectPr")
	for i, q := range c.Questions {
		p := newQuestionParagraph(style, fmt.Sprintf("%d%s%s%s", i+1, sep, space, q))
		if sectPr != nil {
			body.InsertChild(sectPr, p)
		} else {
			body.AddChild(p)
		}
	}
	return a.bytes()
}

// replaceHeader swaps level tokens and the title marker run by run so the
// template's formatting survives. Levels go first so a title containing a
// level token is left intact.
func replaceHeader(p *etree.Element, c Content) {
	for _, r := range p.FindElements("./w:r") {
		txt := runText(r)
		out := txt
		if c.Level != "" {
			out = levelTokenRe.ReplaceAllLiteralString(out, c.Level)
		}
		if strings.Contains(out, TitleMarker) {
			out = strings.ReplaceAll(out, TitleMarker, c.Title)
		}
		if out != txt {
			setRunText(r, out)
		}
	}
}

func paragraphStyle(p *etree.Element) string {
	ppr := p.SelectElement("w:pPr")
	if ppr == nil {
		return ""
	}
	ps := ppr.SelectElement("w:pStyle")
	if ps == nil {
		return ""
	}
	return ps.SelectAttrValue("w:val", "")
}

func newQuestionParagraph(style, text string) *etree.Element {
	p := etree.NewElement("w:p")
	if style != "" {
		p.CreateElement("w:pPr").CreateElement("w:pStyle").CreateAttr("w:val", style)
	}
	r := p.CreateElement("w:r")
	rpr := r.CreateElement("w:rPr")
	fonts := rpr.CreateElement("w:rFonts")
	for _, k := range []string{"w:ascii", "w:hAnsi", "w:cs"} {
		fonts.CreateAttr(k, questionFont)
	}
	rpr.CreateElement("w:sz").CreateAttr("w:val", questionHalfPts)
	rpr.CreateElement("w:szCs").CreateAttr("w:val", questionHalfPts)
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return p
}
