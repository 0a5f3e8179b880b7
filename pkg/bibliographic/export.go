package bibliographic

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Export formats
const (
	FormatEndNote = "enw"
	FormatBibTeX  = "bibtex"
	FormatEMBL    = "embl"
)

// ContentTypes of the export formats
var ContentTypes = map[string]string{
	FormatEndNote: "application/x-endnote-refer",
	FormatBibTeX:  "application/x-bibtex",
	FormatEMBL:    "chemical/x-embl-dl-nucleotide",
}

// Write formats records in one of the export formats
func Write(w io.Writer, format string, records ...*Record) error {
	var fn func(*Record) string
	switch format {
	case FormatEndNote:
		fn = EndNote
	case FormatBibTeX:
		fn = BibTeX
	case FormatEMBL:
		fn = EMBL
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	for i, r := range records {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, fn(r)); err != nil {
			return err
		}
	}
	return nil
}

// EndNote renders the refer/tagged format EndNote imports
func EndNote(r *Record) string {
	var b strings.Builder
	line := func(tag, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%%%s %s\n", tag, value)
		}
	}
	if r.IsPrePrint() {
		line("0", "Electronic Article")
	} else {
		line("0", "Journal Article")
	}
	for _, a := range r.Authors {
		line("A", endNoteAuthor(a))
	}
	line("D", year(r))
	line("T", r.Title)
	line("J", r.Journal)
	line("V", r.Volume)
	line("N", r.Issue)
	line("P", r.Pages)
	if r.PubmedID != 0 {
		line("M", strconv.Itoa(r.PubmedID))
	}
	line("R", r.DOI)
	line("U", r.URL())
	line("X", r.Abstract)
	for _, term := range r.MeshTerms {
		line("K", term)
	}
	return b.String()
}

func endNoteAuthor(a Author) string {
	initials := a.dotted(" ")
	if initials == "" {
		return a.LastName
	}
	return a.LastName + ", " + initials
}

// BibTeX renders a single entry keyed by PubMed ID, then DOI
func BibTeX(r *Record) string {
	kind := "article"
	if r.IsPrePrint() {
		kind = "misc"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", kind, bibtexKey(r))
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %-8s= {%s},\n", name, value)
		}
	}
	authors := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		authors = append(authors, endNoteAuthor(a))
	}
	field("author", strings.Join(authors, " and "))
	field("title", r.Title)
	field("journal", r.Journal)
	field("year", year(r))
	field("volume", r.Volume)
	field("number", r.Issue)
	field("pages", strings.Replace(r.Pages, "-", "--", 1))
	field("doi", r.DOI)
	field("url", r.URL())
	if r.IsPrePrint() {
		field("note", "Preprint")
	}
	b.WriteString("}\n")
	return b.String()
}

func bibtexKey(r *Record) string {
	switch {
	case r.PubmedID != 0:
		return "PMID:" + strconv.Itoa(r.PubmedID)
	case r.DOI != "":
		return "DOI:" + r.DOI
	}
	var b strings.Builder
	if len(r.Authors) > 0 {
		b.WriteString(strings.ReplaceAll(r.Authors[0].LastName, " ", ""))
	}
	b.WriteString(year(r))
	if b.Len() == 0 {
		return "publication"
	}
	return b.String()
}

const emblWidth = 80

// EMBL renders the reference block of an EMBL flat file
func EMBL(r *Record) string {
	var b strings.Builder
	if r.PubmedID != 0 {
		fmt.Fprintf(&b, "RX   PUBMED; %d.\n", r.PubmedID)
	}
	if r.DOI != "" {
		fmt.Fprintf(&b, "RX   DOI; %s.\n", r.DOI)
	}

	authors := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		name := a.LastName
		if initials := a.dotted(""); initials != "" {
			name += " " + initials
		}
		authors = append(authors, name)
	}
	writeWrapped(&b, "RA", strings.Join(authors, ", ")+";")
	writeWrapped(&b, "RT", `"`+r.Title+`";`)

	rl := r.Citation()
	if y := year(r); y != "" {
		rl += "(" + y + ")"
	}
	writeWrapped(&b, "RL", rl+".")
	b.WriteString("XX\n")
	return b.String()
}

// writeWrapped fills words onto "XX   " prefixed lines no wider than emblWidth
func writeWrapped(b *strings.Builder, tag, text string) {
	prefix := tag + "   "
	line := prefix
	for _, word := range strings.Fields(text) {
		if line != prefix && len(line)+1+len(word) > emblWidth {
			b.WriteString(line + "\n")
			line = prefix
		}
		if line != prefix {
			line += " "
		}
		line += word
	}
	b.WriteString(line + "\n")
}

func year(r *Record) string {
	if r.Year != 0 {
		return strconv.Itoa(r.Year)
	}
	if r.PublishedDate != nil {
		return strconv.Itoa(r.PublishedDate.Year())
	}
	return ""
}
