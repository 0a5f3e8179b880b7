package bibliographic

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

// MEDLINE lines are "TAG - value" with the tag padded to four columns.
// Continuation lines are indented by six spaces.
const medlineValueColumn = 6

// ParseMedline reads the first record of a MEDLINE text response. A
// response without a PMID is ErrNotFound, which is what efetch returns for
// unknown ids.
func ParseMedline(text string) (*Record, error) {
	fields := medlineFields(text)
	pmids := fields["PMID"]
	if len(pmids) == 0 {
		return nil, ErrNotFound
	}
	id, err := strconv.Atoi(pmids[0])
	if err != nil {
		return nil, &ParseError{Source: "pubmed", Err: err}
	}

	r := &Record{
		PubmedID:  id,
		Title:     first(fields["TI"]),
		Abstract:  first(fields["AB"]),
		Journal:   first(fields["TA"]),
		Volume:    first(fields["VI"]),
		Issue:     first(fields["IP"]),
		Pages:     expandPages(first(fields["PG"])),
		MeshTerms: fields["MH"],
	}
	if r.Journal == "" {
		r.Journal = first(fields["JT"])
	}
	if r.Title == "" {
		// books and chapters
		r.Title = first(fields["BTI"])
	}
	r.PublishedDate, r.Year = medlineDate(first(fields["DP"]))
	r.DOI = medlineDOI(append(fields["LID"], fields["AID"]...))
	for _, pt := range fields["PT"] {
		if strings.EqualFold(pt, "Preprint") {
			r.PublicationType = "preprint"
		}
	}
	r.Authors = medlineAuthors(fields["AU"], fields["FAU"])
	return r, nil
}

// medlineFields collects the values of the first record by tag, in order
func medlineFields(text string) map[string][]string {
	fields := map[string][]string{}
	var tag string
	seen := false
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if seen {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "      ") && tag != "" {
			values := fields[tag]
			values[len(values)-1] += " " + strings.TrimSpace(line)
			continue
		}
		if len(line) < medlineValueColumn-1 || line[4] != '-' {
			continue
		}
		tag = strings.TrimSpace(line[:4])
		value := ""
		if len(line) > medlineValueColumn {
			value = strings.TrimSpace(line[medlineValueColumn:])
		}
		fields[tag] = append(fields[tag], value)
		seen = true
	}
	return fields
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// expandPages turns the abbreviated "1349-56" into "1349-1356"
func expandPages(pages string) string {
	parts := strings.SplitN(pages, "-", 2)
	if len(parts) != 2 {
		return pages
	}
	start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if len(end) >= len(start) || !isDigits(start) || !isDigits(end) {
		return start + "-" + end
	}
	return start + "-" + start[:len(start)-len(end)] + end
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var medlineDateLayouts = []string{"2006 Jan 2", "2006 Jan", "2006"}

// medlineDate parses DP values such as "1975 Aug 18", "2016 Jan" or
// "2001 Spring"; seasons and ranges keep only the year.
func medlineDate(dp string) (*time.Time, int) {
	if dp == "" {
		return nil, 0
	}
	for _, layout := range medlineDateLayouts {
		if t, err := time.Parse(layout, dp); err == nil {
			return &t, t.Year()
		}
	}
	if len(dp) >= 4 {
		if year, err := strconv.Atoi(dp[:4]); err == nil {
			t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t, year
		}
	}
	return nil, 0
}

func medlineDOI(ids []string) string {
	for _, id := range ids {
		if strings.HasSuffix(id, "[doi]") {
			return NormalizeDOI(strings.TrimSuffix(id, "[doi]"))
		}
	}
	return ""
}

// medlineAuthors pairs AU ("Hendrickson WA") with FAU ("Hendrickson, Wayne A")
// when both are present. Initials always come from AU.
func medlineAuthors(au, fau []string) []Author {
	authors := make([]Author, 0, len(au))
	for i, short := range au {
		a := Author{}
		if j := strings.LastIndex(short, " "); j > 0 {
			a.LastName = short[:j]
			a.Initials = short[j+1:]
			a.FirstName = Author{Initials: a.Initials}.dotted(" ")
		} else {
			a.LastName = short
		}
		if i < len(fau) {
			if last, firstName, ok := strings.Cut(fau[i], ","); ok {
				a.LastName = strings.TrimSpace(last)
				a.FirstName = strings.TrimSpace(firstName)
			}
		}
		authors = append(authors, a)
	}
	if len(authors) == 0 {
		for _, full := range fau {
			last, firstName, _ := strings.Cut(full, ",")
			authors = append(authors, Author{LastName: strings.TrimSpace(last), FirstName: strings.TrimSpace(firstName)})
		}
	}
	return authors
}
