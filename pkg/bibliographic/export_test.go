package bibliographic

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

func pubmedRecord(t *testing.T) *Record {
	r, err := ParseMedline(string(readFixture(t, "pubmed_5.txt")))
	require.NoError(t, err)
	return r
}

func TestEndNote(t *testing.T) {
	out := EndNote(pubmedRecord(t))

	assert.Regexp(t, `%0 Journal Article`, out)
	assert.Contains(t, out, "%A Hendrickson, W. A.\n")
	assert.Contains(t, out, "%A Ward, K. B.\n")
	assert.Contains(t, out, "%D 1975\n")
	assert.Contains(t, out, "%T Atomic models for the polypeptide backbones of myohemerythrin and hemerythrin.\n")
	assert.Contains(t, out, "%J Biochem Biophys Res Commun\n")
	assert.Contains(t, out, "%V 66\n")
	assert.Contains(t, out, "%N 4\n")
	assert.Contains(t, out, "%P 1349-1356\n")
	assert.Contains(t, out, "%M 5\n")
	assert.Contains(t, out, "%U http://www.ncbi.nlm.nih.gov/pubmed/5\n")
	for _, k := range []string{"Animals", "Cnidaria", "Computers", "*Hemerythrin", "*Metalloproteins",
		"Models, Molecular", "*Muscle Proteins", "Protein Conformation", "Species Specificity"} {
		assert.Contains(t, out, "%K "+k+"\n")
	}
}

func TestBibTeX(t *testing.T) {
	out := BibTeX(pubmedRecord(t))

	assert.Regexp(t, `^@article\{PMID:5,`, out)
	for _, field := range []string{"author", "title", "journal", "year", "number", "pages", "url"} {
		assert.Regexp(t, `(?m)^  `+field+` +=`, out)
	}
	assert.Contains(t, out, "{Hendrickson, W. A. and Ward, K. B.}")
	assert.Contains(t, out, "{1349--1356}")
}

func TestBibTeX_PrePrint(t *testing.T) {
	published := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	doi := "10.1101/2020.01.01.000001"
	p := &model.Publication{
		Asset:           model.Asset{Title: "A preprint"},
		PublishedDate:   &published,
		DOI:             &doi,
		PublicationType: "preprint",
		PublicationAuthors: []model.PublicationAuthor{
			{FirstName: "Ada", LastName: "Lovelace"},
		},
	}
	out := BibTeX(FromPublication(p))

	assert.Regexp(t, `^@misc\{DOI:10.1101/2020.01.01.000001,`, out)
	assert.Contains(t, out, "author  = {Lovelace, A.}")
	assert.Contains(t, out, "title   = {A preprint}")
	assert.NotContains(t, out, "journal")
}

func TestEMBL(t *testing.T) {
	out := EMBL(pubmedRecord(t))

	assert.Regexp(t, `RX   PUBMED; 5\.`, out)
	assert.Contains(t, out, "RT   \"Atomic models for the polypeptide backbones of myohemerythrin and\nRT   hemerythrin.\";\n")
	assert.Contains(t, out, "RA   Hendrickson W.A., Ward K.B.;\n")
	assert.Contains(t, out, "RL   Biochem Biophys Res Commun 66(4):1349-1356(1975).\n")
	assert.Contains(t, out, "XX\n")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	r := pubmedRecord(t)
	require.NoError(t, Write(&buf, FormatEndNote, r, r))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("%0 Journal Article")))

	assert.Error(t, Write(&buf, "ris", r))
}
