//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/cucumber/godog"
)

func (s *StepsContext) registerCatalogSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I upload "([^"]*)" with content type "([^"]*)" and content "([^"]*)" to "([^"]*)" with data:$`, s.iUploadContent)
	sc.Step(`^the response body should be "([^"]*)"$`, s.theResponseBodyShouldBe)
}

// iUploadContent sends a multipart request with the JSON:API document in
// "data" and the file in "content_blob"
func (s *StepsContext) iUploadContent(filename, contentType, content, path string, data *godog.DocString) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("data", s.expand(data.Content)); err != nil {
		return err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="content_blob"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte(content)); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	return s.do("POST", path, mw.FormDataContentType(), &buf)
}

func (s *StepsContext) theResponseBodyShouldBe(expected string) error {
	if string(s.responseBody) != expected {
		return fmt.Errorf("expected body %q, got %q", expected, string(s.responseBody))
	}
	return nil
}
