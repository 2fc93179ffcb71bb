package support

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/testutil"
	"github.com/cucumber/godog"
)

// RegisterSteps registers every step definition on sc.
func (testCtx *TestContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a (\d+)-page book named "([^"]*)"$`, testCtx.aBookNamed)
	sc.Step(`^a blank (\d+)-page PDF named "([^"]*)"$`, testCtx.aBlankPDFNamed)
	sc.Step(`^I run pocrop with "([^"]*)"$`, testCtx.iRunPocropWith)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the JSON report should list (\d+) documents?$`, testCtx.theJSONReportShouldList)
}

func (testCtx *TestContext) writePDF(name string, pages []testutil.PDFPage) error {
	return os.WriteFile(testCtx.Path(name), testutil.BuildTextPDF(pages), 0o600)
}

func (testCtx *TestContext) aBookNamed(pages int, name string) error {
	return testCtx.writePDF(name, testutil.BookPages(pages))
}

func (testCtx *TestContext) aBlankPDFNamed(pages int, name string) error {
	blank := make([]testutil.PDFPage, pages)
	for i := range blank {
		blank[i] = testutil.LetterPage()
	}
	return testCtx.writePDF(name, blank)
}

func (testCtx *TestContext) iRunPocropWith(args string) error {
	testCtx.RunCommand(strings.Fields(testCtx.expand(args))...)
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("expected success, got %v\nstderr: %s", testCtx.LastError, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("expected failure, got output:\n%s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(text string) error {
	want := testCtx.expand(text)
	if !strings.Contains(testCtx.LastOutput, want) {
		return fmt.Errorf("output does not contain %q:\n%s", want, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(text string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("expected an error mentioning %q", text)
	}
	want := testCtx.expand(text)
	if !strings.Contains(testCtx.LastError.Error(), want) {
		return fmt.Errorf("error %q does not mention %q", testCtx.LastError, want)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	if !testutil.FileExists(testCtx.Path(name)) {
		return fmt.Errorf("file %s does not exist", name)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(name string) error {
	if testutil.FileExists(testCtx.Path(name)) {
		return fmt.Errorf("file %s exists", name)
	}
	return nil
}

func (testCtx *TestContext) theJSONReportShouldList(n int) error {
	var reports []map[string]any
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &reports); err != nil {
		return fmt.Errorf("output is not a JSON report: %w", err)
	}
	if len(reports) != n {
		return fmt.Errorf("expected %d documents, got %d", n, len(reports))
	}
	return nil
}
