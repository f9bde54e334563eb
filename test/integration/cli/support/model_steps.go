package support

import (
	"fmt"
	"os"

	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
	"github.com/cucumber/godog"
)

// writeModel stores content under the temp directory and registers it as name.
func (testCtx *TestContext) writeModel(name, filename, content string) error {
	path := testCtx.TempPath(filename)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write model %s: %w", filename, err)
	}
	testCtx.Models[name] = path
	return nil
}

// aModelFileWithContent writes a model given inline in the feature.
func (testCtx *TestContext) aModelFileWithContent(filename string, content *godog.DocString) error {
	return testCtx.writeModel(filename, filename, content.Content)
}

func (testCtx *TestContext) theCatSatModelIsSavedAs(filename string) error {
	return testCtx.writeModel(filename, filename, testutil.CatSatText)
}

func (testCtx *TestContext) theGardenPathModelIsSavedAs(filename string) error {
	return testCtx.writeModel(filename, filename, testutil.GardenPathText)
}

// theModelIsConvertedTo re-encodes a registered model in the format implied
// by the new file name.
func (testCtx *TestContext) theModelIsConvertedTo(source, filename string) error {
	src, ok := testCtx.Models[source]
	if !ok {
		return fmt.Errorf("unknown model %q", source)
	}
	m, err := model.LoadFile(src)
	if err != nil {
		return err
	}

	path := testCtx.TempPath(filename)
	f, err := os.Create(path) //nolint:gosec // G304: path inside the scenario temp dir
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := model.Encode(f, m, model.FormatFromPath(path)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	testCtx.Models[filename] = path
	return nil
}

// RegisterModelSteps registers the model fixture steps.
func (testCtx *TestContext) RegisterModelSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a model file "([^"]*)" with content:$`, testCtx.aModelFileWithContent)
	sc.Step(`^the cat-sat model is saved as "([^"]*)"$`, testCtx.theCatSatModelIsSavedAs)
	sc.Step(`^the garden-path model is saved as "([^"]*)"$`, testCtx.theGardenPathModelIsSavedAs)
	sc.Step(`^the model "([^"]*)" is converted to "([^"]*)"$`, testCtx.theModelIsConvertedTo)
}
