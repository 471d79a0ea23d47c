package variant_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/swrelease/internal/identity"
	"github.com/tyemirov/swrelease/internal/variant"
)

const (
	pluginName  = "TopdataMachineTranslationsSW6"
	pluginClass = `Topdata\TopdataMachineTranslationsSW6\TopdataMachineTranslationsSW6`
	oldAsset    = "topdata-machine-translations-s-w6"
	newAsset    = "free-topdata-machine-translations-s-w6"
)

func writeTreeFile(testingHandle *testing.T, filePath string, content []byte) {
	testingHandle.Helper()
	if makeDirectoryError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirectoryError != nil {
		testingHandle.Fatalf("create directory for %s: %v", filePath, makeDirectoryError)
	}
	if writeError := os.WriteFile(filePath, content, 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", filePath, writeError)
	}
}

func readTreeFile(testingHandle *testing.T, filePath string) string {
	testingHandle.Helper()
	content, readError := os.ReadFile(filePath)
	if readError != nil {
		testingHandle.Fatalf("read %s: %v", filePath, readError)
	}
	return string(content)
}

// buildPluginTree lays out a minimal plugin below a directory named after the plugin.
func buildPluginTree(testingHandle *testing.T, assetDirectories ...string) string {
	testingHandle.Helper()
	rootPath := filepath.Join(testingHandle.TempDir(), pluginName)
	writeTreeFile(testingHandle, filepath.Join(rootPath, "composer.json"), []byte(`{
    "name": "topdata/topdata-machine-translations-sw6",
    "extra": {
        "shopware-plugin-class": "Topdata\\TopdataMachineTranslationsSW6\\TopdataMachineTranslationsSW6",
        "label": "Topdata Machine Translations"
    }
}
`))
	writeTreeFile(testingHandle, filepath.Join(rootPath, "src", pluginName+".php"), []byte("<?php\nnamespace Topdata\\TopdataMachineTranslationsSW6;\n\nclass TopdataMachineTranslationsSW6 extends Plugin {}\n"))
	writeTreeFile(testingHandle, filepath.Join(rootPath, "src", "Resources", "views", "storefront", "base.html.twig"), []byte("{{ asset('"+oldAsset+"/"+oldAsset+".js') }}\n"))
	writeTreeFile(testingHandle, filepath.Join(rootPath, "src", "Resources", "config", "plugin.png"), []byte{0x89, 'P', 'N', 'G', 0x00, 'T', 'o', 'p', 'd', 'a', 't', 'a'})
	for _, assetDirectory := range assetDirectories {
		writeTreeFile(testingHandle, filepath.Join(rootPath, variant.CompiledAssetDirectory, assetDirectory, oldAsset+".js"), []byte("console.log('"+pluginName+"');"))
	}
	return rootPath
}

func freeRewriteMap(testingHandle *testing.T) identity.RewriteMap {
	testingHandle.Helper()
	original, classError := identity.FromPluginClass(pluginClass)
	if classError != nil {
		testingHandle.Fatalf("FromPluginClass failed: %v", classError)
	}
	return identity.Derive(original, identity.VariantSpec{Prefix: "Free"})
}

// TestApplyVariantRewritesTree verifies all four steps on a conventional layout.
func TestApplyVariantRewritesTree(testingHandle *testing.T) {
	rootPath := buildPluginTree(testingHandle, "legacy-build-name")
	result, applyError := variant.ApplyVariant(rootPath, pluginName, freeRewriteMap(testingHandle), zap.NewNop())
	if applyError != nil {
		testingHandle.Fatalf("ApplyVariant failed: %v", applyError)
	}

	newRootPath := filepath.Join(filepath.Dir(rootPath), "FreeTopdataMachineTranslationsSW6")
	if result.RootPath != newRootPath || result.NewName != "FreeTopdataMachineTranslationsSW6" {
		testingHandle.Fatalf("unexpected result %+v", result)
	}
	if _, statError := os.Stat(rootPath); !errors.Is(statError, fs.ErrNotExist) {
		testingHandle.Fatalf("old root still exists")
	}

	mainSource := readTreeFile(testingHandle, filepath.Join(newRootPath, "src", "FreeTopdataMachineTranslationsSW6.php"))
	if !strings.Contains(mainSource, `namespace Topdata\FreeTopdataMachineTranslationsSW6;`) || !strings.Contains(mainSource, "class FreeTopdataMachineTranslationsSW6 ") {
		testingHandle.Errorf("main source not rewritten:\n%s", mainSource)
	}
	if strings.Contains(mainSource, "FreeFree") {
		testingHandle.Errorf("main source renamed twice:\n%s", mainSource)
	}

	assetEntry := filepath.Join(newRootPath, variant.CompiledAssetDirectory, newAsset, newAsset+".js")
	if readTreeFile(testingHandle, assetEntry) != "console.log('FreeTopdataMachineTranslationsSW6');" {
		testingHandle.Errorf("asset entry not renamed and rewritten")
	}
	template := readTreeFile(testingHandle, filepath.Join(newRootPath, "src", "Resources", "views", "storefront", "base.html.twig"))
	if template != "{{ asset('"+newAsset+"/"+newAsset+".js') }}\n" {
		testingHandle.Errorf("asset reference not rewritten: %s", template)
	}

	binaryContent := readTreeFile(testingHandle, filepath.Join(newRootPath, "src", "Resources", "config", "plugin.png"))
	if !strings.HasSuffix(binaryContent, "Topdata") || strings.Contains(binaryContent, "Free") {
		testingHandle.Errorf("binary file was modified")
	}

	composerContent := readTreeFile(testingHandle, filepath.Join(newRootPath, "composer.json"))
	if strings.Contains(composerContent, "Free") {
		testingHandle.Errorf("composer.json belongs to the metadata rewrite:\n%s", composerContent)
	}

	if result.ModifiedFiles != 3 {
		testingHandle.Errorf("expected 3 modified files, got %d", result.ModifiedFiles)
	}
	for _, report := range result.Steps {
		if report.Outcome != variant.OutcomeApplied {
			testingHandle.Errorf("unexpected skipped step %+v", report)
		}
	}
}

// TestApplyVariantAmbiguousAssetDirectory verifies that two candidates skip the asset step.
func TestApplyVariantAmbiguousAssetDirectory(testingHandle *testing.T) {
	rootPath := buildPluginTree(testingHandle, oldAsset, "second-build")
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)

	result, applyError := variant.ApplyVariant(rootPath, pluginName, freeRewriteMap(testingHandle), zap.New(observedCore))
	if applyError != nil {
		testingHandle.Fatalf("ApplyVariant failed: %v", applyError)
	}

	assetParent := filepath.Join(result.RootPath, variant.CompiledAssetDirectory)
	for _, untouched := range []string{oldAsset, "second-build"} {
		if _, statError := os.Stat(filepath.Join(assetParent, untouched)); statError != nil {
			testingHandle.Errorf("expected %s to stay in place: %v", untouched, statError)
		}
	}
	if _, statError := os.Stat(filepath.Join(assetParent, newAsset)); statError == nil {
		testingHandle.Errorf("asset directory must not be renamed")
	}

	warnings := observedLogs.FilterMessage("variant step skipped").FilterField(zap.Stringer("step", variant.StepCompiledAssets))
	if warnings.Len() != 1 {
		testingHandle.Fatalf("expected one compiled asset warning, got %d", warnings.Len())
	}
	if result.Steps[1].Outcome != variant.OutcomeSkipped {
		testingHandle.Fatalf("expected the asset step to be skipped, got %+v", result.Steps[1])
	}
}

// TestApplyVariantMissingMainSource verifies the warning for a nonstandard layout.
func TestApplyVariantMissingMainSource(testingHandle *testing.T) {
	rootPath := buildPluginTree(testingHandle)
	if removeError := os.Remove(filepath.Join(rootPath, "src", pluginName+".php")); removeError != nil {
		testingHandle.Fatalf("remove main source: %v", removeError)
	}
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)

	result, applyError := variant.ApplyVariant(rootPath, pluginName, freeRewriteMap(testingHandle), zap.New(observedCore))
	if applyError != nil {
		testingHandle.Fatalf("ApplyVariant failed: %v", applyError)
	}
	if result.Steps[0].Outcome != variant.OutcomeSkipped || result.Steps[1].Outcome != variant.OutcomeSkipped {
		testingHandle.Fatalf("expected the first two steps to be skipped, got %+v", result.Steps)
	}
	if observedLogs.Len() != 2 {
		testingHandle.Fatalf("expected two warnings, got %d", observedLogs.Len())
	}
	if filepath.Base(result.RootPath) != "FreeTopdataMachineTranslationsSW6" {
		testingHandle.Fatalf("root was not renamed: %s", result.RootPath)
	}
}

// TestApplyVariantRootRenameIsFatal verifies that an occupied destination aborts the rewrite.
func TestApplyVariantRootRenameIsFatal(testingHandle *testing.T) {
	rootPath := buildPluginTree(testingHandle)
	occupiedPath := filepath.Join(filepath.Dir(rootPath), "FreeTopdataMachineTranslationsSW6")
	if makeDirectoryError := os.Mkdir(occupiedPath, 0o755); makeDirectoryError != nil {
		testingHandle.Fatalf("create occupied destination: %v", makeDirectoryError)
	}

	_, applyError := variant.ApplyVariant(rootPath, pluginName, freeRewriteMap(testingHandle), zap.NewNop())
	var stepError *variant.StepError
	if !errors.As(applyError, &stepError) {
		testingHandle.Fatalf("expected a StepError, got %v", applyError)
	}
	if stepError.Step != variant.StepRootRename || !errors.Is(applyError, fs.ErrExist) {
		testingHandle.Fatalf("unexpected step error %v", stepError)
	}
}

// TestTransform verifies the metadata and filesystem rewrite together.
func TestTransform(testingHandle *testing.T) {
	rootPath := buildPluginTree(testingHandle, oldAsset)
	result, rewriteMap, transformError := variant.Transform(rootPath, identity.VariantSpec{Prefix: "Free"}, zap.NewNop())
	if transformError != nil {
		testingHandle.Fatalf("Transform failed: %v", transformError)
	}
	if rewriteMap.NewName != result.NewName {
		testingHandle.Fatalf("result and rewrite map disagree: %s vs %s", result.NewName, rewriteMap.NewName)
	}
	composerContent := readTreeFile(testingHandle, filepath.Join(result.RootPath, "composer.json"))
	for _, fragment := range []string{
		`"name": "topdata/free-topdata-machine-translations-sw6"`,
		`"label": "[FREE] Topdata Machine Translations"`,
		`"shopware-plugin-class": "Topdata\\FreeTopdataMachineTranslationsSW6\\FreeTopdataMachineTranslationsSW6"`,
	} {
		if !strings.Contains(composerContent, fragment) {
			testingHandle.Errorf("expected %s in:\n%s", fragment, composerContent)
		}
	}
	if strings.Contains(composerContent, "FreeFree") {
		testingHandle.Errorf("composer.json renamed twice:\n%s", composerContent)
	}

	if _, _, emptyError := variant.Transform(rootPath, identity.VariantSpec{}, zap.NewNop()); !errors.Is(emptyError, variant.ErrNoVariantRequested) {
		testingHandle.Fatalf("expected ErrNoVariantRequested, got %v", emptyError)
	}
}

// TestApplyVariantRewritesLargeTemplates verifies that a multibyte character at the
// content sniff limit does not keep a template from being rewritten.
func TestApplyVariantRewritesLargeTemplates(testingHandle *testing.T) {
	rootPath := buildPluginTree(testingHandle)
	templatePath := filepath.Join(rootPath, "src", "Resources", "views", "storefront", "large.html.twig")
	writeTreeFile(testingHandle, templatePath, []byte(strings.Repeat("a", 7999)+"ü {% sw_extends '@"+pluginName+"/base.html.twig' %}\n"))
	core, observed := observer.New(zapcore.WarnLevel)

	if _, applyError := variant.ApplyVariant(rootPath, pluginName, freeRewriteMap(testingHandle), zap.New(core)); applyError != nil {
		testingHandle.Fatalf("ApplyVariant failed: %v", applyError)
	}
	rewritten := readTreeFile(testingHandle, filepath.Join(filepath.Dir(rootPath), "Free"+pluginName, "src", "Resources", "views", "storefront", "large.html.twig"))
	if !strings.Contains(rewritten, "'@Free"+pluginName+"/base.html.twig'") {
		testingHandle.Fatalf("template still references the old name: %s", rewritten[len(rewritten)-80:])
	}
	if observed.FilterMessage("skipping identifier substitution in binary content").Len() != 0 {
		testingHandle.Fatalf("no file of the tree should be treated as binary content")
	}
}
