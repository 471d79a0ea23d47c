package identity_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tyemirov/swrelease/internal/identity"
)

const (
	machineTranslationsName  = "TopdataMachineTranslationsSW6"
	machineTranslationsClass = `Topdata\TopdataMachineTranslationsSW6\TopdataMachineTranslationsSW6`
)

func TestFromPluginClass(testingHandle *testing.T) {
	testCases := []struct {
		testName      string
		pluginClass   string
		expected      identity.Identity
		expectedError error
	}{
		{
			testName:    "vendor namespace",
			pluginClass: machineTranslationsClass,
			expected: identity.Identity{
				Name:      machineTranslationsName,
				Namespace: `Topdata\TopdataMachineTranslationsSW6`,
				FQCN:      machineTranslationsClass,
			},
		},
		{
			testName:    "leading separator is trimmed",
			pluginClass: `\Acme\Shop\Shop`,
			expected:    identity.Identity{Name: "Shop", Namespace: `Acme\Shop`, FQCN: `Acme\Shop\Shop`},
		},
		{
			testName:    "global class",
			pluginClass: "Standalone",
			expected:    identity.Identity{Name: "Standalone", FQCN: "Standalone"},
		},
		{
			testName:      "empty class",
			pluginClass:   "  ",
			expectedError: identity.ErrEmptyPluginClass,
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.testName, func(testingHandle *testing.T) {
			actual, deriveError := identity.FromPluginClass(testCase.pluginClass)
			if !errors.Is(deriveError, testCase.expectedError) {
				testingHandle.Fatalf("expected error %v, got %v", testCase.expectedError, deriveError)
			}
			if actual != testCase.expected {
				testingHandle.Fatalf("expected %+v, got %+v", testCase.expected, actual)
			}
		})
	}
}

func TestDeriveBasicVariant(testingHandle *testing.T) {
	original, classError := identity.FromPluginClass(machineTranslationsClass)
	if classError != nil {
		testingHandle.Fatalf("FromPluginClass failed: %v", classError)
	}
	rewriteMap := identity.Derive(original, identity.VariantSpec{Prefix: "Free"})

	expected := identity.RewriteMap{
		OldName:          machineTranslationsName,
		NewName:          "FreeTopdataMachineTranslationsSW6",
		OldNamespace:     `Topdata\TopdataMachineTranslationsSW6`,
		NewNamespace:     `Topdata\FreeTopdataMachineTranslationsSW6`,
		OldFQCN:          machineTranslationsClass,
		NewFQCN:          `Topdata\FreeTopdataMachineTranslationsSW6\FreeTopdataMachineTranslationsSW6`,
		OldComposerKebab: "topdata-machine-translations-sw6",
		NewComposerKebab: "free-topdata-machine-translations-sw6",
		OldAssetKebab:    "topdata-machine-translations-s-w6",
		NewAssetKebab:    "free-topdata-machine-translations-s-w6",
	}
	if rewriteMap != expected {
		testingHandle.Fatalf("unexpected rewrite map:\n got %+v\nwant %+v", rewriteMap, expected)
	}
	if rewriteMap.Identity().FQCN != expected.NewFQCN {
		testingHandle.Fatalf("unexpected identity %+v", rewriteMap.Identity())
	}
}

func TestDerivePreservesVendorSegment(testingHandle *testing.T) {
	acme := identity.Identity{Name: "Search", Namespace: `Acme\Search`, FQCN: `Acme\Search\Search`}
	acmeMap := identity.Derive(acme, identity.VariantSpec{Prefix: "Pro", Suffix: "X"})
	if acmeMap.NewNamespace != `Acme\ProSearchX` || acmeMap.NewFQCN != `Acme\ProSearchX\ProSearchX` {
		testingHandle.Fatalf("unexpected map %+v", acmeMap)
	}
}

func TestNewNameContainment(testingHandle *testing.T) {
	names := []string{"TopdataFoo", "A", "TopdataCategoryFilterSW6", "Plugin2Go"}
	specs := []identity.VariantSpec{
		{Prefix: "Free"},
		{Suffix: "Lite"},
		{Prefix: "Free", Suffix: "Lite"},
		{Prefix: "X", Suffix: "X"},
	}
	for _, name := range names {
		for _, spec := range specs {
			newName := spec.NewName(name)
			if !strings.Contains(newName, name) {
				testingHandle.Errorf("%s does not contain %s", newName, name)
			}
			if spec.Prefix != "" && !strings.HasPrefix(newName, spec.Prefix) {
				testingHandle.Errorf("%s does not start with %s", newName, spec.Prefix)
			}
			if spec.Suffix != "" && !strings.HasSuffix(newName, spec.Suffix) {
				testingHandle.Errorf("%s does not end with %s", newName, spec.Suffix)
			}
		}
	}
}

func TestVariantSpecEnabled(testingHandle *testing.T) {
	if (identity.VariantSpec{}).Enabled() {
		testingHandle.Fatalf("empty fragments must not enable a variant")
	}
	if !(identity.VariantSpec{Suffix: "Lite"}).Enabled() {
		testingHandle.Fatalf("a suffix alone must enable a variant")
	}
}

func TestTextReplacementsOrderAndApply(testingHandle *testing.T) {
	original, _ := identity.FromPluginClass(machineTranslationsClass)
	rewriteMap := identity.Derive(original, identity.VariantSpec{Prefix: "Free"})

	replacements := rewriteMap.TextReplacements()
	if len(replacements) != 3 {
		testingHandle.Fatalf("expected 3 replacements, got %d", len(replacements))
	}
	if replacements[0].Old != rewriteMap.OldNamespace || replacements[1].Old != rewriteMap.OldAssetKebab || replacements[2].Old != rewriteMap.OldName {
		testingHandle.Fatalf("unexpected replacement order %+v", replacements)
	}

	content := `namespace Topdata\TopdataMachineTranslationsSW6;
import Plugin from './topdata-machine-translations-s-w6/topdata-machine-translations-s-w6.js';
class TopdataMachineTranslationsSW6 {}`
	expected := `namespace Topdata\FreeTopdataMachineTranslationsSW6;
import Plugin from './free-topdata-machine-translations-s-w6/free-topdata-machine-translations-s-w6.js';
class FreeTopdataMachineTranslationsSW6 {}`
	if actual := rewriteMap.Apply(content); actual != expected {
		testingHandle.Fatalf("unexpected content:\n%s", actual)
	}
	if strings.Contains(rewriteMap.Apply(content), "FreeFree") {
		testingHandle.Fatalf("namespace was renamed twice")
	}

	regexMetacharacters := identity.Derive(identity.Identity{Name: "A.B"}, identity.VariantSpec{Prefix: "Z"})
	if actual := regexMetacharacters.Apply("A.B AxB"); actual != "ZA.B AxB" {
		testingHandle.Fatalf("literal replacement expected, got %s", actual)
	}
}
