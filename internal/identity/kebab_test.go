package identity_test

import (
	"testing"

	"github.com/tyemirov/swrelease/internal/identity"
)

func TestComposerKebab(testingHandle *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "FreeTopdataPlugin", expected: "free-topdata-plugin"},
		{input: "TopdataCategoryFilterSW6", expected: "topdata-category-filter-sw6"},
		{input: "TopdataMachineTranslationsSW6", expected: "topdata-machine-translations-sw6"},
		{input: "MyPlugin", expected: "my-plugin"},
		{input: "Plugin2Go", expected: "plugin2-go"},
	}
	for _, testCase := range testCases {
		if actual := identity.ComposerKebab(testCase.input); actual != testCase.expected {
			testingHandle.Errorf("ComposerKebab(%s): expected %s, got %s", testCase.input, testCase.expected, actual)
		}
	}
}

func TestAssetKebab(testingHandle *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "TopdataCategoryFilterSW6", expected: "topdata-category-filter-s-w6"},
		{input: "MyPlugin", expected: "my-plugin"},
		{input: "MySWPlugin", expected: "my-s-w-plugin"},
		{input: "AnotherSW", expected: "another-s-w"},
		{input: "Plugin2Go", expected: "plugin2-go"},
		{input: "TopdataABCSW6", expected: "topdata-a-b-c-s-w6"},
	}
	for _, testCase := range testCases {
		if actual := identity.AssetKebab(testCase.input); actual != testCase.expected {
			testingHandle.Errorf("AssetKebab(%s): expected %s, got %s", testCase.input, testCase.expected, actual)
		}
	}
}

func TestKebabFormsDiverge(testingHandle *testing.T) {
	const name = "TopdataCategoryFilterSW6"
	if identity.ComposerKebab(name) == identity.AssetKebab(name) {
		testingHandle.Fatalf("expected the two kebab forms of %s to differ", name)
	}
}

func TestStampMarkers(testingHandle *testing.T) {
	testCases := []struct {
		testName string
		text     string
		spec     identity.VariantSpec
		expected string
	}{
		{
			testName: "prefix only",
			text:     "Topdata Machine Translations",
			spec:     identity.VariantSpec{Prefix: "Free"},
			expected: "[FREE] Topdata Machine Translations",
		},
		{
			testName: "prefix and suffix",
			text:     "My Plugin",
			spec:     identity.VariantSpec{Prefix: "free", Suffix: "lite"},
			expected: "[FREE] [LITE] My Plugin",
		},
		{
			testName: "existing block is replaced",
			text:     "[PRO] [BETA]   My Plugin",
			spec:     identity.VariantSpec{Suffix: "lite"},
			expected: "[LITE] My Plugin",
		},
		{
			testName: "lowercase brackets are content",
			text:     "[beta] My Plugin",
			spec:     identity.VariantSpec{Prefix: "Free"},
			expected: "[FREE] [beta] My Plugin",
		},
		{
			testName: "bracketed year is content",
			text:     "[2024] Release Notes",
			spec:     identity.VariantSpec{Prefix: "Free"},
			expected: "[FREE] [2024] Release Notes",
		},
		{
			testName: "bracketed punctuation is content",
			text:     "[-] Plugin",
			spec:     identity.VariantSpec{Suffix: "Lite"},
			expected: "[LITE] [-] Plugin",
		},
		{
			testName: "marker with digits is replaced",
			text:     "[PRO-2] Plugin",
			spec:     identity.VariantSpec{Prefix: "Free"},
			expected: "[FREE] Plugin",
		},
		{
			testName: "empty text",
			text:     "",
			spec:     identity.VariantSpec{Prefix: "Free"},
			expected: "[FREE] ",
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.testName, func(testingHandle *testing.T) {
			if actual := identity.StampMarkers(testCase.text, testCase.spec); actual != testCase.expected {
				testingHandle.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}

func TestStampMarkersIdempotent(testingHandle *testing.T) {
	texts := []string{"Topdata Machine Translations", "", "[OLD] Label", "Ünïcode Beschreibung", "[beta] x", "[2024] Notes"}
	specs := []identity.VariantSpec{
		{Prefix: "Free"},
		{Suffix: "Lite"},
		{Prefix: "free", Suffix: "lite"},
		{Prefix: "pro-2"},
		{Prefix: "straße"},
		{Suffix: "a]b"},
	}
	for _, text := range texts {
		for _, spec := range specs {
			once := identity.StampMarkers(text, spec)
			twice := identity.StampMarkers(once, spec)
			if once != twice {
				testingHandle.Errorf("stamping %q with %s is not idempotent: %q then %q", text, spec, once, twice)
			}
		}
	}
}
