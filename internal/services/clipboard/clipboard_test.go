package clipboard

import "testing"

func TestReleaseText(t *testing.T) {
	testCases := []struct {
		name     string
		urls     []string
		archives []string
		expected string
	}{
		{name: "links preferred", urls: []string{"https://a/1.zip", "https://a/2.zip"}, archives: []string{"/b/1.zip"}, expected: "https://a/1.zip\nhttps://a/2.zip"},
		{name: "archives without links", archives: []string{"/b/1.zip"}, expected: "/b/1.zip"},
		{name: "nothing", expected: ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := ReleaseText(testCase.urls, testCase.archives); actual != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}
