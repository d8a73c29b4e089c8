package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/extracta/internal/core/domain"
)

func TestMergeText(t *testing.T) {
	extracted := []string{"body"}
	other := []string{"ocr text", "body"}

	tests := []struct {
		name     string
		strategy domain.MergeStrategy
		want     []string
	}{
		{name: "replace keeps extracted", strategy: domain.MergeReplace, want: []string{"body"}},
		{name: "append puts extracted last", strategy: domain.MergeAppend, want: []string{"ocr text", "body", "body"}},
		{name: "prepend puts extracted first", strategy: domain.MergePrepend, want: []string{"body", "ocr text", "body"}},
		{name: "union deduplicates", strategy: domain.MergeUnion, want: []string{"ocr text", "body"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MergeText(tc.strategy, extracted, other))
		})
	}
}

func TestMergeText_DoesNotMutateInputs(t *testing.T) {
	extracted := []string{"a"}
	other := []string{"b"}

	MergeText(domain.MergeAppend, extracted, other)
	MergeText(domain.MergePrepend, extracted, other)

	assert.Equal(t, []string{"a"}, extracted)
	assert.Equal(t, []string{"b"}, other)
}

func TestMergeMetadata_DisjointKeysKeptAsIs(t *testing.T) {
	merged := MergeMetadata(domain.MergeReplace,
		domain.PropertyMap{"dc:title": "Report"},
		domain.PropertyMap{"dc:creator": "Alice"},
	)

	assert.Equal(t, domain.PropertyMap{
		"dc:title":   "Report",
		"dc:creator": "Alice",
	}, merged)
}

func TestMergeMetadata_ConflictStrategies(t *testing.T) {
	extracted := domain.PropertyMap{"dc:title": "Extracted"}
	other := domain.PropertyMap{"dc:title": "Other"}

	tests := []struct {
		name     string
		strategy domain.MergeStrategy
		want     any
	}{
		{name: "replace", strategy: domain.MergeReplace, want: "Extracted"},
		{name: "append", strategy: domain.MergeAppend, want: []any{"Other", "Extracted"}},
		{name: "prepend", strategy: domain.MergePrepend, want: []any{"Extracted", "Other"}},
		{name: "union", strategy: domain.MergeUnion, want: []any{"Other", "Extracted"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			merged := MergeMetadata(tc.strategy, extracted, other)
			assert.Equal(t, tc.want, merged["dc:title"])
		})
	}
}

func TestMergeMetadata_UnionDeduplicatesScalars(t *testing.T) {
	merged := MergeMetadata(domain.MergeUnion,
		domain.PropertyMap{"dc:creator": []any{"Alice", "Bob"}},
		domain.PropertyMap{"dc:creator": "Alice"},
	)

	assert.Equal(t, []any{"Alice", "Bob"}, merged["dc:creator"])
}

func TestComposeContent(t *testing.T) {
	text := []string{"body"}
	metadata := domain.PropertyMap{"dc:title": "Report"}

	assert.Equal(t, []string{"body"}, ComposeContent(domain.ComposeText, text, metadata))
	assert.Equal(t, []string{"Report"}, ComposeContent(domain.ComposeMetadata, text, metadata))
	assert.Equal(t, []string{"body", "Report"}, ComposeContent(domain.ComposeBoth, text, metadata))
}

func TestComposeContent_FlattensListValues(t *testing.T) {
	metadata := domain.PropertyMap{"meta:keyword": []any{"tax", "2026"}}

	content := ComposeContent(domain.ComposeMetadata, nil, metadata)

	assert.ElementsMatch(t, []string{"tax", "2026"}, content)
}
