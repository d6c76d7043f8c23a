package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knowledgeboard/knowledge-server/internal/domain"
)

func filterFixture() []domain.Knowledge {
	return []domain.Knowledge{
		{ID: 1, Title: "Go Generics", Comment: "type parameters", URL: "https://go.dev", Tags: []string{"Go", "Generics"}},
		{ID: 2, Title: "Kubernetes probes", Comment: "liveness vs readiness", URL: "https://k8s.io", Tags: []string{"k8s"}},
		{ID: 3, Title: "Lunch", Comment: "ramen near the office", URL: "", Tags: []string{}},
		{ID: 4, Title: "Profiling", Comment: "pprof walkthrough", URL: "https://example.com/GOLANG-pprof", Tags: []string{"Go"}},
	}
}

func ids(list []domain.Knowledge) []int64 {
	out := make([]int64, 0, len(list))
	for _, k := range list {
		out = append(out, k.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    []int64
	}{
		{"no filters", Filters{}, []int64{1, 2, 3, 4}},
		{"blank search", Filters{SearchWord: "   "}, []int64{1, 2, 3, 4}},
		{"title match ignores case", Filters{SearchWord: "GENERICS"}, []int64{1}},
		{"body match", Filters{SearchWord: "readiness"}, []int64{2}},
		{"url match", Filters{SearchWord: "golang"}, []int64{4}},
		{"search word is trimmed", Filters{SearchWord: "  pprof "}, []int64{4}},
		{"no match", Filters{SearchWord: "rust"}, []int64{}},
		{"tag match", Filters{TagNames: []string{"Go"}}, []int64{1, 4}},
		{"tags are ORed", Filters{TagNames: []string{"k8s", "Generics"}}, []int64{1, 2}},
		{"tag match is case sensitive", Filters{TagNames: []string{"go"}}, []int64{}},
		{"empty tag names ignored", Filters{TagNames: []string{""}}, []int64{1, 2, 3, 4}},
		{"search and tags are ANDed", Filters{SearchWord: "pprof", TagNames: []string{"Go"}}, []int64{4}},
		{"search and tags disjoint", Filters{SearchWord: "ramen", TagNames: []string{"Go"}}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ApplyFilters(filterFixture(), tt.filters)))
		})
	}
}

func TestApplyFilters_DoesNotModifyInput(t *testing.T) {
	list := filterFixture()
	ApplyFilters(list, Filters{SearchWord: "go", TagNames: []string{"Go"}})
	assert.Equal(t, filterFixture(), list)
}

func TestFilters_IsZero(t *testing.T) {
	assert.True(t, Filters{}.IsZero())
	assert.True(t, Filters{SearchWord: " ", TagNames: []string{""}}.IsZero())
	assert.False(t, Filters{SearchWord: "x"}.IsZero())
	assert.False(t, Filters{TagNames: []string{"x"}}.IsZero())
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trim and drop empty", []string{" a ", "", "  ", "b"}, []string{"a", "b"}},
		{"exact dedup keeps first", []string{"a", "b", "a"}, []string{"a", "b"}},
		{"case variants kept for slug dedup", []string{"Go", "go"}, []string{"Go", "go"}},
		{"from comma string", SplitTags("a, b,,a"), []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}
