package catalog

import (
	"reflect"
	"testing"

	"github.com/law-makers/listcrawl/pkg/models"
)

const fragment = `
<div class="popular-rubricator-links-UAkHE" data-marker="popular-rubricator/links">
  <div data-marker="popular-rubricator/links/row">
    <a href="/all/avtomobili/luxgen/7_suv?cd=1" data-marker="popular-rubricator/link">7 SUV</a>
    <span data-marker="popular-rubricator/count">12</span>
  </div>
  <div data-marker="popular-rubricator/links/row">
    <a href="/all/avtomobili/luxgen/u6" data-marker="popular-rubricator/link">  U6
      Turbo </a>
  </div>
  <a href="/all/avtomobili/luxgen/empty" data-marker="popular-rubricator/link"></a>
  <a data-marker="popular-rubricator/link">No href</a>
  <a href="/other" class="not-a-catalog-link">Other</a>
</div>`

func TestDiscover(t *testing.T) {
	sections := Discover(fragment, "https://www.example.test", "")

	want := []models.Section{
		{Name: "7 SUV", URL: "https://www.example.test/all/avtomobili/luxgen/7_suv?cd=1"},
		{Name: "U6 Turbo", URL: "https://www.example.test/all/avtomobili/luxgen/u6"},
	}
	if !reflect.DeepEqual(sections, want) {
		t.Fatalf("Unexpected sections:\n got  %#v\n want %#v", sections, want)
	}
}

func TestDiscover_EmptyAndMalformed(t *testing.T) {
	inputs := []string{"", "<div>", "</a></a><<", "plain text"}
	for _, in := range inputs {
		if got := Discover(in, "https://www.example.test", ""); len(got) != 0 {
			t.Errorf("Discover(%q) returned %d sections, want 0", in, len(got))
		}
	}
}

func TestDiscover_DuplicateLinks(t *testing.T) {
	frag := `<a href="/a" data-marker="popular-rubricator/link">A</a>
		<a href="/a" data-marker="popular-rubricator/link">A again</a>`
	if got := Discover(frag, "https://www.example.test/", ""); len(got) != 1 {
		t.Errorf("Expected duplicate link to collapse, got %d sections", len(got))
	}
}

func TestFilter(t *testing.T) {
	sections := []models.Section{{Name: "7 SUV"}, {Name: "U6"}, {Name: "S5"}}

	if got := Filter(sections, nil); len(got) != 3 {
		t.Errorf("Expected empty filter to keep all, got %d", len(got))
	}
	got := Filter(sections, []string{"u6", " S5 "})
	if len(got) != 2 || got[0].Name != "U6" || got[1].Name != "S5" {
		t.Errorf("Unexpected filter result: %#v", got)
	}
}
