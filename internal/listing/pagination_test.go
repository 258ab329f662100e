package listing

import "testing"

func TestMaxPage(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name   string
		markup string
		want   int
	}{
		{
			name:   "no pagination control",
			markup: `<html><body><div data-marker="item"></div></body></html>`,
			want:   1,
		},
		{
			name: "numeric labels",
			markup: `<ul data-marker="pagination-button">
				<li><span class="styles-module-text-A1">1</span></li>
				<li><span class="styles-module-text-A1">2</span></li>
				<li><span class="styles-module-text-A1">17</span></li>
			</ul>`,
			want: 17,
		},
		{
			name: "non numeric labels ignored",
			markup: `<ul data-marker="pagination-button">
				<li><span class="styles-module-text-A1">1</span></li>
				<li><span class="styles-module-text-A1">...</span></li>
				<li><span class="styles-module-text-A1">4</span></li>
				<li><span class="styles-module-text-A1">Next</span></li>
			</ul>`,
			want: 4,
		},
		{
			name: "spans without label class ignored",
			markup: `<ul data-marker="pagination-button">
				<li><span class="styles-module-text-A1">3</span></li>
				<li><span class="counter">99</span></li>
			</ul>`,
			want: 3,
		},
		{
			name:   "control without labels",
			markup: `<ul data-marker="pagination-button"><li>next</li></ul>`,
			want:   1,
		},
		{
			name:   "garbage",
			markup: "<<<>>>",
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.MaxPage(tt.markup); got != tt.want {
				t.Errorf("MaxPage() = %d, want %d", got, tt.want)
			}
		})
	}
}
