package curriculum

import "testing"

func TestSubjectIDFor(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Maths", "math"},
		{"Mathematics", "math"},
		{"Advanced Maths", "math"},
		{"Social Science", "sst"},
		{"Social Science and Civics", "sst"}, // more specific name wins the scan
		{"General Science", "science"},
		{"Sanskrit", "sanskrit"},
		{"Moral Education", "moral education"},
	}
	for _, c := range cases {
		if got := SubjectIDFor(c.label); got != c.want {
			t.Errorf("SubjectIDFor(%q) = %q, want %q", c.label, got, c.want)
		}
	}
}

func TestStaticListSubject(t *testing.T) {
	if got := StaticListSubject("math", "Advanced Maths"); got != "Mathematics" {
		t.Errorf("StaticListSubject(math) = %q, want Mathematics", got)
	}
	if got := StaticListSubject("sanskrit", "Sanskrit"); got != "Sanskrit" {
		t.Errorf("unknown id should fall back to the label, got %q", got)
	}
}

func TestPlanForFallsBackToClass10(t *testing.T) {
	plan := PlanFor("12")
	if len(plan) != 12 {
		t.Fatalf("fallback plan has %d months, want 12", len(plan))
	}
	if plan[0].Month != 1 {
		t.Errorf("first month = %d, want 1", plan[0].Month)
	}
}
