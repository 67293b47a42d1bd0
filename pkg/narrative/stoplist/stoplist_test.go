package stoplist

import "testing"

func TestManagerCaseInsensitive(t *testing.T) {
	m := NewManager([]string{"The", " Bank ", ""})
	if !m.IsStop("the") || !m.IsStop("BANK") {
		t.Error("stopwords should match regardless of case and padding")
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}

	m.Remove("BANK")
	if m.IsStop("bank") {
		t.Error("Remove should be case-insensitive")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	base := Default()
	c := base.Clone()
	c.Add("acme")

	if base.IsStop("acme") {
		t.Error("additions to a clone leaked into the base list")
	}
	if !c.IsStop("acme") || !c.IsStop("the") {
		t.Error("clone should keep base words and its own additions")
	}
}

func TestAllSorted(t *testing.T) {
	all := NewManager([]string{"zeta", "alpha", "mid"}).All()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("All = %v, want %v", all, want)
		}
	}
}
