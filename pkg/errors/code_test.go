package errors

import "testing"

func TestNewCode(t *testing.T) {
	valid := []string{"backup.inconsistent", "catalog.table_dropped", "coordination.stage.timeout"}
	for _, s := range valid {
		if _, err := NewCode(s); err != nil {
			t.Errorf("expected %q to be valid: %v", s, err)
		}
	}

	invalid := []string{"", "nopackage", "Upper.case", "backup.", ".name", "backup name"}
	for _, s := range invalid {
		if _, err := NewCode(s); err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestCodeParts(t *testing.T) {
	c := MustNewCode("backup.collect_failed")
	if c.Package() != "backup" {
		t.Errorf("unexpected package %q", c.Package())
	}
	if c.Name() != "collect_failed" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if !c.Equals(MustNewCode("backup.collect_failed")) {
		t.Error("expected equal codes to compare equal")
	}
}

func TestMustNewCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid code")
		}
	}()
	MustNewCode("NotValid")
}
