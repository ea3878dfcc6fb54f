package vm

import (
	"strings"
	"testing"
)

func TestInspectScalar(t *testing.T) {
	r := Inspect(FromInt(5), InspectOptions{})
	if r.Kind != "integer" || r.Value != "5" {
		t.Errorf("Inspect(5) = %+v", r)
	}
	if got := r.String(); got != "integer: 5\n" {
		t.Errorf("String() = %q", got)
	}
}

func TestInspectClipsWideStrings(t *testing.T) {
	r := Inspect(FromString(strings.Repeat("w", 200)), InspectOptions{Width: 20})
	if len(r.Value) > 20 || !strings.HasSuffix(r.Value, "...") {
		t.Errorf("clipped value = %q", r.Value)
	}
}

func TestInspectTable(t *testing.T) {
	inner := NewTableValue(0, 0)
	inner.Table().Append(FromString("deep"))

	outer := NewTableValue(0, 0)
	outer.Table().Append(FromInt(1))
	outer.Table().Append(inner)
	outer.Table().SetString("name", FromString("x"))

	r := Inspect(outer, InspectOptions{Depth: 2})
	if r.Size != 3 || len(r.Elements) != 3 {
		t.Fatalf("Size = %d, elements = %d, want 3/3", r.Size, len(r.Elements))
	}
	if r.Elements[0].Key != "1" || r.Elements[0].Value.Value != "1" {
		t.Errorf("first element = %+v", r.Elements[0])
	}
	nested := r.Elements[1].Value
	if len(nested.Elements) != 1 || nested.Elements[0].Value.Value != "'deep'" {
		t.Errorf("nested table not expanded: %+v", nested)
	}

	shallow := Inspect(outer, InspectOptions{Depth: 1})
	if len(shallow.Elements[1].Value.Elements) != 0 {
		t.Error("depth 1 should not expand nested tables")
	}

	out := r.String()
	if !strings.Contains(out, "entries (showing 3 of 3)") || !strings.Contains(out, "'deep'") {
		t.Errorf("String() =\n%s", out)
	}
}

func TestInspectLimitsPreview(t *testing.T) {
	tbl := NewTable(0, 0)
	for i := 0; i < MaxElementPreview+5; i++ {
		tbl.Append(FromInt(int64(i)))
	}
	r := Inspect(FromTable(tbl), InspectOptions{})
	if len(r.Elements) != MaxElementPreview {
		t.Errorf("elements = %d, want %d", len(r.Elements), MaxElementPreview)
	}
	if r.Size != MaxElementPreview+5 {
		t.Errorf("Size = %d", r.Size)
	}
}

func TestInspectSelfReference(t *testing.T) {
	v := NewTableValue(0, 0)
	v.Table().SetString("self", v)
	r := Inspect(v, InspectOptions{Depth: 3})
	depth := 0
	for cur := r; len(cur.Elements) > 0; cur = cur.Elements[0].Value {
		depth++
	}
	if depth != 3 {
		t.Errorf("self reference expanded %d levels, want 3", depth)
	}
}

func TestInspectBorrowedTable(t *testing.T) {
	tbl := NewTable(0, 0)
	tbl.Append(True)
	release, err := tbl.TryBorrowMut()
	if err != nil {
		t.Fatal(err)
	}
	defer release()
	r := Inspect(FromTable(tbl), InspectOptions{})
	if r.Value != "table:<borrowed>" || len(r.Elements) != 0 {
		t.Errorf("Inspect on borrowed table = %+v", r)
	}
}
