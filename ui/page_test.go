package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Page{
		Color:  "#ff0080",
		Duties: &Duties{Anode: [3]uint32{0, 1023, 509}, Cathode: [3]uint32{1023, 0, 513}},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`name="led_color"`,
		`type="color"`,
		`value="#ff0080"`,
		`<form method="post">`,
		"anode 0/1023/509",
		"cathode 1023/0/513",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `role="alert"`) {
		t.Error("no error should be rendered")
	}
}

func TestRenderEscapesError(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Page{Color: "#808080", Error: "<script>x</script>"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Error("error text must be escaped")
	}
	if !strings.Contains(out, `role="alert"`) {
		t.Error("error paragraph missing")
	}
}
