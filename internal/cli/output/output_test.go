package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]OutputMode{
		"text":     ModeText,
		"markdown": ModeMarkdown,
		"json":     ModeJSON,
		"auto":     ModeAuto,
		"":         ModeAuto,
		"yaml":     ModeAuto,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEffectiveMode(t *testing.T) {
	cases := []struct {
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeMarkdown, true, ModeMarkdown},
		{ModeText, false, ModeText},
	}
	for _, tc := range cases {
		r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tc.isTTY, tc.mode)
		if got := r.EffectiveMode(); got != tc.want {
			t.Errorf("EffectiveMode(mode=%s, tty=%v) = %s, want %s", tc.mode, tc.isTTY, got, tc.want)
		}
	}
}

func TestRenderer_StreamSeparation(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	r := NewRendererWithTTY(out, errOut, false, ModeText)

	r.Println("result row")
	r.Printf("count: %d\n", 3)
	r.Success("done")
	r.Warning("slow")
	r.Error("broken")
	r.Muted("detail")

	stdout := out.String()
	if !strings.Contains(stdout, "result row") || !strings.Contains(stdout, "count: 3") {
		t.Errorf("stdout missing printed lines: %q", stdout)
	}
	if strings.Contains(stdout, "done") {
		t.Errorf("status lines leaked to stdout: %q", stdout)
	}

	stderr := errOut.String()
	for _, want := range []string{"✓ done", "! slow", "✗ broken", "detail"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q: %q", want, stderr)
		}
	}
	if strings.Contains(stderr, "\x1b[") {
		t.Errorf("non-TTY output contains ANSI codes: %q", stderr)
	}
}

func TestRenderer_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeJSON)

	if err := r.JSON(map[string]int{"matched": 7}); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if !strings.Contains(out.String(), "  \"matched\": 7") {
		t.Errorf("expected indented JSON, got %q", out.String())
	}

	var decoded map[string]int
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["matched"] != 7 {
		t.Errorf("expected matched=7, got %d", decoded["matched"])
	}
}

func TestRenderer_HeaderByMode(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeMarkdown)
	r.Header(2, "Summary")
	if got := out.String(); got != "## Summary\n" {
		t.Errorf("expected markdown heading, got %q", got)
	}

	out.Reset()
	r = NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeText)
	r.Header(2, "Summary")
	if got := out.String(); got != "Summary\n" {
		t.Errorf("expected plain heading in non-TTY text mode, got %q", got)
	}
}

func TestRenderer_StatusLine(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeText)

	r.StatusLine("accounts", "success", "silver/finance/accounts.sql")
	r.StatusLine("orders", "failed", "")
	r.StatusLine("scores", "skipped", "")

	got := out.String()
	for _, want := range []string{
		"  ✓ accounts (silver/finance/accounts.sql)\n",
		"  ✗ orders\n",
		"  - scores\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatHeader(0, "Top"); got != "# Top" {
		t.Errorf("FormatHeader(0) = %q", got)
	}
	if got := FormatHeader(9, "Deep"); got != "###### Deep" {
		t.Errorf("FormatHeader(9) = %q", got)
	}
	if got := FormatKeyValue("Models", "12"); got != "- **Models**: 12" {
		t.Errorf("FormatKeyValue = %q", got)
	}
	got := FormatCodeBlock("sql", "select 1\n")
	want := "```sql\nselect 1\n```"
	if got != want {
		t.Errorf("FormatCodeBlock = %q, want %q", got, want)
	}
}

func TestSpinner_NonAnimated(t *testing.T) {
	errOut := &bytes.Buffer{}
	r := NewRendererWithTTY(&bytes.Buffer{}, errOut, false, ModeText)

	sp := r.NewSpinner("Comparing models...")
	sp.Start()
	sp.Success("Comparison complete")

	got := errOut.String()
	if !strings.Contains(got, "Comparing models...") {
		t.Errorf("expected start message, got %q", got)
	}
	if !strings.Contains(got, "✓ Comparison complete") {
		t.Errorf("expected success message, got %q", got)
	}

	sp = r.NewSpinner("Pulling schema...")
	sp.Start()
	sp.Fail("Connection refused")
	if !strings.Contains(errOut.String(), "✗ Connection refused") {
		t.Errorf("expected failure message, got %q", errOut.String())
	}
}

func TestSpinner_StopIdempotent(t *testing.T) {
	r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, false, ModeText)
	sp := r.NewSpinner("working")
	sp.Start()
	sp.Stop()
	sp.Stop()
}
