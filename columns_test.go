package unweave

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// columnsParams mirrors the configuration grid every columns scenario runs
// under: both input backings and both two-pass strategies.
var columnsParams = []struct {
	name    string
	noMmap  bool
	twoPass TwoPass
}{
	{"mmap-cached", false, TwoPassCached},
	{"mmap-reread", false, TwoPassReread},
	{"nommap-cached", true, TwoPassCached},
	{"nommap-reread", true, TwoPassReread},
}

// runColumnsTest writes the given inputs to a temp dir, runs IntoColumns with
// opts (Inputs and Output filled in), and returns the output bytes.
func runColumnsTest(t *testing.T, opts ColumnsOptions, inputs ...[]byte) []byte {
	t.Helper()
	dir := t.TempDir()
	for i, content := range inputs {
		path := filepath.Join(dir, "input"+string(rune('1'+i)))
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("write input: %v", err)
		}
		opts.Inputs = append(opts.Inputs, path)
	}
	opts.Output = filepath.Join(dir, "output")
	if err := IntoColumns(&opts); err != nil {
		t.Fatalf("IntoColumns failed: %v", err)
	}
	out, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return out
}

func TestColumnsSimplePattern(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:  "A|B|C",
				Width:    Width{Mode: WidthColumn, Value: 5},
				TabWidth: 8,
				TwoPass:  p.twoPass,
				NoMmap:   p.noMmap,
			}, []byte("A:1\nB:1\nA:2\nZ:1\nC:1\nB:2\nC:2"))

			expected := "A:1\n" +
				"     B:1\n" +
				"A:2\n" +
				"          C:1\n" +
				"     B:2\n" +
				"          C:2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsSeparator(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "A|B|C",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("A:1\nB:1\nA:2\nZ:1\nC:1\nB:2\nC:2"))

			expected := "A:1  |     |\n" +
				"     |B:1  |\n" +
				"A:2  |     |\n" +
				"     |     |C:1\n" +
				"     |B:2  |\n" +
				"     |     |C:2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsAutoWidth(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "A|B|C",
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("A:11\nB:1111\nA:2\nZ:1\nC:1\nB:2\nC:222"))

			expected := "A:11|      |\n" +
				"    |B:1111|\n" +
				"A:2 |      |\n" +
				"    |      |C:1\n" +
				"    |B:2   |\n" +
				"    |      |C:222\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsLineWidth(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "A|B|C",
				Width:     Width{Mode: WidthLine, Value: 15},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("A:11\nB:111\nA:2\nZ:1\nC:1\nB:2\nC:222"))

			expected := "A:11 |     |\n" +
				"     |B:111|\n" +
				"A:2  |     |\n" +
				"     |     |C:1\n" +
				"     |B:2  |\n" +
				"     |     |C:222\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsComplexRegex(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:  `[1-6](A|B|C)(?:A|B|C)`,
				TabWidth: 8,
				TwoPass:  p.twoPass,
				NoMmap:   p.noMmap,
			}, []byte("1ACx\n2BAy\n3AC\nZAC\n4CBz\n5BAz\n6CCy"))

			expected := "1ACx\n" +
				"    2BAy\n" +
				"3AC\n" +
				"        4CBz\n" +
				"    5BAz\n" +
				"        6CCy\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsMultipleInputsUnicode(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:  "άλφα|βήτα|γάμμα",
				TabWidth: 8,
				TwoPass:  p.twoPass,
				NoMmap:   p.noMmap,
			},
				[]byte("άλφα1\nβήτα1\nδέλτα1\nβήτα2\nγάμμα1\n"),
				[]byte("γάμμα2\nάλφα2\n"))

			expected := "άλφα1\n" +
				"     βήτα1\n" +
				"     βήτα2\n" +
				"          γάμμα1\n" +
				"          γάμμα2\n" +
				"άλφα2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsWrapping(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:  "άλφα|βήτα|γάμμα",
				Width:    Width{Mode: WidthColumn, Value: 5},
				TabWidth: 8,
				TwoPass:  p.twoPass,
				NoMmap:   p.noMmap,
			}, []byte("άλφα-1\nβήτα1\nδέλτα1\nβήτα-22\nγάμμα1\n"))

			expected := "άλφα-\n" +
				"1\n" +
				"     βήτα1\n" +
				"     βήτα-\n" +
				"     22\n" +
				"          γάμμα\n" +
				"          1\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsWrappingWithSeparator(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "άλφα|βήτα|γάμμα",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "##",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("άλφα-1\nβήτα1\nδέλτα1\nβήτα-1234567\nγάμμα1\n"))

			expected := "άλφα-##     ##\n" +
				"1    ##     ##\n" +
				"     ##βήτα1##\n" +
				"     ##βήτα-##\n" +
				"     ##12345##\n" +
				"     ##67   ##\n" +
				"     ##     ##γάμμα\n" +
				"     ##     ##1\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsUnicodeFill(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "α|β|γ",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("α:Α\nβ:ΒΒ\nγ:ΓΓΓ"))

			expected := "α:Α  |     |\n" +
				"     |β:ΒΒ |\n" +
				"     |     |γ:ΓΓΓ\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsInvalidUTF8Fill(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "α|β",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("\xce\xb1\xce\x79\n\xce\xb2"))

			expected := "\xce\xb1\xce\x79  |\n     |\xce\xb2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsInvalidUTF8Wrap(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "α|β",
				Width:     Width{Mode: WidthColumn, Value: 1},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("\xce\xb1\xce\x79\n\xce\xb2"))

			expected := "\xce\xb1|\n\xce|\n\x79|\n |\xce\xb2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsInvalidUTF8NotPrintable(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "α|β",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("\xce\xb1\xce\x13\n\xce\xb2"))

			expected := "\xce\xb1\xce\x13   |\n     |\xce\xb2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsInvalidUTF8EndOfLineFill(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "α|β",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("\xce\xb1\xce\n\xce\xb2"))

			expected := "\xce\xb1\xce   |\n     |\xce\xb2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsInvalidUTF8EndOfLineWrap(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "α|β",
				Width:     Width{Mode: WidthColumn, Value: 1},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("\xce\xb1\xce\n\xce\xb2"))

			expected := "\xce\xb1|\n\xce|\n |\xce\xb2\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsTabFill(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "b|d",
				Width:     Width{Mode: WidthColumn, Value: 10},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("αb\tc\nd"))

			expected := "αb      c |\n          |d\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsTabWrap(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "b|d",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TabWidth:  8,
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("αb\tc\nd"))

			expected := "αb   |\n   c |\n     |d\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsTabNoExpand(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:   "b|d",
				Width:     Width{Mode: WidthColumn, Value: 5},
				Separator: "|",
				TwoPass:   p.twoPass,
				NoMmap:    p.noMmap,
			}, []byte("αb\tc\nd"))

			expected := "αb\tc  |\n     |d\n"
			if string(out) != expected {
				t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expected, out)
			}
		})
	}
}

func TestColumnsNoMatches(t *testing.T) {
	for _, p := range columnsParams {
		t.Run(p.name, func(t *testing.T) {
			out := runColumnsTest(t, ColumnsOptions{
				Pattern:  "A|B",
				Width:    Width{Mode: WidthLine, Value: 20},
				TabWidth: 8,
				TwoPass:  p.twoPass,
				NoMmap:   p.noMmap,
			}, []byte("x\ny\nz\n"))

			if len(out) != 0 {
				t.Fatalf("expected empty output, got %q", out)
			}
		})
	}
}

func TestColumnsInvalidPattern(t *testing.T) {
	err := IntoColumns(&ColumnsOptions{Pattern: "(", Inputs: []string{"-"}})
	if err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

// TestStrategiesAgree checks that, for a fixed column width and no
// separator, all three strategies produce byte-identical output.
func TestStrategiesAgree(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	content := []byte("A:1\nB:1\nA:longer than the column\nZ:skip\nC:1\nB:\xff\xfe\nC:2\n")
	if err := os.WriteFile(input, content, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	opts := ColumnsOptions{
		Pattern:  "A|B|C",
		Inputs:   []string{input},
		Width:    Width{Mode: WidthColumn, Value: 5},
		TabWidth: 8,
	}

	var single, cached, reread bytes.Buffer
	if err := columnsSinglePass(&opts, &single); err != nil {
		t.Fatalf("single pass failed: %v", err)
	}
	if err := columnsTwoPassCached(&opts, &cached); err != nil {
		t.Fatalf("cached failed: %v", err)
	}
	if err := columnsTwoPassReread(&opts, &reread); err != nil {
		t.Fatalf("reread failed: %v", err)
	}

	if !bytes.Equal(single.Bytes(), cached.Bytes()) {
		t.Fatalf("single-pass and cached outputs differ\nsingle:\n%q\ncached:\n%q", single.Bytes(), cached.Bytes())
	}
	if !bytes.Equal(single.Bytes(), reread.Bytes()) {
		t.Fatalf("single-pass and reread outputs differ\nsingle:\n%q\nreread:\n%q", single.Bytes(), reread.Bytes())
	}
}
