package imgresize_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/regorov/imgresize"
)

func TestOutcome_Result(t *testing.T) {
	var tbl = []struct {
		val    imgresize.Outcome
		line   string
		result string
	}{
		{val: imgresize.Outcome{Input: "a.png", Intermediate: "a_resized.png", Final: "a_resized.jpg"},
			line:   "Processed a.png: Resized to a_resized.png, Converted to a_resized.jpg",
			result: "a.png,ok,a_resized.png,a_resized.jpg,\n"},
		{val: imgresize.Outcome{Input: "b, c.png", Err: errors.New(`bad "file"`)},
			line:   `Error processing b, c.png: bad "file"`,
			result: `"b, c.png",failed,,,"bad ""file"""` + "\n"},
	}

	for i := range tbl {
		if res := tbl[i].val.String(); res != tbl[i].line {
			t.Errorf("case %d failed. Got: %s, expected: %s", i, res, tbl[i].line)
		}
		if res := tbl[i].val.Result(); res != tbl[i].result {
			t.Errorf("case %d failed. Got: %s, expected: %s", i, res, tbl[i].result)
		}
	}
}

func TestBufferedCSV(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "report.csv")

	for run := 0; run < 2; run++ {
		out := imgresize.NewBufferedCSV(2)
		if err := out.Open(fname); err != nil {
			t.Fatalf("open file failed: %s", err.Error())
		}
		for i := 0; i < 3; i++ {
			if err := out.Save(&imgresize.Outcome{Input: "x.png", Intermediate: "i.png", Final: "f.jpg"}); err != nil {
				t.Fatalf("save failed: %s", err.Error())
			}
		}
		if err := out.Close(); err != nil {
			t.Fatalf("close failed: %s", err.Error())
		}
		// saving after close is ignored.
		if err := out.Save(&imgresize.Outcome{Input: "late.png"}); err != nil {
			t.Errorf("save after close: %s", err.Error())
		}
	}

	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}

	line := "x.png,ok,i.png,f.jpg,\n"
	exp := "path,status,intermediate,final,error\n" + line + line + line + line + line + line
	if string(buf) != exp {
		t.Errorf("unexpected report content:\n%s\nexpected:\n%s", buf, exp)
	}
}

func TestTextOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := imgresize.NewTextOutput(&stdout, &stderr)

	_ = out.Save(&imgresize.Outcome{Input: "a.png", Intermediate: "a_resized.png", Final: "a_resized.jpg"})
	_ = out.Save(&imgresize.Outcome{Input: "b.png", Err: errors.New("boom")})

	if exp := "Processed a.png: Resized to a_resized.png, Converted to a_resized.jpg\n"; stdout.String() != exp {
		t.Errorf("stdout. Got: %q, expected: %q", stdout.String(), exp)
	}
	if exp := "Error processing b.png: boom\n"; stderr.String() != exp {
		t.Errorf("stderr. Got: %q, expected: %q", stderr.String(), exp)
	}
}
