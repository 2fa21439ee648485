package cloud

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coastal-data/bathyscan/internal/fsutil"
)

func TestCSVStore_RoundTrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	store := NewCSVStore(fs)

	c := NewCloud([]string{"x", "y", "z", ColPointSourceID}, [][]float64{
		{1.5, 2, 3, 7},
		{4, 5.25, 6, 7},
	})
	extra := []ExtraField{{Name: "depth", Type: "float64", Values: []float64{0.5, 1.5}}}

	if err := store.Write("out/points.csv", c, extra); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Read("out/points.csv", ModeStandard)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []string{"x", "y", "z", ColPointSourceID, "depth"}
	if diff := cmp.Diff(want, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got.NumPoints() != 2 {
		t.Fatalf("num points = %d, want 2", got.NumPoints())
	}
	depth, err := got.Column("depth")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if diff := cmp.Diff([]float64{0.5, 1.5}, depth); diff != "" {
		t.Errorf("depth mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVStore_FullWaveformRequiresDescriptor(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	store := NewCSVStore(fs)

	if err := fs.WriteFile("a.csv", []byte("x,y,z\n1,2,3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Read("a.csv", ModeStandard); err != nil {
		t.Errorf("standard read should not require descriptor: %v", err)
	}
	if _, err := store.Read("a.csv", ModeFullWaveform); err == nil {
		t.Error("fwf read should require the descriptor column")
	}
}

func TestCSVStore_MalformedInput(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	store := NewCSVStore(fs)

	cases := map[string]string{
		"short row":   "x,y,z\n1,2\n",
		"not numeric": "x,y,z\n1,2,north\n",
		"empty":       "",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if err := fs.WriteFile("bad.csv", []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := store.Read("bad.csv", ModeStandard); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestCSVStore_ExtraFieldLengthMismatch(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	store := NewCSVStore(fs)

	c := NewCloud([]string{"x", "y", "z"}, [][]float64{{1, 2, 3}})
	err := store.Write("out.csv", c, []ExtraField{{Name: "depth", Values: []float64{1, 2}}})
	if err == nil || !strings.Contains(err.Error(), "depth") {
		t.Errorf("got %v, want extra field length error", err)
	}
}
