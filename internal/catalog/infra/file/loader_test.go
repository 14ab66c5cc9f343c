package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
version: 3
categories:
  - id: c1
    name: Pizza
    image: https://img/pizza.png
foods:
  - id: margherita
    name: Margherita
    description: Tomato and basil
    price: 12.50
    category: pizza
  - id: cola
    name: Cola
    price: 2
    category: Drinks
`

func TestDecode(t *testing.T) {
	snap, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Version != 3 || len(snap.Categories) != 1 || len(snap.Foods) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if got := snap.Foods[0].Price.StringFixed(2); got != "12.50" {
		t.Fatalf("expected price 12.50, got %s", got)
	}

	if _, err := Decode(strings.NewReader("foods:\n  - id: a\n    colour: red\n")); err == nil {
		t.Fatalf("expected unknown field to fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Foods[1].ID != "cola" {
		t.Fatalf("unexpected foods %+v", snap.Foods)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
