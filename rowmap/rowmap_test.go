package rowmap_test

import (
	"testing"

	"github.com/vektorlab/chwire/block"
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/rowmap"
)

type person struct {
	ID   uint32
	Name string
	Age  uint8
}

func buildBlock(t *testing.T) *block.Block {
	t.Helper()
	b := block.New()
	idType, _ := chtype.Parse("UInt32")
	nameType, _ := chtype.Parse("String")
	ageType, _ := chtype.Parse("UInt8")
	if err := b.AddColumn("id", idType); err != nil {
		t.Fatal(err)
	}
	if err := b.AddColumn("name", nameType); err != nil {
		t.Fatal(err)
	}
	if err := b.AddColumn("age", ageType); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{uint32(1), "Alice", uint8(30)},
		{uint32(2), "Bob", uint8(25)},
	}
	for _, row := range rows {
		if err := b.AppendRow(row); err != nil {
			t.Fatal(err)
		}
	}
	return b
}

func TestRowGetCaseInsensitive(t *testing.T) {
	t.Parallel()

	b := buildBlock(t)
	row := rowmap.NewRow(b, 1)
	v, err := row.Get("NAME")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "Bob" {
		t.Errorf("Get(NAME) = %v, want Bob", v)
	}
}

func TestMapperScan(t *testing.T) {
	t.Parallel()

	b := buildBlock(t)
	var p person
	m, err := rowmap.NewMapper(&p, b)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	if err := m.Scan(rowmap.NewRow(b, 0), &p); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if p.ID != 1 || p.Name != "Alice" || p.Age != 30 {
		t.Errorf("Scan() = %+v, want {1 Alice 30}", p)
	}

	if err := m.Scan(rowmap.NewRow(b, 1), &p); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if p.ID != 2 || p.Name != "Bob" || p.Age != 25 {
		t.Errorf("Scan() = %+v, want {2 Bob 25}", p)
	}
}

func TestMapperReusesCachedBinding(t *testing.T) {
	t.Parallel()

	b := buildBlock(t)
	var p1, p2 person
	m1, err := rowmap.NewMapper(&p1, b)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	m2, err := rowmap.NewMapper(&p2, b)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	if m1 != m2 {
		t.Error("expected the same cached *Mapper for identical (type, schema) pairs")
	}
}
