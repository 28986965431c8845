package compare

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

func TestTopologicallySortTablesHandlesCycles(t *testing.T) {
	tables := []*ir.TableDefinition{
		newTestTable("c", "b"),
		newTestTable("b", "a"),
		newTestTable("a"),
		newTestTable("x", "y"), // cycle x <-> y
		newTestTable("y", "x"),
		newTestTable("z", "y"), // depends on the cycle
		newTestTable("self", "self", "outside"),
	}

	sorted := topologicallySortTables(tables)
	if len(sorted) != len(tables) {
		t.Fatalf("expected %d tables, got %d", len(tables), len(sorted))
	}

	order := make(map[string]int, len(sorted))
	for idx, tbl := range sorted {
		order[tbl.Name] = idx
	}

	assertBefore := func(first, second string) {
		if order[first] >= order[second] {
			t.Fatalf("expected %s to appear before %s in %v", first, second, order)
		}
	}

	assertBefore("a", "b")
	assertBefore("b", "c")
	assertBefore("y", "z")

	// Cycle members keep declaration order
	assertBefore("x", "y")
}

func TestTopologicallySortTablesKeepsDeclarationOrder(t *testing.T) {
	tables := []*ir.TableDefinition{
		newTestTable("orders", "users"),
		newTestTable("audit"),
		newTestTable("users"),
		newTestTable("tags"),
	}

	var got []string
	for _, tbl := range topologicallySortTables(tables) {
		got = append(got, tbl.Name)
	}
	want := []string{"audit", "users", "orders", "tags"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func newTestTable(name string, deps ...string) *ir.TableDefinition {
	table := &ir.TableDefinition{Name: name}
	for idx, dep := range deps {
		table.ForeignKeys = append(table.ForeignKeys, &ir.ForeignKeyDefinition{
			Name:     fmt.Sprintf("fk_%s_%d", name, idx),
			RefTable: dep,
		})
	}
	return table
}
