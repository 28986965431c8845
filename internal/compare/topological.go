package compare

import "github.com/mysqlschema/mysqlschema/internal/ir"

// topologicallySortTables orders tables so that a table referenced by a foreign key
// comes before the tables referencing it. Among tables whose dependencies are met,
// declaration order wins. References to tables outside the set are ignored.
func topologicallySortTables(tables []*ir.TableDefinition) []*ir.TableDefinition {
	if len(tables) <= 1 {
		return tables
	}

	position := make(map[string]int, len(tables))
	for i, table := range tables {
		position[table.Name] = i
	}

	// Edge referenced -> referencing
	inDegree := make([]int, len(tables))
	adjList := make([][]int, len(tables))
	for i, table := range tables {
		for _, ref := range table.ReferencedTables() {
			j, exists := position[ref]
			if !exists || j == i {
				continue
			}
			adjList[j] = append(adjList[j], i)
			inDegree[i]++
		}
	}

	// Kahn's algorithm. When only cycles remain, the earliest declared table is
	// released; its foreign keys then reference tables created after it, which
	// MySQL accepts only with foreign_key_checks disabled.
	processed := make([]bool, len(tables))
	result := make([]*ir.TableDefinition, 0, len(tables))
	for len(result) < len(tables) {
		next := nextReady(inDegree, processed)
		if next < 0 {
			next = nextInOrder(processed)
		}
		processed[next] = true
		result = append(result, tables[next])
		for _, neighbor := range adjList[next] {
			inDegree[neighbor]--
		}
	}
	return result
}

func nextReady(inDegree []int, processed []bool) int {
	for i, degree := range inDegree {
		if !processed[i] && degree <= 0 {
			return i
		}
	}
	return -1
}

func nextInOrder(processed []bool) int {
	for i, done := range processed {
		if !done {
			return i
		}
	}
	return -1
}
