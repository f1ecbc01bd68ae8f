package bench

import (
	"fmt"
	"strings"
	"testing"
)

// The catalog contract: every case carries a renderer for every backend,
// names are unique, and the SQL renderings honor the configured limit.
func TestCatalogContract(t *testing.T) {
	cases := Catalog()
	if len(cases) != 7 {
		t.Fatalf("expected 7 cases, got %d", len(cases))
	}

	seen := make(map[string]bool)
	for _, c := range cases {
		if c.Name == "" || c.Description == "" {
			t.Fatalf("case missing name or description: %+v", c)
		}
		if seen[c.Name] {
			t.Fatalf("duplicate case name %s", c.Name)
		}
		seen[c.Name] = true

		if len(c.Fields) == 0 {
			t.Fatalf("case %s declares no projected fields", c.Name)
		}
		if c.SQL == nil || c.Mongo == nil || c.Cypher == nil {
			t.Fatalf("case %s is missing a backend renderer", c.Name)
		}
	}
}

func TestCatalogSQLCarriesLimit(t *testing.T) {
	for _, c := range Catalog() {
		for _, limit := range []int{7, 123} {
			want := fmt.Sprintf("LIMIT %d", limit)
			if !strings.Contains(c.SQL(limit), want) {
				t.Fatalf("case %s: postgres query missing %q", c.Name, want)
			}
			if !strings.Contains(c.MySQLQuery(limit), want) {
				t.Fatalf("case %s: mysql query missing %q", c.Name, want)
			}
			if !strings.Contains(c.Cypher(limit), want) {
				t.Fatalf("case %s: cypher query missing %q", c.Name, want)
			}
		}
	}
}

func TestCatalogProjectionsNameDeclaredFields(t *testing.T) {
	for _, c := range Catalog() {
		sql := c.SQL(10)
		cypher := c.Cypher(10)
		for _, field := range c.Fields {
			if !strings.Contains(sql, field) {
				t.Fatalf("case %s: field %s absent from SQL rendering", c.Name, field)
			}
			if !strings.Contains(cypher, field) {
				t.Fatalf("case %s: field %s absent from Cypher rendering", c.Name, field)
			}
		}
	}
}

func TestMySQLQueryFallsBackToSharedSQL(t *testing.T) {
	c := simpleSelectCase()
	if c.MySQL != nil {
		t.Fatalf("fixture changed: case now has a MySQL override")
	}
	if c.MySQLQuery(10) != c.SQL(10) {
		t.Fatalf("fallback should reuse the shared SQL rendering")
	}
}

func TestReviewStatsSubqueryIsPKOrdered(t *testing.T) {
	c := reviewStatsCase()
	for _, query := range []string{c.SQL(20), c.MySQLQuery(20)} {
		if !strings.Contains(query, "ORDER BY appid") {
			t.Fatalf("inner game subset must be ordered by primary key:\n%s", query)
		}
	}
	if !strings.Contains(c.Cypher(20), "ORDER BY game_appid") {
		t.Fatalf("cypher subset must be ordered by primary key")
	}
}
