package query_test

import (
	"strings"
	"testing"

	"github.com/sifterhq/sifter/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "widgets", "w").
		Project("id", "ID").
		Project("name", "Name").
		Project("created_at", "CreatedAt")
}

func TestProjectionFrom(t *testing.T) {
	if got := testProjection().From(); got != "public.widgets w" {
		t.Errorf("got %q, want %q", got, "public.widgets w")
	}
}

func TestBuildPage(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "CreatedAt", Descending: true})
	b.WhereEquals("Name", "gear")

	sql, args := b.BuildPage(2, 10)

	if !strings.Contains(sql, "FROM public.widgets w") {
		t.Errorf("missing qualified FROM clause: %s", sql)
	}
	if !strings.Contains(sql, "WHERE w.name = $1") {
		t.Errorf("missing condition: %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY w.created_at DESC") {
		t.Errorf("missing default sort: %s", sql)
	}
	if !strings.Contains(sql, "LIMIT 10 OFFSET 10") {
		t.Errorf("wrong paging clause: %s", sql)
	}
	if len(args) != 1 || args[0] != "gear" {
		t.Errorf("got args %v, want [gear]", args)
	}
}

func TestBuildCount(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildCount()

	if sql != "SELECT COUNT(*) FROM public.widgets w" {
		t.Errorf("got %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("got args %v, want none", args)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("ID", 7)

	if !strings.Contains(sql, "FROM public.widgets w WHERE w.id = $1") {
		t.Errorf("got %q", sql)
	}
	if len(args) != 1 || args[0] != 7 {
		t.Errorf("got args %v, want [7]", args)
	}
}

func TestWhereSearchNumbersParams(t *testing.T) {
	search := "bolt"
	b := query.NewBuilder(testProjection()).
		WhereEquals("ID", 3).
		WhereSearch(&search, "Name", "ID")

	sql, args := b.Build()

	if !strings.Contains(sql, "w.id = $1 AND (w.name ILIKE $2 OR w.id ILIKE $3)") {
		t.Errorf("parameter numbering wrong: %s", sql)
	}
	if len(args) != 3 {
		t.Errorf("got %d args, want 3", len(args))
	}
}
