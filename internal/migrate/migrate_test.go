package migrate

import (
	"reflect"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	raw := `
create table a (id text primary key);
insert into a(id) values ('x;y');
`
	got := splitStatements(raw)
	want := []string{
		"create table a (id text primary key)",
		"insert into a(id) values ('x;y')",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected statements:\n got %q\nwant %q", got, want)
	}
}

func TestSplitStatementsEmpty(t *testing.T) {
	if got := splitStatements("  \n ; ; \n"); len(got) != 0 {
		t.Fatalf("expected no statements, got %q", got)
	}
}
