package query

import (
	"reflect"
	"testing"
)

func TestFilterBuild(t *testing.T) {
	f := NewFilter().
		Equal("level", "A1").
		NotEqual("type", "motivational").
		GreaterThan("percentage", 0).
		In("id", []string{"a", "b"})

	clause, args := f.Build()
	wantClause := "level = ? AND type <> ? AND percentage > ? AND id IN ?"
	if clause != wantClause {
		t.Fatalf("clause = %q, want %q", clause, wantClause)
	}
	wantArgs := []interface{}{"A1", "motivational", 0, []string{"a", "b"}}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestFilterLikeEscapes(t *testing.T) {
	clause, args := NewFilter().Like("question_ru", `50%_Off\`).Build()
	if clause != `LOWER(question_ru) LIKE ? ESCAPE '\'` {
		t.Fatalf("clause = %q", clause)
	}
	if want := `%50\%\_off\\%`; args[0] != want {
		t.Fatalf("pattern = %q, want %q", args[0], want)
	}
}

func TestFilterAnyLike(t *testing.T) {
	f := NewFilter().Equal("is_active", true).AnyLike("Кот", "question_ru", "question_kg")
	clause, args := f.Build()
	want := `is_active = ? AND (LOWER(question_ru) LIKE ? ESCAPE '\' OR LOWER(question_kg) LIKE ? ESCAPE '\')`
	if clause != want {
		t.Fatalf("clause = %q, want %q", clause, want)
	}
	if len(args) != 3 || args[1] != "%кот%" || args[2] != "%кот%" {
		t.Fatalf("args = %#v", args)
	}
}

func TestFilterEmpty(t *testing.T) {
	if !NewFilter().Empty() {
		t.Error("new filter not empty")
	}
	if !NewFilter().AnyLike("x").Empty() {
		t.Error("AnyLike without columns added a condition")
	}
}
