package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "player_name").
		From("alert_events").
		Where(Eq("match_id", int64(88)), In("urgency", []any{"urgent", "important"})).
		OrderBy("occurred_at DESC").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, player_name FROM alert_events WHERE match_id = $1 AND urgency IN ($2, $3) ORDER BY occurred_at DESC LIMIT 50"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != int64(88) || args[1] != "urgent" || args[2] != "important" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("alert_events").
		Where(In("urgency", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM alert_events WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("alert_events").
		Columns("id", "player_name").
		Values("ev1", "Haaland").
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO alert_events (id, player_name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "ev1" || args[1] != "Haaland" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID       string `db:"id"`
		Status   string `db:"status"`
		Attempts int    `db:"attempts"`
		NoTag    string
	}

	query, args, err := InsertModel("alert_events", row{ID: "ev2", Status: "delivered", Attempts: 1}, "")
	if err != nil {
		t.Fatalf("build insert from model: %v", err)
	}

	wantQuery := "INSERT INTO alert_events (id, status, attempts) VALUES ($1, $2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "ev2" || args[1] != "delivered" || args[2] != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_SkipRules(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Ignored string `db:"-"`
		Note    string `db:"note,omitempty"`
	}

	query, args, err := InsertModel("alert_events", &row{ID: "ev3", Note: "late swap"}, "")
	if err != nil {
		t.Fatalf("build insert from model pointer: %v", err)
	}
	if want := "INSERT INTO alert_events (id, note) VALUES ($1, $2)"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[1] != "late swap" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("alert_events", (*row)(nil), ""); err == nil {
		t.Fatal("expected error for nil model")
	}
	if _, _, err := InsertModel("alert_events", "not a struct", ""); err == nil {
		t.Fatal("expected error for non-struct model")
	}
}
