package store

import (
	"reflect"
	"testing"

	"github.com/KonSprin/ztbd/internal/model"
)

func TestColumnsOfOrdering(t *testing.T) {
	tab := model.Table{
		Name:       "game_tags",
		PrimaryKey: []string{"game_appid", "tag_id"},
		Rows: []model.Row{
			{"game_appid": int64(10), "tag_id": int64(1), "vote_count": int64(5)},
			{"game_appid": int64(10), "tag_id": int64(2), "vote_count": int64(3), "extra": "x"},
		},
	}
	got := columnsOf(tab)
	want := []string{"game_appid", "tag_id", "extra", "vote_count"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columnsOf = %v, want %v", got, want)
	}
}

func TestColumnsOfEmptyTable(t *testing.T) {
	tab := model.Table{Name: "games", PrimaryKey: []string{"appid"}}
	if got := columnsOf(tab); !reflect.DeepEqual(got, []string{"appid"}) {
		t.Fatalf("columnsOf = %v", got)
	}
}

func TestIsJSONColumn(t *testing.T) {
	tab := model.Table{Name: "games", JSONColumns: []string{"tags", "genres"}}
	if !isJSONColumn(tab, "tags") || isJSONColumn(tab, "name") {
		t.Fatalf("json column detection broken")
	}
}

func TestCanonicalIDSample(t *testing.T) {
	tables := []model.Table{
		{Name: "genres", PrimaryKey: []string{"genre_id"}},
		{
			Name:       "developers",
			PrimaryKey: []string{"developer_id"},
			Rows: []model.Row{
				{"developer_id": int64(1), "name": "Indie Co"},
				{"developer_id": int64(2), "name": "Valve"},
			},
		},
	}
	got := canonicalIDSample(tables, "developers", "developer_id")
	want := map[int64]string{1: "Indie Co", 2: "Valve"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("canonicalIDSample = %v, want %v", got, want)
	}
	if canonicalIDSample(tables, "publishers", "publisher_id") != nil {
		t.Fatalf("missing table should sample nil")
	}
}

func TestBatches(t *testing.T) {
	got := batches(5, 2)
	want := [][2]int{{0, 2}, {2, 4}, {4, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches = %v, want %v", got, want)
	}
	if batches(0, 2) != nil {
		t.Fatalf("empty input should produce no batches")
	}
	// Non-positive sizes fall back to the default batch width.
	if got := batches(3, 0); !reflect.DeepEqual(got, [][2]int{{0, 3}}) {
		t.Fatalf("default size not applied: %v", got)
	}
}
