package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"boards/internal/etl"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSourceForFile(t *testing.T) {
	tests := map[string]string{
		"retro.csv":  "csv_file",
		"RETRO.TSV":  "csv_file",
		"notes.json": "json_file",
	}
	for name, want := range tests {
		src, err := etl.SourceForFile(name)
		if err != nil {
			t.Errorf("SourceForFile(%q): %v", name, err)
			continue
		}
		if src.Spec().Type != want {
			t.Errorf("SourceForFile(%q) = %s, want %s", name, src.Spec().Type, want)
		}
	}
	if _, err := etl.SourceForFile("notes.xlsx"); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestCSV_CollectNotes(t *testing.T) {
	path := writeFile(t, "retro.csv", "text,column,votes\n"+
		"Deploys are slow,Pains,3\n"+
		"  ,Pains,1\n"+
		"Pairing helped,Wins,\n"+
		"deploys are slow ,Pains,2\n")

	src, _ := etl.GetSource("csv_file")
	cfg := etl.SourceConfig{"filePath": path}

	schema, err := src.Discover(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if names := schema.FieldNames(); len(names) != 3 || names[0] != "text" {
		t.Errorf("fields = %v", names)
	}
	if schema.Fields[2].Type != "number" {
		t.Errorf("votes column type = %s", schema.Fields[2].Type)
	}

	notes, err := etl.Collect(context.Background(), src, cfg,
		etl.Mapping{Content: "text", Group: "column", Votes: "votes"},
		&etl.DedupeTransform{Field: "text"},
	)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes: %+v", len(notes), notes)
	}
	if notes[0].Content != "Deploys are slow" || notes[0].Group != "Pains" || notes[0].Votes != 3 {
		t.Errorf("first note = %+v", notes[0])
	}
	if notes[1].Group != "Wins" || notes[1].Votes != 0 {
		t.Errorf("second note = %+v", notes[1])
	}
}

func TestCSV_NoHeaderAndTabs(t *testing.T) {
	path := writeFile(t, "ideas.tsv", "one\tA\ntwo\tB\n")
	src, _ := etl.GetSource("csv_file")
	notes, err := etl.Collect(context.Background(), src,
		etl.SourceConfig{"filePath": path, "hasHeader": "false"},
		etl.Mapping{Content: "col_1", Group: "col_2"},
	)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(notes) != 2 || notes[1].Content != "two" || notes[1].Group != "B" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestJSON_StringsAndObjects(t *testing.T) {
	src, _ := etl.GetSource("json_file")

	path := writeFile(t, "plain.json", `["ship it", "fix flaky test", 42]`)
	notes, err := etl.Collect(context.Background(), src, etl.SourceConfig{"filePath": path}, etl.Mapping{Content: ValueField})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(notes) != 3 || notes[2].Content != "42" {
		t.Errorf("notes = %+v", notes)
	}

	path = writeFile(t, "nested.json", `{"data":{"items":[{"title":"A","tag":"x"},{"title":"B","tag":"y"}]}}`)
	cfg := etl.SourceConfig{"filePath": path, "dataPath": "data.items"}
	notes, err = etl.Collect(context.Background(), src, cfg,
		etl.Mapping{Content: "title"},
		&etl.FilterTransform{Field: "tag", Op: "eq", Value: "y"},
	)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "B" {
		t.Errorf("filtered notes = %+v", notes)
	}

	if _, err := etl.Collect(context.Background(), src, etl.SourceConfig{"filePath": path}, etl.Mapping{Content: "title"}); err == nil {
		t.Error("expected an error when the root is not an array")
	}
}

func TestCollect_RequiresContentField(t *testing.T) {
	src, _ := etl.GetSource("json_file")
	if _, err := etl.Collect(context.Background(), src, etl.SourceConfig{}, etl.Mapping{}); err == nil {
		t.Error("expected an error without a content field")
	}
}
