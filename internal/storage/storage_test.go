package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"boards/internal/domain"
	"boards/internal/geom"
)

func setupStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_PutGetDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "things", "a", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "things", "a", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Put again: %v", err)
	}
	data, err := s.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("Get = %s, want the replaced document", data)
	}

	if err := s.Delete(ctx, "things", "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "things", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "things", "a"); !IsNotFound(err) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestSQLStore_CollectionsAreSeparate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	s.Put(ctx, "one", "x", []byte(`1`))
	s.Put(ctx, "two", "x", []byte(`2`))

	docs, err := s.List(ctx, "one")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || string(docs[0].Data) != "1" {
		t.Errorf("List(one) = %+v", docs)
	}
}

func TestSQLStore_FingerprintChangesOnWrite(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	empty, err := s.Fingerprint(ctx, "things")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if empty != (Fingerprint{}) {
		t.Errorf("empty fingerprint = %+v", empty)
	}

	s.Put(ctx, "things", "a", []byte(`{}`))
	first, _ := s.Fingerprint(ctx, "things")
	if first.Count != 1 || first.UpdatedAt == 0 {
		t.Errorf("fingerprint after put = %+v", first)
	}
	again, _ := s.Fingerprint(ctx, "things")
	if again != first {
		t.Error("fingerprint changed without a write")
	}

	s.Put(ctx, "things", "b", []byte(`{}`))
	second, _ := s.Fingerprint(ctx, "things")
	if second == first {
		t.Error("fingerprint did not change after a write")
	}
}

func TestBoardStore_Roundtrip(t *testing.T) {
	boards := NewBoardStore(setupStore(t))
	b := &domain.Board{
		ID:   "b1",
		Name: "Retro",
		Elements: []domain.Element{
			{ID: "n1", Type: domain.ElementNote, X: 10, Y: 20, Width: 150, Height: 100, Content: "hi", Votes: 2},
			{ID: "g1", Type: domain.ElementGroup, X: 0, Y: 0, Width: 400, Height: 300, Label: "Went well"},
		},
		Viewport: geom.Viewport{X: 5, Y: 6, Zoom: 1.5},
	}
	if err := boards.SaveBoard(b); err != nil {
		t.Fatalf("SaveBoard: %v", err)
	}
	if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := boards.GetBoard("b1")
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}
	if got.Name != "Retro" || len(got.Elements) != 2 || got.Viewport != b.Viewport {
		t.Errorf("GetBoard = %+v", got)
	}
	if got.Elements[0].Votes != 2 || got.Elements[1].Label != "Went well" {
		t.Errorf("element fields lost: %+v", got.Elements)
	}

	if _, err := boards.GetBoard("missing"); !IsNotFound(err) {
		t.Errorf("GetBoard(missing) err = %v", err)
	}
}

func TestHierarchyStore_KindsAreSeparate(t *testing.T) {
	hs := NewHierarchyStore(setupStore(t))
	hs.SaveHierarchy(&domain.Hierarchy{ID: "h", Name: "Site", Kind: domain.KindSiteMap})
	hs.SaveHierarchy(&domain.Hierarchy{ID: "h2", Name: "Impact", Kind: domain.KindImpactMap})

	sites, err := hs.ListHierarchies(domain.KindSiteMap)
	if err != nil {
		t.Fatalf("ListHierarchies: %v", err)
	}
	if len(sites) != 1 || sites[0].Name != "Site" {
		t.Errorf("site maps = %+v", sites)
	}
	if _, err := hs.GetHierarchy(domain.KindImpactMap, "h"); !IsNotFound(err) {
		t.Errorf("site map visible as impact map: %v", err)
	}
	if err := hs.SaveHierarchy(&domain.Hierarchy{ID: "x", Kind: "mindmap"}); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestStores_ExportImportRoundtrip(t *testing.T) {
	src := NewStores(setupStore(t))
	src.Boards.SaveBoard(&domain.Board{ID: "b", Name: "Board"})
	src.Hierarchies.SaveHierarchy(&domain.Hierarchy{ID: "s", Kind: domain.KindSiteMap})
	src.Hierarchies.SaveHierarchy(&domain.Hierarchy{ID: "i", Kind: domain.KindImpactMap, Goal: "grow"})
	src.Personas.SavePersona(&domain.Persona{ID: "p", Name: "Ana"})
	src.JourneyMaps.SaveJourneyMap(&domain.JourneyMap{ID: "j", PersonaID: "p"})

	ws, err := src.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	dst := NewStores(setupStore(t))
	n, err := dst.ImportAll(ws)
	if err != nil {
		t.Fatalf("ImportAll: %v", err)
	}
	if n != 5 {
		t.Errorf("imported %d documents, want 5", n)
	}
	imp, err := dst.Hierarchies.GetHierarchy(domain.KindImpactMap, "i")
	if err != nil || imp.Goal != "grow" {
		t.Errorf("impact map after import = %+v, %v", imp, err)
	}
}

func TestDecodeWorkspace_FillsKinds(t *testing.T) {
	ws, err := DecodeWorkspace([]byte(`{"version":1,"siteMaps":[{"id":"s"}],"impactMaps":[{"id":"i"}]}`))
	if err != nil {
		t.Fatalf("DecodeWorkspace: %v", err)
	}
	if ws.SiteMaps[0].Kind != domain.KindSiteMap || ws.ImpactMaps[0].Kind != domain.KindImpactMap {
		t.Errorf("kinds = %q, %q", ws.SiteMaps[0].Kind, ws.ImpactMaps[0].Kind)
	}
	if _, err := DecodeWorkspace([]byte(`{`)); err == nil {
		t.Error("bad JSON accepted")
	}
}

func TestSettings(t *testing.T) {
	s := NewSettings(setupStore(t))
	var v struct{ Width int }
	v.Width = 7
	if err := s.Load("window", &v); err != nil || v.Width != 7 {
		t.Fatalf("Load of missing key = %v, %v", v, err)
	}
	s.Store("window", struct{ Width int }{Width: 1280})
	if err := s.Load("window", &v); err != nil || v.Width != 1280 {
		t.Errorf("Load = %v, %v", v, err)
	}
}

func TestBuildDSNs(t *testing.T) {
	p := Params{Host: "db", User: "u", Password: "pw", Database: "boards"}
	if got := buildPostgresDSN(p); got != "host=db port=5432 user=u password=pw dbname=boards sslmode=disable" {
		t.Errorf("postgres DSN = %q", got)
	}
	if got := buildMySQLDSN(p); got != "u:pw@tcp(db:3306)/boards?parseTime=true&charset=utf8mb4" {
		t.Errorf("mysql DSN = %q", got)
	}
	if got := buildMongoURI(p); got != "mongodb://u:pw@db:27017" {
		t.Errorf("mongo URI = %q", got)
	}
	if _, err := Open(context.Background(), Params{Backend: "oracle"}); err == nil {
		t.Error("unknown backend accepted")
	}
}
