package store

import (
	"encoding/json"
	"testing"
)

func TestLinkUpsertsTriple(t *testing.T) {
	db := testDB(t)

	if err := db.Link("a", "b", "refines", 0.3, nil); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := db.Link("a", "b", "refines", 0.9, nil); err != nil {
		t.Fatalf("re-Link: %v", err)
	}

	rels, err := db.RelationsFor("a", Outgoing)
	if err != nil {
		t.Fatalf("RelationsFor: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("got %d relations, want 1 (upsert, not duplicate)", len(rels))
	}
	if rels[0].Strength != 0.9 {
		t.Errorf("strength = %f, want 0.9", rels[0].Strength)
	}
}

func TestLinkDistinctTypes(t *testing.T) {
	db := testDB(t)

	db.Link("a", "b", "refines", 1.0, nil)
	db.Link("a", "b", "blocks", 1.0, nil)

	rels, _ := db.RelationsFor("a", Outgoing)
	if len(rels) != 2 {
		t.Errorf("got %d relations, want 2 (types are distinct edges)", len(rels))
	}
}

func TestLinkMetadataRoundTrip(t *testing.T) {
	db := testDB(t)

	meta := json.RawMessage(`{"author":"jane","confidence":0.8}`)
	db.Link("a", "b", "cites", 1.0, meta)

	rels, _ := db.RelationsFor("a", Outgoing)
	if len(rels) != 1 {
		t.Fatalf("got %d relations, want 1", len(rels))
	}
	var decoded map[string]any
	if err := json.Unmarshal(rels[0].Metadata, &decoded); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if decoded["author"] != "jane" {
		t.Errorf("metadata = %v", decoded)
	}
}

func TestRelationsForDirections(t *testing.T) {
	db := testDB(t)

	db.Link("a", "b", "refines", 1.0, nil)
	db.Link("c", "a", "blocks", 1.0, nil)

	out, _ := db.RelationsFor("a", Outgoing)
	if len(out) != 1 || out[0].TargetKey != "b" {
		t.Errorf("outgoing = %+v", out)
	}

	in, _ := db.RelationsFor("a", Incoming)
	if len(in) != 1 || in[0].SourceKey != "c" {
		t.Errorf("incoming = %+v", in)
	}

	both, _ := db.RelationsFor("a", Both)
	if len(both) != 2 {
		t.Errorf("both = %d relations, want 2", len(both))
	}
}

func TestUnlinkDirectional(t *testing.T) {
	db := testDB(t)

	db.Link("a", "b", "refines", 1.0, nil)
	db.Link("b", "a", "refines", 1.0, nil)

	removed, err := db.Unlink("a", "b", "")
	if err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if !removed {
		t.Fatal("Unlink returned false")
	}

	// The reverse edge must survive: unlink is not symmetric.
	in, _ := db.RelationsFor("a", Incoming)
	if len(in) != 1 || in[0].SourceKey != "b" {
		t.Errorf("reverse edge removed, incoming = %+v", in)
	}
}

func TestUnlinkByType(t *testing.T) {
	db := testDB(t)

	db.Link("a", "b", "refines", 1.0, nil)
	db.Link("a", "b", "blocks", 1.0, nil)

	removed, _ := db.Unlink("a", "b", "refines")
	if !removed {
		t.Fatal("Unlink returned false")
	}

	rels, _ := db.RelationsFor("a", Outgoing)
	if len(rels) != 1 || rels[0].RelationType != "blocks" {
		t.Errorf("remaining = %+v, want only blocks", rels)
	}
}

func TestUnlinkNoMatch(t *testing.T) {
	db := testDB(t)

	removed, err := db.Unlink("x", "y", "")
	if err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if removed {
		t.Error("Unlink with no matching rows returned true")
	}
}

func TestDanglingRelationAllowed(t *testing.T) {
	db := testDB(t)

	// Endpoints are never validated against the memories table.
	if err := db.Link("ghost-1", "ghost-2", "haunts", 1.0, nil); err != nil {
		t.Errorf("Link with absent endpoints failed: %v", err)
	}
}

func TestAllOutgoingRequiresStoredSource(t *testing.T) {
	db := testDB(t)

	db.Save("real", "v", "", 0)
	db.Link("real", "ghost-dst", "t", 1.0, nil)
	db.Link("ghost-src", "real", "t", 1.0, nil)

	// Only relations whose source is a stored item are collected; a
	// stored source with an absent target still counts as outgoing.
	rels, err := db.AllOutgoing()
	if err != nil {
		t.Fatalf("AllOutgoing: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("got %d relations, want 1", len(rels))
	}
	if rels[0].SourceKey != "real" || rels[0].TargetKey != "ghost-dst" {
		t.Errorf("relation = %+v, want real -> ghost-dst", rels[0])
	}
}
